package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"aesthetica/internal/clock"
	"aesthetica/internal/domain"
	"aesthetica/internal/models"
	"aesthetica/internal/repository"
	"aesthetica/pkg/metrics"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const defaultDeliveryConcurrency = 8

type PromotionService struct {
	repo        *repository.PromotionRepository
	subs        *repository.SubscriberRepository
	push        PushSender
	chat        ChatSender
	clock       clock.Clock
	events      EventPublisher
	metrics     *metrics.Collector
	concurrency int
}

// NewPromotionService wires the promotion fan-out. push and chat may be nil,
// in which case that channel is skipped.
func NewPromotionService(
	repo *repository.PromotionRepository,
	subs *repository.SubscriberRepository,
	push PushSender,
	chat ChatSender,
	clk clock.Clock,
	events EventPublisher,
	m *metrics.Collector,
) *PromotionService {
	if clk == nil {
		clk = clock.System()
	}
	return &PromotionService{
		repo:        repo,
		subs:        subs,
		push:        push,
		chat:        chat,
		clock:       clk,
		events:      events,
		metrics:     m,
		concurrency: defaultDeliveryConcurrency,
	}
}

type PromotionInput struct {
	Title              string           `json:"title" binding:"required,max=150"`
	Message            string           `json:"message" binding:"required"`
	ImageURL           string           `json:"image_url" binding:"omitempty,url"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	ValidUntil         *time.Time       `json:"valid_until"`
}

func (in *PromotionInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	var fe fieldErrors
	if in.Title == "" {
		fe.add("title", "required")
	}
	if in.Message == "" {
		fe.add("message", "required")
	}
	if d := in.DiscountPercentage; d != nil && (d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100))) {
		fe.add("discount_percentage", "must be between 0 and 100")
	}
	return fe.err()
}

func (in PromotionInput) apply(p *models.Promotion) {
	p.Title = in.Title
	p.Message = in.Message
	p.ImageURL = strings.TrimSpace(in.ImageURL)
	p.DiscountPercentage = decimal.NullDecimal{}
	if in.DiscountPercentage != nil {
		p.DiscountPercentage = decimal.NewNullDecimal(*in.DiscountPercentage)
	}
	p.ValidUntil = nil
	if in.ValidUntil != nil {
		v := in.ValidUntil.UTC()
		p.ValidUntil = &v
	}
}

func (s *PromotionService) Create(ctx context.Context, in PromotionInput) (*models.Promotion, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	p := &models.Promotion{Status: domain.PromotionStatusDraft, CreatedAt: now, UpdatedAt: now}
	in.apply(p)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, storeErr("create promotion", err)
	}
	logrus.WithField("promotion_id", p.ID).Info("[promotion] created")
	return p, nil
}

// Update edits a draft. Sent promotions are kept as they were delivered.
func (s *PromotionService) Update(ctx context.Context, id uint, in PromotionInput) (*models.Promotion, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.PromotionStatusDraft {
		return nil, fmt.Errorf("%w: promotion already sent", ErrInvalidTransition)
	}
	in.apply(p)
	p.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, storeErr("update promotion", err)
	}
	return p, nil
}

func (s *PromotionService) Get(ctx context.Context, id uint) (*models.Promotion, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load promotion", err)
	}
	return p, nil
}

func (s *PromotionService) Delete(ctx context.Context, id uint) error {
	return storeErr("delete promotion", s.repo.Delete(ctx, id))
}

func (s *PromotionService) List(ctx context.Context, status string, page, limit int) ([]models.Promotion, int64, error) {
	list, total, err := s.repo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, storeErr("list promotions", err)
	}
	return list, total, nil
}

func (s *PromotionService) ListDeliveries(ctx context.Context, promotionID uint, channel string, page, limit int) ([]models.PromotionDelivery, int64, error) {
	if _, err := s.Get(ctx, promotionID); err != nil {
		return nil, 0, err
	}
	list, total, err := s.repo.ListDeliveries(ctx, promotionID, channel, page, limit)
	if err != nil {
		return nil, 0, storeErr("list deliveries", err)
	}
	return list, total, nil
}

// PromotionText renders the chat version of a promotion.
func PromotionText(p *models.Promotion) string {
	var b strings.Builder
	b.WriteString("*" + p.Title + "*\n")
	b.WriteString(p.Message)
	if p.DiscountPercentage.Valid {
		fmt.Fprintf(&b, "\n%s%% off", p.DiscountPercentage.Decimal.String())
	}
	if p.ValidUntil != nil {
		fmt.Fprintf(&b, "\nValid until %s", p.ValidUntil.Format("02/01/2006"))
	}
	return b.String()
}

// SendReport summarizes one send.
type SendReport struct {
	Promotion *models.Promotion            `json:"promotion"`
	Counters  repository.PromotionCounters `json:"counters"`
}

// Send delivers the promotion to every active push and chat subscriber.
// Individual failures are recorded and never abort the batch.
func (s *PromotionService) Send(ctx context.Context, id uint) (*SendReport, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var pushSubs []models.PushSubscription
	if s.push != nil {
		if pushSubs, err = s.subs.ListActivePush(ctx); err != nil {
			return nil, storeErr("list push subscribers", err)
		}
	}
	var chatSubs []models.ChatSubscriber
	if s.chat != nil {
		if chatSubs, err = s.subs.ListActiveChat(ctx); err != nil {
			return nil, storeErr("list chat subscribers", err)
		}
	}

	pm := PushMessage{
		Title:    p.Title,
		Body:     p.Message,
		ImageURL: p.ImageURL,
		Data:     map[string]string{"promotion_id": strconv.FormatUint(uint64(p.ID), 10)},
	}
	text := PromotionText(p)

	deliveries := make([]models.PromotionDelivery, len(pushSubs)+len(chatSubs))
	unregistered := make([]bool, len(pushSubs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, sub := range pushSubs {
		g.Go(func() error {
			err := s.push.Send(gctx, sub.Token, pm)
			unregistered[i] = errors.Is(err, ErrTokenUnregistered)
			deliveries[i] = s.delivery(p.ID, domain.ChannelPush, sub.ID, sub.Token, err)
			return nil
		})
	}
	for j, sub := range chatSubs {
		g.Go(func() error {
			_, err := s.chat.Send(gctx, sub.Phone, text)
			deliveries[len(pushSubs)+j] = s.delivery(p.ID, domain.ChannelWhatsApp, sub.ID, sub.Phone, err)
			return nil
		})
	}
	_ = g.Wait()

	var counters repository.PromotionCounters
	for _, d := range deliveries {
		ok := d.Status == domain.DeliveryStatusSent
		switch {
		case d.Channel == domain.ChannelPush && ok:
			counters.PushSent++
		case d.Channel == domain.ChannelPush:
			counters.PushFailed++
		case ok:
			counters.ChatSent++
		default:
			counters.ChatFailed++
		}
		s.metrics.Delivery(d.Channel, d.Status)
	}

	var stale []string
	for i, gone := range unregistered {
		if gone {
			stale = append(stale, pushSubs[i].Token)
		}
	}
	if len(stale) > 0 {
		if n, err := s.subs.DeactivatePush(ctx, stale...); err != nil {
			logrus.WithError(err).WithField("promotion_id", id).Warn("[promotion] failed to deactivate stale tokens")
		} else {
			logrus.WithFields(logrus.Fields{"promotion_id": id, "count": n}).Info("[promotion] deactivated stale push tokens")
		}
	}

	if err := s.repo.MarkSent(ctx, id, s.clock.Now(), counters, deliveries); err != nil {
		return nil, storeErr("record promotion send", err)
	}
	logrus.WithFields(logrus.Fields{
		"promotion_id": id,
		"push_sent":    counters.PushSent,
		"push_failed":  counters.PushFailed,
		"chat_sent":    counters.ChatSent,
		"chat_failed":  counters.ChatFailed,
	}).Info("[promotion] sent")

	if p, err = s.Get(ctx, id); err != nil {
		return nil, err
	}
	publish(s.events, domain.EventPromotionSent, p)
	return &SendReport{Promotion: p, Counters: counters}, nil
}

func (s *PromotionService) delivery(promotionID uint, channel string, subscriberID uint, target string, err error) models.PromotionDelivery {
	d := models.PromotionDelivery{
		PromotionID:  promotionID,
		Channel:      channel,
		SubscriberID: subscriberID,
		Target:       target,
		Status:       domain.DeliveryStatusSent,
		CreatedAt:    s.clock.Now(),
	}
	if err != nil {
		d.Status = domain.DeliveryStatusFailed
		d.Error = err.Error()
		logrus.WithError(err).WithFields(logrus.Fields{
			"promotion_id": promotionID,
			"channel":      channel,
		}).Warn("[promotion] delivery failed")
	}
	return d
}

// SubscribePush registers a browser token for promotions.
func (s *PromotionService) SubscribePush(ctx context.Context, token, userAgent string) (*models.PushSubscription, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &ValidationError{Fields: []string{"token: required"}}
	}
	now := s.clock.Now()
	sub := &models.PushSubscription{Token: token, UserAgent: truncate(userAgent, 255), CreatedAt: now, UpdatedAt: now}
	if err := s.subs.UpsertPush(ctx, sub); err != nil {
		return nil, storeErr("subscribe push", err)
	}
	return sub, nil
}

// UnsubscribePush is idempotent.
func (s *PromotionService) UnsubscribePush(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return &ValidationError{Fields: []string{"token: required"}}
	}
	_, err := s.subs.DeactivatePush(ctx, token)
	return storeErr("unsubscribe push", err)
}

// SubscribeChat opts a phone number in to WhatsApp promotions. The phone is stored as digits.
func (s *PromotionService) SubscribeChat(ctx context.Context, name, phone string) (*models.ChatSubscriber, error) {
	digits := NormalizePhone(phone)
	if len(digits) < 8 {
		return nil, &ValidationError{Fields: []string{"phone: must contain at least 8 digits"}}
	}
	now := s.clock.Now()
	sub := &models.ChatSubscriber{Name: truncate(strings.TrimSpace(name), 120), Phone: digits, CreatedAt: now, UpdatedAt: now}
	if err := s.subs.UpsertChat(ctx, sub); err != nil {
		return nil, storeErr("subscribe chat", err)
	}
	return sub, nil
}

func (s *PromotionService) UnsubscribeChat(ctx context.Context, phone string) error {
	_, err := s.subs.DeactivateChat(ctx, NormalizePhone(phone))
	return storeErr("unsubscribe chat", err)
}

func (s *PromotionService) ListPushSubscriptions(ctx context.Context, page, limit int) ([]models.PushSubscription, int64, error) {
	list, total, err := s.subs.ListPush(ctx, page, limit)
	if err != nil {
		return nil, 0, storeErr("list push subscriptions", err)
	}
	return list, total, nil
}

func (s *PromotionService) ListChatSubscribers(ctx context.Context, search string, page, limit int) ([]models.ChatSubscriber, int64, error) {
	list, total, err := s.subs.ListChat(ctx, search, page, limit)
	if err != nil {
		return nil, 0, storeErr("list chat subscribers", err)
	}
	return list, total, nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
