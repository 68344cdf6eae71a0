package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"aesthetica/internal/clock"
	"aesthetica/internal/domain"
	"aesthetica/internal/models"
	"aesthetica/internal/repository"

	"github.com/sirupsen/logrus"
)

const notificationWriteTimeout = 5 * time.Second

// NotificationService stores every event in the staff inbox and then forwards
// it to the live feed. It implements EventPublisher.
type NotificationService struct {
	repo  *repository.NotificationRepository
	live  EventPublisher
	clock clock.Clock
}

func NewNotificationService(repo *repository.NotificationRepository, live EventPublisher, clk clock.Clock) *NotificationService {
	if clk == nil {
		clk = clock.System()
	}
	return &NotificationService{repo: repo, live: live, clock: clk}
}

// Publish never fails the caller. A storage error is logged and the live feed still gets the event.
func (s *NotificationService) Publish(eventType string, payload interface{}) {
	title, body := describeEvent(eventType, payload)
	n := &models.Notification{
		Type:      eventType,
		Title:     title,
		Body:      body,
		CreatedAt: s.clock.Now(),
	}
	if raw, err := json.Marshal(payload); err == nil {
		n.Data = string(raw)
	}
	ctx, cancel := context.WithTimeout(context.Background(), notificationWriteTimeout)
	defer cancel()
	if err := s.repo.Create(ctx, n); err != nil {
		logrus.WithError(err).WithField("type", eventType).Error("[notification] failed to store")
	}
	publish(s.live, eventType, payload)
}

func describeEvent(eventType string, payload interface{}) (title, body string) {
	switch p := payload.(type) {
	case *models.Appointment:
		body = fmt.Sprintf("%s requested %s", p.Name, p.PreferredDate.Format("02/01/2006"))
		if p.PreferredTime != "" {
			body += " at " + p.PreferredTime
		}
	case *models.Referral:
		body = fmt.Sprintf("Code %s issued to %s", p.ReferralCode, p.ReferrerName)
	case *models.ReferralUsage:
		body = fmt.Sprintf("%s redeemed a referral code (%s%% off)", p.ReferredName, p.DiscountApplied.String())
	case *models.Promotion:
		body = fmt.Sprintf("%q delivered: push %d/%d, whatsapp %d/%d",
			p.Title, p.PushSent, p.PushSent+p.PushFailed, p.ChatSent, p.ChatSent+p.ChatFailed)
	}
	switch eventType {
	case domain.EventAppointmentCreated:
		title = "New appointment request"
	case domain.EventReferralIssued:
		title = "Referral code issued"
	case domain.EventReferralRedeemed:
		title = "Referral code redeemed"
	case domain.EventPromotionSent:
		title = "Promotion sent"
	default:
		title = eventType
	}
	return title, body
}

type Inbox struct {
	Notifications []models.Notification `json:"data"`
	Total         int64                 `json:"total"`
	Unread        int64                 `json:"unread"`
}

func (s *NotificationService) List(ctx context.Context, unreadOnly bool, page, limit int) (*Inbox, error) {
	list, total, err := s.repo.List(ctx, unreadOnly, page, limit)
	if err != nil {
		return nil, storeErr("list notifications", err)
	}
	unread, err := s.repo.CountUnread(ctx)
	if err != nil {
		return nil, storeErr("count notifications", err)
	}
	return &Inbox{Notifications: list, Total: total, Unread: unread}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id uint) error {
	return storeErr("mark notification read", s.repo.MarkRead(ctx, id, s.clock.Now()))
}

func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, s.clock.Now())
	if err != nil {
		return 0, storeErr("mark notifications read", err)
	}
	return n, nil
}
