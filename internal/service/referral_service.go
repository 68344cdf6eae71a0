package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aesthetica/config"
	"aesthetica/internal/clock"
	"aesthetica/internal/domain"
	"aesthetica/internal/models"
	"aesthetica/internal/repository"
	"aesthetica/pkg/metrics"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReferralService owns the referral code lifecycle: issuance, public redemption,
// the staff validator and the referrer reward.
type ReferralService struct {
	referralRepo *repository.ReferralRepository
	usageRepo    *repository.ReferralUsageRepository
	programRepo  *repository.ReferralProgramRepository
	cfg          config.ReferralConfig
	clock        clock.Clock
	events       EventPublisher
	metrics      *metrics.Collector
	newCode      func(length int) (string, error)
}

func NewReferralService(
	referralRepo *repository.ReferralRepository,
	usageRepo *repository.ReferralUsageRepository,
	programRepo *repository.ReferralProgramRepository,
	cfg config.ReferralConfig,
	clk clock.Clock,
	events EventPublisher,
	m *metrics.Collector,
) *ReferralService {
	if clk == nil {
		clk = clock.System()
	}
	return &ReferralService{
		referralRepo: referralRepo,
		usageRepo:    usageRepo,
		programRepo:  programRepo,
		cfg:          cfg,
		clock:        clk,
		events:       events,
		metrics:      m,
		newCode:      generateCode,
	}
}

type CreateReferralInput struct {
	ReferrerName  string `json:"referrer_name" binding:"required"`
	ReferrerPhone string `json:"referrer_phone" binding:"required"`
	ReferrerEmail string `json:"referrer_email" binding:"omitempty,email"`
}

type RedeemInput struct {
	Code          string `json:"code" binding:"required"`
	ReferredName  string `json:"referred_name" binding:"required"`
	ReferredPhone string `json:"referred_phone" binding:"required"`
	ReferredEmail string `json:"referred_email" binding:"omitempty,email"`
}

type RedeemResult struct {
	Referral        *models.Referral      `json:"referral"`
	Usage           *models.ReferralUsage `json:"usage"`
	DiscountApplied decimal.Decimal       `json:"discount_applied"`
}

// ValidationResult is what staff see after typing a code into the validator.
type ValidationResult struct {
	Status                     string                 `json:"status"`
	Referral                   *models.Referral       `json:"referral,omitempty"`
	Usages                     []models.ReferralUsage `json:"usages"`
	IsExpired                  bool                   `json:"is_expired"`
	DaysUntilExpiry            int                    `json:"days_until_expiry"`
	ReferrerDiscountPercentage decimal.Decimal        `json:"referrer_discount_percentage"`
	ReferredDiscountPercentage decimal.Decimal        `json:"referred_discount_percentage"`
}

// program returns the saved program or the configured fallback.
func (s *ReferralService) program(ctx context.Context) (models.ReferralProgram, error) {
	p, err := s.programRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FallbackProgram(s.cfg), nil
		}
		return models.ReferralProgram{}, storeErr("load referral program", err)
	}
	return *p, nil
}

func (s *ReferralService) GetProgram(ctx context.Context) (models.ReferralProgram, error) {
	return s.program(ctx)
}

// SaveProgram upserts the singleton program. Existing referrals keep their expiry.
func (s *ReferralService) SaveProgram(ctx context.Context, p models.ReferralProgram) (*models.ReferralProgram, error) {
	if err := validateProgram(&p); err != nil {
		return nil, err
	}
	p.TermsConditions = strings.TrimSpace(p.TermsConditions)
	if err := s.programRepo.Save(ctx, &p); err != nil {
		return nil, storeErr("save referral program", err)
	}
	logrus.WithFields(logrus.Fields{
		"is_active":   p.IsActive,
		"expiry_days": p.ExpiryDays,
	}).Info("[referral] program saved")
	return &p, nil
}

// CreateReferral issues a new code for a referrer.
func (s *ReferralService) CreateReferral(ctx context.Context, in CreateReferralInput) (*models.Referral, error) {
	in.ReferrerName = strings.TrimSpace(in.ReferrerName)
	in.ReferrerPhone = strings.TrimSpace(in.ReferrerPhone)
	var fe fieldErrors
	if in.ReferrerName == "" {
		fe.add("referrer_name", "required")
	}
	if NormalizePhone(in.ReferrerPhone) == "" {
		fe.add("referrer_phone", "required")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	program, err := s.program(ctx)
	if err != nil {
		return nil, err
	}
	if !program.IsActive {
		return nil, ErrProgramInactive
	}

	length := s.cfg.CodeLength
	if length <= 0 {
		length = 8
	}
	attempts := s.cfg.MaxCodeGenerationAttempts
	if attempts <= 0 {
		attempts = 10
	}

	now := s.clock.Now()
	for i := 0; i < attempts; i++ {
		code, err := s.newCode(length)
		if err != nil {
			return nil, &PersistenceError{Op: "generate referral code", Err: err}
		}
		exists, err := s.referralRepo.CodeExists(ctx, code)
		if err != nil {
			return nil, storeErr("check referral code", err)
		}
		if exists {
			continue
		}
		ref := &models.Referral{
			ReferralCode:  code,
			ReferrerName:  in.ReferrerName,
			ReferrerPhone: in.ReferrerPhone,
			ReferrerEmail: strings.TrimSpace(in.ReferrerEmail),
			Status:        domain.ReferralStatusActive,
			CreatedAt:     now,
			ExpiresAt:     ComputeExpiry(now, program),
			UpdatedAt:     now,
		}
		if err := s.referralRepo.Create(ctx, ref); err != nil {
			// lost a race with a concurrent issuance of the same code
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return nil, storeErr("create referral", err)
		}
		s.metrics.ReferralIssued()
		logrus.WithField("referral_code", ref.ReferralCode).Info("[referral] code issued")
		publish(s.events, domain.EventReferralIssued, ref)
		return ref, nil
	}
	return nil, &PersistenceError{
		Op:  "create referral",
		Err: fmt.Errorf("no unique code after %d attempts", attempts),
	}
}

// RedeemCode registers a referred person against a code. Unknown, used and
// expired codes are all reported as ErrInvalidOrExpired; the specific cause is
// joined into the error for logging.
func (s *ReferralService) RedeemCode(ctx context.Context, in RedeemInput) (*RedeemResult, error) {
	code := CanonicalCode(in.Code)
	in.ReferredName = strings.TrimSpace(in.ReferredName)
	in.ReferredPhone = strings.TrimSpace(in.ReferredPhone)
	var fe fieldErrors
	if code == "" {
		fe.add("code", "required")
	}
	if in.ReferredName == "" {
		fe.add("referred_name", "required")
	}
	if NormalizePhone(in.ReferredPhone) == "" {
		fe.add("referred_phone", "required")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	program, err := s.program(ctx)
	if err != nil {
		return nil, err
	}
	if !program.IsActive {
		return nil, ErrProgramInactive
	}

	now := s.clock.Now()
	ref, usage, err := s.referralRepo.Redeem(ctx, code, now, func(ref *models.Referral) (*models.ReferralUsage, error) {
		if NormalizePhone(ref.ReferrerPhone) == NormalizePhone(in.ReferredPhone) {
			return nil, ErrSelfReferral
		}
		return &models.ReferralUsage{
			ReferredName:    in.ReferredName,
			ReferredPhone:   in.ReferredPhone,
			ReferredEmail:   strings.TrimSpace(in.ReferredEmail),
			DiscountApplied: program.ReferredDiscountPercentage,
			Status:          domain.UsageStatusPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		}, nil
	})
	log := logrus.WithField("referral_code", code)
	switch {
	case err == nil:
	case errors.Is(err, ErrSelfReferral):
		s.metrics.Redemption("self_referral")
		log.Warn("[referral] self redemption rejected")
		return nil, err
	case errors.Is(err, repository.ErrNotRedeemable):
		s.metrics.Redemption("rejected")
		cause := s.rejectionCause(ctx, code, now)
		log.WithField("reason", cause).Info("[referral] redemption rejected")
		return nil, fmt.Errorf("%w: %w", ErrInvalidOrExpired, cause)
	default:
		s.metrics.Redemption("error")
		log.WithError(err).Error("[referral] redemption failed")
		return nil, storeErr("redeem referral", err)
	}

	s.metrics.Redemption("ok")
	log.WithField("usage_id", usage.ID).Info("[referral] code redeemed")
	publish(s.events, domain.EventReferralRedeemed, usage)
	return &RedeemResult{Referral: ref, Usage: usage, DiscountApplied: usage.DiscountApplied}, nil
}

// rejectionCause looks the code up again after a failed redemption to tell
// staff logs why it was rejected.
func (s *ReferralService) rejectionCause(ctx context.Context, code string, now time.Time) error {
	ref, err := s.referralRepo.GetByCode(ctx, code)
	if err != nil {
		return ErrNotFound
	}
	if IsExpired(ref, now) {
		return ErrExpired
	}
	return ErrAlreadyUsed
}

// ValidateCode is the staff anti-fraud check.
func (s *ReferralService) ValidateCode(ctx context.Context, code string) (*ValidationResult, error) {
	code = CanonicalCode(code)
	if code == "" {
		return nil, &ValidationError{Fields: []string{"code: required"}}
	}
	program, err := s.program(ctx)
	if err != nil {
		return nil, err
	}
	res := &ValidationResult{
		Usages:                     []models.ReferralUsage{},
		ReferrerDiscountPercentage: program.ReferrerDiscountPercentage,
		ReferredDiscountPercentage: program.ReferredDiscountPercentage,
	}

	ref, err := s.referralRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			res.Status = domain.ValidationNotFound
			return res, nil
		}
		return nil, storeErr("validate referral", err)
	}
	now := s.clock.Now()
	res.Status = ResolveStatus(ref, now)
	res.IsExpired = IsExpired(ref, now)
	res.DaysUntilExpiry = DaysUntilExpiry(ref, now)
	if len(ref.Usages) > 0 {
		res.Usages = ref.Usages
	}
	ref.Usages = nil
	res.Referral = ref
	return res, nil
}

// MarkAsUsed forces status=used. Calling it on a used code is a no-op.
func (s *ReferralService) MarkAsUsed(ctx context.Context, id uint) (*models.Referral, error) {
	ref, err := s.referralRepo.SetStatus(ctx, id, domain.ReferralStatusUsed, s.clock.Now())
	if err != nil {
		return nil, storeErr("mark referral used", err)
	}
	logrus.WithField("referral_code", ref.ReferralCode).Info("[referral] marked as used")
	return ref, nil
}

// ReactivateCode sets status=active and a fresh expiry window from the current program.
func (s *ReferralService) ReactivateCode(ctx context.Context, id uint) (*models.Referral, error) {
	program, err := s.program(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	ref, err := s.referralRepo.Reactivate(ctx, id, ComputeExpiry(now, program), now)
	if err != nil {
		return nil, storeErr("reactivate referral", err)
	}
	logrus.WithFields(logrus.Fields{
		"referral_code": ref.ReferralCode,
		"expires_at":    ref.ExpiresAt,
	}).Info("[referral] reactivated")
	return ref, nil
}

func (s *ReferralService) DeleteReferral(ctx context.Context, id uint) error {
	return storeErr("delete referral", s.referralRepo.Delete(ctx, id))
}

var usageTransitions = map[string][]string{
	domain.UsageStatusConfirmed: {domain.UsageStatusPending},
	domain.UsageStatusCompleted: {domain.UsageStatusConfirmed},
	domain.UsageStatusCancelled: {domain.UsageStatusPending, domain.UsageStatusConfirmed},
}

// UpdateUsageStatus advances a usage as the referred person's appointment progresses.
func (s *ReferralService) UpdateUsageStatus(ctx context.Context, usageID uint, next string) (*models.ReferralUsage, error) {
	from, ok := usageTransitions[next]
	if !ok {
		return nil, &ValidationError{Fields: []string{"status: must be confirmed, completed or cancelled"}}
	}
	u, applied, err := s.usageRepo.UpdateStatus(ctx, usageID, from, next, s.clock.Now())
	if err != nil {
		return nil, storeErr("update usage status", err)
	}
	if !applied {
		if u.Status == next {
			return u, nil
		}
		return nil, fmt.Errorf("%w: usage %s -> %s", ErrInvalidTransition, u.Status, next)
	}
	logrus.WithFields(logrus.Fields{"usage_id": u.ID, "status": next}).Info("[referral] usage status updated")
	return u, nil
}

// ApplyReferrerDiscount marks the referrer's reward as granted for a completed usage.
// Applying it twice keeps the first timestamp.
func (s *ReferralService) ApplyReferrerDiscount(ctx context.Context, usageID uint) (*models.ReferralUsage, error) {
	u, err := s.usageRepo.GetByID(ctx, usageID)
	if err != nil {
		return nil, storeErr("load usage", err)
	}
	if u.ReferrerDiscountApplied {
		return u, nil
	}
	if u.Status != domain.UsageStatusCompleted {
		return nil, ErrUsageNotCompleted
	}
	u, err = s.usageRepo.MarkReferrerDiscountApplied(ctx, usageID, s.clock.Now())
	if err != nil {
		return nil, storeErr("apply referrer discount", err)
	}
	s.metrics.ReferrerRewarded()
	logrus.WithField("usage_id", u.ID).Info("[referral] referrer discount applied")
	return u, nil
}

// ReferralView is a referral row with its status evaluated at read time.
type ReferralView struct {
	models.Referral
	CurrentStatus   string `json:"current_status"`
	DaysUntilExpiry int    `json:"days_until_expiry"`
}

func (s *ReferralService) ListReferrals(ctx context.Context, search, status string, page, limit int) ([]ReferralView, int64, error) {
	now := s.clock.Now()
	list, total, err := s.referralRepo.List(ctx, repository.ReferralFilter{
		Search: strings.TrimSpace(search),
		Status: status,
		Now:    now,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, 0, storeErr("list referrals", err)
	}
	views := make([]ReferralView, len(list))
	for i := range list {
		views[i] = ReferralView{
			Referral:        list[i],
			CurrentStatus:   ResolveStatus(&list[i], now),
			DaysUntilExpiry: DaysUntilExpiry(&list[i], now),
		}
	}
	return views, total, nil
}

func (s *ReferralService) ListUsages(ctx context.Context, f repository.UsageFilter) ([]models.ReferralUsage, int64, error) {
	list, total, err := s.usageRepo.List(ctx, f)
	if err != nil {
		return nil, 0, storeErr("list usages", err)
	}
	return list, total, nil
}

// Quote computes the discount a referred or referrer customer gets on a purchase.
func (s *ReferralService) Quote(ctx context.Context, purchaseValue decimal.Decimal, forReferrer bool) (decimal.Decimal, error) {
	program, err := s.program(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	pct := program.ReferredDiscountPercentage
	if forReferrer {
		pct = program.ReferrerDiscountPercentage
	}
	return QuoteDiscount(program, purchaseValue, pct), nil
}
