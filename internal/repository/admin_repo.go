package repository

import (
	"context"
	"time"

	"aesthetica/internal/domain"
	"aesthetica/internal/models"

	"gorm.io/gorm"
)

type DashboardStats struct {
	AppointmentsByStatus map[string]int64 `json:"appointments_by_status"`
	TotalServices        int64            `json:"total_services"`
	PendingTestimonials  int64            `json:"pending_testimonials"`
	ActiveReferrals      int64            `json:"active_referrals"`
	ExpiredReferrals     int64            `json:"expired_referrals"`
	UsagesByStatus       map[string]int64 `json:"usages_by_status"`
	PendingRewards       int64            `json:"pending_referrer_rewards"`
	PushSubscribers      int64            `json:"push_subscribers"`
	ChatSubscribers      int64            `json:"chat_subscribers"`
	PromotionsSent       int64            `json:"promotions_sent"`
}

type TimeSeriesPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

type statusCount struct {
	Status string
	Count  int64
}

func (r *AdminRepository) GetDashboardStats(ctx context.Context, now time.Time) (*DashboardStats, error) {
	db := r.db.WithContext(ctx)
	s := DashboardStats{
		AppointmentsByStatus: map[string]int64{},
		UsagesByStatus:       map[string]int64{},
	}

	var rows []statusCount
	if err := db.Model(&models.Appointment{}).Select("status, COUNT(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		s.AppointmentsByStatus[row.Status] = row.Count
	}

	rows = nil
	if err := db.Model(&models.ReferralUsage{}).Select("status, COUNT(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		s.UsagesByStatus[row.Status] = row.Count
	}

	counts := []struct {
		dst *int64
		q   *gorm.DB
	}{
		{&s.TotalServices, db.Model(&models.Service{})},
		{&s.PendingTestimonials, db.Model(&models.Testimonial{}).Where("is_active = ?", false)},
		{&s.ActiveReferrals, db.Model(&models.Referral{}).Where("status = ? AND expires_at >= ?", domain.ReferralStatusActive, now)},
		{&s.ExpiredReferrals, db.Model(&models.Referral{}).Where("expires_at < ?", now)},
		{&s.PendingRewards, db.Model(&models.ReferralUsage{}).Where("status = ? AND referrer_discount_applied = ?", domain.UsageStatusCompleted, false)},
		{&s.PushSubscribers, db.Model(&models.PushSubscription{}).Where("is_active = ?", true)},
		{&s.ChatSubscribers, db.Model(&models.ChatSubscriber{}).Where("is_active = ?", true)},
		{&s.PromotionsSent, db.Model(&models.Promotion{}).Where("status = ?", domain.PromotionStatusSent)},
	}
	for _, c := range counts {
		if err := c.q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// AppointmentsByDay returns daily booking counts since the given time.
func (r *AdminRepository) AppointmentsByDay(ctx context.Context, since time.Time) ([]TimeSeriesPoint, error) {
	return r.countByDay(ctx, &models.Appointment{}, since)
}

// ReferralsByDay returns daily issued code counts since the given time.
func (r *AdminRepository) ReferralsByDay(ctx context.Context, since time.Time) ([]TimeSeriesPoint, error) {
	return r.countByDay(ctx, &models.Referral{}, since)
}

// RedemptionsByDay returns daily redemption counts since the given time.
func (r *AdminRepository) RedemptionsByDay(ctx context.Context, since time.Time) ([]TimeSeriesPoint, error) {
	return r.countByDay(ctx, &models.ReferralUsage{}, since)
}

func (r *AdminRepository) countByDay(ctx context.Context, model interface{}, since time.Time) ([]TimeSeriesPoint, error) {
	var points []TimeSeriesPoint
	err := r.db.WithContext(ctx).Model(model).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&points).Error
	return points, err
}
