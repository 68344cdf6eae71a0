package repository

import (
	"context"
	"time"

	"aesthetica/internal/domain"
	"aesthetica/internal/models"

	"gorm.io/gorm"
)

type ReferralUsageRepository struct {
	db *gorm.DB
}

func NewReferralUsageRepository(db *gorm.DB) *ReferralUsageRepository {
	return &ReferralUsageRepository{db: db}
}

type UsageFilter struct {
	Search     string
	Status     string
	ReferralID uint
	Page       int
	Limit      int
}

func (r *ReferralUsageRepository) GetByID(ctx context.Context, id uint) (*models.ReferralUsage, error) {
	var u models.ReferralUsage
	if err := r.db.WithContext(ctx).Preload("Referral").First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns usages with their referral, newest first.
func (r *ReferralUsageRepository) List(ctx context.Context, f UsageFilter) ([]models.ReferralUsage, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ReferralUsage{})
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("referred_name LIKE ? OR referred_phone LIKE ?", like, like)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ReferralID != 0 {
		q = q.Where("referral_id = ?", f.ReferralID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.ReferralUsage
	err := q.Preload("Referral").Order("created_at DESC, id DESC").Limit(f.Limit).Offset((f.Page - 1) * f.Limit).Find(&list).Error
	return list, total, err
}

// UpdateStatus moves a usage from one of the allowed current statuses to next.
// It returns gorm.ErrRecordNotFound when the row is missing and false when the
// current status is not in from.
func (r *ReferralUsageRepository) UpdateStatus(ctx context.Context, id uint, from []string, next string, now time.Time) (*models.ReferralUsage, bool, error) {
	var (
		u       models.ReferralUsage
		applied bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, id).Error; err != nil {
			return err
		}
		res := tx.Model(&models.ReferralUsage{}).
			Where("id = ? AND status IN ?", id, from).
			Updates(map[string]interface{}{"status": next, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		u.Status = next
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &u, applied, nil
}

// MarkReferrerDiscountApplied sets the reward flag once, and only on a completed
// usage. A row that already has the flag keeps its original timestamp.
func (r *ReferralUsageRepository) MarkReferrerDiscountApplied(ctx context.Context, id uint, at time.Time) (*models.ReferralUsage, error) {
	var u models.ReferralUsage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ReferralUsage{}).
			Where("id = ? AND status = ? AND referrer_discount_applied = ?", id, domain.UsageStatusCompleted, false).
			Updates(map[string]interface{}{
				"referrer_discount_applied": true,
				"referrer_discount_used_at": at,
				"updated_at":                at,
			})
		if res.Error != nil {
			return res.Error
		}
		return tx.Preload("Referral").First(&u, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}
