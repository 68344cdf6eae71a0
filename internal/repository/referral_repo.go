package repository

import (
	"context"
	"errors"
	"time"

	"aesthetica/internal/domain"
	"aesthetica/internal/models"

	"gorm.io/gorm"
)

// ErrNotRedeemable is returned by Redeem when the code does not exist, is used or has expired.
var ErrNotRedeemable = errors.New("referral not redeemable")

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// ReferralFilter narrows the admin referral table. Status is the derived status
// (active, used, expired) evaluated at Now.
type ReferralFilter struct {
	Search string
	Status string
	Now    time.Time
	Page   int
	Limit  int
}

func (r *ReferralRepository) Create(ctx context.Context, ref *models.Referral) error {
	return r.db.WithContext(ctx).Create(ref).Error
}

func (r *ReferralRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Referral{}).Where("referral_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *ReferralRepository) GetByID(ctx context.Context, id uint) (*models.Referral, error) {
	var ref models.Referral
	if err := r.db.WithContext(ctx).First(&ref, id).Error; err != nil {
		return nil, err
	}
	return &ref, nil
}

// GetByCode returns the referral with its usages, newest usage first.
func (r *ReferralRepository) GetByCode(ctx context.Context, code string) (*models.Referral, error) {
	var ref models.Referral
	err := r.db.WithContext(ctx).
		Preload("Usages", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC, id DESC") }).
		Where("referral_code = ?", code).
		First(&ref).Error
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// Redeem flips an available referral to used and records the usage in one transaction.
// The availability check and the flip are a single conditional update, so two concurrent
// redemptions of the same code cannot both succeed. build is called after the flip with the
// referral row; returning an error from it rolls the flip back.
func (r *ReferralRepository) Redeem(
	ctx context.Context,
	code string,
	now time.Time,
	build func(ref *models.Referral) (*models.ReferralUsage, error),
) (*models.Referral, *models.ReferralUsage, error) {
	var (
		ref   models.Referral
		usage *models.ReferralUsage
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("referral_code = ?", code).First(&ref).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotRedeemable
			}
			return err
		}

		res := tx.Model(&models.Referral{}).
			Where("id = ? AND status = ? AND expires_at >= ?", ref.ID, domain.ReferralStatusActive, now).
			Updates(map[string]interface{}{"status": domain.ReferralStatusUsed, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotRedeemable
		}
		ref.Status = domain.ReferralStatusUsed
		ref.UpdatedAt = now

		u, err := build(&ref)
		if err != nil {
			return err
		}
		u.ReferralID = ref.ID
		if u.CreatedAt.IsZero() {
			u.CreatedAt = now
		}
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		usage = u
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &ref, usage, nil
}

// SetStatus stores the given status and returns the updated row. Setting the
// current status again is a no-op that still returns the row.
func (r *ReferralRepository) SetStatus(ctx context.Context, id uint, status string, now time.Time) (*models.Referral, error) {
	var ref models.Referral
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ref, id).Error; err != nil {
			return err
		}
		if ref.Status == status {
			return nil
		}
		if err := tx.Model(&ref).Updates(map[string]interface{}{"status": status, "updated_at": now}).Error; err != nil {
			return err
		}
		ref.Status = status
		ref.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// Reactivate sets the referral back to active with a new expiry window.
func (r *ReferralRepository) Reactivate(ctx context.Context, id uint, expiresAt, now time.Time) (*models.Referral, error) {
	var ref models.Referral
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ref, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&ref).Updates(map[string]interface{}{
			"status":     domain.ReferralStatusActive,
			"expires_at": expiresAt,
			"updated_at": now,
		}).Error; err != nil {
			return err
		}
		ref.Status = domain.ReferralStatusActive
		ref.ExpiresAt = expiresAt
		ref.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// List returns referrals with search, derived status filter and pagination.
func (r *ReferralRepository) List(ctx context.Context, f ReferralFilter) ([]models.Referral, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Referral{})
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("referral_code LIKE ? OR referrer_name LIKE ? OR referrer_phone LIKE ?", like, like, like)
	}
	switch f.Status {
	case domain.ValidationExpired:
		q = q.Where("expires_at < ?", f.Now)
	case domain.ReferralStatusActive, domain.ReferralStatusUsed:
		q = q.Where("status = ? AND expires_at >= ?", f.Status, f.Now)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Referral
	err := q.Order("created_at DESC, id DESC").Limit(f.Limit).Offset((f.Page - 1) * f.Limit).Find(&list).Error
	return list, total, err
}

// Delete removes a referral together with its usages.
func (r *ReferralRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Referral{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("referral_id = ?", id).Delete(&models.ReferralUsage{}).Error
	})
}
