package repository

import (
	"context"
	"time"

	"aesthetica/internal/domain"
	"aesthetica/internal/models"

	"gorm.io/gorm"
)

type PromotionRepository struct {
	db *gorm.DB
}

func NewPromotionRepository(db *gorm.DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

func (r *PromotionRepository) Create(ctx context.Context, p *models.Promotion) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PromotionRepository) GetByID(ctx context.Context, id uint) (*models.Promotion, error) {
	var p models.Promotion
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PromotionRepository) Save(ctx context.Context, p *models.Promotion) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PromotionRepository) List(ctx context.Context, status string, page, limit int) ([]models.Promotion, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Promotion{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Promotion
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

func (r *PromotionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Promotion{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("promotion_id = ?", id).Delete(&models.PromotionDelivery{}).Error
	})
}

// PromotionCounters are the per-channel totals of one send.
type PromotionCounters struct {
	PushSent   int
	PushFailed int
	ChatSent   int
	ChatFailed int
}

// MarkSent stores the delivery log and the send summary in one transaction.
func (r *PromotionRepository) MarkSent(ctx context.Context, id uint, at time.Time, c PromotionCounters, deliveries []models.PromotionDelivery) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(deliveries) > 0 {
			if err := tx.CreateInBatches(deliveries, 200).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Promotion{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status":      domain.PromotionStatusSent,
			"sent_at":     at,
			"push_sent":   gorm.Expr("push_sent + ?", c.PushSent),
			"push_failed": gorm.Expr("push_failed + ?", c.PushFailed),
			"chat_sent":   gorm.Expr("chat_sent + ?", c.ChatSent),
			"chat_failed": gorm.Expr("chat_failed + ?", c.ChatFailed),
		}).Error
	})
}

func (r *PromotionRepository) ListDeliveries(ctx context.Context, promotionID uint, channel string, page, limit int) ([]models.PromotionDelivery, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.PromotionDelivery{}).Where("promotion_id = ?", promotionID)
	if channel != "" {
		q = q.Where("channel = ?", channel)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.PromotionDelivery
	err := q.Order("id ASC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}
