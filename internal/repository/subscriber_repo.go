package repository

import (
	"context"

	"aesthetica/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriberRepository stores push registrations and WhatsApp opt-ins.
type SubscriberRepository struct {
	db *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

// UpsertPush registers a token, re-activating it if it was unsubscribed before.
func (r *SubscriberRepository) UpsertPush(ctx context.Context, s *models.PushSubscription) error {
	s.IsActive = true
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_agent", "is_active", "updated_at"}),
	}).Create(s).Error
}

// DeactivatePush switches off the given tokens and reports how many rows changed.
func (r *SubscriberRepository) DeactivatePush(ctx context.Context, tokens ...string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.PushSubscription{}).
		Where("token IN ? AND is_active = ?", tokens, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

func (r *SubscriberRepository) ListActivePush(ctx context.Context) ([]models.PushSubscription, error) {
	var list []models.PushSubscription
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *SubscriberRepository) UpsertChat(ctx context.Context, s *models.ChatSubscriber) error {
	s.IsActive = true
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "is_active", "updated_at"}),
	}).Create(s).Error
}

func (r *SubscriberRepository) DeactivateChat(ctx context.Context, phone string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.ChatSubscriber{}).
		Where("phone = ? AND is_active = ?", phone, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

func (r *SubscriberRepository) ListActiveChat(ctx context.Context) ([]models.ChatSubscriber, error) {
	var list []models.ChatSubscriber
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *SubscriberRepository) ListPush(ctx context.Context, page, limit int) ([]models.PushSubscription, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.PushSubscription{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.PushSubscription
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

func (r *SubscriberRepository) ListChat(ctx context.Context, search string, page, limit int) ([]models.ChatSubscriber, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ChatSubscriber{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR phone LIKE ?", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.ChatSubscriber
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}
