package repository

import (
	"context"
	"time"

	"aesthetica/internal/models"

	"gorm.io/gorm"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

type AppointmentFilter struct {
	Search string
	Status string
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

func (r *AppointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var a models.Appointment
	if err := r.db.WithContext(ctx).Preload("Service").First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns appointments ordered by preferred date, soonest first.
func (r *AppointmentRepository) List(ctx context.Context, f AppointmentFilter) ([]models.Appointment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Appointment{})
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR phone LIKE ?", like, like)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("preferred_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("preferred_date < ?", *f.To)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Appointment
	err := q.Preload("Service").Order("preferred_date ASC, id ASC").Limit(f.Limit).Offset((f.Page - 1) * f.Limit).Find(&list).Error
	return list, total, err
}

// Transition moves an appointment from its current status to next only if the
// stored status still equals from. It reports whether the row changed.
func (r *AppointmentRepository) Transition(ctx context.Context, id uint, from, next string, updates map[string]interface{}) (bool, error) {
	cols := map[string]interface{}{"status": next}
	for k, v := range updates {
		cols[k] = v
	}
	res := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(cols)
	return res.RowsAffected > 0, res.Error
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Appointment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
