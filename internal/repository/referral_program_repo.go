package repository

import (
	"context"
	"errors"

	"aesthetica/internal/models"

	"gorm.io/gorm"
)

type ReferralProgramRepository struct {
	db *gorm.DB
}

func NewReferralProgramRepository(db *gorm.DB) *ReferralProgramRepository {
	return &ReferralProgramRepository{db: db}
}

// Get returns the program row, or gorm.ErrRecordNotFound when staff never saved one.
func (r *ReferralProgramRepository) Get(ctx context.Context) (*models.ReferralProgram, error) {
	var p models.ReferralProgram
	if err := r.db.WithContext(ctx).Order("id ASC").First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Save creates the singleton row on first call and updates it in place afterwards.
func (r *ReferralProgramRepository) Save(ctx context.Context, p *models.ReferralProgram) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ReferralProgram
		err := tx.Order("id ASC").First(&existing).Error
		switch {
		case err == nil:
			p.ID = existing.ID
			p.CreatedAt = existing.CreatedAt
			return tx.Save(p).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			p.ID = 0
			return tx.Create(p).Error
		default:
			return err
		}
	})
}
