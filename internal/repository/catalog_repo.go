package repository

import (
	"context"

	"aesthetica/internal/models"

	"gorm.io/gorm"
)

// CatalogItem is implemented by the site content models that staff curate and
// the public site lists in sort order.
type CatalogItem interface {
	models.Service | models.GalleryImage | models.Testimonial | models.FAQ | models.Video
}

// CatalogRepository is the shared CRUD for site content tables.
type CatalogRepository[T CatalogItem] struct {
	db *gorm.DB
}

func NewCatalogRepository[T CatalogItem](db *gorm.DB) *CatalogRepository[T] {
	return &CatalogRepository[T]{db: db}
}

// List returns rows in display order. activeOnly hides rows staff switched off
// (or have not yet approved, for testimonials).
func (r *CatalogRepository[T]) List(ctx context.Context, activeOnly bool) ([]T, error) {
	q := r.db.WithContext(ctx).Model(new(T))
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var list []T
	err := q.Order("sort_order ASC, id ASC").Find(&list).Error
	return list, err
}

func (r *CatalogRepository[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	var item T
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CatalogRepository[T]) Create(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update writes every editable column of row id from item, zero values included.
func (r *CatalogRepository[T]) Update(ctx context.Context, id uint, item *T) error {
	res := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(item)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// MySQL reports changed rows, not matched rows
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *CatalogRepository[T]) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CatalogRepository[T]) Count(ctx context.Context, active *bool) (int64, error) {
	q := r.db.WithContext(ctx).Model(new(T))
	if active != nil {
		q = q.Where("is_active = ?", *active)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}
