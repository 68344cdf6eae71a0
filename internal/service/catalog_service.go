package service

import (
	"context"

	"aesthetica/internal/repository"
)

// CatalogService is the staff CRUD for one kind of site content.
type CatalogService[T repository.CatalogItem] struct {
	repo *repository.CatalogRepository[T]
	name string
}

func NewCatalogService[T repository.CatalogItem](repo *repository.CatalogRepository[T], name string) *CatalogService[T] {
	return &CatalogService[T]{repo: repo, name: name}
}

func (s *CatalogService[T]) List(ctx context.Context, activeOnly bool) ([]T, error) {
	list, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, storeErr("list "+s.name, err)
	}
	return list, nil
}

func (s *CatalogService[T]) Get(ctx context.Context, id uint) (*T, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get "+s.name, err)
	}
	return item, nil
}

func (s *CatalogService[T]) Create(ctx context.Context, item *T) error {
	return storeErr("create "+s.name, s.repo.Create(ctx, item))
}

// Update loads row id, lets apply edit it and writes it back.
func (s *CatalogService[T]) Update(ctx context.Context, id uint, apply func(item *T) error) (*T, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(item); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, item); err != nil {
		return nil, storeErr("update "+s.name, err)
	}
	return s.Get(ctx, id)
}

func (s *CatalogService[T]) Delete(ctx context.Context, id uint) error {
	return storeErr("delete "+s.name, s.repo.Delete(ctx, id))
}
