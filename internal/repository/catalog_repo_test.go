package repository

import (
	"errors"
	"testing"

	"aesthetica/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestCatalogListOrderAndActive(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository[models.Service](db)

	items := []models.Service{
		{Name: "Botox", Price: decimal.NewFromInt(900), IsActive: true, SortOrder: 2},
		{Name: "Peeling", Price: decimal.RequireFromString("350.50"), IsActive: true, SortOrder: 1},
		{Name: "Retired", Price: decimal.NewFromInt(1), IsActive: false, SortOrder: 0},
	}
	for i := range items {
		if err := repo.Create(t.Context(), &items[i]); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	active, err := repo.List(t.Context(), true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 2 || active[0].Name != "Peeling" || active[1].Name != "Botox" {
		t.Fatalf("unexpected active list: %+v", active)
	}
	if !active[0].Price.Equal(decimal.RequireFromString("350.50")) {
		t.Fatalf("price round trip: %s", active[0].Price)
	}

	all, _ := repo.List(t.Context(), false)
	if len(all) != 3 {
		t.Fatalf("expected 3, got %d", len(all))
	}

	if err := repo.Delete(t.Context(), items[2].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(t.Context(), items[2].ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := repo.GetByID(t.Context(), items[2].ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogUpdateWritesZeroValues(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository[models.FAQ](db)
	faq := &models.FAQ{Question: "Does it hurt?", Answer: "Barely", IsActive: true, SortOrder: 3}
	if err := repo.Create(t.Context(), faq); err != nil {
		t.Fatalf("create: %v", err)
	}

	edited := *faq
	edited.IsActive = false
	edited.SortOrder = 0
	edited.Answer = "Not really"
	if err := repo.Update(t.Context(), faq.ID, &edited); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.GetByID(t.Context(), faq.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.IsActive || got.SortOrder != 0 || got.Answer != "Not really" {
		t.Fatalf("zero values not written: %+v", got)
	}
	if !got.CreatedAt.Equal(faq.CreatedAt) {
		t.Fatalf("created_at changed: %v -> %v", faq.CreatedAt, got.CreatedAt)
	}
	if err := repo.Update(t.Context(), 999, &edited); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
