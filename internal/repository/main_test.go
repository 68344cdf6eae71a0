package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"aesthetica/internal/database"
	"aesthetica/internal/domain"
	"aesthetica/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedReferral(t *testing.T, db *gorm.DB, code string, created time.Time, days int) *models.Referral {
	t.Helper()
	ref := &models.Referral{
		ReferralCode:  code,
		ReferrerName:  "Ana",
		ReferrerPhone: "5511999990000",
		Status:        domain.ReferralStatusActive,
		CreatedAt:     created,
		ExpiresAt:     created.AddDate(0, 0, days),
	}
	if err := NewReferralRepository(db).Create(t.Context(), ref); err != nil {
		t.Fatalf("create referral: %v", err)
	}
	return ref
}
