package service

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"aesthetica/config"
	"aesthetica/internal/clock"
	"aesthetica/internal/database"
	"aesthetica/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), &gorm.Config{
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

func testReferralConfig() config.ReferralConfig {
	return config.ReferralConfig{
		FallbackExpiryDays:        30,
		FallbackReferrerPercent:   10,
		FallbackReferredPercent:   10,
		CodeLength:                8,
		MaxCodeGenerationAttempts: 10,
	}
}

// recordingPublisher captures realtime events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(eventType string, _ interface{}) {
	p.mu.Lock()
	p.events = append(p.events, eventType)
	p.mu.Unlock()
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type referralFixture struct {
	db     *gorm.DB
	clock  *clock.Manual
	events *recordingPublisher
	svc    *ReferralService
}

func newReferralFixture(t *testing.T) *referralFixture {
	t.Helper()
	db := newTestDB(t)
	clk := clock.NewManual(t0)
	events := &recordingPublisher{}
	svc := NewReferralService(
		repository.NewReferralRepository(db),
		repository.NewReferralUsageRepository(db),
		repository.NewReferralProgramRepository(db),
		testReferralConfig(),
		clk,
		events,
		nil,
	)
	return &referralFixture{db: db, clock: clk, events: events, svc: svc}
}
