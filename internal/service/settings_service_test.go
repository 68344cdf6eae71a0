package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"aesthetica/internal/repository"
	"aesthetica/pkg/cache"
)

// memCache mimics the Redis cache: JSON round trip and ErrMiss on absent keys.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	b, ok := m.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(b, dest)
}

func (m *memCache) Set(_ context.Context, key string, v interface{}, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = b
	m.mu.Unlock()
	return nil
}

func (m *memCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.data, k)
	}
	m.mu.Unlock()
	return nil
}

func TestSettingsCacheAndInvalidate(t *testing.T) {
	db := newTestDB(t)
	mc := newMemCache()
	svc := NewSettingsService(repository.NewSettingRepository(db), mc, time.Minute, nil)
	ctx := context.Background()

	if err := svc.SeedDefaults(ctx, map[string]string{"clinic_name": "Aesthetica"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	all, err := svc.GetAll(ctx)
	if err != nil || all["clinic_name"] != "Aesthetica" {
		t.Fatalf("GetAll = %v, %v", all, err)
	}
	if _, ok := mc.data[settingsCacheKey]; !ok {
		t.Fatal("settings were not cached")
	}

	// a write straight to the table is hidden by the cache
	if err := repository.NewSettingRepository(db).Set(ctx, "clinic_name", "Direct"); err != nil {
		t.Fatalf("direct set: %v", err)
	}
	if got := svc.Get(ctx, "clinic_name", ""); got != "Aesthetica" {
		t.Fatalf("expected cached value, got %q", got)
	}

	updated, err := svc.Update(ctx, map[string]string{" clinic_phone ": " 5511999990000 "})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated["clinic_name"] != "Direct" || updated["clinic_phone"] != "5511999990000" {
		t.Fatalf("after update = %v", updated)
	}
	if got := svc.Get(ctx, "missing", "fallback"); got != "fallback" {
		t.Fatalf("default = %q", got)
	}
}

func TestSettingsWithoutCache(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(repository.NewSettingRepository(db), nil, 0, nil)
	if _, err := svc.Update(context.Background(), map[string]string{"": "x"}); err == nil {
		t.Fatal("expected validation error for empty key")
	}
	var ve *ValidationError
	if _, err := svc.Update(context.Background(), map[string]string{}); !errors.As(err, &ve) {
		t.Fatalf("expected validation error for empty update, got %v", err)
	}
	if _, err := svc.Update(context.Background(), map[string]string{"hero_title": "Hi"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := svc.Get(context.Background(), "hero_title", ""); got != "Hi" {
		t.Fatalf("hero_title = %q", got)
	}
}
