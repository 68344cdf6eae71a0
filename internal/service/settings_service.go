package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"aesthetica/internal/repository"
	"aesthetica/pkg/cache"
	"aesthetica/pkg/metrics"

	"github.com/sirupsen/logrus"
)

const settingsCacheKey = "settings:all"

// Cache is the subset of the Redis cache the services use.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// SettingsService serves the clinic key/value content. Reads go through the
// cache when one is configured; writes invalidate it.
type SettingsService struct {
	repo    *repository.SettingRepository
	cache   Cache
	ttl     time.Duration
	metrics *metrics.Collector
}

func NewSettingsService(repo *repository.SettingRepository, c Cache, ttl time.Duration, m *metrics.Collector) *SettingsService {
	return &SettingsService{repo: repo, cache: c, ttl: ttl, metrics: m}
}

func (s *SettingsService) GetAll(ctx context.Context) (map[string]string, error) {
	if s.cache != nil {
		var cached map[string]string
		err := s.cache.Get(ctx, settingsCacheKey, &cached)
		switch {
		case err == nil:
			s.metrics.SettingsCache("hit")
			return cached, nil
		case errors.Is(err, cache.ErrMiss):
			s.metrics.SettingsCache("miss")
		default:
			s.metrics.SettingsCache("error")
			logrus.WithError(err).Warn("[settings] cache read failed")
		}
	}

	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, storeErr("load settings", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, settingsCacheKey, out, s.ttl); err != nil {
			logrus.WithError(err).Warn("[settings] cache write failed")
		}
	}
	return out, nil
}

// Get returns one setting, or def when it is unset or empty.
func (s *SettingsService) Get(ctx context.Context, key, def string) string {
	all, err := s.GetAll(ctx)
	if err != nil {
		return def
	}
	if v := all[key]; v != "" {
		return v
	}
	return def
}

func (s *SettingsService) Update(ctx context.Context, values map[string]string) (map[string]string, error) {
	var fe fieldErrors
	clean := make(map[string]string, len(values))
	for k, v := range values {
		key := strings.TrimSpace(k)
		if key == "" || len(key) > 100 {
			fe.add("key", "must be 1-100 characters")
			continue
		}
		clean[key] = strings.TrimSpace(v)
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	if len(clean) == 0 {
		return nil, &ValidationError{Fields: []string{"settings: at least one key required"}}
	}
	if err := s.repo.SetMany(ctx, clean); err != nil {
		return nil, storeErr("save settings", err)
	}
	s.invalidate(ctx)
	logrus.WithField("keys", len(clean)).Info("[settings] updated")
	return s.GetAll(ctx)
}

func (s *SettingsService) SeedDefaults(ctx context.Context, defaults map[string]string) error {
	if err := s.repo.SeedDefaults(ctx, defaults); err != nil {
		return storeErr("seed settings", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *SettingsService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
		logrus.WithError(err).Warn("[settings] cache invalidation failed")
	}
}
