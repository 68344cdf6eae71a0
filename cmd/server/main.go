package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aesthetica/config"
	"aesthetica/internal/database"
	"aesthetica/internal/domain"
	"aesthetica/internal/logger"
	"aesthetica/internal/middleware"
	"aesthetica/internal/repository"
	"aesthetica/internal/router"
	"aesthetica/internal/service"
	"aesthetica/internal/ws"
	"aesthetica/pkg/cache"
	"aesthetica/pkg/cloudinary"
	"aesthetica/pkg/metrics"
	"aesthetica/pkg/whatsapp"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := logger.Setup(cfg.Log)

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := database.SeedAdmin(db, cfg.Admin); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := repository.NewSettingRepository(db).SeedDefaults(ctx, domain.DefaultSettings); err != nil {
		log.Fatalf("seed settings: %v", err)
	}

	ext := router.Externals{
		Metrics:          metrics.NewCollector("aesthetica"),
		Hub:              ws.NewHub(),
		Limiter:          middleware.NewInMemoryRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
		SensitiveLimiter: middleware.NewInMemoryRateLimiter(cfg.RateLimit.Sensitive, cfg.RateLimit.Window),
	}
	go ext.Limiter.Run(ctx)
	go ext.SensitiveLimiter.Run(ctx)

	// Interfaces stay nil unless the collaborator is configured.
	if cfg.Cloudinary.CloudName != "" {
		cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			log.Fatalf("cloudinary: %v", err)
		}
		ext.Cloud = cloud
	} else {
		log.Info("[cloudinary] gallery uploads disabled: set CLOUDINARY_CLOUD_NAME to enable")
	}

	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   "aesthetica:",
		})
		if err != nil {
			log.WithError(err).Warn("[redis] unavailable, settings are read from the database")
		} else {
			defer rc.Close()
			ext.Cache = rc
		}
	}

	if fcm := service.NewFCMService(cfg.Firebase.ServiceAccountPath); fcm != nil {
		ext.Push = fcm
		log.Info("[FCM] push notifications enabled")
	} else {
		log.Info("[FCM] push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}

	if tw := whatsapp.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.WhatsAppFrom); tw != nil {
		ext.Chat = tw
		log.Info("[whatsapp] Twilio sender enabled")
	} else {
		log.Info("[whatsapp] Twilio sender disabled, handoff links only")
	}

	engine := router.Setup(cfg, db, ext)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Infof("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
		os.Exit(1)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped")
}
