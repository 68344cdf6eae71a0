package router

import (
	"net/http"

	"aesthetica/config"
	"aesthetica/internal/clock"
	"aesthetica/internal/handler"
	"aesthetica/internal/middleware"
	"aesthetica/internal/repository"
	"aesthetica/internal/service"
	"aesthetica/internal/ws"
	"aesthetica/pkg/cloudinary"
	"aesthetica/pkg/metrics"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Externals are the optional collaborators built in main. Leave a field nil
// (an untyped nil for interfaces) to switch the feature off.
type Externals struct {
	Cloud   cloudinary.Client
	Cache   service.Cache
	Push    service.PushSender
	Chat    service.ChatSender
	Metrics *metrics.Collector
	Hub     *ws.Hub
	Clock   clock.Clock

	Limiter          *middleware.InMemoryRateLimiter
	SensitiveLimiter *middleware.InMemoryRateLimiter
}

func Setup(cfg *config.Config, db *gorm.DB, ext Externals) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if ext.Hub == nil {
		ext.Hub = ws.NewHub()
	}
	if ext.Clock == nil {
		ext.Clock = clock.System()
	}
	if ext.Limiter == nil {
		ext.Limiter = middleware.NewInMemoryRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}
	if ext.SensitiveLimiter == nil {
		ext.SensitiveLimiter = middleware.NewInMemoryRateLimiter(cfg.RateLimit.Sensitive, cfg.RateLimit.Window)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics(ext.Metrics))

	// Repositories
	referralRepo := repository.NewReferralRepository(db)
	usageRepo := repository.NewReferralUsageRepository(db)
	programRepo := repository.NewReferralProgramRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	promotionRepo := repository.NewPromotionRepository(db)
	subscriberRepo := repository.NewSubscriberRepository(db)
	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Services
	notifSvc := service.NewNotificationService(notificationRepo, ext.Hub, ext.Clock)
	settingsSvc := service.NewSettingsService(settingRepo, ext.Cache, cfg.Redis.SettingsTTL, ext.Metrics)
	contentSvc := service.NewContentService(db, settingsSvc, ext.Cloud, cfg.Cloudinary.Folder)
	referralSvc := service.NewReferralService(referralRepo, usageRepo, programRepo, cfg.Referral, ext.Clock, notifSvc, ext.Metrics)
	appointmentSvc := service.NewAppointmentService(appointmentRepo, contentSvc.Services, settingsSvc, ext.Chat, ext.Clock, notifSvc, ext.Metrics)
	promotionSvc := service.NewPromotionService(promotionRepo, subscriberRepo, ext.Push, ext.Chat, ext.Clock, notifSvc, ext.Metrics)
	authSvc := service.NewAuthService(&cfg.JWT, userRepo, ext.Clock)
	dashboardSvc := service.NewDashboardService(adminRepo, ext.Clock)
	auditSvc := service.NewAuditService(auditRepo)

	// Handlers
	siteHandler := handler.NewSiteHandler(contentSvc, settingsSvc)
	referralHandler := handler.NewReferralHandler(referralSvc)
	appointmentHandler := handler.NewAppointmentHandler(appointmentSvc)
	promotionHandler := handler.NewPromotionHandler(promotionSvc)
	adminHandler := handler.NewAdminHandler(authSvc, dashboardSvc)
	notificationHandler := handler.NewNotificationHandler(notifSvc, auditSvc)
	servicesHandler := handler.NewCatalogHandler(contentSvc.Services)
	galleryHandler := handler.NewCatalogHandler(contentSvc.Gallery)
	testimonialsHandler := handler.NewCatalogHandler(contentSvc.Testimonials)
	faqsHandler := handler.NewCatalogHandler(contentSvc.FAQs)
	videosHandler := handler.NewCatalogHandler(contentSvc.Videos)

	strict := middleware.RateLimit(ext.SensitiveLimiter)

	r.GET("/healthz", health(db))
	if ext.Metrics != nil {
		r.GET("/metrics", gin.WrapH(ext.Metrics.Handler()))
	}
	r.GET("/ws/admin", ws.ServeAdmin(&cfg.JWT, ext.Hub))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(ext.Limiter))
	{
		api.GET("/site", siteHandler.Site)
		api.GET("/settings", siteHandler.Settings)
		api.GET("/services", servicesHandler.PublicList)
		api.GET("/gallery", galleryHandler.PublicList)
		api.GET("/testimonials", testimonialsHandler.PublicList)
		api.POST("/testimonials", strict, siteHandler.SubmitTestimonial)
		api.GET("/faqs", faqsHandler.PublicList)
		api.GET("/videos", videosHandler.PublicList)

		api.POST("/appointments", strict, appointmentHandler.Book)

		api.GET("/referral-program", referralHandler.GetProgram)
		api.POST("/referrals", strict, referralHandler.Create)
		api.POST("/referrals/redeem", strict, referralHandler.Redeem)

		api.POST("/push-subscriptions", promotionHandler.SubscribePush)
		api.DELETE("/push-subscriptions", promotionHandler.UnsubscribePush)
		api.POST("/chat-subscribers", strict, promotionHandler.SubscribeChat)
		api.DELETE("/chat-subscribers", strict, promotionHandler.UnsubscribeChat)

		api.POST("/admin/login", strict, adminHandler.Login)
		api.POST("/admin/refresh", strict, adminHandler.Refresh)

		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(&cfg.JWT), middleware.AdminRequired(), middleware.Audit(auditRepo))
		{
			admin.GET("/me", adminHandler.Me)
			admin.PUT("/me/password", adminHandler.ChangePassword)
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/analytics", adminHandler.Analytics)
			admin.GET("/notifications", notificationHandler.List)
			admin.POST("/notifications/read-all", notificationHandler.MarkAllRead)
			admin.POST("/notifications/:id/read", notificationHandler.MarkRead)
			admin.GET("/audit-logs", notificationHandler.AuditLogs)

			admin.GET("/settings", siteHandler.Settings)
			admin.PUT("/settings", siteHandler.UpdateSettings)

			catalog(admin, "/services", servicesHandler)
			catalog(admin, "/testimonials", testimonialsHandler)
			catalog(admin, "/faqs", faqsHandler)
			catalog(admin, "/videos", videosHandler)
			admin.GET("/gallery", galleryHandler.AdminList)
			admin.GET("/gallery/:id", galleryHandler.Get)
			admin.PATCH("/gallery/:id", galleryHandler.Update)
			admin.POST("/gallery", siteHandler.UploadGalleryImage)
			admin.DELETE("/gallery/:id", siteHandler.DeleteGalleryImage)

			admin.GET("/appointments", appointmentHandler.List)
			admin.GET("/appointments/:id", appointmentHandler.Get)
			admin.POST("/appointments/:id/confirm", appointmentHandler.Confirm)
			admin.POST("/appointments/:id/cancel", appointmentHandler.Cancel)
			admin.POST("/appointments/:id/complete", appointmentHandler.Complete)
			admin.DELETE("/appointments/:id", appointmentHandler.Delete)

			admin.GET("/referral-program", referralHandler.GetProgram)
			admin.PUT("/referral-program", referralHandler.SaveProgram)
			admin.GET("/referral-program/quote", referralHandler.Quote)
			admin.GET("/referrals", referralHandler.List)
			admin.GET("/referrals/validate", referralHandler.Validate)
			admin.POST("/referrals/:id/mark-used", referralHandler.MarkUsed)
			admin.POST("/referrals/:id/reactivate", referralHandler.Reactivate)
			admin.DELETE("/referrals/:id", referralHandler.Delete)
			admin.GET("/referral-usages", referralHandler.ListUsages)
			admin.PATCH("/referral-usages/:id/status", referralHandler.UpdateUsageStatus)
			admin.POST("/referral-usages/:id/apply-referrer-discount", referralHandler.ApplyReferrerDiscount)

			admin.GET("/promotions", promotionHandler.List)
			admin.POST("/promotions", promotionHandler.Create)
			admin.GET("/promotions/:id", promotionHandler.Get)
			admin.PUT("/promotions/:id", promotionHandler.Update)
			admin.DELETE("/promotions/:id", promotionHandler.Delete)
			admin.POST("/promotions/:id/send", promotionHandler.Send)
			admin.GET("/promotions/:id/deliveries", promotionHandler.Deliveries)
			admin.GET("/subscribers", promotionHandler.ListSubscribers)
		}
	}

	return r
}

func catalog[T repository.CatalogItem](g *gin.RouterGroup, path string, h *handler.CatalogHandler[T]) {
	g.GET(path, h.AdminList)
	g.POST(path, h.Create)
	g.GET(path+"/:id", h.Get)
	g.PATCH(path+"/:id", h.Update)
	g.DELETE(path+"/:id", h.Delete)
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
