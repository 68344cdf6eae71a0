package database

import (
	"fmt"
	"strings"
	"time"

	"aesthetica/config"
	"aesthetica/internal/domain"
	"aesthetica/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DialectMySQL  = "mysql"
	DialectSQLite = "sqlite"
)

// NewDB opens the store named by cfg.DSN. "sqlite:" and "file:" DSNs use the
// pure-Go SQLite driver, anything else is handed to MySQL.
func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, fmt.Errorf("database: empty dsn")
	}

	gcfg := &gorm.Config{
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Error, // Only log errors, not every SQL query
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	var dialector gorm.Dialector
	switch DetectDialect(dsn) {
	case DialectSQLite:
		dialector = sqlite.Open(strings.TrimPrefix(dsn, "sqlite:"))
	default:
		dialector = mysql.Open(dsn)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// DetectDialect infers the driver from a DSN.
func DetectDialect(dsn string) string {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case strings.HasPrefix(lower, "sqlite:"), strings.HasPrefix(lower, "file:"), lower == ":memory:":
		return DialectSQLite
	default:
		return DialectMySQL
	}
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.SystemSetting{},
		&models.Service{},
		&models.GalleryImage{},
		&models.Testimonial{},
		&models.FAQ{},
		&models.Video{},
		&models.Appointment{},
		&models.ReferralProgram{},
		&models.Referral{},
		&models.ReferralUsage{},
		&models.Promotion{},
		&models.PushSubscription{},
		&models.ChatSubscriber{},
		&models.PromotionDelivery{},
		&models.Notification{},
		&models.AuditLog{},
	)
}

// SeedAdmin creates the first staff account from config when no admin exists yet.
// It is a no-op when email or password are not configured.
func SeedAdmin(db *gorm.DB, cfg config.AdminConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(cfg.Email)),
		Name:         cfg.Name,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(u).Error; err != nil {
		return err
	}
	logrus.WithField("email", u.Email).Info("[database] seeded admin account")
	return nil
}
