package database

import (
	"testing"

	"aesthetica/config"
	"aesthetica/internal/domain"
	"aesthetica/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func TestDetectDialect(t *testing.T) {
	cases := map[string]string{
		"sqlite:aesthetica.db":                  DialectSQLite,
		"file:test?mode=memory&cache=shared":    DialectSQLite,
		"FILE:upper.db":                         DialectSQLite,
		"user:pass@tcp(127.0.0.1:3306)/clinic": DialectMySQL,
	}
	for dsn, want := range cases {
		if got := DetectDialect(dsn); got != want {
			t.Errorf("DetectDialect(%q) = %q, want %q", dsn, got, want)
		}
	}
}

func TestNewDBEmptyDSN(t *testing.T) {
	if _, err := NewDB(&config.DatabaseConfig{DSN: "  "}); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestMigrateAndSeedAdmin(t *testing.T) {
	db, err := NewDB(&config.DatabaseConfig{DSN: "file:database_seed?mode=memory&cache=shared", MaxIdleConns: 1, MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{"referrals", "referral_usage", "referral_program", "appointments", "promotion_deliveries"} {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}

	admin := config.AdminConfig{Email: " Owner@Clinic.test ", Password: "s3cret-pass", Name: "Owner"}
	if err := SeedAdmin(db, admin); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// second call must not create a duplicate
	if err := SeedAdmin(db, admin); err != nil {
		t.Fatalf("seed again: %v", err)
	}

	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 admin, got %d", len(users))
	}
	if users[0].Email != "owner@clinic.test" || users[0].Role != domain.RoleAdmin {
		t.Fatalf("unexpected admin %+v", users[0])
	}
	if bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte("s3cret-pass")) != nil {
		t.Fatal("password hash does not match")
	}
}

func TestSeedAdminSkipsWithoutCredentials(t *testing.T) {
	db, err := NewDB(&config.DatabaseConfig{DSN: "file:database_noseed?mode=memory&cache=shared", MaxIdleConns: 1, MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := SeedAdmin(db, config.AdminConfig{}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no users, got %d", count)
	}
}
