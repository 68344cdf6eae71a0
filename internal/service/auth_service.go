package service

import (
	"context"
	"errors"
	"fmt"

	"aesthetica/config"
	"aesthetica/internal/auth"
	"aesthetica/internal/clock"
	"aesthetica/internal/models"
	"aesthetica/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService signs staff in. The public site has no accounts.
type AuthService struct {
	cfg      *config.JWTConfig
	userRepo *repository.UserRepository
	clock    clock.Clock
}

func NewAuthService(cfg *config.JWTConfig, userRepo *repository.UserRepository, clk clock.Clock) *AuthService {
	if clk == nil {
		clk = clock.System()
	}
	return &AuthService{cfg: cfg, userRepo: userRepo, clock: clk}
}

// Tokens is the pair handed to the dashboard after login or refresh.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *Tokens, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCreds
		}
		return nil, nil, storeErr("load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		logrus.WithField("user_id", u.ID).Warn("[auth] wrong password")
		return nil, nil, ErrInvalidCreds
	}
	if !u.IsAdmin() {
		return nil, nil, ErrInvalidCreds
	}
	tokens, err := s.issue(u)
	if err != nil {
		return nil, nil, err
	}
	now := s.clock.Now()
	if err := s.userRepo.TouchLastLogin(ctx, u.ID, now); err != nil {
		logrus.WithError(err).WithField("user_id", u.ID).Warn("[auth] failed to record last login")
	} else {
		u.LastLoginAt = &now
	}
	return u, tokens, nil
}

// Refresh exchanges a refresh token for a new pair. Deleted accounts are rejected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	userID, err := auth.ParseRefreshToken(s.cfg, refreshToken)
	if err != nil {
		return nil, err
	}
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, storeErr("load user", err)
	}
	return s.issue(u)
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr("load user", err)
	}
	return u, nil
}

// ChangePassword updates the password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if len(next) < 8 {
		return &ValidationError{Fields: []string{"new_password: at least 8 characters"}}
	}
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return storeErr("load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCreds
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		return storeErr("update password", err)
	}
	logrus.WithField("user_id", u.ID).Info("[auth] password changed")
	return nil
}

func (s *AuthService) issue(u *models.User) (*Tokens, error) {
	access, err := auth.GenerateAccessToken(s.cfg, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := auth.GenerateRefreshToken(s.cfg, u.ID)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh}, nil
}
