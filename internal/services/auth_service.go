package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eonjenawa/eonjenawa-cli/internal/models"
	"github.com/eonjenawa/eonjenawa-cli/internal/repositories"
	"github.com/eonjenawa/eonjenawa-cli/internal/utils"
)

type AuthService struct {
	users  repositories.UserRepository
	secret string
	log    *zap.Logger
}

func NewAuthService(users repositories.UserRepository, secret string, log *zap.Logger) *AuthService {
	return &AuthService{users: users, secret: secret, log: log}
}

// Login fails with models.ErrNotFound for unknown nicknames so clients can fall
// back to registration, and with models.ErrUnauthorized for a wrong password.
func (s *AuthService) Login(ctx context.Context, nickname, password string) (models.TokenResponse, error) {
	u, err := s.users.FindByNickname(ctx, nickname)
	if err != nil {
		return models.TokenResponse{}, err
	}
	if !utils.CheckPasswordHash(password, u.PasswordHash) {
		return models.TokenResponse{}, fmt.Errorf("invalid password: %w", models.ErrUnauthorized)
	}

	now := time.Now()
	u.LastLogin = &now
	if err := s.users.Save(ctx, u); err != nil {
		s.log.Warn("failed to record last login", zap.Int64("user_id", u.ID), zap.Error(err))
	}
	return s.issue(u)
}

func (s *AuthService) Register(ctx context.Context, nickname, password string) (models.TokenResponse, error) {
	if err := utils.ValidateNickname(nickname); err != nil {
		return models.TokenResponse{}, fmt.Errorf("%s: %w", err.Error(), models.ErrBadRequest)
	}
	if err := utils.ValidatePassword(password); err != nil {
		return models.TokenResponse{}, fmt.Errorf("%s: %w", err.Error(), models.ErrBadRequest)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return models.TokenResponse{}, err
	}
	now := time.Now()
	u := models.User{Nickname: nickname, PasswordHash: hashed, CreatedAt: now, LastLogin: &now}
	if err := s.users.Create(ctx, &u); err != nil {
		return models.TokenResponse{}, err
	}
	s.log.Info("user registered", zap.Int64("user_id", u.ID))
	return s.issue(&u)
}

// Refresh exchanges a refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (models.TokenResponse, error) {
	claims, err := utils.ValidateRefreshToken(s.secret, refreshToken)
	if err != nil {
		return models.TokenResponse{}, fmt.Errorf("refresh: %w", models.ErrUnauthorized)
	}
	u, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return models.TokenResponse{}, fmt.Errorf("refresh: %w", models.ErrUnauthorized)
	}
	if err != nil {
		return models.TokenResponse{}, err
	}
	return s.issue(u)
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) issue(u *models.User) (models.TokenResponse, error) {
	access, err := utils.GenerateAccessToken(s.secret, u.ID, u.Nickname)
	if err != nil {
		return models.TokenResponse{}, err
	}
	refresh, err := utils.GenerateRefreshToken(s.secret, u.ID, u.Nickname)
	if err != nil {
		return models.TokenResponse{}, err
	}
	return models.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       u.ID,
		Nickname:     u.Nickname,
	}, nil
}
