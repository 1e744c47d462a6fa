package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/appdotbuilder/pc-part-shop/internal/db"
	"github.com/appdotbuilder/pc-part-shop/internal/hash"
	"github.com/appdotbuilder/pc-part-shop/internal/logging"
	"github.com/appdotbuilder/pc-part-shop/internal/models"
	"github.com/appdotbuilder/pc-part-shop/internal/mykafka"
	"github.com/appdotbuilder/pc-part-shop/internal/repo"
	"github.com/appdotbuilder/pc-part-shop/internal/tokens"
	"github.com/appdotbuilder/pc-part-shop/internal/transport"
)

const MsgEmailTaken = "The email has already been taken."

type AuthService struct {
	Repo          *repo.GormRepo
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Events        Publisher
}

type userEvent struct {
	Type   string    `json:"type"`
	UserID uint      `json:"user_id"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	_, err := s.Repo.FindUserByEmail(ctx, email)
	if err == nil {
		return nil, conflictError("email", MsgEmailTaken)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	pw, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: pw,
		Role:         models.RoleCustomer,
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, conflictError("email", MsgEmailTaken)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, strconv.FormatUint(uint64(u.ID), 10), userEvent{
		Type: "user_registered", UserID: u.ID, Email: u.Email, At: time.Now().UTC(),
	})
	return u, nil
}

// Login checks the credentials and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*tokens.Pair, *models.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, nil, err
	}

	u, err := s.Repo.FindUserByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find user: %w", err)
	}
	if !hash.CheckPassword(u.PasswordHash, req.Password) {
		return nil, nil, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	}

	pair, rt, err := s.issue(u)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Repo.SaveRefreshToken(ctx, rt); err != nil {
		return nil, nil, fmt.Errorf("save refresh token: %w", err)
	}
	return pair, u, nil
}

func (s *AuthService) issue(u *models.User) (*tokens.Pair, *models.RefreshToken, error) {
	now := time.Now()
	accessExp := now.Add(s.AccessTTL)
	refreshExp := now.Add(s.RefreshTTL)

	access, err := tokens.SignAccess(s.AccessSecret, u.ID, u.Role, accessExp)
	if err != nil {
		return nil, nil, fmt.Errorf("sign access: %w", err)
	}
	refresh, jti, err := tokens.SignRefresh(s.RefreshSecret, u.ID, refreshExp)
	if err != nil {
		return nil, nil, fmt.Errorf("sign refresh: %w", err)
	}

	pair := &tokens.Pair{AccessToken: access, RefreshToken: refresh, AccessExp: accessExp, RefreshExp: refreshExp}
	rt := &models.RefreshToken{
		JTI:       jti,
		TokenHash: hash.Sha256Hex(refresh),
		UserID:    u.ID,
		ExpiresAt: refreshExp.UTC(),
	}
	return pair, rt, nil
}

// Refresh rotates a refresh token. The presented token is revoked and can
// not be used again.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, *models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("parse refresh: %v: %w", err, ErrUnauthorized)
	}
	stored, err := s.Repo.FindRefreshByJTI(ctx, claims.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("unknown refresh token: %w", ErrUnauthorized)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find refresh: %w", err)
	}
	if stored.TokenHash != hash.Sha256Hex(refreshToken) {
		return nil, nil, fmt.Errorf("refresh token mismatch: %w", ErrUnauthorized)
	}

	u, err := s.Repo.GetUser(ctx, stored.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("user gone: %w", ErrUnauthorized)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	pair, next, err := s.issue(u)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Repo.RotateRefreshToken(ctx, stored.JTI, next); err != nil {
		if errors.Is(err, repo.ErrTokenRevoked) {
			l.Warn("refresh_reuse", "user_id", u.ID, "jti", stored.JTI)
			return nil, nil, fmt.Errorf("%v: %w", err, ErrUnauthorized)
		}
		return nil, nil, fmt.Errorf("rotate refresh: %w", err)
	}
	return pair, u, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.Repo.RevokeRefreshByHash(ctx, hash.Sha256Hex(refreshToken)); err != nil {
		return fmt.Errorf("revoke refresh: %w", err)
	}
	return nil
}
