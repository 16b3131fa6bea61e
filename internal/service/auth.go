package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/halwiz/storefront/internal/models"
	"github.com/halwiz/storefront/internal/repo"
	"github.com/halwiz/storefront/internal/transport"
	"github.com/halwiz/storefront/pkg/events"
	"github.com/halwiz/storefront/pkg/hash"
	"github.com/halwiz/storefront/pkg/logging"
	"github.com/halwiz/storefront/pkg/tokens"
)

type AuthService struct {
	Repo       *repo.GormRepo
	Secret     []byte
	SessionTTL time.Duration
	Events     events.Publisher
}

type RegisterResult struct {
	ExternalID uuid.UUID
	Token      string
}

type LoginResult struct {
	Token   string
	UserID  uuid.UUID
	IsAdmin bool
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*RegisterResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}

	exists, err := s.Repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New(),
		ExternalID:   uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
	}

	token, _, err := tokens.NewSessionToken(user.ID.String(), false, s.SessionTTL, s.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	user.SessionTokenHash = hash.Sha256Hex(token)

	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, err
	}

	l.Info("user_registered", "user_id", user.ID)
	publish(ctx, s.Events, events.TopicUsers, user.ID.String(), events.NewEvent("user_registered", map[string]any{
		"userId":     user.ID,
		"externalId": user.ExternalID,
		"email":      user.Email,
	}))

	return &RegisterResult{ExternalID: user.ExternalID, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_rejected", "user_id", user.ID, "reason", "password mismatch")
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	token, _, err := tokens.NewSessionToken(user.ID.String(), user.IsAdmin, s.SessionTTL, s.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	if err := s.Repo.SetSessionToken(ctx, user.ID, hash.Sha256Hex(token)); err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUsers, user.ID.String(), events.NewEvent("user_logged_in", map[string]any{
		"userId": user.ID,
	}))

	return &LoginResult{Token: token, UserID: user.ID, IsAdmin: user.IsAdmin}, nil
}

// LoadUser resolves a verified session into the stored user.
func (s *AuthService) LoadUser(ctx context.Context, claims *tokens.SessionClaims) (*models.User, error) {
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed subject", ErrUnauthorized)
	}
	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrUnauthorized)
		}
		return nil, err
	}
	return user, nil
}

// Promote grants admin rights to the target user.
func (s *AuthService) Promote(ctx context.Context, caller *models.User, targetID string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.promote")

	id, err := uuid.Parse(targetID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", ErrValidation)
	}

	if err := s.Repo.SetAdmin(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, err
	}

	if !caller.IsAdmin {
		l.Warn("promotion_by_non_admin", "caller_id", caller.ID, "target_id", id)
	}
	publish(ctx, s.Events, events.TopicUsers, id.String(), events.NewEvent("user_promoted", map[string]any{
		"userId":   id,
		"callerId": caller.ID,
	}))

	return s.Repo.GetUserByID(ctx, id)
}

func (s *AuthService) ListUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	return s.Repo.ListUsers(ctx, offset, limit)
}

// publish is fire-and-log: a broker outage never fails the request.
func publish(ctx context.Context, p events.Publisher, topic, key string, ev events.Event) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Error("publish_event_failed", "topic", topic, "type", ev.Type, "error", err)
	}
}
