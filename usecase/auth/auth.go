package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/repository"
)

const minPasswordLength = 6

type UseCase struct {
	users    repository.UserRepository
	orgs     repository.OrganizationRepository
	sessions repository.SessionRepository
	tokens   *TokenManager
	ttl      time.Duration
	hashCost int
	logger   *zap.Logger
}

// Option tweaks a UseCase.
type Option func(*UseCase)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(uc *UseCase) { uc.hashCost = cost }
}

func New(
	users repository.UserRepository,
	orgs repository.OrganizationRepository,
	sessions repository.SessionRepository,
	tokens *TokenManager,
	ttl time.Duration,
	logger *zap.Logger,
	opts ...Option,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	uc := &UseCase{
		users:    users,
		orgs:     orgs,
		sessions: sessions,
		tokens:   tokens,
		ttl:      ttl,
		hashCost: bcrypt.DefaultCost,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// LoginResult is everything a client needs after signing in.
type LoginResult struct {
	Token        string               `json:"token"`
	Session      *domain.Session      `json:"session"`
	User         *domain.User         `json:"user"`
	Organization *domain.Organization `json:"organization,omitempty"`
	IsOwner      bool                 `json:"is_owner"`
}

// Register creates an account. The user id is derived from the username, so
// two usernames that differ only in case or spacing collide.
func (uc *UseCase) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "username is required")
	}
	if len(password) < minPasswordLength {
		return nil, domain.Errorf(domain.ErrCodeInvalid, "password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.hashCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           domain.UserIDFromUsername(username),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login checks credentials and opens a session. Unknown users and wrong
// passwords fail the same way.
func (uc *UseCase) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := uc.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	token, err := uc.tokens.Issue(session)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{Token: token, Session: session, User: user}
	if err := uc.attachOrganization(ctx, result); err != nil {
		return nil, err
	}
	uc.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("session_id", session.ID))
	return result, nil
}

func (uc *UseCase) attachOrganization(ctx context.Context, result *LoginResult) error {
	owned, err := uc.orgs.GetByOwner(ctx, result.User.ID)
	switch {
	case err == nil:
		result.Organization = owned
		result.IsOwner = true
		return nil
	case !errors.Is(err, domain.ErrOrganizationNotFound):
		return err
	}
	if result.User.OrgID == nil {
		return nil
	}
	org, err := uc.orgs.GetByID(ctx, *result.User.OrgID)
	if err != nil {
		return err
	}
	result.Organization = org
	return nil
}

// GetSession returns a live session. Expired sessions are removed and
// reported as not found.
func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Authenticate resolves a bearer token to its live session.
func (uc *UseCase) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := uc.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	session, err := uc.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.WrapError(domain.ErrCodeUnauthorized, "session expired or revoked", err)
		}
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

// Refresh extends a live session and issues a fresh token for it.
func (uc *UseCase) Refresh(ctx context.Context, sessionID string) (*domain.Session, string, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	if err := uc.sessions.Extend(ctx, sessionID, uc.ttl); err != nil {
		return nil, "", err
	}
	session.ExpiresAt = time.Now().Add(uc.ttl)
	token, err := uc.tokens.Issue(session)
	if err != nil {
		return nil, "", err
	}
	return session, token, nil
}

// Logout revokes the session; tokens bound to it stop working immediately.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if err := uc.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	uc.logger.Info("session revoked", zap.String("session_id", sessionID))
	return nil
}
