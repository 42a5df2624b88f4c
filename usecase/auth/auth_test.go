package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/internal/testutil"
	"github.com/fastygo/urquest/repository"
	redisrepo "github.com/fastygo/urquest/repository/redis"
)

func newTestUseCase(t *testing.T) (*UseCase, *repository.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := testutil.NewStore(t)
	uc := New(
		store.Users,
		store.Organizations,
		redisrepo.NewSessionRepository(client, time.Hour),
		NewTokenManager("test-secret", "urquest-test"),
		time.Hour,
		zaptest.NewLogger(t),
		WithHashCost(bcrypt.MinCost),
	)
	return uc, store, mr
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestUseCase(t)

	user, err := uc.Register(ctx, "  Alice Liddell ", "wonderland")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID != "alice_liddell" || user.Username != "Alice Liddell" {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.PasswordHash == "wonderland" {
		t.Fatal("password stored in clear text")
	}

	if _, err := uc.Register(ctx, "alice liddell", "another1"); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected conflict on derived id collision, got %v", err)
	}
	if _, err := uc.Register(ctx, "bob", "123"); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected short password to be invalid, got %v", err)
	}
	if _, err := uc.Register(ctx, "   ", "password"); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected empty username to be invalid, got %v", err)
	}
}

func TestLoginAuthenticateLogout(t *testing.T) {
	ctx := context.Background()
	uc, store, _ := newTestUseCase(t)

	if _, err := uc.Register(ctx, "alice", "wonderland"); err != nil {
		t.Fatalf("register: %v", err)
	}
	org := testutil.Org(t, store, "alice", "Acme")

	if _, err := uc.Login(ctx, "alice", "wrong-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := uc.Login(ctx, "nobody", "wonderland"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}

	result, err := uc.Login(ctx, "alice", "wonderland")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !result.IsOwner || result.Organization == nil || result.Organization.ID != org.ID {
		t.Fatalf("expected owned org in login result, got %+v", result)
	}

	session, err := uc.Authenticate(ctx, result.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if session.UserID != "alice" || session.ID != result.Session.ID {
		t.Fatalf("unexpected session %+v", session)
	}

	if err := uc.Logout(ctx, session.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := uc.Authenticate(ctx, result.Token); !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("expected revoked token to be unauthorized, got %v", err)
	}
}

func TestLogin_MemberOrganization(t *testing.T) {
	ctx := context.Background()
	uc, store, _ := newTestUseCase(t)

	testutil.User(t, store, "owner")
	org := testutil.Org(t, store, "owner", "Acme")
	if _, err := uc.Register(ctx, "bob", "builder1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := store.Users.Join(ctx, "bob", org.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	result, err := uc.Login(ctx, "bob", "builder1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.IsOwner || result.Organization == nil || result.Organization.ID != org.ID {
		t.Fatalf("expected member org, got %+v", result)
	}
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	uc, _, mr := newTestUseCase(t)

	if _, err := uc.Register(ctx, "alice", "wonderland"); err != nil {
		t.Fatalf("register: %v", err)
	}
	result, err := uc.Login(ctx, "alice", "wonderland")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	mr.FastForward(30 * time.Minute)
	session, token, err := uc.Refresh(ctx, result.Session.ID)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if token == "" || !session.ExpiresAt.After(result.Session.ExpiresAt.Add(-time.Second)) {
		t.Fatalf("unexpected refresh result %+v", session)
	}

	mr.FastForward(45 * time.Minute)
	if _, err := uc.Authenticate(ctx, token); err != nil {
		t.Fatalf("refreshed session should still be live: %v", err)
	}

	mr.FastForward(2 * time.Hour)
	if _, _, err := uc.Refresh(ctx, result.Session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func TestTokenManager_RejectsForeignTokens(t *testing.T) {
	session := &domain.Session{ID: "sid", UserID: "alice", ExpiresAt: time.Now().Add(time.Hour)}

	token, err := NewTokenManager("other-secret", "urquest-test").Issue(session)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewTokenManager("test-secret", "urquest-test").Parse(token); !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("expected signature failure, got %v", err)
	}

	token, err = NewTokenManager("test-secret", "someone-else").Issue(session)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewTokenManager("test-secret", "urquest-test").Parse(token); !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("expected issuer failure, got %v", err)
	}

	expired := &domain.Session{ID: "sid", UserID: "alice", ExpiresAt: time.Now().Add(-time.Minute)}
	token, err = NewTokenManager("test-secret", "urquest-test").Issue(expired)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewTokenManager("test-secret", "urquest-test").Parse(token); !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("expected expiry failure, got %v", err)
	}
}
