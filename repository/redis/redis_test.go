package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/urquest/domain"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redislib.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestSessionRepository_RoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	srv, client := newTestClient(t)
	repo := NewSessionRepository(client, time.Hour)

	session := &domain.Session{ID: "sid-1", UserID: "bob", Username: "bob", ExpiresAt: time.Now().Add(10 * time.Minute)}
	if err := repo.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != "bob" {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := repo.Extend(ctx, "sid-1", 2*time.Hour); err != nil {
		t.Fatalf("extend: %v", err)
	}
	if ttl := srv.TTL("urquest:session:sid-1"); ttl < time.Hour {
		t.Fatalf("expected extended ttl, got %s", ttl)
	}

	srv.FastForward(3 * time.Hour)
	if _, err := repo.Get(ctx, "sid-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func TestSessionRepository_Delete(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	repo := NewSessionRepository(client, time.Hour)

	_ = repo.Save(ctx, &domain.Session{ID: "sid-2", UserID: "alice"})
	if err := repo.Delete(ctx, "sid-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "sid-2"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := repo.Extend(ctx, "sid-2", time.Minute); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("extend of missing session should fail, got %v", err)
	}
}

func TestLeaderboardCache(t *testing.T) {
	ctx := context.Background()
	srv, client := newTestClient(t)
	cache := NewLeaderboardCache(client, 30*time.Second)

	if _, ok, err := cache.Get(ctx); ok || err != nil {
		t.Fatalf("expected cold cache, got ok=%v err=%v", ok, err)
	}
	epoch, err := cache.Epoch(ctx)
	if err != nil || epoch != 0 {
		t.Fatalf("expected epoch 0 on a fresh cache, got %d err=%v", epoch, err)
	}

	entries := []domain.LeaderboardEntry{{Position: 1, UserID: "bob", Username: "bob", TotalXP: 50, Level: 1}}
	if stored, err := cache.Set(ctx, epoch, entries); err != nil || !stored {
		t.Fatalf("set: stored=%v err=%v", stored, err)
	}
	got, ok, err := cache.Get(ctx)
	if err != nil || !ok || len(got) != 1 || got[0].TotalXP != 50 {
		t.Fatalf("unexpected cached value: %+v ok=%v err=%v", got, ok, err)
	}

	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, _ := cache.Get(ctx); ok {
		t.Fatalf("expected cache miss after invalidate")
	}

	epoch, _ = cache.Epoch(ctx)
	if stored, _ := cache.Set(ctx, epoch, entries); !stored {
		t.Fatalf("set with current epoch should store")
	}
	srv.FastForward(time.Minute)
	if _, ok, _ := cache.Get(ctx); ok {
		t.Fatalf("expected cache miss after ttl")
	}
}

func TestLeaderboardCache_StaleEpochIsDropped(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	cache := NewLeaderboardCache(client, time.Minute)

	// A refresher reads the epoch, then an approval invalidates before the
	// refresher writes its board.
	before, err := cache.Epoch(ctx)
	if err != nil {
		t.Fatalf("epoch: %v", err)
	}
	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	stale := []domain.LeaderboardEntry{{Position: 1, UserID: "bob", TotalXP: 0}}
	stored, err := cache.Set(ctx, before, stale)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if stored {
		t.Fatalf("board computed before the invalidation must not be stored")
	}
	if _, ok, _ := cache.Get(ctx); ok {
		t.Fatalf("expected cache to stay empty")
	}

	after, _ := cache.Epoch(ctx)
	if after != before+1 {
		t.Fatalf("expected epoch %d, got %d", before+1, after)
	}
}
