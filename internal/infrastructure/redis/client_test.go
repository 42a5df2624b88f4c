package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap/zaptest"

	"github.com/fastygo/urquest/internal/config"
)

func TestNewClient_ConnectsAndSelectsDB(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), config.RedisConfig{
		URL:               "redis://" + mr.Addr(),
		DB:                2,
		ConnectMaxElapsed: time.Second,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.Select(2)
	if got, err := mr.Get("k"); err != nil || got != "v" {
		t.Fatalf("expected key in db 2, got %q err=%v", got, err)
	}
}

func TestNewClient_UnreachableFails(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewClient(context.Background(), config.RedisConfig{URL: "redis://" + addr}, nil)
	if err == nil {
		t.Fatalf("expected error for closed server")
	}
}

func TestNewClient_BadURL(t *testing.T) {
	if _, err := NewClient(context.Background(), config.RedisConfig{URL: "://nope"}, nil); err == nil {
		t.Fatalf("expected parse error")
	}
}
