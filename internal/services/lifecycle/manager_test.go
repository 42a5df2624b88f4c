package lifecycle

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestManager_ShutdownReverseOrder(t *testing.T) {
	m := New(time.Second, zaptest.NewLogger(t))

	var order []string
	m.RegisterStop("store", func() { order = append(order, "store") })
	m.RegisterCloser("redis", func() error {
		order = append(order, "redis")
		return errors.New("already closed")
	})
	m.Register("http", func(context.Context) error {
		order = append(order, "http")
		return nil
	})

	err := m.Shutdown(context.Background())
	if err == nil || !strings.Contains(err.Error(), "redis: already closed") {
		t.Fatalf("expected joined redis error, got %v", err)
	}
	if got := strings.Join(order, ","); got != "http,redis,store" {
		t.Fatalf("unexpected shutdown order %s", got)
	}

	// hooks run once
	order = nil
	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
	if len(order) != 0 {
		t.Fatalf("hooks ran twice: %v", order)
	}
}

func TestManager_ShutdownDeadline(t *testing.T) {
	m := New(20*time.Millisecond, zaptest.NewLogger(t))
	ran := false
	m.RegisterStop("late", func() { ran = true })
	m.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if err := m.Shutdown(context.Background()); err == nil {
		t.Fatal("expected deadline error")
	}
	if ran {
		t.Fatal("hook after deadline must be skipped")
	}
}
