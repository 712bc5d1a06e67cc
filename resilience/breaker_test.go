package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zurychhh/alpha-machine/errs"
)

func testConfig() BreakerConfig {
	return BreakerConfig{ConsecutiveFailures: 3, Window: time.Minute, Cooldown: 10 * time.Millisecond}
}

func TestRegistry_GetBreaker_SameInstancePerName(t *testing.T) {
	r := NewRegistry(testConfig())
	a := r.GetBreaker("svc")
	b := r.GetBreaker("svc")
	if a != b {
		t.Fatal("expected same breaker instance for the same name")
	}
	c := r.GetBreaker("other")
	if a == c {
		t.Fatal("expected different breaker instances for different names")
	}
}

func TestRegistry_Execute_Success(t *testing.T) {
	r := NewRegistry(testConfig())
	result, err := r.Execute(context.Background(), "svc", func() (any, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Fatalf("got %v, want ok", result)
	}
}

func TestRegistry_TripsAfterConsecutiveFailures(t *testing.T) {
	r := NewRegistry(testConfig())
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		_, _ = r.Execute(context.Background(), "svc", func() (any, error) {
			return nil, boom
		})
	}

	_, err := r.Execute(context.Background(), "svc", func() (any, error) {
		t.Fatal("fn should not be called while breaker is open")
		return nil, nil
	})
	if errs.KindOf(err) != errs.Unavailable {
		t.Fatalf("expected Unavailable once breaker trips, got %v", err)
	}
}

func TestRegistry_Execute_ContextCanceled(t *testing.T) {
	r := NewRegistry(testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Execute(ctx, "svc", func() (any, error) {
		return "should not run", nil
	})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
}

func TestRegistry_Status(t *testing.T) {
	r := NewRegistry(testConfig())
	r.GetBreaker("svc")
	status := r.Status()
	if _, ok := status["svc"]; !ok {
		t.Fatal("expected status entry for registered breaker")
	}
}

func TestWithBreaker_UsesGlobalRegistry(t *testing.T) {
	SetGlobalRegistry(NewRegistry(testConfig()))
	result, err := WithBreaker(context.Background(), "global-svc", func() (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 {
		t.Fatalf("got %d, want 42", result)
	}
}
