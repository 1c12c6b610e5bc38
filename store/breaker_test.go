package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/courserec/core"
)

type flakyStore struct {
	*MemoryStore
	fail  bool
	calls int
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("connection refused")
	}
	return f.MemoryStore.Get(ctx, key)
}

func TestBreakerStore(t *testing.T) {
	inner := &flakyStore{MemoryStore: NewMemoryStore()}
	defer inner.Close()
	cfg := BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureThreshold: 3}
	b := NewBreakerStore(inner, cfg, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := b.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
			t.Fatalf("Get(missing) error = %v, want not found", err)
		}
	}
	if b.State() != gobreaker.StateClosed {
		t.Fatalf("not-found should not trip the breaker, state = %v", b.State())
	}

	inner.fail = true
	for i := 0; i < 3; i++ {
		if _, err := b.Get(ctx, "k"); err == nil || core.IsUnavailable(err) {
			t.Fatalf("Get() #%d error = %v, want backend error", i, err)
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	calls := inner.calls
	if _, err := b.Get(ctx, "k"); !core.IsUnavailable(err) {
		t.Errorf("Get() with open breaker error = %v, want unavailable", err)
	}
	if inner.calls != calls {
		t.Error("open breaker still called the backend")
	}
}
