package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/courserec/core"
)

// BreakerConfig 配置 BreakerStore 的熔断参数。
type BreakerConfig struct {
	MaxRequests      uint32        // 半开状态允许通过的请求数
	Interval         time.Duration // 闭合状态下计数周期
	Timeout          time.Duration // 打开状态持续多久后进入半开
	FailureThreshold uint32        // 连续失败多少次后打开
}

// DefaultBreakerConfig 返回默认熔断参数。
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerStore 为远端 Store 加熔断：后端连续失败时直接返回 UNAVAILABLE，不再等待超时。
// key 不存在不计为失败。
type BreakerStore struct {
	inner core.Store
	cb    *gobreaker.CircuitBreaker[[]byte]
}

var _ core.Store = (*BreakerStore)(nil)

func NewBreakerStore(inner core.Store, cfg BreakerConfig, logger zerolog.Logger) *BreakerStore {
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "store." + inner.Name(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || core.IsStoreNotFound(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("store circuit breaker state changed")
		},
	})
	return &BreakerStore{inner: inner, cb: cb}
}

func (b *BreakerStore) Name() string { return b.inner.Name() }

// State 返回当前熔断状态。
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := b.cb.Execute(func() ([]byte, error) {
		return b.inner.Get(ctx, key)
	})
	return v, b.mapErr(err)
}

func (b *BreakerStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.inner.Set(ctx, key, value, ttl...)
	})
	return b.mapErr(err)
}

func (b *BreakerStore) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.inner.Delete(ctx, key)
	})
	return b.mapErr(err)
}

func (b *BreakerStore) Close() error {
	return b.inner.Close()
}

func (b *BreakerStore) mapErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "store: "+b.inner.Name()+" circuit open", err)
	}
	return err
}
