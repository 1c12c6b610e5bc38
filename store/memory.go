package store

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/courserec/core"
)

// DefaultMaxEntries 是 MemoryStore 默认的条目上限。
const DefaultMaxEntries = 10000

// MemoryStore 是进程内的 core.Store 实现，支持 TTL，进程重启后数据丢失。
// 条目数达到上限时，写入新 key 会先清理过期条目，仍满则淘汰最早写入的条目。
type MemoryStore struct {
	mu         sync.RWMutex
	data       map[string]*entry
	maxEntries int
	seq        uint64
	clean      *time.Ticker
	done       chan struct{}
	once       sync.Once
	now        func() time.Time
}

type entry struct {
	value  []byte
	expire time.Time // 零值表示永不过期
	seq    uint64
}

var _ core.Store = (*MemoryStore)(nil)

// MemoryOption 配置 MemoryStore。
type MemoryOption func(*MemoryStore)

// WithMaxEntries 设置条目上限；n <= 0 时使用 DefaultMaxEntries。
func WithMaxEntries(n int) MemoryOption {
	return func(m *MemoryStore) {
		if n > 0 {
			m.maxEntries = n
		}
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	return newMemoryStore(time.Now, opts...)
}

func newMemoryStore(now func() time.Time, opts ...MemoryOption) *MemoryStore {
	ms := &MemoryStore{
		data:       make(map[string]*entry),
		maxEntries: DefaultMaxEntries,
		clean:      time.NewTicker(10 * time.Second),
		done:       make(chan struct{}),
		now:        now,
	}
	for _, opt := range opts {
		opt(ms)
	}
	go ms.cleanup()
	return ms
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok || e.expired(m.now()) {
		return nil, core.ErrStoreNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	e := &entry{value: append([]byte(nil), value...)}
	if len(ttl) > 0 && ttl[0] > 0 {
		e.expire = m.now().Add(time.Duration(ttl[0]) * time.Second)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.data[key]; !exists && len(m.data) >= m.maxEntries {
		m.makeRoomLocked()
	}
	m.seq++
	e.seq = m.seq
	m.data[key] = e
	return nil
}

// makeRoomLocked 腾出至少一个位置，调用方需持有写锁。
func (m *MemoryStore) makeRoomLocked() {
	m.evictExpiredLocked(m.now())
	if len(m.data) < m.maxEntries {
		return
	}
	var (
		oldestKey string
		oldestSeq uint64
		found     bool
	)
	for k, e := range m.data {
		if !found || e.seq < oldestSeq {
			oldestKey, oldestSeq, found = k, e.seq, true
		}
	}
	if found {
		delete(m.data, oldestKey)
	}
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Len 返回当前条目数（含尚未清理的过期条目）。
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MemoryStore) Close() error {
	m.once.Do(func() {
		m.clean.Stop()
		close(m.done)
	})
	return nil
}

func (m *MemoryStore) cleanup() {
	for {
		select {
		case <-m.done:
			return
		case <-m.clean.C:
			m.evictExpired()
		}
	}
}

func (m *MemoryStore) evictExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictExpiredLocked(m.now())
}

func (m *MemoryStore) evictExpiredLocked(now time.Time) {
	for k, e := range m.data {
		if e.expired(now) {
			delete(m.data, k)
		}
	}
}

func (e *entry) expired(now time.Time) bool {
	return !e.expire.IsZero() && now.After(e.expire)
}
