package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rushteam/courserec/core"
)

func exerciseStore(t *testing.T, s core.Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get(missing) error = %v, want not found", err)
	}
	if err := s.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v1" {
		t.Fatalf("Get() = %q, %v; want v1", got, err)
	}
	if err := s.Set(ctx, "k", []byte("v2"), 60); err != nil {
		t.Fatalf("Set(ttl) error = %v", err)
	}
	if got, _ := s.Get(ctx, "k"); string(got) != "v2" {
		t.Errorf("Get() after overwrite = %q, want v2", got)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("Get() after Delete error = %v, want not found", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestMemoryStore_TTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := newMemoryStore(func() time.Time { return now })
	defer s.Close()

	ctx := context.Background()
	_ = s.Set(ctx, "short", []byte("x"), 1)
	_ = s.Set(ctx, "forever", []byte("y"))

	now = now.Add(2 * time.Second)
	if _, err := s.Get(ctx, "short"); !core.IsStoreNotFound(err) {
		t.Errorf("Get(expired) error = %v, want not found", err)
	}
	if _, err := s.Get(ctx, "forever"); err != nil {
		t.Errorf("Get(forever) error = %v", err)
	}

	s.evictExpired()
	if s.Len() != 1 {
		t.Errorf("Len() after eviction = %d, want 1", s.Len())
	}
}

func TestMemoryStore_MaxEntries(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := newMemoryStore(func() time.Time { return now }, WithMaxEntries(3))
	defer s.Close()
	ctx := context.Background()

	_ = s.Set(ctx, "a", []byte("1"))
	_ = s.Set(ctx, "b", []byte("2"), 1)
	_ = s.Set(ctx, "c", []byte("3"))

	// 覆盖已有 key 不淘汰
	_ = s.Set(ctx, "a", []byte("1'"))
	if s.Len() != 3 {
		t.Fatalf("Len() after overwrite = %d, want 3", s.Len())
	}

	// 先清理过期的 b
	now = now.Add(2 * time.Second)
	_ = s.Set(ctx, "d", []byte("4"))
	for _, k := range []string{"a", "c", "d"} {
		if _, err := s.Get(ctx, k); err != nil {
			t.Errorf("Get(%q) error = %v", k, err)
		}
	}

	// 无过期条目时淘汰最早写入的 c（a 已被重新写入）
	_ = s.Set(ctx, "e", []byte("5"))
	if _, err := s.Get(ctx, "c"); !core.IsStoreNotFound(err) {
		t.Errorf("Get(c) error = %v, want not found", err)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
	for i := 0; i < 50; i++ {
		_ = s.Set(ctx, string(rune('f'+i)), []byte("x"))
	}
	if s.Len() > 3 {
		t.Errorf("Len() = %d, exceeds max entries 3", s.Len())
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	buf := []byte("abc")
	_ = s.Set(ctx, "k", buf)
	buf[0] = 'z'
	got, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("Get() = %q, want abc", got)
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), mr.Addr(), 0)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)

	_ = s.Set(context.Background(), "ttl", []byte("x"), 5)
	if !mr.Exists(DefaultKeyPrefix + "ttl") {
		t.Fatalf("key not stored under prefix %q", DefaultKeyPrefix)
	}
	mr.FastForward(6 * time.Second)
	if _, err := s.Get(context.Background(), "ttl"); !core.IsStoreNotFound(err) {
		t.Errorf("Get(expired) error = %v, want not found", err)
	}
}

func TestNewRedisStore_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedisStore(context.Background(), addr, 0); !core.IsUnavailable(err) {
		t.Errorf("NewRedisStore() error = %v, want unavailable", err)
	}
}
