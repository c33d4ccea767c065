package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/newmedia/membership-api/internal/core/domain"
)

// unreachableClient points at a closed port so every command fails fast.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSessionStore_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessionStore(client)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	saved := &domain.Session{
		Key:       "k1",
		UserID:    "u1",
		Email:     "a@x.com",
		Role:      domain.RoleUser,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	if err := s.Save(ctx, saved); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if ttl := mr.TTL("session:k1"); ttl != time.Hour {
		t.Fatalf("expected TTL derived from ExpiresAt, got %s", ttl)
	}

	got, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.UserID != "u1" || got.Email != "a@x.com" || !got.ExpiresAt.Equal(saved.ExpiresAt) {
		t.Fatalf("unexpected session: %+v", got)
	}

	mr.FastForward(61 * time.Minute)
	if _, err := s.Get(ctx, "k1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after expiry, got %v", err)
	}

	if err := s.Save(ctx, saved); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := s.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := s.Get(ctx, "k1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
	if _, err := s.Get(ctx, "unknown"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for unknown key, got %v", err)
	}
}

func TestSessionStore_Key(t *testing.T) {
	s := NewSessionStore(nil)
	if got := s.key("abc"); got != "session:abc" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestSessionStore_RejectsExpiredSession(t *testing.T) {
	s := NewSessionStore(nil)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	err := s.Save(context.Background(), &domain.Session{
		Key:       "k",
		ExpiresAt: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
	})
	if err == nil {
		t.Fatalf("expected already-expired session to be refused")
	}
}

func TestSessionStore_UnreachableIsStoreUnavailable(t *testing.T) {
	s := NewSessionStore(unreachableClient(t))
	ctx := context.Background()

	err := s.Save(ctx, &domain.Session{Key: "k", ExpiresAt: time.Now().Add(time.Hour)})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable on save, got %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable on get, got %v", err)
	}
	if err := s.Delete(ctx, "k"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable on delete, got %v", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 50 * time.Millisecond})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
