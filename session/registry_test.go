package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRegistry(t *testing.T) (*Registry, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRegistry(client, "ac"), mr
}

func record(sid, uid string, ttl time.Duration) *Record {
	now := time.Now()
	return &Record{
		SessionID: sid,
		UserID:    uid,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestSaveGetRoundtrip(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	if err := r.Save(ctx, record("s1", "u1", time.Hour)); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := r.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected record, got nil")
	}
	if got.SessionID != "s1" || got.UserID != "u1" {
		t.Fatalf("record = %+v", got)
	}
}

func TestSaveRejectsExpiredRecord(t *testing.T) {
	r, _ := newTestRegistry(t)

	if err := r.Save(context.Background(), record("s1", "u1", -time.Minute)); err == nil {
		t.Fatal("expected already-expired record to be rejected")
	}
}

func TestGetMissingIsNilNil(t *testing.T) {
	r, _ := newTestRegistry(t)

	got, err := r.Get(context.Background(), "no-such-session")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil record, got %+v", got)
	}
}

func TestRecordExpiresWithTTL(t *testing.T) {
	r, mr := newTestRegistry(t)
	ctx := context.Background()

	if err := r.Save(ctx, record("s1", "u1", time.Minute)); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	got, err := r.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatal("record should have expired")
	}
}

func TestDeleteAllForUser(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	for _, sid := range []string{"s1", "s2", "s3"} {
		if err := r.Save(ctx, record(sid, "u1", time.Hour)); err != nil {
			t.Fatalf("save %s: %v", sid, err)
		}
	}
	if err := r.Save(ctx, record("other", "u2", time.Hour)); err != nil {
		t.Fatalf("save other: %v", err)
	}

	if err := r.DeleteAllForUser(ctx, "u1"); err != nil {
		t.Fatalf("delete all: %v", err)
	}

	n, err := r.ActiveSessionCount(ctx, "u1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("count = %d, want 0", n)
	}
	for _, sid := range []string{"s1", "s2", "s3"} {
		got, err := r.Get(ctx, sid)
		if err != nil {
			t.Fatalf("get %s: %v", sid, err)
		}
		if got != nil {
			t.Fatalf("session %s survived revocation", sid)
		}
	}

	// Other users are untouched.
	got, err := r.Get(ctx, "other")
	if err != nil {
		t.Fatalf("get other: %v", err)
	}
	if got == nil {
		t.Fatal("unrelated session was revoked")
	}
}

func TestDeleteAllForUserIsIdempotent(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	if err := r.DeleteAllForUser(ctx, "never-logged-in"); err != nil {
		t.Fatalf("delete with no sessions: %v", err)
	}
	if err := r.DeleteAllForUser(ctx, "never-logged-in"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestActiveSessionIDs(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	if err := r.Save(ctx, record("s1", "u1", time.Hour)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := r.Save(ctx, record("s2", "u1", time.Hour)); err != nil {
		t.Fatalf("save: %v", err)
	}

	ids, err := r.ActiveSessionIDs(ctx, "u1")
	if err != nil {
		t.Fatalf("active ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ids = %v, want 2 entries", ids)
	}
}

func TestRedisFailureWrapsErrRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	r := NewRegistry(client, "ac")

	mr.Close()

	if err := r.Save(context.Background(), record("s1", "u1", time.Hour)); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("err = %v, want ErrRedisUnavailable", err)
	}
	if _, err := r.Get(context.Background(), "s1"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("err = %v, want ErrRedisUnavailable", err)
	}
}

func TestPing(t *testing.T) {
	r, _ := newTestRegistry(t)

	if _, err := r.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
