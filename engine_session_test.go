package authcore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisEngine(t *testing.T) (*Engine, *fakeStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := newFakeStore()
	engine, err := New().
		WithConfig(testConfig()).
		WithUserStore(store).
		WithRedis(client).
		Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, store
}

func TestRegisterTracksSession(t *testing.T) {
	engine, _ := newRedisEngine(t)

	registered := mustRegister(t, engine, validRegister())

	n, err := engine.sessions.ActiveSessionCount(context.Background(), registered.User.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("sessions = %d, want 1", n)
	}
}

func TestLoginAccumulatesSessions(t *testing.T) {
	engine, _ := newRedisEngine(t)
	registered := mustRegister(t, engine, validRegister())

	for i := 0; i < 2; i++ {
		if _, err := engine.Login(context.Background(), LoginRequest{
			Email:    "alice@example.com",
			Password: "hunter2hunter2",
		}); err != nil {
			t.Fatalf("login %d: %v", i, err)
		}
	}

	n, err := engine.sessions.ActiveSessionCount(context.Background(), registered.User.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	// One from registration plus one per login.
	if n != 3 {
		t.Fatalf("sessions = %d, want 3", n)
	}
}

func TestLogoutClearsTrackedSessions(t *testing.T) {
	engine, store := newRedisEngine(t)
	registered := mustRegister(t, engine, validRegister())

	if err := engine.Logout(context.Background(), registered.User.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	n, err := engine.sessions.ActiveSessionCount(context.Background(), registered.User.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("sessions = %d, want 0", n)
	}
	if store.revokedCount(registered.User.ID) != 1 {
		t.Fatal("store revocation not called")
	}
}

func TestLoginSucceedsWhenRegistryDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := newFakeStore()
	engine, err := New().
		WithConfig(testConfig()).
		WithUserStore(store).
		WithRedis(client).
		Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)
	mustRegister(t, engine, validRegister())

	mr.Close()

	// Session tracking is bookkeeping; a dead registry must not block login.
	if _, err := engine.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	}); err != nil {
		t.Fatalf("login with registry down: %v", err)
	}
}
