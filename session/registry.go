package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps any Redis transport failure.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Record describes one tracked session. ExpiresAt mirrors the refresh
// token's expiry; Redis TTLs are derived from it so records evaporate when
// the session could no longer be refreshed anyway.
type Record struct {
	SessionID string    `json:"sid"`
	UserID    string    `json:"uid"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Registry is a Redis-backed session index. Construct through [NewRegistry];
// a Registry is immutable and safe for concurrent use.
type Registry struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRegistry creates a session [Registry] backed by the given Redis client.
// prefix sets the Redis key namespace.
func NewRegistry(client redis.UniversalClient, prefix string) *Registry {
	return &Registry{
		redis:  client,
		prefix: prefix,
	}
}

func (r *Registry) sessionKey(sessionID string) string {
	return r.prefix + ":s:" + sessionID
}

func (r *Registry) userKey(userID string) string {
	return r.prefix + ":u:" + userID
}

// Save persists a record and adds it to the owning user's index. The record
// and index share the session's remaining lifetime as TTL.
func (r *Registry) Save(ctx context.Context, rec *Record) error {
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	sessionKey := r.sessionKey(rec.SessionID)
	userKey := r.userKey(rec.UserID)

	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey, data, ttl)
		pipe.SAdd(ctx, userKey, rec.SessionID)
		// The index must outlive its longest member.
		pipe.Expire(ctx, userKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Get returns the record for sessionID, or (nil, nil) when it does not exist
// or has expired.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Record, error) {
	data, err := r.redis.Get(ctx, r.sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}

	return &rec, nil
}

// DeleteAllForUser removes every tracked session of userID and the index
// itself. It is idempotent: revoking a user with no sessions succeeds.
func (r *Registry) DeleteAllForUser(ctx context.Context, userID string) error {
	userKey := r.userKey(userID)

	sessionIDs, err := r.redis.SMembers(ctx, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, sid := range sessionIDs {
			pipe.Del(ctx, r.sessionKey(sid))
		}
		pipe.Del(ctx, userKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// ActiveSessionIDs lists the tracked session IDs for userID. Expired records
// may linger in the index until their Redis TTL fires; callers needing
// certainty should Get the individual record.
func (r *Registry) ActiveSessionIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := r.redis.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return ids, nil
}

// ActiveSessionCount reports how many sessions are tracked for userID.
func (r *Registry) ActiveSessionCount(ctx context.Context, userID string) (int, error) {
	n, err := r.redis.SCard(ctx, r.userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return int(n), nil
}

// Ping verifies Redis connectivity and returns the round-trip time.
func (r *Registry) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return time.Since(start), nil
}
