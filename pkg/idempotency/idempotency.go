// Package idempotency deduplicates retried checkout requests.
//
// The caller supplies an Idempotency-Key header; the first request claims
// the key in Redis, finishes its work, then records the created order ID
// under the key. A retry with the same key gets the recorded order back
// instead of placing a second order; a concurrent duplicate (key claimed
// but no result yet) is rejected as a conflict.
package idempotency

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Header is the HTTP header carrying the caller-supplied key.
const Header = "Idempotency-Key"

// KeyFromRequest extracts the idempotency key, empty when absent.
func KeyFromRequest(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(Header))
}

const pendingMarker = "pending"

// Claim is the outcome of trying to take ownership of a key.
type Claim struct {
	// Acquired means this request owns the key and must run the operation.
	Acquired bool
	// OrderID is the recorded result of a previous completed request.
	OrderID string
	// InFlight means another request holds the key but has not finished.
	InFlight bool
}

// Store persists idempotency claims in Redis.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore wraps the shared Redis client. A nil client disables
// deduplication: every Acquire succeeds. ttl bounds how long a completed
// result is replayable.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) key(userID, k string) string {
	return fmt.Sprintf("vastra:idem:%s:%s", userID, k)
}

// Acquire attempts to claim key for userID.
func (s *Store) Acquire(ctx context.Context, userID, key string) (Claim, error) {
	if s.rdb == nil {
		return Claim{Acquired: true}, nil
	}

	ok, err := s.rdb.SetNX(ctx, s.key(userID, key), pendingMarker, s.ttl).Result()
	if err != nil {
		return Claim{}, fmt.Errorf("idempotency: acquire: %w", err)
	}
	if ok {
		return Claim{Acquired: true}, nil
	}

	val, err := s.rdb.Get(ctx, s.key(userID, key)).Result()
	if err == redis.Nil {
		// Claim expired between SETNX and GET; treat as in flight and let
		// the caller retry.
		return Claim{InFlight: true}, nil
	}
	if err != nil {
		return Claim{}, fmt.Errorf("idempotency: read claim: %w", err)
	}

	if val == pendingMarker {
		return Claim{InFlight: true}, nil
	}
	return Claim{OrderID: val}, nil
}

// Complete records the order created under key so retries replay it.
func (s *Store) Complete(ctx context.Context, userID, key, orderID string) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Set(ctx, s.key(userID, key), orderID, s.ttl).Err()
}

// Release drops a claim after a failed operation so the caller may retry.
func (s *Store) Release(ctx context.Context, userID, key string) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, s.key(userID, key)).Err()
}
