// Package presence tracks which users hold live realtime connections, backed
// by Redis so presence survives across instances.
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL  = 5 * time.Minute
	lastSeenTTL = 30 * 24 * time.Hour
)

// Store keeps one counter key per user. Connections increment on attach and
// decrement on detach; a user is online while the counter is positive. The
// TTL sweeps up counters orphaned by a crashed instance.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix, ttl: defaultTTL}
}

func (s *Store) key(userID int64) string {
	return fmt.Sprintf("%s:presence:%d", s.prefix, userID)
}

func (s *Store) lastSeenKey(userID int64) string {
	return fmt.Sprintf("%s:last_seen:%d", s.prefix, userID)
}

func (s *Store) Connected(ctx context.Context, userID int64) error {
	key := s.key(userID)
	if err := s.client.Incr(ctx, key).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, s.ttl).Err()
}

func (s *Store) Disconnected(ctx context.Context, userID int64) error {
	key := s.key(userID)
	remaining, err := s.client.Decr(ctx, key).Result()
	if err != nil {
		return err
	}
	if setErr := s.client.Set(ctx, s.lastSeenKey(userID), time.Now().UTC().Format(time.RFC3339), lastSeenTTL).Err(); setErr != nil {
		return setErr
	}
	if remaining <= 0 {
		return s.client.Del(ctx, key).Err()
	}
	return s.client.Expire(ctx, key, s.ttl).Err()
}

// LastSeen reports when the user last dropped their final connection. Empty
// for users who never connected or are beyond the retention window.
func (s *Store) LastSeen(ctx context.Context, userID int64) (string, error) {
	value, err := s.client.Get(ctx, s.lastSeenKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// Refresh extends the TTL for a user with a live connection. Callers invoke
// it on ping intervals shorter than the TTL.
func (s *Store) Refresh(ctx context.Context, userID int64) error {
	return s.client.Expire(ctx, s.key(userID), s.ttl).Err()
}

func (s *Store) IsOnline(ctx context.Context, userID int64) (bool, error) {
	count, err := s.client.Get(ctx, s.key(userID)).Int64()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	return count > 0, nil
}
