package jikan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultSyncLockKey = "coanime:jikan-sync:lock"
	defaultSyncLockTTL = 30 * time.Minute
)

// releaseScript deletes the lock only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// lockClient is the subset of go-redis the lock needs.
type lockClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// SyncLock is an advisory Redis lock held for the duration of a sync run.
// The TTL bounds how long a crashed holder blocks other runs.
type SyncLock struct {
	client lockClient
	key    string
	ttl    time.Duration
}

func NewSyncLock(client lockClient, key string, ttl time.Duration) *SyncLock {
	if key == "" {
		key = DefaultSyncLockKey
	}
	if ttl <= 0 {
		ttl = defaultSyncLockTTL
	}
	return &SyncLock{client: client, key: key, ttl: ttl}
}

// Acquire takes the lock or returns ErrSyncInProgress when another run holds it.
func (l *SyncLock) Acquire(ctx context.Context) (func(context.Context) error, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		return nil, ErrSyncInProgress
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil && err != redis.Nil {
			return fmt.Errorf("release sync lock: %w", err)
		}
		return nil
	}, nil
}
