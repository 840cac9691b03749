package storage

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	runLockKey = "rental-intel:detect-run"
	runLockTTL = 10 * time.Minute
)

// RunLock is an advisory lease that keeps two detect runs from interleaving
// their read-then-write reconciliation against the same store. The TTL
// bounds how long a crashed run can hold the lease. Correctness never
// depends on the lock — the owner upserts are race-safe on their own.
type RunLock struct {
	client *redis.Client
	token  string
}

// NewRunLock parses redisURL and verifies connectivity.
func NewRunLock(ctx context.Context, redisURL string) (*RunLock, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("runlock: parse %q: %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("runlock: redis ping: %w", err)
	}

	return &RunLock{
		client: client,
		token:  strconv.Itoa(os.Getpid()) + "-" + strconv.FormatInt(time.Now().UnixNano(), 10),
	}, nil
}

// Acquire attempts to take the lease. Returns false when another run
// currently holds it.
func (l *RunLock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, runLockKey, l.token, runLockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("runlock: acquire: %w", err)
	}
	return ok, nil
}

// Release drops the lease if this process still holds it. A lease that
// expired and was re-acquired elsewhere is left alone.
func (l *RunLock) Release(ctx context.Context) error {
	current, err := l.client.Get(ctx, runLockKey).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("runlock: release: %w", err)
	}
	if current != l.token {
		return nil
	}
	if err := l.client.Del(ctx, runLockKey).Err(); err != nil {
		return fmt.Errorf("runlock: release: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (l *RunLock) Close() error {
	return l.client.Close()
}
