package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"vhostmgr/internal/config"
)

// ErrBusy is returned when another operation holds the lock
var ErrBusy = errors.New("operation in progress")

// Unlock releases a lock obtained from Locker.Acquire
type Unlock func()

// Locker serializes mutating operations per domain
type Locker interface {
	// Acquire takes the lock for key without waiting. It returns ErrBusy
	// when the lock is already held.
	Acquire(ctx context.Context, key string) (Unlock, error)
}

// New returns the locker selected by backend. rdb is only used for LockRedis.
func New(backend, runDir string, ttl time.Duration, rdb redis.UniversalClient) (Locker, error) {
	switch backend {
	case config.LockRedis:
		if rdb == nil {
			return nil, errors.New("redis lock backend requires a Redis client")
		}
		return NewRedis(rdb, ttl), nil
	case config.LockLocal, "":
		return NewLocal(runDir, ttl), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", backend)
	}
}
