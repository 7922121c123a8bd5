package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// extendScript resets the key's expiry only if it still holds our token
var extendScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0
`)

// Redis excludes operations across hosts sharing one nginx config tree
type Redis struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedis creates a Redis-backed locker. The holder extends the key every
// ttl/3, so ttl only bounds how long a crashed holder can block others.
func NewRedis(rdb redis.UniversalClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Redis{
		rdb:    rdb,
		prefix: "vhostmgr:lock:",
		ttl:    ttl,
	}
}

// Acquire sets the lock key with NX and a random token
func (r *Redis) Acquire(ctx context.Context, key string) (Unlock, error) {
	token := uuid.NewString()
	redisKey := r.prefix + key

	ok, err := r.rdb.SetNX(ctx, redisKey, token, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock in Redis: %w", err)
	}
	if !ok {
		return nil, ErrBusy
	}

	stop := r.heartbeat(redisKey, token)

	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			// the caller's ctx may already be cancelled
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			releaseScript.Run(ctx, r.rdb, []string{redisKey}, token)
		})
	}, nil
}

func (r *Redis) heartbeat(redisKey, token string) func() {
	interval := r.ttl / 3
	if interval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				extendScript.Run(ctx, r.rdb, []string{redisKey}, token, r.ttl.Milliseconds())
				cancel()
			}
		}
	}()

	return func() {
		close(done)
		<-exited
	}
}
