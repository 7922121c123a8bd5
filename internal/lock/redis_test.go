package lock

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

func TestRedis_Exclusion(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not reachable: %v", err)
	}

	l := NewRedis(rdb, time.Minute)
	key := "test-" + time.Now().Format("150405.000000")

	unlock, err := l.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}

	if _, err := l.Acquire(ctx, key); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", err)
	}

	unlock()

	again, err := l.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("Expected lock to be free after unlock: %v", err)
	}
	again()
}

// Releasing must not delete a lock that expired and was taken by someone else.
func TestRedis_ReleaseChecksToken(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not reachable: %v", err)
	}

	l := NewRedis(rdb, time.Minute)
	key := "test-token-" + time.Now().Format("150405.000000")

	unlock, err := l.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}

	// simulate expiry and takeover
	rdb.Set(ctx, l.prefix+key, "someone-else", time.Minute)
	unlock()

	val, err := rdb.Get(ctx, l.prefix+key).Result()
	if err != nil || val != "someone-else" {
		t.Errorf("Expected foreign lock to survive, got %q (%v)", val, err)
	}
	rdb.Del(ctx, l.prefix+key)
}

// A holder that outlives ttl keeps extending its key.
func TestRedis_HeldPastTTL(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not reachable: %v", err)
	}

	l := NewRedis(rdb, 300*time.Millisecond)
	key := "test-extend-" + time.Now().Format("150405.000000")

	unlock, err := l.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}
	defer unlock()

	time.Sleep(time.Second)

	if _, err := l.Acquire(ctx, key); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy while the first holder is still running, got %v", err)
	}
}
