package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Local excludes operations within this process with a mutex per key and
// across processes with an O_EXCL lock file under dir. The holder touches
// its lock file every ttl/3. A file is only taken over when it has not been
// touched for ttl and the PID written in it is no longer running.
type Local struct {
	dir  string
	ttl  time.Duration
	mu   sync.Mutex
	held map[string]bool
}

// NewLocal creates a local locker keeping its lock files in dir
func NewLocal(dir string, ttl time.Duration) *Local {
	return &Local{
		dir:  dir,
		ttl:  ttl,
		held: make(map[string]bool),
	}
}

func (l *Local) path(key string) string {
	return filepath.Join(l.dir, key+".lock")
}

// Acquire takes the in-process and on-disk lock for key
func (l *Local) Acquire(ctx context.Context, key string) (Unlock, error) {
	l.mu.Lock()
	if l.held[key] {
		l.mu.Unlock()
		return nil, ErrBusy
	}
	l.held[key] = true
	l.mu.Unlock()

	release := func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}

	if err := os.MkdirAll(l.dir, 0755); err != nil {
		release()
		return nil, fmt.Errorf("failed to create lock dir: %w", err)
	}

	path := l.path(key)
	if err := l.createLockFile(path); err != nil {
		release()
		return nil, err
	}

	stop := l.heartbeat(path)

	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			os.Remove(path)
			release()
		})
	}, nil
}

// heartbeat refreshes the lock file mtime until the returned func is called
func (l *Local) heartbeat(path string) func() {
	interval := l.ttl / 3
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
				now := time.Now()
				os.Chtimes(path, now, now)
			}
		}
	}()

	return func() {
		close(done)
		<-exited
	}
}

func (l *Local) createLockFile(path string) error {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			f.WriteString(strconv.Itoa(os.Getpid()))
			return f.Close()
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("failed to create lock file: %w", err)
		}

		if !l.stale(path) {
			return ErrBusy
		}
		// owner is gone, retry once after removing it
		os.Remove(path)
	}
	return ErrBusy
}

// stale reports whether the lock file at path was left behind by a process
// that is no longer running
func (l *Local) stale(path string) bool {
	info, err := os.Stat(path)
	if err != nil || l.ttl <= 0 || time.Since(info.ModTime()) < l.ttl {
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		// unreadable owner, fall back to age alone
		return true
	}
	return !processAlive(pid)
}
