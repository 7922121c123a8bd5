package manager

import (
	"context"
	"os"
	"testing"
	"time"

	"vhostmgr/internal/backend"
	"vhostmgr/internal/cert"
)

func TestSeed(t *testing.T) {
	env := newTestEnv(t)

	res := env.mgr.Seed(context.Background())
	if !res.Success || res.Message != "Seeded 4 sample domains" {
		t.Fatalf("Expected 4 domains seeded, got %+v", res)
	}

	tests := []struct {
		name     string
		withCert bool
		daysLeft int
		status   cert.Status
	}{
		{"example.com", true, 45, cert.StatusValid},
		{"blog.example.com", true, 15, cert.StatusExpiringSoon},
		{"old.example.com", true, -5, cert.StatusExpired},
		{"shop.example.com", false, 0, cert.StatusNoSSL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := os.Lstat(env.dirs.EnabledPath(tt.name)); err != nil {
				t.Errorf("Expected %s to be enabled: %v", tt.name, err)
			}

			info, err := os.Stat(env.dirs.CertPath(tt.name))
			if !tt.withCert {
				if err == nil {
					t.Errorf("Expected no certificate for %s", tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected certificate for %s: %v", tt.name, err)
			}

			days := cert.DaysLeft(info.ModTime().Add(backend.SandboxCertLifetime), time.Now())
			if days != tt.daysLeft {
				t.Errorf("Expected %d days left, got %d", tt.daysLeft, days)
			}
			if got := cert.Classify(days); got != tt.status {
				t.Errorf("Expected %s, got %s", tt.status, got)
			}
		})
	}

	// a second run keeps what is there
	before, _ := os.Stat(env.dirs.CertPath("example.com"))
	res = env.mgr.Seed(context.Background())
	if !res.Success || res.Message != "Seeded 0 sample domains" {
		t.Errorf("Expected nothing new on second seed, got %+v", res)
	}
	after, _ := os.Stat(env.dirs.CertPath("example.com"))
	if !before.ModTime().Equal(after.ModTime()) {
		t.Errorf("Expected certificate mtime to be kept, got %v then %v", before.ModTime(), after.ModTime())
	}
}
