package manager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"vhostmgr/internal/backend"
	"vhostmgr/internal/result"
)

type sampleDomain struct {
	name     string
	daysLeft int
	withCert bool
}

// sampleDomains cover every SSL status once
var sampleDomains = []sampleDomain{
	{"example.com", 45, true},
	{"blog.example.com", 15, true},
	{"old.example.com", -5, true},
	{"shop.example.com", 0, false},
}

// Seed adds demo domains with placeholder certificates whose mtimes make the
// sandbox backend report them as valid, expiring soon and expired. Domains
// and certificates that already exist are left alone.
func (m *Manager) Seed(ctx context.Context) Result {
	if m.dirs == nil {
		return result.Fail(KindInternalError, "Seeding requires a directory layout")
	}

	added := 0
	for _, d := range sampleDomains {
		res := m.AddDomain(ctx, d.name, false)
		if !res.Success && res.Kind != KindAlreadyExists {
			return res
		}
		if res.Success {
			added++
		}

		if !d.withCert {
			continue
		}
		if err := m.writeSampleCert(d.name, d.daysLeft); err != nil {
			return result.Fail(KindInternalError, fmt.Sprintf("Failed to seed certificate for %s: %v", d.name, err))
		}
	}

	m.logger.WithField("added", added).Info("sample data seeded")
	return result.OK(fmt.Sprintf("Seeded %d sample domains", added))
}

func (m *Manager) writeSampleCert(domain string, daysLeft int) error {
	certPath := m.dirs.CertPath(domain)
	if _, err := os.Stat(certPath); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.WriteFile(certPath, []byte("# Sample certificate for "+domain+"\n"), 0644); err != nil {
		return err
	}
	if err := os.WriteFile(m.dirs.KeyPath(domain), []byte("# Sample key for "+domain+"\n"), 0600); err != nil {
		return err
	}

	// the extra hour keeps the floored day count at daysLeft
	mtime := time.Now().Add(-backend.SandboxCertLifetime + time.Duration(daysLeft)*24*time.Hour + time.Hour)
	return os.Chtimes(certPath, mtime, mtime)
}
