package manager

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"vhostmgr/internal/acme"
	"vhostmgr/internal/backend"
	"vhostmgr/internal/cert"
	"vhostmgr/internal/config"
	"vhostmgr/internal/domainutil"
	"vhostmgr/internal/lock"
	"vhostmgr/internal/logger"
	"vhostmgr/internal/metrics"
	"vhostmgr/internal/registry"
	"vhostmgr/internal/reload"
	"vhostmgr/internal/renderer"
	"vhostmgr/internal/result"
)

// inspectConcurrency bounds parallel expiry lookups during a listing
const inspectConcurrency = 8

// Manager composes the registry, certificate and reload components into
// the public domain operations. It holds no state of its own.
type Manager struct {
	dirs         *config.DirConfig
	store        *registry.Store
	inspector    *cert.Inspector
	coordinator  *reload.Coordinator
	orchestrator *acme.Orchestrator
	backend      backend.Backend
	locker       lock.Locker
	metrics      *metrics.Metrics
	notifier     Notifier
	logger       *logrus.Entry
}

// Deps holds the collaborators of a Manager
type Deps struct {
	Dirs         *config.DirConfig
	Store        *registry.Store
	Inspector    *cert.Inspector
	Coordinator  *reload.Coordinator
	Orchestrator *acme.Orchestrator
	Backend      backend.Backend
	Locker       lock.Locker
	Metrics      *metrics.Metrics
	Logger       *logrus.Logger
}

// New creates a domain manager
func New(d Deps) *Manager {
	return &Manager{
		dirs:         d.Dirs,
		store:        d.Store,
		inspector:    d.Inspector,
		coordinator:  d.Coordinator,
		orchestrator: d.Orchestrator,
		backend:      d.Backend,
		locker:       d.Locker,
		metrics:      d.Metrics,
		logger:       d.Logger.WithField("component", "manager"),
	}
}

// SetNotifier registers n to receive domain change events
func (m *Manager) SetNotifier(n Notifier) {
	m.notifier = n
}

func (m *Manager) notify(eventType, domain string) {
	if m.notifier != nil {
		m.notifier.DomainsChanged(eventType, domain)
	}
}

// run wraps a mutating operation: op id, per-domain lock, panic recovery, metrics.
func (m *Manager) run(ctx context.Context, operation, domain string, fn func(ctx context.Context, log *logrus.Entry) Result) (res Result) {
	start := time.Now()
	log := logger.FromContext(ctx, m.logger).WithFields(logrus.Fields{
		"op":     operation,
		"domain": domain,
	})
	if _, ok := log.Data["op_id"]; !ok {
		log = log.WithField("op_id", logger.NewOpID())
	}
	ctx = logger.WithEntry(ctx, log)

	defer func() {
		if r := recover(); r != nil {
			log.WithField("stack", string(debug.Stack())).Errorf("panic: %v", r)
			res = result.Fail(KindInternalError, fmt.Sprintf("Internal error: %v", r))
		}
		m.metrics.ObserveOperation(operation, string(res.Kind), time.Since(start))
		log.WithFields(logrus.Fields{
			"success":  res.Success,
			"kind":     res.Kind,
			"duration": time.Since(start).String(),
		}).Info(res.Message)
	}()

	if !domainutil.Validate(domain) {
		return result.Fail(KindInvalidName, "Invalid domain name format")
	}

	unlock, err := m.locker.Acquire(ctx, domain)
	if err != nil {
		if errors.Is(err, lock.ErrBusy) {
			return result.Fail(KindInternalError, fmt.Sprintf("Another operation on %s is in progress", domain))
		}
		return result.Fail(KindInternalError, fmt.Sprintf("Failed to lock %s: %v", domain, err))
	}
	defer unlock()

	return fn(ctx, log)
}

// AddDomain creates, enables and activates the config for name. A failed
// activation removes both entries again. With installSSL a certificate is
// issued afterwards; its outcome never fails the add itself.
func (m *Manager) AddDomain(ctx context.Context, name string, installSSL bool) Result {
	return m.run(ctx, "add", name, func(ctx context.Context, log *logrus.Entry) Result {
		text, err := renderer.Render(name)
		if err != nil {
			return result.Fail(KindInvalidName, "Invalid domain name format")
		}

		if err := m.store.Create(name, text); err != nil {
			if errors.Is(err, registry.ErrAlreadyExists) {
				return result.Fail(KindAlreadyExists, fmt.Sprintf("Domain %s already exists", name))
			}
			return result.Fail(KindInternalError, fmt.Sprintf("Error adding domain: %v", err))
		}

		if err := m.store.Enable(name); err != nil {
			m.rollbackAdd(name, log)
			return result.Fail(KindInternalError, fmt.Sprintf("Error adding domain: %v", err))
		}

		if err := m.coordinator.Activate(ctx); err != nil {
			m.rollbackAdd(name, log)
			return result.Fail(KindReloadFailed, "Failed to reload nginx")
		}

		m.notify(EventAdd, name)

		res := result.OK(fmt.Sprintf("Domain %s added successfully", name))
		res.Domain = name

		manualSteps := m.backend.ManualSteps()
		if len(manualSteps) > 0 {
			res.Message = fmt.Sprintf("Domain %s configuration created. Manual nginx reload required.", name)
			res.ManualSteps = manualSteps
		}

		if !installSSL {
			return res
		}

		if len(manualSteps) > 0 {
			res.SSLMessage = "SSL configuration prepared. Manual SSL installation required."
			res.SSLSteps = m.orchestrator.SSLSteps(name)
			return res
		}

		sslRes := m.orchestrator.Issue(ctx, name, false)
		installed := sslRes.Success
		res.SSLInstalled = &installed
		if !installed {
			res.SSLMessage = sslRes.Message
		} else {
			m.notify(EventSSL, name)
		}
		return res
	})
}

// rollbackAdd is best effort; the add is already failing.
func (m *Manager) rollbackAdd(name string, log *logrus.Entry) {
	if err := m.store.Disable(name); err != nil {
		log.WithError(err).Warn("rollback: failed to disable")
	}
	if err := m.store.Remove(name); err != nil && !errors.Is(err, registry.ErrNotFound) {
		log.WithError(err).Warn("rollback: failed to remove config")
	}
}

// DeleteDomain removes name and activates the result. A failed activation
// is reported but the files stay deleted.
func (m *Manager) DeleteDomain(ctx context.Context, name string) Result {
	return m.run(ctx, "delete", name, func(ctx context.Context, log *logrus.Entry) Result {
		if !m.store.Exists(name) {
			return result.Fail(KindNotFound, fmt.Sprintf("Domain %s not found", name))
		}

		if err := m.store.Remove(name); err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				return result.Fail(KindNotFound, fmt.Sprintf("Domain %s not found", name))
			}
			return result.Fail(KindInternalError, fmt.Sprintf("Error deleting domain: %v", err))
		}

		m.notify(EventDelete, name)

		if err := m.coordinator.Activate(ctx); err != nil {
			return result.Fail(KindReloadFailed, "Domain deleted but nginx reload failed")
		}

		res := result.OK(fmt.Sprintf("Domain %s deleted successfully", name))
		if steps := m.backend.ManualSteps(); len(steps) > 0 {
			res.Message = fmt.Sprintf("Domain %s configuration deleted. Manual nginx reload required.", name)
			res.ManualSteps = steps
		}
		return res
	})
}

// InstallSSL issues or renews the certificate for name
func (m *Manager) InstallSSL(ctx context.Context, name string, force bool) Result {
	return m.run(ctx, "install_ssl", name, func(ctx context.Context, log *logrus.Entry) Result {
		res := m.orchestrator.Issue(ctx, name, force)
		if res.Success {
			m.notify(EventSSL, name)
		}
		return res
	})
}

// PrepareSSL patches the challenge location into name's config without
// reloading or issuing anything.
func (m *Manager) PrepareSSL(ctx context.Context, name string) Result {
	return m.run(ctx, "prepare_ssl", name, func(ctx context.Context, log *logrus.Entry) Result {
		return m.orchestrator.Prepare(ctx, name)
	})
}

// ListDomains joins the registry listing with certificate inspection.
// Entries that vanish or fail inspection mid-listing degrade instead of
// failing the whole call.
func (m *Manager) ListDomains(ctx context.Context) ([]DomainRecord, error) {
	entries, err := m.store.List()
	if err != nil {
		return nil, err
	}

	infos := make([]cert.Info, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(inspectConcurrency)
	for i, entry := range entries {
		g.Go(func() error {
			infos[i] = m.inspector.Inspect(gctx, entry.Name)
			return nil
		})
	}
	// workers never fail
	_ = g.Wait()

	records := make([]DomainRecord, 0, len(entries))
	byStatus := map[string]int{}
	for i, entry := range entries {
		info := infos[i]
		record := DomainRecord{
			ID:           len(records) + 1,
			Name:         entry.Name,
			Enabled:      m.store.IsEnabled(entry.Name),
			SSLStatus:    info.Status,
			DaysToExpire: info.DaysLeft,
			CreatedAt:    entry.CreatedAt.Format(time.RFC3339),
		}
		if info.ExpiryDate != nil {
			date := info.ExpiryDate.Format("2006-01-02")
			record.SSLExpiryDate = &date
		}
		records = append(records, record)
		byStatus[string(info.Status)]++
	}

	m.metrics.SetDomains(byStatus)
	return records, nil
}

// GetStats aggregates ListDomains
func (m *Manager) GetStats(ctx context.Context) (Stats, error) {
	records, err := m.ListDomains(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Aggregate(records), nil
}

// Aggregate counts records by certificate status
func Aggregate(records []DomainRecord) Stats {
	stats := Stats{TotalDomains: len(records)}
	for _, r := range records {
		switch r.SSLStatus {
		case cert.StatusValid:
			stats.ActiveSSL++
		case cert.StatusExpiringSoon:
			stats.ExpiringSoon++
		case cert.StatusExpired:
			stats.Expired++
		}
	}
	return stats
}

// RenewalCandidates lists domains whose certificate is expiring soon or expired
func (m *Manager) RenewalCandidates(ctx context.Context) ([]string, error) {
	records, err := m.ListDomains(ctx)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, r := range records {
		if r.SSLStatus.NeedsRenewal() {
			names = append(names, r.Name)
		}
	}
	return names, nil
}
