package manager

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"vhostmgr/internal/acme"
	"vhostmgr/internal/backend"
	"vhostmgr/internal/cache"
	"vhostmgr/internal/cert"
	"vhostmgr/internal/config"
	"vhostmgr/internal/lock"
	"vhostmgr/internal/metrics"
	"vhostmgr/internal/registry"
	"vhostmgr/internal/reload"
)

// Build wires a Manager from configuration. The returned close func
// releases the Redis connection when one was opened.
func Build(ctx context.Context, cfg *config.Config, log *logrus.Logger, m *metrics.Metrics) (*Manager, func(), error) {
	if err := cfg.Dirs.EnsureDirectories(); err != nil {
		return nil, nil, err
	}

	b := backend.New(cfg, log)

	issuer, err := acme.NewIssuer(cfg, b)
	if err != nil {
		return nil, nil, err
	}

	var rdb *redis.Client
	closeFn := func() {}
	if cfg.Lock.Backend == config.LockRedis {
		rdb, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		closeFn = func() { rdb.Close() }
	}

	var universal redis.UniversalClient
	if rdb != nil {
		universal = rdb
	}
	locker, err := lock.New(cfg.Lock.Backend, cfg.Dirs.RunDir, cfg.Lock.TTL, universal)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("failed to create locker: %w", err)
	}

	store := registry.NewStore(cfg.Dirs)
	inspector := cert.NewInspector(cfg.Dirs, b, log)
	coordinator := reload.NewCoordinator(b, store, log)
	orchestrator := acme.NewOrchestrator(cfg.Dirs, store, inspector, coordinator, b, issuer, log)

	mgr := New(Deps{
		Dirs:         cfg.Dirs,
		Store:        store,
		Inspector:    inspector,
		Coordinator:  coordinator,
		Orchestrator: orchestrator,
		Backend:      b,
		Locker:       locker,
		Metrics:      m,
		Logger:       log,
	})

	log.WithFields(logrus.Fields{
		"backend": b.Name(),
		"issuer":  issuer.Name(),
		"lock":    cfg.Lock.Backend,
	}).Debug("manager initialized")

	if cfg.SandboxSeed {
		if res := mgr.Seed(ctx); !res.Success {
			closeFn()
			return nil, nil, fmt.Errorf("failed to seed sample data: %s", res.Message)
		}
	}

	return mgr, closeFn, nil
}
