package acme

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"vhostmgr/internal/logger"
	"vhostmgr/internal/result"
)

// RenewSource supplies the domains due for renewal and renews them
type RenewSource interface {
	RenewalCandidates(ctx context.Context) ([]string, error)
	InstallSSL(ctx context.Context, name string, force bool) result.Result
}

// RenewWorkerConfig holds configuration for the renew worker
type RenewWorkerConfig struct {
	Enabled     bool
	IntervalSec int
}

// RenewWorker periodically renews expiring and expired certificates
type RenewWorker struct {
	source   RenewSource
	config   RenewWorkerConfig
	logger   *logrus.Entry
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	interval time.Duration
}

// NewRenewWorker creates a new RenewWorker
func NewRenewWorker(source RenewSource, cfg RenewWorkerConfig, log *logrus.Logger) *RenewWorker {
	ctx, cancel := context.WithCancel(context.Background())

	interval := time.Duration(cfg.IntervalSec) * time.Second
	if interval <= 0 {
		interval = 12 * time.Hour
	}

	return &RenewWorker{
		source:   source,
		config:   cfg,
		logger:   log.WithField("component", "renew-worker"),
		ctx:      ctx,
		cancel:   cancel,
		interval: interval,
	}
}

// Start starts the worker
func (w *RenewWorker) Start() {
	if !w.config.Enabled {
		w.logger.Info("Disabled, not starting")
		return
	}

	w.logger.WithField("interval", w.interval.String()).Info("Starting renew worker...")

	w.wg.Add(1)
	go w.run()
}

// Stop stops the worker and waits for the current tick to finish
func (w *RenewWorker) Stop() {
	w.cancel()
	w.wg.Wait()
}

func (w *RenewWorker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run immediately on start
	w.Tick(w.ctx)

	for {
		select {
		case <-ticker.C:
			w.Tick(w.ctx)
		case <-w.ctx.Done():
			w.logger.Info("Stopped")
			return
		}
	}
}

// Tick renews every current candidate once and returns how many succeeded
func (w *RenewWorker) Tick(ctx context.Context) int {
	candidates, err := w.source.RenewalCandidates(ctx)
	if err != nil {
		w.logger.WithError(err).Error("Failed to get renewal candidates")
		return 0
	}

	if len(candidates) == 0 {
		w.logger.Debug("No renewal candidates found")
		return 0
	}

	w.logger.WithField("count", len(candidates)).Info("Found renewal candidates")

	renewed := 0
	for _, domain := range candidates {
		if ctx.Err() != nil {
			break
		}

		opLog := w.logger.WithFields(logrus.Fields{
			"op_id":  logger.NewOpID(),
			"domain": domain,
		})

		res := w.source.InstallSSL(logger.WithEntry(ctx, opLog), domain, false)
		if !res.Success {
			opLog.WithField("kind", res.Kind).Warn(res.Message)
			continue
		}

		opLog.Info("certificate renewed")
		renewed++
	}

	return renewed
}
