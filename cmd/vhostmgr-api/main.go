// Command vhostmgr-api serves the domain manager over HTTP and Socket.IO
// and runs the certificate renew worker.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	v1 "vhostmgr/api/v1"
	"vhostmgr/api/v1/middleware"
	"vhostmgr/internal/acme"
	"vhostmgr/internal/auth"
	"vhostmgr/internal/config"
	"vhostmgr/internal/logger"
	"vhostmgr/internal/manager"
	"vhostmgr/internal/metrics"
	"vhostmgr/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateAPI(); err != nil {
		logrus.Fatalf("Invalid config: %v", err)
	}

	log := logger.New(cfg.Log, nil)
	log.Info("✓ Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	mgr, closeFn, err := manager.Build(ctx, cfg, log, m)
	if err != nil {
		log.Fatalf("Failed to initialize domain manager: %v", err)
	}
	defer closeFn()
	log.Info("✓ Domain manager initialized")

	tokens, err := auth.NewTokens(cfg.JWT)
	if err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}

	hub := ws.NewHub(tokens, mgr, cfg.HTTP.CORSOrigins, log)
	hub.Start()
	defer hub.Close()
	mgr.SetNotifier(hub)
	log.Info("✓ Socket.IO server initialized")

	renewWorker := acme.NewRenewWorker(mgr, acme.RenewWorkerConfig{
		Enabled:     cfg.RenewWorker.Enabled,
		IntervalSec: cfg.RenewWorker.IntervalSec,
	}, log)
	renewWorker.Start()
	defer renewWorker.Stop()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	v1.SetupRouter(r, v1.Deps{
		Domains:      mgr,
		Admin:        auth.NewAdmin(cfg.Admin),
		Tokens:       tokens,
		LoginLimiter: middleware.NewRateLimiter(cfg.HTTP.LoginRatePerMin, cfg.HTTP.LoginBurst),
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		Metrics:      m.Handler(),
		Socket:       hub.Handler(),
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		log.Infof("✓ Server starting on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
}
