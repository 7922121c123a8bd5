package backend

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"vhostmgr/internal/config"
)

var (
	// ErrCommandFailed wraps every non-zero exit, including timeouts
	ErrCommandFailed = errors.New("command failed")
	// ErrUnsupported is returned by backends that cannot run external tools
	ErrUnsupported = errors.New("not supported by this backend")
)

// Backend is the boundary to everything outside the three managed
// directories: nginx, the ACME toolchain and the TLS tooling.
type Backend interface {
	Name() string

	// RunCommand runs an external program and returns its combined output.
	RunCommand(ctx context.Context, name string, args ...string) (string, error)

	// TestConfig validates the live nginx configuration.
	TestConfig(ctx context.Context) error

	// Reload signals the running nginx to pick up new configuration.
	Reload(ctx context.Context) error

	// ToolchainInstalled reports whether the ACME shell client is present.
	ToolchainInstalled() bool

	// InstallToolchain installs the ACME shell client.
	InstallToolchain(ctx context.Context) error

	// PrepareWebroot ensures the shared challenge directory exists with the right owner.
	PrepareWebroot(ctx context.Context) error

	// CertificateEndDate returns the not-after time of the certificate at certPath.
	CertificateEndDate(ctx context.Context, certPath string) (time.Time, error)

	// ManualSteps lists what an operator still has to run after a mutation.
	// Empty when the backend activates changes itself.
	ManualSteps() []string
}

// New creates the backend selected by cfg.Backend
func New(cfg *config.Config, log *logrus.Logger) Backend {
	if cfg.Backend == config.BackendSandbox {
		return NewSandbox(cfg.Dirs, log)
	}
	return NewSystem(cfg.Dirs, cfg.CommandTimeout, log)
}
