package backend

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"vhostmgr/internal/config"
)

// SandboxCertLifetime approximates a certificate's lifetime from its file's mtime
const SandboxCertLifetime = 90 * 24 * time.Hour

// Sandbox only touches files. Nginx is never tested or reloaded; the
// operator runs ManualSteps instead.
type Sandbox struct {
	dirs   *config.DirConfig
	logger *logrus.Entry
}

// NewSandbox creates a file-only backend
func NewSandbox(dirs *config.DirConfig, log *logrus.Logger) *Sandbox {
	return &Sandbox{
		dirs:   dirs,
		logger: log.WithField("component", "backend.sandbox"),
	}
}

// Name returns the backend name
func (s *Sandbox) Name() string {
	return config.BackendSandbox
}

// RunCommand always fails
func (s *Sandbox) RunCommand(ctx context.Context, name string, args ...string) (string, error) {
	return "", fmt.Errorf("run %s: %w", name, ErrUnsupported)
}

// TestConfig is a no-op
func (s *Sandbox) TestConfig(ctx context.Context) error {
	s.logger.Debug("skipping nginx test")
	return nil
}

// Reload is a no-op
func (s *Sandbox) Reload(ctx context.Context) error {
	s.logger.Debug("skipping nginx reload")
	return nil
}

// ToolchainInstalled is always false
func (s *Sandbox) ToolchainInstalled() bool {
	return false
}

// InstallToolchain always fails
func (s *Sandbox) InstallToolchain(ctx context.Context) error {
	return fmt.Errorf("install acme.sh: %w", ErrUnsupported)
}

// PrepareWebroot creates the webroot without changing ownership
func (s *Sandbox) PrepareWebroot(ctx context.Context) error {
	if err := os.MkdirAll(s.dirs.Webroot, 0755); err != nil {
		return fmt.Errorf("failed to create webroot: %w", err)
	}
	return nil
}

// CertificateEndDate returns mtime + SandboxCertLifetime.
// Only an approximation for demos and tests; the certificate is not parsed.
func (s *Sandbox) CertificateEndDate(ctx context.Context, certPath string) (time.Time, error) {
	info, err := os.Stat(certPath)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat certificate: %w", err)
	}
	return info.ModTime().Add(SandboxCertLifetime), nil
}

// ManualSteps returns the commands needed to activate file changes
func (s *Sandbox) ManualSteps() []string {
	return []string{
		"Run: sudo " + s.dirs.NginxTestCmd,
		"Run: sudo " + s.dirs.NginxReloadCmd,
	}
}
