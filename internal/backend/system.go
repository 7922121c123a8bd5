package backend

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"vhostmgr/internal/config"
)

// AcmeShInstallCmd installs acme.sh into the invoking user's home
const AcmeShInstallCmd = "curl https://get.acme.sh | sh"

// opensslDateLayout matches "notAfter=Jan  2 15:04:05 2026 GMT"
const opensslDateLayout = "Jan _2 15:04:05 2006 MST"

// System runs real commands on the host
type System struct {
	dirs    *config.DirConfig
	timeout time.Duration
	logger  *logrus.Entry
}

// NewSystem creates a backend that executes real system commands.
// Every command is bounded by timeout.
func NewSystem(dirs *config.DirConfig, timeout time.Duration, log *logrus.Logger) *System {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &System{
		dirs:    dirs,
		timeout: timeout,
		logger:  log.WithField("component", "backend.system"),
	}
}

// Name returns the backend name
func (s *System) Name() string {
	return config.BackendSystem
}

// RunCommand executes name with args and returns the combined output
func (s *System) RunCommand(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	// children holding the pipe open must not outlive the timeout
	cmd.WaitDelay = time.Second
	output, err := cmd.CombinedOutput()

	s.logger.WithFields(logrus.Fields{
		"cmd":      name,
		"args":     strings.Join(args, " "),
		"duration": time.Since(start).String(),
	}).Debug("command finished")

	if ctx.Err() == context.DeadlineExceeded {
		return string(output), fmt.Errorf("%w: %s timed out after %s", ErrCommandFailed, name, s.timeout)
	}
	if err != nil {
		return string(output), fmt.Errorf("%w: %s: %v", ErrCommandFailed, name, err)
	}
	return string(output), nil
}

func (s *System) shell(ctx context.Context, command string) (string, error) {
	return s.RunCommand(ctx, "sh", "-c", command)
}

// TestConfig runs the configured nginx test command
func (s *System) TestConfig(ctx context.Context) error {
	output, err := s.shell(ctx, s.dirs.NginxTestCmd)
	if err != nil {
		return fmt.Errorf("nginx test failed: %w, output: %s", err, output)
	}
	return nil
}

// Reload runs the configured nginx reload command
func (s *System) Reload(ctx context.Context) error {
	output, err := s.shell(ctx, s.dirs.NginxReloadCmd)
	if err != nil {
		return fmt.Errorf("nginx reload failed: %w, output: %s", err, output)
	}
	return nil
}

// ToolchainInstalled checks for <AcmeHome>/acme.sh
func (s *System) ToolchainInstalled() bool {
	_, err := os.Stat(filepath.Join(s.dirs.AcmeHome, "acme.sh"))
	return err == nil
}

// InstallToolchain installs acme.sh
func (s *System) InstallToolchain(ctx context.Context) error {
	s.logger.Info("installing acme.sh")
	output, err := s.shell(ctx, AcmeShInstallCmd)
	if err != nil {
		return fmt.Errorf("failed to install acme.sh: %w, output: %s", err, output)
	}
	return nil
}

// PrepareWebroot creates the challenge webroot and hands it to the nginx user
func (s *System) PrepareWebroot(ctx context.Context) error {
	if err := os.MkdirAll(s.dirs.Webroot, 0755); err != nil {
		return fmt.Errorf("failed to create webroot: %w", err)
	}

	if s.dirs.WebrootOwner == "" {
		return nil
	}

	// ownership is best effort, a wrong owner only shows up as a failed challenge
	if output, err := s.RunCommand(ctx, "chown", "-R", s.dirs.WebrootOwner, s.dirs.Webroot); err != nil {
		s.logger.WithError(err).WithField("output", output).Warn("failed to chown webroot")
	}
	return nil
}

// CertificateEndDate asks openssl for the certificate's notAfter field
func (s *System) CertificateEndDate(ctx context.Context, certPath string) (time.Time, error) {
	output, err := s.RunCommand(ctx, "openssl", "x509", "-enddate", "-noout", "-in", certPath)
	if err != nil {
		return time.Time{}, err
	}
	return ParseEndDate(output)
}

// ManualSteps is empty, the system backend reloads nginx itself
func (s *System) ManualSteps() []string {
	return nil
}

// ParseEndDate parses openssl's "notAfter=..." output
func ParseEndDate(output string) (time.Time, error) {
	value := strings.TrimSpace(output)
	if i := strings.IndexByte(value, '='); i >= 0 {
		value = strings.TrimSpace(value[i+1:])
	}

	t, err := time.Parse(opensslDateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse end date %q: %w", value, err)
	}
	return t, nil
}
