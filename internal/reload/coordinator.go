package reload

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"vhostmgr/internal/renderer"
)

var (
	// ErrConfigTest means nginx rejected the configuration; nothing was reloaded
	ErrConfigTest = errors.New("nginx configuration test failed")
	// ErrReload means the configuration passed but the reload signal failed
	ErrReload = errors.New("nginx reload failed")
)

// Server validates and reloads nginx
type Server interface {
	TestConfig(ctx context.Context) error
	Reload(ctx context.Context) error
}

// TextStore gives raw access to a domain's config text
type TextStore interface {
	ReadText(domain string) (string, error)
	WriteText(domain, text string) error
}

// Coordinator is the single gate through which config changes take effect
type Coordinator struct {
	server Server
	store  TextStore
	logger *logrus.Entry
}

// NewCoordinator creates a reload coordinator
func NewCoordinator(server Server, store TextStore, log *logrus.Logger) *Coordinator {
	return &Coordinator{
		server: server,
		store:  store,
		logger: log.WithField("component", "reload"),
	}
}

// Activate tests the configuration and, only if it passes, reloads nginx.
func (c *Coordinator) Activate(ctx context.Context) error {
	if err := c.server.TestConfig(ctx); err != nil {
		c.logger.WithError(err).Warn("config test failed, not reloading")
		return fmt.Errorf("%w: %v", ErrConfigTest, err)
	}

	if err := c.server.Reload(ctx); err != nil {
		c.logger.WithError(err).Warn("reload failed")
		return fmt.Errorf("%w: %v", ErrReload, err)
	}

	c.logger.Debug("nginx reloaded")
	return nil
}

// PatchInjectBlock inserts block after domain's server_name line unless
// marker is already in the file. The file is written only when it changes.
// A config without the declaration line is left as is and reported as not patched.
func (c *Coordinator) PatchInjectBlock(domain, marker string, block []string) (bool, error) {
	text, err := c.store.ReadText(domain)
	if err != nil {
		return false, err
	}

	patched, changed := renderer.InjectAfterDeclaration(text, domain, marker, block)
	if !changed {
		if !renderer.HasDeclaration(text, domain) {
			c.logger.WithFields(logrus.Fields{
				"domain": domain,
				"marker": marker,
			}).Warn("server_name declaration not found, config left unpatched")
		}
		return false, nil
	}

	if err := c.store.WriteText(domain, patched); err != nil {
		return false, err
	}

	c.logger.WithFields(logrus.Fields{
		"domain": domain,
		"marker": marker,
	}).Info("config patched")
	return true, nil
}
