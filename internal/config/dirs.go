package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirConfig holds the on-disk layout managed by vhostmgr.
// The three directories SitesAvailable, SitesEnabled and SSLDir are the
// entire persistent state.
type DirConfig struct {
	NginxDir       string // Default: /etc/nginx
	SitesAvailable string // Default: <NginxDir>/sites-available
	SitesEnabled   string // Default: <NginxDir>/sites-enabled
	SSLDir         string // Default: /etc/ssl/acme
	Webroot        string // Default: /var/www/letsencrypt
	WebrootOwner   string // Default: nginx:nginx
	AcmeHome       string // Default: /root/.acme.sh
	RunDir         string // Default: /var/run/vhostmgr
	NginxTestCmd   string // Default: nginx -t
	NginxReloadCmd string // Default: systemctl reload nginx
}

// valueFunc resolves a setting from env/INI with a default.
type valueFunc func(envKey, iniSection, iniKey, defaultValue string) string

// NewDirConfig creates a directory configuration from environment variables.
func NewDirConfig(backend string) *DirConfig {
	return newDirConfig(envValue, backend)
}

func newDirConfig(get valueFunc, backend string) *DirConfig {
	// The sandbox backend keeps everything under a local directory so it can
	// run unprivileged.
	if backend == BackendSandbox {
		base := get("SANDBOX_DIR", "sandbox", "dir", "nginx_config")
		return &DirConfig{
			NginxDir:       base,
			SitesAvailable: get("SITES_AVAILABLE_DIR", "dirs", "sites_available", filepath.Join(base, "sites-available")),
			SitesEnabled:   get("SITES_ENABLED_DIR", "dirs", "sites_enabled", filepath.Join(base, "sites-enabled")),
			SSLDir:         get("SSL_DIR", "dirs", "ssl", filepath.Join(base, "ssl")),
			Webroot:        get("ACME_WEBROOT", "dirs", "webroot", filepath.Join(base, "letsencrypt")),
			WebrootOwner:   get("ACME_WEBROOT_OWNER", "dirs", "webroot_owner", ""),
			AcmeHome:       get("ACME_HOME", "acme", "home", filepath.Join(base, "acme.sh")),
			RunDir:         get("RUN_DIR", "dirs", "run", filepath.Join(base, "run")),
			NginxTestCmd:   get("NGINX_TEST_CMD", "nginx", "test_cmd", "nginx -t"),
			NginxReloadCmd: get("NGINX_RELOAD_CMD", "nginx", "reload_cmd", "systemctl reload nginx"),
		}
	}

	nginxDir := get("NGINX_DIR", "nginx", "dir", "/etc/nginx")
	return &DirConfig{
		NginxDir:       nginxDir,
		SitesAvailable: get("SITES_AVAILABLE_DIR", "dirs", "sites_available", filepath.Join(nginxDir, "sites-available")),
		SitesEnabled:   get("SITES_ENABLED_DIR", "dirs", "sites_enabled", filepath.Join(nginxDir, "sites-enabled")),
		SSLDir:         get("SSL_DIR", "dirs", "ssl", "/etc/ssl/acme"),
		Webroot:        get("ACME_WEBROOT", "dirs", "webroot", "/var/www/letsencrypt"),
		WebrootOwner:   get("ACME_WEBROOT_OWNER", "dirs", "webroot_owner", "nginx:nginx"),
		AcmeHome:       get("ACME_HOME", "acme", "home", "/root/.acme.sh"),
		RunDir:         get("RUN_DIR", "dirs", "run", "/var/run/vhostmgr"),
		NginxTestCmd:   get("NGINX_TEST_CMD", "nginx", "test_cmd", "nginx -t"),
		NginxReloadCmd: get("NGINX_RELOAD_CMD", "nginx", "reload_cmd", "systemctl reload nginx"),
	}
}

// ConfigPath returns the sites-available path for a domain
func (c *DirConfig) ConfigPath(domain string) string {
	return filepath.Join(c.SitesAvailable, domain+".conf")
}

// EnabledPath returns the sites-enabled path for a domain
func (c *DirConfig) EnabledPath(domain string) string {
	return filepath.Join(c.SitesEnabled, domain+".conf")
}

// CertPath returns the full-chain certificate path for a domain
func (c *DirConfig) CertPath(domain string) string {
	return filepath.Join(c.SSLDir, domain+".crt")
}

// KeyPath returns the private key path for a domain
func (c *DirConfig) KeyPath(domain string) string {
	return filepath.Join(c.SSLDir, domain+".key")
}

// EnsureDirectories creates the registry and certificate directories
func (c *DirConfig) EnsureDirectories() error {
	dirs := []string{
		c.SitesAvailable,
		c.SitesEnabled,
		c.SSLDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
