package acme

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"vhostmgr/internal/backend"
	"vhostmgr/internal/config"
)

// Issuer obtains certificates from an ACME CA and installs them into the ssl dir
type Issuer interface {
	Name() string

	// Ready reports whether the client can be used without installing anything.
	Ready() bool

	// InstallToolchain makes the client usable.
	InstallToolchain(ctx context.Context) error

	// Issue obtains a certificate for domain and www.domain via the webroot.
	// The returned output is kept for error reporting.
	Issue(ctx context.Context, domain string, force bool) (string, error)

	// InstallCert places key and full chain into the ssl dir and reloads nginx.
	InstallCert(ctx context.Context, domain string) (string, error)
}

// NewIssuer creates the issuer selected by cfg.ACME.Client
func NewIssuer(cfg *config.Config, b backend.Backend) (Issuer, error) {
	switch cfg.ACME.Client {
	case config.ACMEClientLego:
		issuer, err := NewLegoIssuer(cfg.ACME, cfg.Dirs, b)
		if err != nil {
			return nil, err
		}
		return issuer, nil
	case config.ACMEClientAcmeSh:
		return NewAcmeShIssuer(cfg.Dirs, b), nil
	default:
		return nil, fmt.Errorf("unknown ACME client %q", cfg.ACME.Client)
	}
}

// AcmeShIssuer drives the acme.sh shell client through the backend
type AcmeShIssuer struct {
	dirs    *config.DirConfig
	backend backend.Backend
}

// NewAcmeShIssuer creates an acme.sh issuer
func NewAcmeShIssuer(dirs *config.DirConfig, b backend.Backend) *AcmeShIssuer {
	return &AcmeShIssuer{dirs: dirs, backend: b}
}

// Name returns the client name
func (i *AcmeShIssuer) Name() string {
	return config.ACMEClientAcmeSh
}

func (i *AcmeShIssuer) bin() string {
	return filepath.Join(i.dirs.AcmeHome, "acme.sh")
}

// Ready checks for the acme.sh script
func (i *AcmeShIssuer) Ready() bool {
	return i.backend.ToolchainInstalled()
}

// InstallToolchain installs acme.sh
func (i *AcmeShIssuer) InstallToolchain(ctx context.Context) error {
	return i.backend.InstallToolchain(ctx)
}

// IssueArgs returns the acme.sh arguments used to issue a certificate
func (i *AcmeShIssuer) IssueArgs(domain string, force bool) []string {
	args := []string{"--issue", "-d", domain, "-d", "www." + domain, "--webroot", i.dirs.Webroot}
	if force {
		args = append(args, "--force")
	}
	return args
}

// InstallArgs returns the acme.sh arguments used to install a certificate
func (i *AcmeShIssuer) InstallArgs(domain string) []string {
	return []string{
		"--install-cert", "-d", domain,
		"--key-file", i.dirs.KeyPath(domain),
		"--fullchain-file", i.dirs.CertPath(domain),
		"--reloadcmd", i.dirs.NginxReloadCmd,
	}
}

// Issue runs acme.sh --issue
func (i *AcmeShIssuer) Issue(ctx context.Context, domain string, force bool) (string, error) {
	return i.backend.RunCommand(ctx, i.bin(), i.IssueArgs(domain, force)...)
}

// InstallCert runs acme.sh --install-cert
func (i *AcmeShIssuer) InstallCert(ctx context.Context, domain string) (string, error) {
	if err := os.MkdirAll(i.dirs.SSLDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create ssl dir: %w", err)
	}
	return i.backend.RunCommand(ctx, i.bin(), i.InstallArgs(domain)...)
}
