package acme

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"vhostmgr/internal/cert"
	"vhostmgr/internal/config"
	"vhostmgr/internal/domainutil"
	"vhostmgr/internal/logger"
	"vhostmgr/internal/renderer"
	"vhostmgr/internal/result"
)

// ConfigStore is the part of the registry the orchestrator reads
type ConfigStore interface {
	Exists(domain string) bool
}

// CertInspector reports the state of a domain's certificate artifact
type CertInspector interface {
	HasArtifact(domain string) bool
	Inspect(ctx context.Context, domain string) cert.Info
}

// Activator patches configs and makes them live
type Activator interface {
	Activate(ctx context.Context) error
	PatchInjectBlock(domain, marker string, block []string) (bool, error)
}

// WebrootPreparer readies the shared challenge directory
type WebrootPreparer interface {
	PrepareWebroot(ctx context.Context) error
}

// Orchestrator runs the certificate issuance state machine for one domain
type Orchestrator struct {
	dirs      *config.DirConfig
	store     ConfigStore
	inspector CertInspector
	activator Activator
	webroot   WebrootPreparer
	issuer    Issuer
	logger    *logrus.Entry
}

// NewOrchestrator creates an issuance orchestrator
func NewOrchestrator(dirs *config.DirConfig, store ConfigStore, inspector CertInspector, activator Activator, webroot WebrootPreparer, issuer Issuer, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		dirs:      dirs,
		store:     store,
		inspector: inspector,
		activator: activator,
		webroot:   webroot,
		issuer:    issuer,
		logger:    log.WithField("component", "acme.orchestrator"),
	}
}

// Issue obtains and installs a certificate for domain.
//
// Steps: precheck, toolchain, challenge surface, issue, install, finalize.
// A failed reload after the challenge patch leaves the patch in place, and a
// failed final reload leaves the installed certificate in place.
func (o *Orchestrator) Issue(ctx context.Context, domain string, force bool) (res result.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = result.Fail(result.KindInternalError, fmt.Sprintf("Error installing SSL: %v", r))
		}
	}()

	log := logger.FromContext(ctx, o.logger).WithFields(logrus.Fields{
		"domain": domain,
		"issuer": o.issuer.Name(),
		"force":  force,
	})

	// Precheck
	if !domainutil.Validate(domain) {
		return result.Fail(result.KindInvalidName, "Invalid domain name format")
	}
	if !o.store.Exists(domain) {
		return result.Fail(result.KindConfigMissing, fmt.Sprintf("NGINX conf not found at %s", o.dirs.ConfigPath(domain)))
	}
	if o.inspector.HasArtifact(domain) && !force {
		info := o.inspector.Inspect(ctx, domain)
		if info.DaysLeft != nil && *info.DaysLeft > cert.RenewalWindowDays {
			return result.Fail(result.KindNotDue, fmt.Sprintf("Certificate has %d days left. Use force renewal if needed.", *info.DaysLeft))
		}
	}

	// Toolchain
	if !o.issuer.Ready() {
		log.Info("ACME client not ready, installing")
		if err := o.issuer.InstallToolchain(ctx); err != nil {
			log.WithError(err).Error("toolchain install failed")
			return result.Fail(result.KindToolchainInstallFailed, fmt.Sprintf("Failed to install %s: %v", o.issuer.Name(), err))
		}
	}

	// Challenge surface
	if err := o.webroot.PrepareWebroot(ctx); err != nil {
		return result.Fail(result.KindInternalError, fmt.Sprintf("Error installing SSL: %v", err))
	}
	if _, err := o.activator.PatchInjectBlock(domain, renderer.ChallengeMarker, renderer.ChallengeBlock(o.dirs.Webroot)); err != nil {
		return result.Fail(result.KindInternalError, fmt.Sprintf("Error installing SSL: %v", err))
	}
	if err := o.activator.Activate(ctx); err != nil {
		log.WithError(err).Error("reload for challenge setup failed")
		return result.Fail(result.KindReloadFailed, "Failed to reload nginx for challenge setup")
	}

	// Issue
	output, err := o.issuer.Issue(ctx, domain, force)
	if err != nil {
		log.WithError(err).Error("certificate issue failed")
		return result.Fail(result.KindIssuanceFailed, fmt.Sprintf("Certificate issue failed: %s", detail(output, err)))
	}

	// Install
	output, err = o.issuer.InstallCert(ctx, domain)
	if err != nil {
		log.WithError(err).Error("certificate installation failed")
		return result.Fail(result.KindInstallFailed, fmt.Sprintf("Certificate installation failed: %s", detail(output, err)))
	}

	// Finalize
	if _, err := o.activator.PatchInjectBlock(domain, renderer.TLSMarker(o.dirs.SSLDir, domain), renderer.TLSBlock(o.dirs.SSLDir, domain)); err != nil {
		return result.Fail(result.KindInternalError, fmt.Sprintf("Error installing SSL: %v", err))
	}
	if err := o.activator.Activate(ctx); err != nil {
		log.WithError(err).Error("final reload failed")
		return result.Fail(result.KindReloadFailed, "SSL installed but nginx reload failed")
	}

	log.Info("certificate installed")
	return result.OK(fmt.Sprintf("SSL certificate installed successfully for %s", domain))
}

// Prepare only patches the challenge location into domain's config and
// returns the commands an operator runs to finish issuance by hand.
func (o *Orchestrator) Prepare(ctx context.Context, domain string) result.Result {
	if !domainutil.Validate(domain) {
		return result.Fail(result.KindInvalidName, "Invalid domain name format")
	}
	if !o.store.Exists(domain) {
		return result.Fail(result.KindConfigMissing, "Domain configuration not found")
	}

	if _, err := o.activator.PatchInjectBlock(domain, renderer.ChallengeMarker, renderer.ChallengeBlock(o.dirs.Webroot)); err != nil {
		return result.Fail(result.KindInternalError, fmt.Sprintf("Error preparing SSL: %v", err))
	}

	logger.FromContext(ctx, o.logger).WithField("domain", domain).Info("SSL preparation completed")

	res := result.OK(fmt.Sprintf("SSL preparation completed for %s", domain))
	res.Domain = domain
	res.ManualSteps = append([]string{
		"Run: sudo " + o.dirs.NginxTestCmd,
		"Run: sudo " + o.dirs.NginxReloadCmd,
	}, o.SSLSteps(domain)...)
	return res
}

// SSLSteps are the manual commands that obtain a certificate for domain
func (o *Orchestrator) SSLSteps(domain string) []string {
	return []string{
		fmt.Sprintf("Run: sudo vhostmgr install_ssl %s", domain),
		fmt.Sprintf("Or run: acme.sh --issue -d %s -d www.%s --webroot %s", domain, domain, o.dirs.Webroot),
	}
}

func detail(output string, err error) string {
	if out := strings.TrimSpace(output); out != "" {
		return out
	}
	return err.Error()
}
