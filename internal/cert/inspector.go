package cert

import (
	"context"
	"errors"
	"math"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"vhostmgr/internal/config"
	"vhostmgr/internal/domainutil"
)

// EndDateReader reads a certificate's expiry through external tooling
type EndDateReader interface {
	CertificateEndDate(ctx context.Context, certPath string) (time.Time, error)
}

// Info is the inspected certificate state of one domain
type Info struct {
	HasSSL     bool
	Status     Status
	ExpiryDate *time.Time
	DaysLeft   *int
}

var noSSL = Info{HasSSL: false, Status: StatusNoSSL}

// Inspector derives Info from the certificate artifact of a domain
type Inspector struct {
	dirs   *config.DirConfig
	reader EndDateReader
	logger *logrus.Entry
	now    func() time.Time
}

// NewInspector creates a certificate inspector
func NewInspector(dirs *config.DirConfig, reader EndDateReader, log *logrus.Logger) *Inspector {
	return &Inspector{
		dirs:   dirs,
		reader: reader,
		logger: log.WithField("component", "cert.inspector"),
		now:    time.Now,
	}
}

// SetClock replaces the time source
func (i *Inspector) SetClock(now func() time.Time) {
	i.now = now
}

// HasArtifact reports whether the certificate file exists
func (i *Inspector) HasArtifact(domain string) bool {
	if !domainutil.Validate(domain) {
		return false
	}
	_, err := os.Stat(i.dirs.CertPath(domain))
	return err == nil
}

// Inspect never fails: any problem reading the expiry degrades to no_ssl.
func (i *Inspector) Inspect(ctx context.Context, domain string) Info {
	if !domainutil.Validate(domain) {
		return noSSL
	}

	certPath := i.dirs.CertPath(domain)
	if _, err := os.Stat(certPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			i.logger.WithError(err).WithField("domain", domain).Warn("failed to stat certificate")
		}
		return noSSL
	}

	expiry, err := i.reader.CertificateEndDate(ctx, certPath)
	if err != nil {
		i.logger.WithError(err).WithField("domain", domain).Warn("failed to read certificate end date")
		return noSSL
	}

	days := DaysLeft(expiry, i.now())
	return Info{
		HasSSL:     true,
		Status:     Classify(days),
		ExpiryDate: &expiry,
		DaysLeft:   &days,
	}
}

// DaysLeft returns floor((expiry - now) / 24h)
func DaysLeft(expiry, now time.Time) int {
	return int(math.Floor(expiry.Sub(now).Hours() / 24))
}
