package acme

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/challenge"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/providers/http/webroot"
	"github.com/go-acme/lego/v4/registration"

	"vhostmgr/internal/config"
)

// Reloader is the reload hook run after a certificate is installed
type Reloader interface {
	Reload(ctx context.Context) error
}

// LegoIssuer issues certificates in-process with go-acme/lego using the
// HTTP-01 webroot provider. The account and the last obtained certificate
// of every domain are kept under the state dir.
type LegoIssuer struct {
	acmeCfg         config.ACMEConfig
	dirs            *config.DirConfig
	reloader        Reloader
	clientFactory   clientFactory
	accountKeyMaker func() (crypto.PrivateKey, error)
}

// NewLegoIssuer creates a lego issuer
func NewLegoIssuer(acmeCfg config.ACMEConfig, dirs *config.DirConfig, reloader Reloader) (*LegoIssuer, error) {
	if acmeCfg.StateDir == "" {
		return nil, errors.New("ACME state dir is required")
	}
	if acmeCfg.DirectoryURL == "" {
		acmeCfg.DirectoryURL = lego.LEDirectoryProduction
	}

	return &LegoIssuer{
		acmeCfg:       acmeCfg,
		dirs:          dirs,
		reloader:      reloader,
		clientFactory: defaultClientFactory,
		accountKeyMaker: func() (crypto.PrivateKey, error) {
			return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		},
	}, nil
}

// User implements registration.User interface for lego
type User struct {
	Email        string
	Registration *registration.Resource
	key          crypto.PrivateKey
}

func (u *User) GetEmail() string {
	return u.Email
}

func (u *User) GetRegistration() *registration.Resource {
	return u.Registration
}

func (u *User) GetPrivateKey() crypto.PrivateKey {
	return u.key
}

// Name returns the client name
func (i *LegoIssuer) Name() string {
	return config.ACMEClientLego
}

func (i *LegoIssuer) accountKeyPath() string {
	return filepath.Join(i.acmeCfg.StateDir, "accounts", "account.key")
}

func (i *LegoIssuer) registrationPath() string {
	return filepath.Join(i.acmeCfg.StateDir, "accounts", "registration.json")
}

func (i *LegoIssuer) stagedCertPath(domain string) string {
	return filepath.Join(i.acmeCfg.StateDir, "certificates", domain+".crt")
}

func (i *LegoIssuer) stagedKeyPath(domain string) string {
	return filepath.Join(i.acmeCfg.StateDir, "certificates", domain+".key")
}

// Ready reports whether a registered account is on disk
func (i *LegoIssuer) Ready() bool {
	if _, err := os.Stat(i.accountKeyPath()); err != nil {
		return false
	}
	_, err := os.Stat(i.registrationPath())
	return err == nil
}

// InstallToolchain registers the ACME account
func (i *LegoIssuer) InstallToolchain(ctx context.Context) error {
	_, err := i.EnsureAccount(ctx)
	return err
}

// EnsureAccount loads the account, creating and registering it when missing
func (i *LegoIssuer) EnsureAccount(ctx context.Context) (*User, error) {
	if i.acmeCfg.Email == "" {
		return nil, errors.New("ACME_EMAIL is required for the lego client")
	}
	if err := os.MkdirAll(filepath.Dir(i.accountKeyPath()), 0700); err != nil {
		return nil, fmt.Errorf("failed to create account dir: %w", err)
	}

	key, err := i.loadOrCreateAccountKey()
	if err != nil {
		return nil, err
	}

	user := &User{Email: i.acmeCfg.Email, key: key}

	if data, err := os.ReadFile(i.registrationPath()); err == nil {
		var reg registration.Resource
		if err := json.Unmarshal(data, &reg); err != nil {
			return nil, fmt.Errorf("failed to parse registration: %w", err)
		}
		user.Registration = &reg
		return user, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client, err := i.newClient(user)
	if err != nil {
		return nil, err
	}

	reg, err := client.Register(registration.RegisterOptions{TermsOfServiceAgreed: true})
	if err != nil {
		return nil, fmt.Errorf("failed to register ACME account: %w", err)
	}
	user.Registration = reg

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode registration: %w", err)
	}
	if err := os.WriteFile(i.registrationPath(), data, 0600); err != nil {
		return nil, fmt.Errorf("failed to save registration: %w", err)
	}

	return user, nil
}

func (i *LegoIssuer) loadOrCreateAccountKey() (crypto.PrivateKey, error) {
	if data, err := os.ReadFile(i.accountKeyPath()); err == nil {
		key, err := parsePrivateKey(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse account key: %w", err)
		}
		return key, nil
	}

	key, err := i.accountKeyMaker()
	if err != nil {
		return nil, fmt.Errorf("failed to generate account key: %w", err)
	}

	keyPem, err := encodePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to encode account key: %w", err)
	}
	if err := os.WriteFile(i.accountKeyPath(), []byte(keyPem), 0600); err != nil {
		return nil, fmt.Errorf("failed to save account key: %w", err)
	}

	return key, nil
}

func (i *LegoIssuer) newClient(user *User) (acmeClient, error) {
	legoCfg := lego.NewConfig(user)
	legoCfg.CADirURL = i.acmeCfg.DirectoryURL

	client, err := i.clientFactory(legoCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create lego client: %w", err)
	}
	return client, nil
}

// Issue obtains a certificate for domain and www.domain and stages it
// under the state dir. lego always orders a fresh certificate, so force
// has no extra effect.
func (i *LegoIssuer) Issue(ctx context.Context, domain string, force bool) (string, error) {
	user, err := i.EnsureAccount(ctx)
	if err != nil {
		return "", err
	}

	client, err := i.newClient(user)
	if err != nil {
		return "", err
	}

	provider, err := webroot.NewHTTPProvider(i.dirs.Webroot)
	if err != nil {
		return "", fmt.Errorf("failed to create webroot provider: %w", err)
	}
	if err := client.SetHTTP01Provider(provider); err != nil {
		return "", fmt.Errorf("failed to set http-01 provider: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	domains := []string{domain, "www." + domain}
	res, err := client.Obtain(certificate.ObtainRequest{
		Domains: domains,
		Bundle:  true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to obtain certificate: %w", err)
	}

	if len(res.Certificate) == 0 || len(res.PrivateKey) == 0 {
		return "", errors.New("empty certificate or key received from ACME server")
	}

	if err := os.MkdirAll(filepath.Dir(i.stagedCertPath(domain)), 0700); err != nil {
		return "", fmt.Errorf("failed to create certificates dir: %w", err)
	}
	if err := os.WriteFile(i.stagedKeyPath(domain), res.PrivateKey, 0600); err != nil {
		return "", fmt.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(i.stagedCertPath(domain), res.Certificate, 0644); err != nil {
		return "", fmt.Errorf("failed to write certificate: %w", err)
	}

	return fmt.Sprintf("certificate obtained for %s (%s)", domain, res.CertURL), nil
}

// InstallCert copies the staged key and full chain into the ssl dir and
// runs the reload hook.
func (i *LegoIssuer) InstallCert(ctx context.Context, domain string) (string, error) {
	if err := os.MkdirAll(i.dirs.SSLDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create ssl dir: %w", err)
	}

	if err := copyFile(i.stagedKeyPath(domain), i.dirs.KeyPath(domain), 0600); err != nil {
		return "", fmt.Errorf("failed to install key: %w", err)
	}
	if err := copyFile(i.stagedCertPath(domain), i.dirs.CertPath(domain), 0644); err != nil {
		return "", fmt.Errorf("failed to install certificate: %w", err)
	}

	if err := i.reloader.Reload(ctx); err != nil {
		return "", fmt.Errorf("reload hook failed: %w", err)
	}

	return fmt.Sprintf("installed %s and %s", i.dirs.CertPath(domain), i.dirs.KeyPath(domain)), nil
}

// copyFile writes src to dst through a temp file so nginx never reads a half-written file
func copyFile(src, dst string, perm os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

type clientFactory func(*lego.Config) (acmeClient, error)

type acmeClient interface {
	Register(options registration.RegisterOptions) (*registration.Resource, error)
	SetHTTP01Provider(provider challenge.Provider) error
	Obtain(request certificate.ObtainRequest) (*certificate.Resource, error)
}

func defaultClientFactory(cfg *lego.Config) (acmeClient, error) {
	client, err := lego.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &legoClientAdapter{client: client}, nil
}

type legoClientAdapter struct {
	client *lego.Client
}

func (l *legoClientAdapter) Register(options registration.RegisterOptions) (*registration.Resource, error) {
	return l.client.Registration.Register(options)
}

func (l *legoClientAdapter) SetHTTP01Provider(provider challenge.Provider) error {
	return l.client.Challenge.SetHTTP01Provider(provider)
}

func (l *legoClientAdapter) Obtain(request certificate.ObtainRequest) (*certificate.Resource, error) {
	return l.client.Certificate.Obtain(request)
}

// parsePrivateKey parses a PEM-encoded private key
func parsePrivateKey(keyPem string) (crypto.PrivateKey, error) {
	block, _ := pem.Decode([]byte(keyPem))
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	// Try EC private key
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	// Try PKCS8 private key
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	return nil, errors.New("unsupported private key type")
}

// encodePrivateKey encodes a private key to PEM format
func encodePrivateKey(key crypto.PrivateKey) (string, error) {
	ecKey, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return "", errors.New("unsupported private key type")
	}

	keyBytes, err := x509.MarshalECPrivateKey(ecKey)
	if err != nil {
		return "", err
	}

	block := &pem.Block{
		Type:  "EC PRIVATE KEY",
		Bytes: keyBytes,
	}
	return string(pem.EncodeToMemory(block)), nil
}
