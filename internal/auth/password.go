package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"vhostmgr/internal/config"
)

// ErrBadCredentials is returned for any failed login
var ErrBadCredentials = errors.New("invalid username or password")

// HashPassword hashes a plain text password using bcrypt
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword compares a bcrypt hashed password with a plain text password
func ComparePassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// Admin checks logins against the single configured administrator
type Admin struct {
	username string
	hash     string
}

// NewAdmin creates a credential checker from cfg
func NewAdmin(cfg config.AdminConfig) *Admin {
	return &Admin{username: cfg.Username, hash: cfg.PasswordHash}
}

// Verify returns ErrBadCredentials unless username and password match.
// The hash is compared even for unknown users.
func (a *Admin) Verify(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passErr := ComparePassword(a.hash, password)
	if !userOK || passErr != nil {
		return ErrBadCredentials
	}
	return nil
}
