package auth

import (
	"errors"
	"testing"

	"vhostmgr/internal/config"
)

func TestComparePassword(t *testing.T) {
	plain := "s3cret-admin"

	hash, err := HashPassword(plain)
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}

	if hash == plain {
		t.Error("Hash should not equal plain text password")
	}

	if err := ComparePassword(hash, plain); err != nil {
		t.Errorf("ComparePassword() failed for correct password: %v", err)
	}

	if err := ComparePassword(hash, "wrongpassword"); err == nil {
		t.Error("ComparePassword() should fail for wrong password")
	}
}

func TestAdmin_Verify(t *testing.T) {
	hash, err := HashPassword("s3cret-admin")
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}
	admin := NewAdmin(config.AdminConfig{Username: "admin", PasswordHash: hash})

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"valid", "admin", "s3cret-admin", false},
		{"wrong password", "admin", "nope", true},
		{"wrong user", "root", "s3cret-admin", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := admin.Verify(tt.username, tt.password)
			if tt.wantErr && !errors.Is(err, ErrBadCredentials) {
				t.Errorf("Expected ErrBadCredentials, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected success, got %v", err)
			}
		})
	}
}
