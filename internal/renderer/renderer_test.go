package renderer

import (
	"errors"
	"strings"
	"testing"

	"vhostmgr/internal/domainutil"
)

func TestRender(t *testing.T) {
	text, err := Render("example.com")
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}

	wants := []string{
		"listen 80;",
		"server_name example.com www.example.com;",
		`add_header X-Frame-Options "SAMEORIGIN";`,
		"proxy_pass             http://localhost:3000;",
		"rewrite ^(.*)$ $1.php last;",
		`location ~ /\.(?!well-known).* {`,
	}
	for _, want := range wants {
		if !strings.Contains(text, want) {
			t.Errorf("Expected rendered config to contain %q", want)
		}
	}

	if strings.Contains(text, "listen 443") {
		t.Error("Pre-issuance config should not listen on 443")
	}
	if strings.Contains(text, ChallengeMarker) {
		t.Error("Pre-issuance config should not contain the challenge block")
	}
}

func TestRender_Deterministic(t *testing.T) {
	a, _ := Render("example.com")
	b, _ := Render("example.com")
	if a != b {
		t.Error("Expected identical output for the same domain")
	}
}

func TestRender_InvalidDomain(t *testing.T) {
	_, err := Render("../etc")
	if !errors.Is(err, domainutil.ErrInvalidDomain) {
		t.Errorf("Expected ErrInvalidDomain, got %v", err)
	}
}
