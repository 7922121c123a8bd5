package renderer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ChallengeMarker is present in any config that already serves HTTP-01 challenges.
const ChallengeMarker = ".well-known/acme-challenge"

// ChallengeBlock returns the location block serving challenge files from webroot.
func ChallengeBlock(webroot string) []string {
	return []string{
		"    location ^~ /.well-known/acme-challenge/ {",
		fmt.Sprintf("        root %s;", webroot),
		`        default_type "text/plain";`,
		"        try_files $uri =404;",
		"    }",
	}
}

// TLSMarker is present in any config already pointing at the domain's certificate.
func TLSMarker(sslDir, domain string) string {
	return "ssl_certificate " + filepath.Join(sslDir, domain+".crt")
}

// TLSBlock returns the listen/certificate directives for domain.
func TLSBlock(sslDir, domain string) []string {
	return []string{
		"    listen 443 ssl;",
		fmt.Sprintf("    ssl_certificate %s;", filepath.Join(sslDir, domain+".crt")),
		fmt.Sprintf("    ssl_certificate_key %s;", filepath.Join(sslDir, domain+".key")),
	}
}

// InjectAfterDeclaration inserts block right after the first line declaring
// "server_name <domain>". Nothing changes when marker is already present.
// The returned bool is false when text was left untouched, either because the
// marker exists or because no declaration line was found.
func InjectAfterDeclaration(text, domain, marker string, block []string) (string, bool) {
	if strings.Contains(text, marker) {
		return text, false
	}

	declaration := "server_name " + domain
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !strings.Contains(line, declaration) {
			continue
		}

		out := make([]string, 0, len(lines)+len(block))
		out = append(out, lines[:i+1]...)
		out = append(out, block...)
		out = append(out, lines[i+1:]...)
		return strings.Join(out, "\n"), true
	}

	return text, false
}

// HasDeclaration reports whether text declares a server block for domain.
func HasDeclaration(text, domain string) bool {
	return strings.Contains(text, "server_name "+domain)
}
