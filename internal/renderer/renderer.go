package renderer

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"vhostmgr/internal/domainutil"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.tmpl"))

// DefaultUpstream is the backend every generated vhost proxies to.
const DefaultUpstream = "http://localhost:3000"

// VhostData holds data for the vhost template
type VhostData struct {
	Domain   string
	Upstream string
}

// Render returns the pre-issuance (port 80 only) config for domain.
// The output depends on nothing but domain.
func Render(domain string) (string, error) {
	if !domainutil.Validate(domain) {
		return "", fmt.Errorf("render %q: %w", domain, domainutil.ErrInvalidDomain)
	}

	data := &VhostData{
		Domain:   domain,
		Upstream: DefaultUpstream,
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "vhost.conf.tmpl", data); err != nil {
		return "", fmt.Errorf("failed to execute vhost template: %w", err)
	}

	return buf.String(), nil
}
