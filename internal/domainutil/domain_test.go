package domainutil

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple", "example.com", true},
		{"hyphen and digit", "a.b-c9", true},
		{"two chars", "ab", true},
		{"subdomain", "blog.example.com", true},
		{"uppercase", "Example.COM", true},
		{"empty", "", false},
		{"single char", "a", false},
		{"path traversal", "../etc", false},
		{"double dot", "a..b", false},
		{"slash", "a/b", false},
		{"backslash", `a\b`, false},
		{"leading hyphen", "-abc", false},
		{"leading dot", ".abc", false},
		{"trailing hyphen", "abc-", false},
		{"trailing dot", "abc.", false},
		{"space", "a b.com", false},
		{"underscore", "a_b.com", false},
		{"wildcard", "*.example.com", false},
		{"max length", strings.Repeat("a", 255), true},
		{"too long", strings.Repeat("a", 256), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(tt.input); got != tt.want {
				t.Errorf("Validate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsReserved(t *testing.T) {
	if !IsReserved("default") || !IsReserved("default-ssl") {
		t.Error("Expected default and default-ssl to be reserved")
	}
	if IsReserved("example.com") {
		t.Error("example.com should not be reserved")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"trim and lower", "  Example.COM ", "example.com", false},
		{"trailing dot", "example.com.", "example.com", false},
		{"empty", "   ", "", true},
		{"ipv4", "127.0.0.1", "", true},
		{"ipv6", "[::1]", "", true},
		{"traversal", "../etc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q, got %q", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidDomain) {
					t.Errorf("Expected ErrInvalidDomain, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
