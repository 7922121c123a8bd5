package domainutil

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
)

// ErrInvalidDomain is returned whenever a caller-supplied name fails Validate.
var ErrInvalidDomain = errors.New("invalid domain name")

// Reserved names in sites-available that never represent a managed domain.
var reserved = map[string]bool{
	"default":     true,
	"default-ssl": true,
}

var domainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-.]{0,253}[a-zA-Z0-9]$`)

// Validate reports whether name is safe to use as a registry key.
// Names become file names under sites-available and the ssl dir, so
// anything that could escape those directories is rejected.
func Validate(name string) bool {
	if !domainPattern.MatchString(name) {
		return false
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return false
	}
	return true
}

// IsReserved reports whether name is one of nginx's stock site names.
func IsReserved(name string) bool {
	return reserved[name]
}

// Normalize 对域名进行规范化处理
// 规则：
//   - trim 空格
//   - 小写
//   - 去掉末尾 .
//   - 拒绝 IP（IPv4/IPv6）
//   - 最后必须通过 Validate
func Normalize(host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", fmt.Errorf("%w: domain must not be empty", ErrInvalidDomain)
	}

	host = strings.ToLower(host)
	host = strings.TrimSuffix(host, ".")

	if net.ParseIP(strings.Trim(host, "[]")) != nil {
		return "", fmt.Errorf("%w: IP address is not allowed as domain: %s", ErrInvalidDomain, host)
	}

	if !Validate(host) {
		return "", fmt.Errorf("%w: %s", ErrInvalidDomain, host)
	}

	return host, nil
}
