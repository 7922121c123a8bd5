package manager

import (
	"vhostmgr/internal/cert"
	"vhostmgr/internal/result"
)

// Result and Kind are shared with the issuance orchestrator
type (
	Result = result.Result
	Kind   = result.Kind
)

const (
	KindInvalidName            = result.KindInvalidName
	KindAlreadyExists          = result.KindAlreadyExists
	KindNotFound               = result.KindNotFound
	KindReloadFailed           = result.KindReloadFailed
	KindToolchainInstallFailed = result.KindToolchainInstallFailed
	KindIssuanceFailed         = result.KindIssuanceFailed
	KindInstallFailed          = result.KindInstallFailed
	KindNotDue                 = result.KindNotDue
	KindConfigMissing          = result.KindConfigMissing
	KindInternalError          = result.KindInternalError
)

// DomainRecord is derived from the filesystem on every call.
// ID is a 1-based ordinal within one listing, not a stable identifier.
type DomainRecord struct {
	ID            int         `json:"id"`
	Name          string      `json:"name"`
	Enabled       bool        `json:"enabled"`
	SSLStatus     cert.Status `json:"sslStatus"`
	SSLExpiryDate *string     `json:"sslExpiryDate"`
	DaysToExpire  *int        `json:"daysToExpire"`
	CreatedAt     string      `json:"createdAt"`
}

// Stats aggregates a listing
type Stats struct {
	TotalDomains int `json:"totalDomains"`
	ActiveSSL    int `json:"activeSsl"`
	ExpiringSoon int `json:"expiringSoon"`
	Expired      int `json:"expired"`
}

// Event types passed to Notifier
const (
	EventAdd    = "add"
	EventDelete = "delete"
	EventSSL    = "ssl"
)

// Notifier is told about every mutation that changed the domain list
type Notifier interface {
	DomainsChanged(eventType, domain string)
}
