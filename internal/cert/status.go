package cert

// Status is the derived SSL state of a domain
type Status string

const (
	StatusNoSSL        Status = "no_ssl"
	StatusValid        Status = "valid"
	StatusExpiringSoon Status = "expiring_soon"
	StatusExpired      Status = "expired"
)

// RenewalWindowDays is how close to expiry a certificate counts as expiring soon
const RenewalWindowDays = 30

// Classify maps days to expiry onto a Status:
// days < 0 expired, 0..30 expiring soon, > 30 valid.
func Classify(daysLeft int) Status {
	switch {
	case daysLeft < 0:
		return StatusExpired
	case daysLeft <= RenewalWindowDays:
		return StatusExpiringSoon
	default:
		return StatusValid
	}
}

// NeedsRenewal reports whether status should be picked up by the renew worker
func (s Status) NeedsRenewal() bool {
	return s == StatusExpiringSoon || s == StatusExpired
}
