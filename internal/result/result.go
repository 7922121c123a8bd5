// Package result holds the outcome type shared by every public operation.
package result

// Kind tags why an operation did not succeed
type Kind string

const (
	KindNone                   Kind = ""
	KindInvalidName            Kind = "InvalidName"
	KindAlreadyExists          Kind = "AlreadyExists"
	KindNotFound               Kind = "NotFound"
	KindReloadFailed           Kind = "ReloadFailed"
	KindToolchainInstallFailed Kind = "ToolchainInstallFailed"
	KindIssuanceFailed         Kind = "IssuanceFailed"
	KindInstallFailed          Kind = "InstallFailed"
	KindNotDue                 Kind = "NotDue"
	KindConfigMissing          Kind = "ConfigMissing"
	KindInternalError          Kind = "InternalError"
)

// Result is what every mutating operation returns instead of an error.
type Result struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	Kind         Kind     `json:"kind,omitempty"`
	Domain       string   `json:"domain,omitempty"`
	SSLInstalled *bool    `json:"ssl_installed,omitempty"`
	SSLMessage   string   `json:"ssl_message,omitempty"`
	ManualSteps  []string `json:"manual_steps,omitempty"`
	SSLSteps     []string `json:"ssl_steps,omitempty"`
}

// OK builds a successful result
func OK(message string) Result {
	return Result{Success: true, Message: message}
}

// Fail builds a failed result tagged with kind
func Fail(kind Kind, message string) Result {
	return Result{Success: false, Kind: kind, Message: message}
}
