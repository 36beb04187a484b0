package domain

// ProviderKind identifies an external risk provider.
type ProviderKind string

const (
	ProviderNone     ProviderKind = ""
	ProviderRugCheck ProviderKind = "rugcheck"
	ProviderGoPlus   ProviderKind = "goplus"
)

// String returns the string representation of ProviderKind.
func (p ProviderKind) String() string {
	return string(p)
}

// ProviderStatus is the outcome class of a single provider call.
type ProviderStatus string

const (
	// StatusFound means the provider returned a payload.
	StatusFound ProviderStatus = "found"
	// StatusAbsent means no payload exists or the call was not attempted.
	StatusAbsent ProviderStatus = "absent"
	// StatusFailed means the call was attempted and failed.
	StatusFailed ProviderStatus = "failed"
	// StatusSkipped means the provider does not apply to the network.
	StatusSkipped ProviderStatus = "skipped"
)

// Reasons attached to non-found provider outcomes.
const (
	ReasonMissingCredentials = "missing_credentials"
	ReasonNotFound           = "not_found"
	ReasonUnauthorized       = "unauthorized"
	ReasonInvalidAddress     = "invalid_address"
	ReasonUnsupportedChain   = "unsupported_chain"
	ReasonEmptyResponse      = "empty_response"
	ReasonProviderError      = "provider_error"
	ReasonRequestFailed      = "request_failed"
)

// ProviderReport records what a single provider contributed to a token.
type ProviderReport struct {
	Provider ProviderKind   `json:"provider"`
	Status   ProviderStatus `json:"status"`
	Reason   string         `json:"reason,omitempty"`
	Payload  *RiskPayload   `json:"payload,omitempty"`
}

// Found reports whether the provider returned a payload.
func (r *ProviderReport) Found() bool {
	return r != nil && r.Status == StatusFound && r.Payload != nil
}
