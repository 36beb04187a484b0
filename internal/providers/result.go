// Package providers contains adapters for the listing source and the two
// risk providers. Risk adapters never return Go errors: every outcome is a
// Result carrying a status and a reason.
package providers

import (
	"token-risk-scanner/internal/domain"
	"token-risk-scanner/internal/observability"
)

// Result is the outcome of one risk provider call.
type Result[T any] struct {
	Value  *T
	Status domain.ProviderStatus
	Reason string
	Err    error // underlying error for StatusFailed, nil otherwise
}

// OK reports whether a payload was returned.
func (r Result[T]) OK() bool {
	return r.Status == domain.StatusFound && r.Value != nil
}

func found[T any](v *T) Result[T] {
	return Result[T]{Value: v, Status: domain.StatusFound}
}

func absent[T any](reason string) Result[T] {
	return Result[T]{Status: domain.StatusAbsent, Reason: reason}
}

func failed[T any](reason string, err error) Result[T] {
	return Result[T]{Status: domain.StatusFailed, Reason: reason, Err: err}
}

func record[T any](provider domain.ProviderKind, r Result[T]) Result[T] {
	observability.RecordProviderOutcome(provider.String(), string(r.Status), r.Reason)
	return r
}

// RugCheckReport converts a RugCheck result into a ProviderReport.
func RugCheckReport(r Result[domain.RugCheckPayload]) *domain.ProviderReport {
	rep := &domain.ProviderReport{Provider: domain.ProviderRugCheck, Status: r.Status, Reason: r.Reason}
	if r.OK() {
		rep.Payload = domain.NewRugCheckPayload(r.Value)
	}
	return rep
}

// GoPlusReport converts a GoPlus result into a ProviderReport.
func GoPlusReport(r Result[domain.GoPlusPayload]) *domain.ProviderReport {
	rep := &domain.ProviderReport{Provider: domain.ProviderGoPlus, Status: r.Status, Reason: r.Reason}
	if r.OK() {
		rep.Payload = domain.NewGoPlusPayload(r.Value)
	}
	return rep
}
