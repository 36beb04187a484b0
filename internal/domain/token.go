package domain

import "time"

// EnrichedToken is one scored listing. It is never mutated after creation;
// a later scan supersedes it with a new instance carrying the same ID.
type EnrichedToken struct {
	ID        string          `json:"id"` // "{network}-{baseTokenAddress}"
	Listing   Listing         `json:"listing"`
	Risk      ScoreResult     `json:"risk"`
	Signals   *RiskSignals    `json:"signals"` // nil when no provider returned data
	Primary   *ProviderReport `json:"primary,omitempty"`
	Secondary *ProviderReport `json:"secondary,omitempty"`
	ScannedAt time.Time       `json:"scannedAt"`
}

// PrimaryPayload returns the payload kept for display, or nil.
func (t *EnrichedToken) PrimaryPayload() *RiskPayload {
	if t == nil || t.Primary == nil {
		return nil
	}
	return t.Primary.Payload
}
