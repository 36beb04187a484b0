package domain

// SourceKind tags which provider(s) a signal set came from.
type SourceKind string

const (
	SourceGoPlus   SourceKind = "goplus"
	SourceRugCheck SourceKind = "rugcheck"
	SourceMerged   SourceKind = "merged"
)

// RiskSignals is the provider-agnostic set of normalized risk indicators.
type RiskSignals struct {
	Source SourceKind `json:"source"`

	Honeypot          bool    `json:"honeypot"`
	BuyTax            float64 `json:"buyTax"`  // fraction, 0.1 = 10%
	SellTax           float64 `json:"sellTax"` // fraction, 0.1 = 10%
	IsMintable        bool    `json:"isMintable"`
	OwnerCanRetake    bool    `json:"ownerCanRetake"`
	HiddenOwner       bool    `json:"hiddenOwner"`
	IsProxy           bool    `json:"isProxy"`
	CanBlacklist      bool    `json:"canBlacklist"`
	CanWhitelist      bool    `json:"canWhitelist"`
	HasAntiWhale      bool    `json:"hasAntiWhale"`
	HasCooldown       bool    `json:"hasCooldown"`
	IsTradingDisabled bool    `json:"isTradingDisabled"`

	// LPLockPercent is nil when unknown. Unknown is never treated as locked.
	LPLockPercent *float64 `json:"lpLockPercent"`

	// Solana-family only.
	MintAuthorityActive   bool `json:"mintAuthorityActive"`
	FreezeAuthorityActive bool `json:"freezeAuthorityActive"`
}
