package risk

import "token-risk-scanner/internal/domain"

// Merge overlays the secondary provider onto the primary one.
// The primary set is the base; the secondary wins unconditionally on taxes,
// ownership, proxy, list, whale, cooldown and pause fields. Honeypot is the
// OR of both.
func Merge(primary, secondary *domain.RiskSignals) *domain.RiskSignals {
	m := *primary
	m.Source = domain.SourceMerged
	m.Honeypot = primary.Honeypot || secondary.Honeypot

	m.BuyTax = secondary.BuyTax
	m.SellTax = secondary.SellTax
	m.OwnerCanRetake = secondary.OwnerCanRetake
	m.HiddenOwner = secondary.HiddenOwner
	m.IsProxy = secondary.IsProxy
	m.CanBlacklist = secondary.CanBlacklist
	m.CanWhitelist = secondary.CanWhitelist
	m.HasAntiWhale = secondary.HasAntiWhale
	m.HasCooldown = secondary.HasCooldown
	m.IsTradingDisabled = secondary.IsTradingDisabled

	if primary.LPLockPercent != nil {
		v := *primary.LPLockPercent
		m.LPLockPercent = &v
	}
	return &m
}

// Combine returns the signal set to score: the merge when both providers
// answered, the single answer as-is, or nil when neither did.
func Combine(primary, secondary *domain.RiskSignals) *domain.RiskSignals {
	switch {
	case primary != nil && secondary != nil:
		return Merge(primary, secondary)
	case primary != nil:
		return primary
	default:
		return secondary
	}
}
