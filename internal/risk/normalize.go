// Package risk turns provider payloads into normalized signals and scores
// listings against them.
package risk

import (
	"strconv"
	"strings"

	"token-risk-scanner/internal/domain"
)

// goPlusTrue is the sentinel GoPlus uses for boolean true.
const goPlusTrue = "1"

// NormalizeGoPlus maps a GoPlus security record to RiskSignals.
// Missing flags are false and unparseable taxes are 0. LP lock is unknown.
func NormalizeGoPlus(p *domain.GoPlusPayload) *domain.RiskSignals {
	if p == nil {
		return nil
	}
	return &domain.RiskSignals{
		Source:            domain.SourceGoPlus,
		Honeypot:          p.IsHoneypot == goPlusTrue,
		BuyTax:            parseTax(string(p.BuyTax)),
		SellTax:           parseTax(string(p.SellTax)),
		IsMintable:        p.IsMintable == goPlusTrue,
		OwnerCanRetake:    p.CanTakeBackOwnership == goPlusTrue,
		HiddenOwner:       p.HiddenOwner == goPlusTrue,
		IsProxy:           p.IsProxy == goPlusTrue,
		CanBlacklist:      p.IsBlacklisted == goPlusTrue,
		CanWhitelist:      p.IsWhitelisted == goPlusTrue,
		HasAntiWhale:      p.AntiWhale == goPlusTrue,
		HasCooldown:       p.TradingCooldown == goPlusTrue,
		IsTradingDisabled: p.TransferPausable == goPlusTrue,
	}
}

// NormalizeRugCheck maps a RugCheck report to RiskSignals.
// RugCheck reports nothing about taxes or ownership, so those stay zero.
func NormalizeRugCheck(p *domain.RugCheckPayload) *domain.RiskSignals {
	if p == nil {
		return nil
	}
	return &domain.RiskSignals{
		Source:                domain.SourceRugCheck,
		Honeypot:              p.Risk == "danger",
		IsMintable:            p.RiskDetails.MintAuthorityActive,
		MintAuthorityActive:   p.RiskDetails.MintAuthorityActive,
		FreezeAuthorityActive: p.RiskDetails.FreezeAuthorityActive,
	}
}

// Normalize dispatches on the payload's provider.
func Normalize(p *domain.RiskPayload) *domain.RiskSignals {
	if p == nil {
		return nil
	}
	switch p.Provider {
	case domain.ProviderGoPlus:
		return NormalizeGoPlus(p.GoPlus)
	case domain.ProviderRugCheck:
		return NormalizeRugCheck(p.RugCheck)
	default:
		return nil
	}
}

func parseTax(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
