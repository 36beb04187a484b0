package risk

import (
	"time"

	"token-risk-scanner/internal/domain"
)

// Verdict thresholds.
const (
	RiskyThreshold   = 60
	CautionThreshold = 30
	MaxScore         = 100
)

// Signal thresholds. Liquidity is in USD, tax is a fraction.
const (
	CriticalLiquidityUSD = 1000
	LowLiquidityUSD      = 5000
	HighTaxRate          = 0.10
	MinLPLockPercent     = 50
	NewPairAge           = 24 * time.Hour
)

type signalRule struct {
	weight int
	flag   domain.Flag
	hit    func(s *domain.RiskSignals) bool
}

// signalRules is evaluated in order. Order determines flag order in output.
var signalRules = []signalRule{
	{60, domain.FlagHoneypot, func(s *domain.RiskSignals) bool { return s.Honeypot }},
	{15, domain.FlagHighTax, func(s *domain.RiskSignals) bool { return s.BuyTax > HighTaxRate || s.SellTax > HighTaxRate }},
	{10, domain.FlagBlacklist, func(s *domain.RiskSignals) bool { return s.CanBlacklist }},
	{10, domain.FlagAntiWhale, func(s *domain.RiskSignals) bool { return s.HasAntiWhale }},
	{10, domain.FlagCooldown, func(s *domain.RiskSignals) bool { return s.HasCooldown }},
	{40, domain.FlagTradingDisabled, func(s *domain.RiskSignals) bool { return s.IsTradingDisabled }},
	{25, domain.FlagOwnerCanRetake, func(s *domain.RiskSignals) bool { return s.OwnerCanRetake }},
	{25, domain.FlagHiddenOwner, func(s *domain.RiskSignals) bool { return s.HiddenOwner }},
	{10, domain.FlagProxyUpgradable, func(s *domain.RiskSignals) bool { return s.IsProxy }},
	{20, domain.FlagMintableSupply, func(s *domain.RiskSignals) bool { return s.IsMintable }},
	{20, domain.FlagMintAuthorityActive, func(s *domain.RiskSignals) bool { return s.MintAuthorityActive }},
	{15, domain.FlagFreezeAuthorityActive, func(s *domain.RiskSignals) bool { return s.FreezeAuthorityActive }},
	{15, domain.FlagLPUnlockedOrUnknown, func(s *domain.RiskSignals) bool {
		return s.LPLockPercent == nil || *s.LPLockPercent < MinLPLockPercent
	}},
}

// Score computes the risk score of a listing.
// Signal rules run only when signals is non-nil; liquidity and age rules
// always run. A listing without a creation time is never very_new.
func Score(l domain.Listing, signals *domain.RiskSignals, now time.Time) domain.ScoreResult {
	score := 0
	var flags []domain.Flag

	if signals != nil {
		for _, r := range signalRules {
			if r.hit(signals) {
				score += r.weight
				flags = append(flags, r.flag)
			}
		}
	}

	switch {
	case l.LiquidityUSD < CriticalLiquidityUSD:
		score += 30
		flags = append(flags, domain.FlagLowLiquidity)
	case l.LiquidityUSD < LowLiquidityUSD:
		score += 20
		flags = append(flags, domain.FlagLowLiquidity)
	}

	if l.HasCreatedAt() && now.Sub(l.CreatedAt) < NewPairAge {
		score += 10
		flags = append(flags, domain.FlagVeryNew)
	}

	if score > MaxScore {
		score = MaxScore
	}

	return domain.ScoreResult{
		Score:   score,
		Verdict: VerdictFor(score),
		Flags:   dedupe(flags),
	}
}

// VerdictFor buckets a score.
func VerdictFor(score int) domain.Verdict {
	switch {
	case score >= RiskyThreshold:
		return domain.VerdictRisky
	case score >= CautionThreshold:
		return domain.VerdictCaution
	default:
		return domain.VerdictOK
	}
}

func dedupe(flags []domain.Flag) []domain.Flag {
	out := make([]domain.Flag, 0, len(flags))
	seen := make(map[domain.Flag]bool, len(flags))
	for _, f := range flags {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
