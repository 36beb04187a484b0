package scan

import (
	"context"
	"strings"
	"sync"

	"token-risk-scanner/internal/chains"
	"token-risk-scanner/internal/domain"
	"token-risk-scanner/internal/observability"
	"token-risk-scanner/internal/providers"
	"token-risk-scanner/internal/risk"
)

// enrich routes, queries providers, normalizes, combines and scores one
// listing. It never fails: provider problems are recorded in the reports.
func (s *Scanner) enrich(ctx context.Context, l domain.Listing) *domain.EnrichedToken {
	route := chains.Select(l.Network, s.rugCheckEnabled)
	address := l.BaseToken.Address

	var primary, secondary *domain.ProviderReport
	if route.Secondary != domain.ProviderNone {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			primary = s.query(ctx, route, route.Primary, address)
		}()
		go func() {
			defer wg.Done()
			secondary = s.query(ctx, route, route.Secondary, address)
		}()
		wg.Wait()
	} else if route.Primary != domain.ProviderNone {
		primary = s.query(ctx, route, route.Primary, address)
	}

	signals := risk.Combine(signalsOf(primary), signalsOf(secondary))
	score := risk.Score(l, signals, s.now())
	observability.RecordTokenScored(score.Verdict.String())

	token := &domain.EnrichedToken{
		ID:        l.TokenID(),
		Listing:   l,
		Risk:      score,
		Signals:   signals,
		Primary:   primary,
		Secondary: secondary,
		ScannedAt: s.now(),
	}

	s.logger.Debug().
		Str("token", token.ID).
		Str("primary", reportStatus(primary)).
		Str("secondary", reportStatus(secondary)).
		Int("score", score.Score).
		Str("verdict", score.Verdict.String()).
		Msg("token scored")

	return token
}

// query calls one provider. A provider outside the route or without a
// configured client yields a skipped report.
func (s *Scanner) query(ctx context.Context, route chains.Route, kind domain.ProviderKind, address string) *domain.ProviderReport {
	if !route.HasProvider(kind) {
		return skipped(kind)
	}
	switch kind {
	case domain.ProviderRugCheck:
		if s.rugCheck != nil {
			return providers.RugCheckReport(s.rugCheck.Report(ctx, address))
		}
	case domain.ProviderGoPlus:
		if s.goPlus != nil {
			return providers.GoPlusReport(s.goPlus.TokenSecurity(ctx, route.GoPlusChainID, address))
		}
	}
	return skipped(kind)
}

func skipped(kind domain.ProviderKind) *domain.ProviderReport {
	return &domain.ProviderReport{
		Provider: kind,
		Status:   domain.StatusSkipped,
		Reason:   domain.ReasonUnsupportedChain,
	}
}

func signalsOf(r *domain.ProviderReport) *domain.RiskSignals {
	if r == nil || !r.Found() {
		return nil
	}
	return risk.Normalize(r.Payload)
}

func reportStatus(r *domain.ProviderReport) string {
	if r == nil {
		return "none"
	}
	if r.Reason != "" {
		return string(r.Status) + ":" + r.Reason
	}
	return string(r.Status)
}

// sameAddress compares addresses the way the listing source reports them:
// EVM hex case-insensitively, base58 exactly.
func sameAddress(a, b string) bool {
	if strings.HasPrefix(a, "0x") || strings.HasPrefix(a, "0X") {
		return strings.EqualFold(a, b)
	}
	return a == b
}
