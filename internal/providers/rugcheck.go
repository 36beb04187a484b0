package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"token-risk-scanner/internal/domain"
	"token-risk-scanner/internal/fetch"
	"token-risk-scanner/internal/solana"
)

// DefaultRugCheckURL is the RugCheck token report endpoint root.
const DefaultRugCheckURL = "https://api.rugcheck.xyz/v1/tokens"

// RugCheck fetches Solana token reports.
type RugCheck struct {
	client  *fetch.Client
	baseURL string
	token   string
	logger  zerolog.Logger
}

// NewRugCheck creates a RugCheck adapter. An empty token disables calls.
func NewRugCheck(client *fetch.Client, baseURL, token string, logger zerolog.Logger) *RugCheck {
	if baseURL == "" {
		baseURL = DefaultRugCheckURL
	}
	return &RugCheck{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		logger:  logger.With().Str("component", "rugcheck").Logger(),
	}
}

// HasCredentials reports whether an API token is configured.
func (r *RugCheck) HasCredentials() bool {
	return r.token != ""
}

// Report fetches the risk report for a Solana mint.
func (r *RugCheck) Report(ctx context.Context, mint string) Result[domain.RugCheckPayload] {
	return record(domain.ProviderRugCheck, r.report(ctx, mint))
}

func (r *RugCheck) report(ctx context.Context, mint string) Result[domain.RugCheckPayload] {
	if !r.HasCredentials() {
		r.logger.Warn().Msg("RugCheck API token is missing, skipping RugCheck")
		return absent[domain.RugCheckPayload](domain.ReasonMissingCredentials)
	}

	kind, err := solana.ClassifyAddress(mint)
	if err != nil {
		r.logger.Warn().Err(err).Str("mint", mint).Msg("skipping RugCheck for invalid mint")
		return absent[domain.RugCheckPayload](domain.ReasonInvalidAddress)
	}
	if kind == solana.AddressOffCurve {
		r.logger.Debug().Str("mint", mint).Msg("mint is a program-derived address")
	}

	u := fmt.Sprintf("%s/%s", r.baseURL, url.PathEscape(mint))
	payload, err := fetch.GetJSON[domain.RugCheckPayload](ctx, r.client, u, fetch.Bearer(r.token))
	if err != nil {
		status, _ := fetch.StatusCode(err)
		switch status {
		case http.StatusUnauthorized:
			r.logger.Error().Msg("RugCheck unauthorized, check your API token")
			return failed[domain.RugCheckPayload](domain.ReasonUnauthorized, err)
		case http.StatusNotFound:
			r.logger.Debug().Str("mint", mint).Msg("RugCheck: token not found")
			return absent[domain.RugCheckPayload](domain.ReasonNotFound)
		default:
			r.logger.Error().Err(err).Str("mint", mint).Msg("RugCheck request failed")
			return failed[domain.RugCheckPayload](domain.ReasonRequestFailed, err)
		}
	}
	if payload == nil {
		return absent[domain.RugCheckPayload](domain.ReasonEmptyResponse)
	}

	return found(payload)
}
