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
)

// DefaultGoPlusURL is the GoPlus token security endpoint root.
const DefaultGoPlusURL = "https://api.gopluslabs.io/api/v1/token_security"

// goPlusOK is the response code GoPlus uses for success.
const goPlusOK = 1

// GoPlus fetches token security records for any mapped chain.
type GoPlus struct {
	client  *fetch.Client
	baseURL string
	apiKey  string
	logger  zerolog.Logger
}

// NewGoPlus creates a GoPlus adapter. An empty key disables calls.
func NewGoPlus(client *fetch.Client, baseURL, apiKey string, logger zerolog.Logger) *GoPlus {
	if baseURL == "" {
		baseURL = DefaultGoPlusURL
	}
	return &GoPlus{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger.With().Str("component", "goplus").Logger(),
	}
}

// HasCredentials reports whether an API key is configured.
func (g *GoPlus) HasCredentials() bool {
	return g.apiKey != ""
}

type goPlusResponse struct {
	Code    int                             `json:"code"`
	Message string                          `json:"message"`
	Result  map[string]domain.GoPlusPayload `json:"result"`
}

// TokenSecurity fetches the security record of address on a GoPlus chain.
func (g *GoPlus) TokenSecurity(ctx context.Context, chainID, address string) Result[domain.GoPlusPayload] {
	return record(domain.ProviderGoPlus, g.tokenSecurity(ctx, chainID, address))
}

func (g *GoPlus) tokenSecurity(ctx context.Context, chainID, address string) Result[domain.GoPlusPayload] {
	if !g.HasCredentials() {
		g.logger.Warn().Msg("GoPlus API key is missing, skipping GoPlus check")
		return absent[domain.GoPlusPayload](domain.ReasonMissingCredentials)
	}
	if chainID == "" {
		return absent[domain.GoPlusPayload](domain.ReasonUnsupportedChain)
	}

	u := fmt.Sprintf("%s/%s?contract_addresses=%s", g.baseURL, url.PathEscape(chainID), url.QueryEscape(address))
	resp, err := fetch.GetJSON[goPlusResponse](ctx, g.client, u, fetch.Bearer(g.apiKey))
	if err != nil {
		if status, _ := fetch.StatusCode(err); status == http.StatusUnauthorized {
			g.logger.Error().Msg("GoPlus unauthorized, check your API key")
			return failed[domain.GoPlusPayload](domain.ReasonUnauthorized, err)
		}
		g.logger.Error().Err(err).Str("chain", chainID).Str("address", address).Msg("GoPlus request failed")
		return failed[domain.GoPlusPayload](domain.ReasonRequestFailed, err)
	}
	if resp == nil {
		return absent[domain.GoPlusPayload](domain.ReasonEmptyResponse)
	}

	if resp.Code != goPlusOK || resp.Result == nil {
		g.logger.Error().Int("code", resp.Code).Str("message", resp.Message).Msg("GoPlus API returned an error")
		return failed[domain.GoPlusPayload](domain.ReasonProviderError,
			fmt.Errorf("goplus code %d: %s", resp.Code, resp.Message))
	}

	payload, ok := lookupFold(resp.Result, address)
	if !ok {
		return absent[domain.GoPlusPayload](domain.ReasonNotFound)
	}
	return found(&payload)
}

// lookupFold finds address in a result map keyed case-insensitively.
func lookupFold(m map[string]domain.GoPlusPayload, address string) (domain.GoPlusPayload, bool) {
	if p, ok := m[strings.ToLower(address)]; ok {
		return p, true
	}
	for k, p := range m {
		if strings.EqualFold(k, address) {
			return p, true
		}
	}
	return domain.GoPlusPayload{}, false
}
