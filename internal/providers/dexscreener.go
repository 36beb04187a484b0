package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"token-risk-scanner/internal/domain"
	"token-risk-scanner/internal/fetch"
)

// DefaultDexScreenerURL is the DexScreener API root.
const DefaultDexScreenerURL = "https://api.dexscreener.com/latest/dex"

// DexScreener lists recently created pairs per network.
type DexScreener struct {
	client  *fetch.Client
	baseURL string
	logger  zerolog.Logger
}

// NewDexScreener creates a DexScreener listing source.
func NewDexScreener(client *fetch.Client, baseURL string, logger zerolog.Logger) *DexScreener {
	if baseURL == "" {
		baseURL = DefaultDexScreenerURL
	}
	return &DexScreener{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With().Str("component", "dexscreener").Logger(),
	}
}

type dsResponse struct {
	Pairs []dsPair `json:"pairs"`
}

type dsPair struct {
	ChainID     string `json:"chainId"`
	DexID       string `json:"dexId"`
	URL         string `json:"url"`
	PairAddress string `json:"pairAddress"`
	BaseToken   struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	Liquidity *struct {
		USD *float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	PairCreatedAt int64 `json:"pairCreatedAt"` // unix ms, 0 when unknown
}

// RecentListings returns pairs on network, newest first.
// A null body yields an empty slice. Errors are logged and returned.
func (d *DexScreener) RecentListings(ctx context.Context, network string) ([]domain.Listing, error) {
	u := fmt.Sprintf("%s/pairs/%s?sort=pairCreatedAt&order=desc", d.baseURL, url.PathEscape(network))

	resp, err := fetch.GetJSON[dsResponse](ctx, d.client, u, nil)
	if err != nil {
		d.logger.Error().Err(err).Str("network", network).Msg("fetch recent pairs failed")
		return nil, fmt.Errorf("dexscreener pairs %s: %w", network, err)
	}
	if resp == nil {
		return []domain.Listing{}, nil
	}

	return toListings(resp.Pairs), nil
}

// TokenListings returns every pair whose base or quote token is address,
// across all networks.
func (d *DexScreener) TokenListings(ctx context.Context, address string) ([]domain.Listing, error) {
	u := fmt.Sprintf("%s/tokens/%s", d.baseURL, url.PathEscape(address))

	resp, err := fetch.GetJSON[dsResponse](ctx, d.client, u, nil)
	if err != nil {
		d.logger.Error().Err(err).Str("address", address).Msg("fetch token pairs failed")
		return nil, fmt.Errorf("dexscreener token %s: %w", address, err)
	}
	if resp == nil {
		return []domain.Listing{}, nil
	}

	return toListings(resp.Pairs), nil
}

func toListings(pairs []dsPair) []domain.Listing {
	listings := make([]domain.Listing, 0, len(pairs))
	for _, p := range pairs {
		listings = append(listings, p.toListing())
	}
	return listings
}

func (p dsPair) toListing() domain.Listing {
	l := domain.Listing{
		Network:     p.ChainID,
		DexID:       p.DexID,
		PairAddress: p.PairAddress,
		BaseToken: domain.Token{
			Address: p.BaseToken.Address,
			Name:    p.BaseToken.Name,
			Symbol:  p.BaseToken.Symbol,
		},
		VolumeH24: p.Volume.H24,
		URL:       p.URL,
	}
	if p.Liquidity != nil && p.Liquidity.USD != nil {
		l.LiquidityUSD = *p.Liquidity.USD
	}
	if p.PairCreatedAt > 0 {
		l.CreatedAt = time.UnixMilli(p.PairCreatedAt).UTC()
	}
	return l
}
