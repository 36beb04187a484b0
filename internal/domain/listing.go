package domain

import "time"

// Listing is a freshly created trading pair as reported by the listing source.
// Identity key is (Network, BaseToken.Address).
type Listing struct {
	Network      string    `json:"network"`      // DexScreener chain id, e.g. "solana"
	DexID        string    `json:"dexId"`        // DEX identifier (informational)
	PairAddress  string    `json:"pairAddress"`  // pair/pool address
	BaseToken    Token     `json:"baseToken"`    // token being listed
	LiquidityUSD float64   `json:"liquidityUsd"` // 0 when the source did not report it
	VolumeH24    float64   `json:"volumeH24"`    // 24h volume in USD
	CreatedAt    time.Time `json:"createdAt"`    // pair creation time, zero when unknown
	URL          string    `json:"url"`          // canonical detail page
}

// Token identifies an on-chain token.
type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// TokenID returns the stable id "{network}-{baseTokenAddress}".
func (l Listing) TokenID() string {
	return TokenID(l.Network, l.BaseToken.Address)
}

// TokenID builds the stable token id from its natural key.
func TokenID(network, address string) string {
	return network + "-" + address
}

// HasCreatedAt reports whether the pair creation time is known.
func (l Listing) HasCreatedAt() bool {
	return !l.CreatedAt.IsZero()
}
