// Package chains maps listing-source network ids to provider chain ids and
// decides which risk providers apply to a network.
package chains

import "token-risk-scanner/internal/domain"

// Solana is the DexScreener network id of the Solana family.
const Solana = "solana"

// goPlusChainIDs maps DexScreener network ids to GoPlus chain ids.
var goPlusChainIDs = map[string]string{
	"ethereum":  "1",
	"bsc":       "56",
	"polygon":   "137",
	"arbitrum":  "42161",
	"avalanche": "43114",
	"base":      "8453",
	"optimism":  "10",
	"fantom":    "250",
	"cronos":    "25",
	"zkSync":    "324",
	"scroll":    "534352",
	"linea":     "59144",
	"mantle":    "5000",
	"blast":     "81457",
	"solana":    "solana",
}

// rugCheckChains lists networks RugCheck covers. Maintained independently
// of goPlusChainIDs.
var rugCheckChains = map[string]string{
	"solana": "solana",
}

// bubbleMapsChains maps DexScreener network ids to BubbleMaps chain labels.
var bubbleMapsChains = map[string]string{
	"ethereum":  "ethereum",
	"bsc":       "bsc",
	"polygon":   "polygon",
	"arbitrum":  "arbitrum",
	"base":      "base",
	"avalanche": "avalanche",
	"fantom":    "fantom",
	"cronos":    "cronos",
	"solana":    "solana",
}

// GoPlusChainID returns the GoPlus chain id for network.
// ok is false when GoPlus does not cover the network.
func GoPlusChainID(network string) (string, bool) {
	id, ok := goPlusChainIDs[network]
	return id, ok
}

// RugCheckChain returns the RugCheck chain for network.
// ok is false when RugCheck does not cover the network.
func RugCheckChain(network string) (string, bool) {
	id, ok := rugCheckChains[network]
	return id, ok
}

// IsSolanaFamily reports whether network uses Solana mint semantics.
func IsSolanaFamily(network string) bool {
	return network == Solana
}

// BubbleMapsChain returns the BubbleMaps label for network, or "".
func BubbleMapsChain(network string) string {
	return bubbleMapsChains[network]
}

// BubbleMapsURL returns the holder-map URL for a token, or "" when the
// network is not covered.
func BubbleMapsURL(network, address string) string {
	chain := BubbleMapsChain(network)
	if chain == "" || address == "" {
		return ""
	}
	return "https://app.bubblemaps.io/" + chain + "/token/" + address
}

// Route is the provider plan for one network.
type Route struct {
	Network string

	// Primary and Secondary are ProviderNone when no provider applies.
	Primary   domain.ProviderKind
	Secondary domain.ProviderKind

	// GoPlusChainID is set whenever GoPlus is Primary or Secondary.
	GoPlusChainID string
}

// HasProvider reports whether the route calls p.
func (r Route) HasProvider(p domain.ProviderKind) bool {
	return p != domain.ProviderNone && (r.Primary == p || r.Secondary == p)
}

// Select decides which providers apply to network.
//
// Solana-family networks with RugCheck enabled use RugCheck as primary and
// GoPlus as secondary. Every other network, and Solana with RugCheck
// disabled, uses GoPlus as the only provider. A provider without a chain
// mapping is dropped from the route rather than called.
func Select(network string, rugCheckEnabled bool) Route {
	r := Route{Network: network}
	gpID, hasGoPlus := GoPlusChainID(network)
	_, hasRugCheck := RugCheckChain(network)

	if IsSolanaFamily(network) && rugCheckEnabled && hasRugCheck {
		r.Primary = domain.ProviderRugCheck
		if hasGoPlus {
			r.Secondary = domain.ProviderGoPlus
			r.GoPlusChainID = gpID
		}
		return r
	}

	if hasGoPlus {
		r.Primary = domain.ProviderGoPlus
		r.GoPlusChainID = gpID
	}
	return r
}
