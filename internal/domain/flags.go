package domain

// Flag identifies a single risk finding.
type Flag string

const (
	FlagLowLiquidity          Flag = "low_liquidity"
	FlagVeryNew               Flag = "very_new"
	FlagHoneypot              Flag = "honeypot_signals"
	FlagHighTax               Flag = "high_tax"
	FlagBlacklist             Flag = "blacklist_enabled"
	FlagAntiWhale             Flag = "anti_whale"
	FlagCooldown              Flag = "cooldown"
	FlagTradingDisabled       Flag = "trading_disabled"
	FlagOwnerCanRetake        Flag = "owner_can_retake"
	FlagHiddenOwner           Flag = "hidden_owner"
	FlagProxyUpgradable       Flag = "proxy_upgradable"
	FlagMintableSupply        Flag = "mintable_supply"
	FlagMintAuthorityActive   Flag = "mint_authority_active"
	FlagFreezeAuthorityActive Flag = "freeze_authority_active"
	FlagLPUnlockedOrUnknown   Flag = "lp_unlocked_or_unknown"

	// FlagManualHolderConcentration is set by reviewers, never by the scorer.
	FlagManualHolderConcentration Flag = "manual_holder_concentration"
)

// String returns the string representation of Flag.
func (f Flag) String() string {
	return string(f)
}

// FlagInfo is the display metadata of a flag.
type FlagInfo struct {
	Label   string `json:"label"`
	Tooltip string `json:"tooltip"`
}

// Flags is the catalog of known flags.
var Flags = map[Flag]FlagInfo{
	FlagLowLiquidity:              {"Low Liq.", "Liquidity is very low, increasing price volatility and risk."},
	FlagVeryNew:                   {"New", "The token or pair was created less than 24 hours ago."},
	FlagHoneypot:                  {"Honeypot", "Indicators suggest this token may be a honeypot (buyable but not sellable)."},
	FlagHighTax:                   {"High Tax", "Buy or sell tax is over 10%."},
	FlagBlacklist:                 {"Blacklist", "A blacklist function exists, allowing the owner to prevent addresses from trading."},
	FlagAntiWhale:                 {"Anti-Whale", "An anti-whale mechanism is in place, which may restrict trading."},
	FlagCooldown:                  {"Cooldown", "A trading cooldown function exists."},
	FlagTradingDisabled:           {"Trading Paused", "Trading is currently disabled or pausable."},
	FlagOwnerCanRetake:            {"Retakable Own.", "Ownership can be taken back by the creator."},
	FlagHiddenOwner:               {"Hidden Owner", "The true owner of the contract may be hidden."},
	FlagProxyUpgradable:           {"Proxy", "The contract is a proxy and can be upgraded, changing its logic."},
	FlagMintableSupply:            {"Mintable", "New tokens can be minted, potentially diluting supply."},
	FlagMintAuthorityActive:       {"Mint Active", "The mint authority is still active for this Solana token."},
	FlagFreezeAuthorityActive:     {"Freeze Active", "The freeze authority is still active for this Solana token."},
	FlagLPUnlockedOrUnknown:       {"Unlocked LP", "A significant portion of the liquidity pool is not locked or burned."},
	FlagManualHolderConcentration: {"Holders", "Manually flagged for risky holder concentration."},
}

// Info returns the catalog entry for f, falling back to the raw id.
func (f Flag) Info() FlagInfo {
	if info, ok := Flags[f]; ok {
		return info
	}
	return FlagInfo{Label: string(f)}
}

// FlagDetail is a raised flag with its display metadata.
type FlagDetail struct {
	ID Flag `json:"id"`
	FlagInfo
}

// Details returns the display metadata of flags, in order.
func Details(flags []Flag) []FlagDetail {
	out := make([]FlagDetail, len(flags))
	for i, f := range flags {
		out[i] = FlagDetail{ID: f, FlagInfo: f.Info()}
	}
	return out
}
