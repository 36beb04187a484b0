package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexString is a string field that also accepts JSON numbers and
// booleans. Numbers keep their literal text; true and false become "1" and
// "0". Null, objects and arrays decode as "".
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case 't':
		*f = "1"
	case 'f':
		*f = "0"
	case 'n', '{', '[':
		*f = ""
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = FlexString(n)
	}
	return nil
}

// GoPlusPayload is the token security record returned by GoPlus.
// GoPlus encodes booleans as "1"/"0" strings and taxes as decimal strings,
// though some chains return bare numbers or booleans instead.
// Fields not used by the normalizer are kept verbatim in Extra.
type GoPlusPayload struct {
	AntiWhale            FlexString `json:"anti_whale,omitempty"`
	BuyTax               FlexString `json:"buy_tax,omitempty"`
	SellTax              FlexString `json:"sell_tax,omitempty"`
	CanTakeBackOwnership FlexString `json:"can_take_back_ownership,omitempty"`
	CannotSellAll        FlexString `json:"cannot_sell_all,omitempty"`
	HiddenOwner          FlexString `json:"hidden_owner,omitempty"`
	IsHoneypot           FlexString `json:"is_honeypot,omitempty"`
	IsMintable           FlexString `json:"is_mintable,omitempty"`
	IsProxy              FlexString `json:"is_proxy,omitempty"`
	IsBlacklisted        FlexString `json:"is_blacklisted,omitempty"`
	IsWhitelisted        FlexString `json:"is_whitelisted,omitempty"`
	OwnerAddress         FlexString `json:"owner_address,omitempty"`
	SlippageModifiable   FlexString `json:"slippage_modifiable,omitempty"`
	TradingCooldown      FlexString `json:"trading_cooldown,omitempty"`
	TransferPausable     FlexString `json:"transfer_pausable,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var goPlusKnownFields = map[string]bool{
	"anti_whale": true, "buy_tax": true, "sell_tax": true,
	"can_take_back_ownership": true, "cannot_sell_all": true,
	"hidden_owner": true, "is_honeypot": true, "is_mintable": true,
	"is_proxy": true, "is_blacklisted": true, "is_whitelisted": true,
	"owner_address": true, "slippage_modifiable": true,
	"trading_cooldown": true, "transfer_pausable": true,
}

// UnmarshalJSON decodes known fields and collects the rest into Extra.
func (p *GoPlusPayload) UnmarshalJSON(data []byte) error {
	type plain GoPlusPayload
	var known plain
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	extra, err := collectExtra(data, goPlusKnownFields)
	if err != nil {
		return err
	}
	*p = GoPlusPayload(known)
	p.Extra = extra
	return nil
}

// MarshalJSON emits known fields merged with Extra.
func (p GoPlusPayload) MarshalJSON() ([]byte, error) {
	type plain GoPlusPayload
	return mergeExtra(plain(p), p.Extra)
}

// RugCheckPayload is the token report returned by RugCheck.
type RugCheckPayload struct {
	Risk        string              `json:"risk"`
	RiskDetails RugCheckRiskDetails `json:"riskDetails"`
	Markets     []json.RawMessage   `json:"markets,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// RugCheckRiskDetails holds the Solana authority and holder facts.
type RugCheckRiskDetails struct {
	MintAuthorityActive   bool    `json:"mintAuthorityActive"`
	FreezeAuthorityActive bool    `json:"freezeAuthorityActive"`
	HasSocials            bool    `json:"hasSocials"`
	Top10HolderBalance    float64 `json:"top10HolderBalance"`
	Top10HolderPercent    float64 `json:"top10HolderPercent"`
}

var rugCheckKnownFields = map[string]bool{
	"risk": true, "riskDetails": true, "markets": true,
}

// UnmarshalJSON decodes known fields and collects the rest into Extra.
func (p *RugCheckPayload) UnmarshalJSON(data []byte) error {
	type plain RugCheckPayload
	var known plain
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	extra, err := collectExtra(data, rugCheckKnownFields)
	if err != nil {
		return err
	}
	*p = RugCheckPayload(known)
	p.Extra = extra
	return nil
}

// MarshalJSON emits known fields merged with Extra.
func (p RugCheckPayload) MarshalJSON() ([]byte, error) {
	type plain RugCheckPayload
	return mergeExtra(plain(p), p.Extra)
}

// RiskPayload is a tagged union of the two provider payload shapes.
// Exactly one of GoPlus/RugCheck is set, matching Provider.
type RiskPayload struct {
	Provider ProviderKind
	GoPlus   *GoPlusPayload
	RugCheck *RugCheckPayload
}

// NewGoPlusPayload wraps a GoPlus record.
func NewGoPlusPayload(p *GoPlusPayload) *RiskPayload {
	return &RiskPayload{Provider: ProviderGoPlus, GoPlus: p}
}

// NewRugCheckPayload wraps a RugCheck report.
func NewRugCheckPayload(p *RugCheckPayload) *RiskPayload {
	return &RiskPayload{Provider: ProviderRugCheck, RugCheck: p}
}

// MarshalJSON emits the provider's own shape.
func (p RiskPayload) MarshalJSON() ([]byte, error) {
	switch p.Provider {
	case ProviderGoPlus:
		return json.Marshal(p.GoPlus)
	case ProviderRugCheck:
		return json.Marshal(p.RugCheck)
	default:
		return []byte("null"), nil
	}
}

func collectExtra(data []byte, known map[string]bool) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode payload fields: %w", err)
	}
	var extra map[string]json.RawMessage
	for k, v := range all {
		if known[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = v
	}
	return extra, nil
}

func mergeExtra(known any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return data, nil
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, exists := all[k]; !exists {
			all[k] = v
		}
	}
	return json.Marshal(all)
}
