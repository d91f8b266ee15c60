// Package models holds the core data shapes shared across the engine:
// trading pairs, order books, cycles, and deals.
package models

// Asset is a currency identifier, e.g. "BTC". Compared by value.
type Asset string

// TradingPair is an immutable descriptor of an exchange symbol, built once
// at startup from the exchange's symbol catalogue.
type TradingPair struct {
	Symbol string `json:"symbol"`
	Base   Asset  `json:"base"`
	Quote  Asset  `json:"quote"`

	BasePrecision  int `json:"base_precision"`
	QuotePrecision int `json:"quote_precision"`

	// Step is the minimum quantity increment of the base asset.
	Step float64 `json:"step"`

	// TakerFee overrides the engine-wide taker fee for this pair when
	// non-zero; zero means "use trading.taker_fee".
	TakerFee float64 `json:"taker_fee,omitempty"`
}

// Other returns the asset on the opposite side of a from this pair's
// base/quote. It panics if a is neither, since that indicates a caller bug
// (the pair was looked up against the wrong asset).
func (p TradingPair) Other(a Asset) Asset {
	switch a {
	case p.Base:
		return p.Quote
	case p.Quote:
		return p.Base
	default:
		panic("models: asset " + string(a) + " is not part of pair " + p.Symbol)
	}
}

// Has reports whether a is one side of this pair.
func (p TradingPair) Has(a Asset) bool {
	return a == p.Base || a == p.Quote
}

// Equals reports whether two pairs trade the same unordered {base, quote}
// set, regardless of symbol or which side is base.
func (p TradingPair) Equals(o TradingPair) bool {
	return (p.Base == o.Base && p.Quote == o.Quote) ||
		(p.Base == o.Quote && p.Quote == o.Base)
}

// EffectiveTakerFee returns TakerFee if set, else fallback.
func (p TradingPair) EffectiveTakerFee(fallback float64) float64 {
	if p.TakerFee > 0 {
		return p.TakerFee
	}
	return fallback
}
