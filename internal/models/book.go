package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookLevel is one price/quantity level of an order book side. Exchanges
// deliver these as decimal strings over the wire, so they are kept as
// decimal.Decimal here rather than float64 — the lossy float64 conversion
// happens only inside the optimizer's hot book-walk loop.
type BookLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Valid reports whether the level satisfies the model's invariant: price
// strictly positive, quantity non-negative.
func (l BookLevel) Valid() bool {
	return l.Price.IsPositive() && !l.Quantity.IsNegative()
}

// OrderBook is the mutable top-N snapshot of one symbol's asks and bids,
// stamped with the local wall-clock time it was ingested.
//
// Consumers assume Asks is sorted strictly ascending by price, Bids strictly
// descending, and Bids[0].Price < Asks[0].Price whenever both sides are
// non-empty. Neither OrderBook (a plain value) nor Matrix.UpdatePair checks
// or enforces this: levels are stored in the order the feed delivered them.
type OrderBook struct {
	Symbol    string      `json:"symbol"`
	Asks      []BookLevel `json:"asks"`
	Bids      []BookLevel `json:"bids"`
	Timestamp time.Time   `json:"timestamp"`
}

// Empty reports whether the book has no levels on either side.
func (b OrderBook) Empty() bool {
	return len(b.Asks) == 0 && len(b.Bids) == 0
}

// BestAsk returns the lowest ask level and true, or a zero value and false
// if the book has no asks.
func (b OrderBook) BestAsk() (BookLevel, bool) {
	if len(b.Asks) == 0 {
		return BookLevel{}, false
	}
	return b.Asks[0], true
}

// BestBid returns the highest bid level and true, or a zero value and false
// if the book has no bids.
func (b OrderBook) BestBid() (BookLevel, bool) {
	if len(b.Bids) == 0 {
		return BookLevel{}, false
	}
	return b.Bids[0], true
}
