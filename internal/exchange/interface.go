package exchange

import (
	"context"
	"errors"
	"time"

	"triarb/internal/models"
)

// SymbolInfo is one entry of an exchange's symbol catalogue, as returned by
// Exchange.ExchangeInfo.
type SymbolInfo struct {
	Symbol         string
	Base           models.Asset
	Quote          models.Asset
	BasePrecision  int
	QuotePrecision int
	Step           float64
	Status         string
}

// DepthUpdate is one depth-socket message: the full top-N snapshot for a
// symbol, as delivered to the callback registered with SubscribeDepth.
type DepthUpdate struct {
	Asks      []models.BookLevel
	Bids      []models.BookLevel
	Timestamp time.Time
}

// OrderStatus mirrors the exchange's order lifecycle states.
type OrderStatus string

const (
	OrderNew             OrderStatus = "NEW"
	OrderPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderFilled          OrderStatus = "FILLED"
	OrderCanceled        OrderStatus = "CANCELED"
)

// ErrOrderNotFound is returned by GetOrder when the order is not yet
// visible — the immediate-consistency lag the Executor retries through.
var ErrOrderNotFound = errors.New("exchange: order not found")

// Exchange is the external collaborator this engine drives: a symbol
// catalogue, a depth-socket subscription, and market-order submission plus
// status polling. It deliberately has no concept of balances, positions, or
// leverage — those belong to exchanges the spot triangular engine never
// touches.
type Exchange interface {
	// ExchangeInfo returns the exchange's full symbol catalogue.
	ExchangeInfo(ctx context.Context) ([]SymbolInfo, error)

	// SubscribeDepth opens a depth feed for symbol at the given book depth;
	// onMessage is invoked from the subscription's own goroutine for every
	// update. Returns once the subscription is established; the feed keeps
	// running until ctx is canceled.
	SubscribeDepth(ctx context.Context, symbol string, depth int, onMessage func(DepthUpdate)) error

	// MarketOrder submits a market order for qty of symbol in direction and
	// returns the exchange's order ID.
	MarketOrder(ctx context.Context, symbol string, direction models.Direction, qty float64) (orderID string, err error)

	// GetOrder polls the current status of a previously submitted order.
	// Returns ErrOrderNotFound while the exchange has not yet indexed it.
	GetOrder(ctx context.Context, symbol, orderID string) (OrderStatus, error)

	// Ping health-checks the connection.
	Ping(ctx context.Context) error
}
