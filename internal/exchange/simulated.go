package exchange

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"triarb/internal/models"
)

// Simulated is an in-memory Exchange used by tests and local runs without
// real exchange credentials. It serves a fixed symbol catalogue and
// deterministic, always-FILLED order fills.
type Simulated struct {
	mu        sync.RWMutex
	catalogue []SymbolInfo
	books     map[string]DepthUpdate
	orders    map[string]OrderStatus
	nextOrder int64
}

// NewSimulated returns a Simulated exchange seeded with catalogue. It plays
// the same role a real per-exchange adapter would (catalogue lookup, order
// placement, order status) without HMAC request signing or live sockets,
// since tests and local runs need none of that.
func NewSimulated(catalogue []SymbolInfo) *Simulated {
	return &Simulated{
		catalogue: catalogue,
		books:     make(map[string]DepthUpdate),
		orders:    make(map[string]OrderStatus),
	}
}

// SeedBook installs the current depth snapshot returned for symbol by
// SubscribeDepth and later calls to it.
func (s *Simulated) SeedBook(symbol string, upd DepthUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[symbol] = upd
}

func (s *Simulated) ExchangeInfo(ctx context.Context) ([]SymbolInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SymbolInfo, len(s.catalogue))
	copy(out, s.catalogue)
	return out, nil
}

// SubscribeDepth delivers the currently seeded book once, synchronously.
// A simulated feed has no live socket to reconnect, so there is nothing
// further to push after the initial snapshot.
func (s *Simulated) SubscribeDepth(ctx context.Context, symbol string, depth int, onMessage func(DepthUpdate)) error {
	s.mu.RLock()
	upd, ok := s.books[symbol]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("exchange: no simulated book seeded for %s", symbol)
	}
	onMessage(upd)
	return nil
}

// MarketOrder records an order and marks it FILLED immediately.
func (s *Simulated) MarketOrder(ctx context.Context, symbol string, direction models.Direction, qty float64) (string, error) {
	id := fmt.Sprintf("sim-%d", atomic.AddInt64(&s.nextOrder, 1))
	s.mu.Lock()
	s.orders[id] = OrderFilled
	s.mu.Unlock()
	return id, nil
}

func (s *Simulated) GetOrder(ctx context.Context, symbol, orderID string) (OrderStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.orders[orderID]
	if !ok {
		return "", ErrOrderNotFound
	}
	return status, nil
}

func (s *Simulated) Ping(ctx context.Context) error {
	return nil
}
