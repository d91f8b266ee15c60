// Package optimizer computes the best starting quantity and resulting Deal
// for a triangular cycle against a current order-book snapshot.
package optimizer

import (
	"math"
	"time"

	"github.com/google/uuid"

	"triarb/internal/models"
	"triarb/pkg/mathutil"
)

// fillTolerance bounds how much of a leg's input may remain unfilled before
// the candidate is disqualified as insufficient depth. Book-walk arithmetic
// runs in float64, so an exact zero-remainder check would reject otherwise
// fully-filled legs to rounding noise.
const fillTolerance = 1e-9

// Optimize evaluates grid — a configured arithmetic sweep of candidate
// starting quantities in the cycle's base asset — against cycle and books,
// and returns the Deal with the maximum expected profit. Ties are broken by
// the smaller starting quantity (guaranteed by scanning grid in ascending
// order and only replacing the incumbent on a strict improvement).
//
// Each leg of the returned Deal is rounded down to its pair's lot step, and
// the profit is recomputed on the rounded quantities — see buildDeal for the
// rounding and applyLeg for what "quantity" means for a BUY vs. a SELL leg.
//
// Returns models.NoDeal if no candidate in grid fills all three legs, or if
// the chosen quantity rounds down to zero at the first leg's lot step.
func Optimize(cycle models.Cycle, books [3]models.OrderBook, fee float64, grid []float64) models.Deal {
	if len(grid) == 0 {
		return models.NoDeal
	}

	pairs := cycle.Pairs()
	tape := cycle.Tape

	bestX0 := 0.0
	bestProfit := math.Inf(-1)
	found := false

	for _, x0 := range grid {
		if x0 <= 0 {
			continue
		}
		profit, ok := evaluate(books, pairs, tape, fee, x0)
		if !ok {
			continue
		}
		if profit > bestProfit {
			bestProfit = profit
			bestX0 = x0
			found = true
		}
	}

	if !found {
		return models.NoDeal
	}

	return buildDeal(cycle, books, pairs, tape, fee, bestX0)
}

// evaluate walks the three legs starting from x0 and returns the cycle's
// profit fraction, or ok=false if any leg fails to fully fill.
func evaluate(books [3]models.OrderBook, pairs [3]models.TradingPair, tape [3]models.ActionStep, fee, x0 float64) (profit float64, ok bool) {
	x1, ok := applyLeg(books[0], tape[0], x0, pairs[0].EffectiveTakerFee(fee))
	if !ok {
		return 0, false
	}
	x2, ok := applyLeg(books[1], tape[1], x1, pairs[1].EffectiveTakerFee(fee))
	if !ok {
		return 0, false
	}
	x3, ok := applyLeg(books[2], tape[2], x2, pairs[2].EffectiveTakerFee(fee))
	if !ok {
		return 0, false
	}
	return (x3 - x0) / x0, true
}

// buildDeal re-walks the cycle at x0, rounding the quantity fed into each
// leg down to that leg's pair step before the leg is simulated, so the
// reported profit reflects only executable, lot-aligned sizes.
func buildDeal(cycle models.Cycle, books [3]models.OrderBook, pairs [3]models.TradingPair, tape [3]models.ActionStep, fee, x0 float64) models.Deal {
	q0 := mathutil.RoundToLotSize(x0, pairs[0].Step)
	if q0 <= 0 {
		return models.NoDeal
	}
	out1, ok := applyLeg(books[0], tape[0], q0, pairs[0].EffectiveTakerFee(fee))
	if !ok {
		return models.NoDeal
	}

	q1 := mathutil.RoundToLotSize(out1, pairs[1].Step)
	if q1 <= 0 {
		return models.NoDeal
	}
	out2, ok := applyLeg(books[1], tape[1], q1, pairs[1].EffectiveTakerFee(fee))
	if !ok {
		return models.NoDeal
	}

	q2 := mathutil.RoundToLotSize(out2, pairs[2].Step)
	if q2 <= 0 {
		return models.NoDeal
	}
	out3, ok := applyLeg(books[2], tape[2], q2, pairs[2].EffectiveTakerFee(fee))
	if !ok {
		return models.NoDeal
	}

	return models.Deal{
		DealID:         uuid.New(),
		CycleID:        cycle.ID,
		StartQty:       q0,
		ExpectedProfit: (out3 - q0) / q0,
		Timestamp:      oldestTimestamp(books),
		Actions: [3]models.DealAction{
			{Symbol: tape[0].Symbol, Direction: tape[0].Direction, Quantity: q0},
			{Symbol: tape[1].Symbol, Direction: tape[1].Direction, Quantity: q1},
			{Symbol: tape[2].Symbol, Direction: tape[2].Direction, Quantity: q2},
		},
	}
}

// applyLeg consumes qty of the leg's input asset against the appropriate
// side of book (BIDS for SELL, ASKS for BUY), applies the taker fee to the
// received side, and returns the resulting amount of the next asset. ok is
// false if the book could not fully absorb qty — insufficient depth
// disqualifies the candidate outright.
func applyLeg(book models.OrderBook, step models.ActionStep, qty, fee float64) (output float64, ok bool) {
	var levels []models.BookLevel
	var inBase bool

	switch step.Direction {
	case models.Sell:
		levels = book.Bids
		inBase = true
	case models.Buy:
		levels = book.Asks
		inBase = false
	default:
		panic("optimizer: unknown direction " + string(step.Direction))
	}

	filled, avgPrice, remainder := mathutil.Consume(toFloatLevels(levels), qty, inBase)
	if avgPrice <= 0 || remainder > qty*fillTolerance+fillTolerance {
		return 0, false
	}

	var received float64
	switch step.Direction {
	case models.Sell:
		received = filled * avgPrice
	case models.Buy:
		received = filled / avgPrice
	}
	return received * (1 - fee), true
}

func toFloatLevels(levels []models.BookLevel) []mathutil.OrderBookLevel {
	out := make([]mathutil.OrderBookLevel, len(levels))
	for i, l := range levels {
		out[i] = mathutil.OrderBookLevel{
			Price:  l.Price.InexactFloat64(),
			Volume: l.Quantity.InexactFloat64(),
		}
	}
	return out
}

func oldestTimestamp(books [3]models.OrderBook) (oldest time.Time) {
	oldest = books[0].Timestamp
	for _, b := range books[1:] {
		if b.Timestamp.Before(oldest) {
			oldest = b.Timestamp
		}
	}
	return oldest
}
