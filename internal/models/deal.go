package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// DealAction is one leg of an accepted Deal: the symbol, trade direction,
// and quantity rounded down to that pair's lot step.
type DealAction struct {
	Symbol    string    `json:"symbol"`
	Direction Direction `json:"direction"`
	Quantity  float64   `json:"quantity"`
}

// Deal is a concrete, sized, three-leg plan produced by the optimizer for a
// single cycle evaluation.
type Deal struct {
	DealID  uuid.UUID `json:"deal_id"`
	CycleID string    `json:"cycle_id"`

	// StartQty is the quantity of the cycle's base asset committed to leg 1.
	StartQty float64 `json:"start_qty"`

	// ExpectedProfit is a dimensionless fraction of StartQty in the base
	// asset, e.g. 0.0023 for 0.23%.
	ExpectedProfit float64 `json:"expected_profit"`

	// Timestamp is the oldest book timestamp among the three pairs at the
	// moment of computation — the freshness bound for this deal.
	Timestamp time.Time `json:"timestamp"`

	Actions [3]DealAction `json:"actions"`
}

// NoDeal is the optimizer's sentinel for "no feasible starting quantity was
// found": ExpectedProfit is negative infinity and Actions is the zero value.
var NoDeal = Deal{ExpectedProfit: math.Inf(-1)}

// IsNoDeal reports whether d is the no-deal sentinel.
func (d Deal) IsNoDeal() bool {
	return math.IsInf(d.ExpectedProfit, -1)
}
