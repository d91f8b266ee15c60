// Package topology is the one-shot builder that turns a trading pair
// catalogue and a base asset into the set of triangular cycles to evaluate
// and the minimal set of symbols that need a live order book.
package topology

import (
	"fmt"
	"sort"

	"triarb/internal/models"
)

// Result is the output of Build: every triangular cycle closable through
// Base, plus the symbols whose books must be subscribed to evaluate them.
type Result struct {
	Cycles        []models.Cycle
	Subscriptions []string
}

// Build enumerates cycles as follows: let S be the pairs touching Base (the
// "starters"). For every unordered pair (p, q) in S with p != q, the
// synthetic pair (p.Other(Base), q.Other(Base)) is searched for in pairs;
// if a matching pair m exists, two cycles are emitted: (Base, p, m, q) and
// (Base, q, m, p). Enumeration order is deterministic, lexicographic by
// (p.Symbol, q.Symbol).
//
// If Base matches no pair, or no middle pair closes a given (p, q), the
// result is silently smaller — there is no error return because an empty
// topology is a valid (if useless) input for the catalogue-validation step
// that runs at startup, not a programming error in this builder.
func Build(pairs []models.TradingPair, base models.Asset) Result {
	starters := make([]models.TradingPair, 0, len(pairs))
	for _, p := range pairs {
		if p.Has(base) {
			starters = append(starters, p)
		}
	}
	sort.Slice(starters, func(i, j int) bool { return starters[i].Symbol < starters[j].Symbol })

	subs := make(map[string]struct{})
	var cycles []models.Cycle

	for i := 0; i < len(starters); i++ {
		for j := i + 1; j < len(starters); j++ {
			p, q := starters[i], starters[j]

			m, ok := findPair(pairs, p.Other(base), q.Other(base))
			if !ok {
				continue
			}

			cycles = append(cycles, buildCycle(base, p, m, q))
			cycles = append(cycles, buildCycle(base, q, m, p))

			subs[p.Symbol] = struct{}{}
			subs[q.Symbol] = struct{}{}
			subs[m.Symbol] = struct{}{}
		}
	}

	subscriptions := make([]string, 0, len(subs))
	for s := range subs {
		subscriptions = append(subscriptions, s)
	}
	sort.Strings(subscriptions)

	return Result{Cycles: cycles, Subscriptions: subscriptions}
}

// findPair returns the first pair in pairs whose unordered {base, quote} set
// equals {a, b}.
func findPair(pairs []models.TradingPair, a, b models.Asset) (models.TradingPair, bool) {
	for _, cand := range pairs {
		if (cand.Base == a && cand.Quote == b) || (cand.Base == b && cand.Quote == a) {
			return cand, true
		}
	}
	return models.TradingPair{}, false
}

// buildCycle walks base -> start.Other(base) -> middle.Other(...) -> base
// and derives each leg's side/direction from which asset the cycle already
// holds going into that leg.
func buildCycle(base models.Asset, start, middle, end models.TradingPair) models.Cycle {
	held1 := start.Other(base)
	held2 := middle.Other(held1)

	tape := [3]models.ActionStep{
		legAction(start, base),
		legAction(middle, held1),
		legAction(end, held2),
	}

	return models.Cycle{
		ID:     fmt.Sprintf("%s:%s:%s:%s", base, start.Symbol, middle.Symbol, end.Symbol),
		Base:   base,
		Start:  start,
		Middle: middle,
		End:    end,
		Tape:   tape,
	}
}

// legAction derives the side/direction for trading pair against the asset
// the cycle currently holds. Holding the pair's base means the leg gives
// base and receives quote (SELL, consuming BIDS); holding the quote means
// the leg gives quote and receives base (BUY, consuming ASKS).
func legAction(pair models.TradingPair, have models.Asset) models.ActionStep {
	if pair.Base == have {
		return models.ActionStep{Symbol: pair.Symbol, Side: models.SideBids, Direction: models.Sell}
	}
	return models.ActionStep{Symbol: pair.Symbol, Side: models.SideAsks, Direction: models.Buy}
}
