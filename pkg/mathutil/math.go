// Package mathutil collects floating-point arithmetic helpers: lot-size
// rounding, spread calculations, and order-book depth walks. The optimizer
// uses the lot rounding and the depth walk.
package mathutil

import "math"

// OrderBookLevel is one price/quantity level of a book side.
type OrderBookLevel struct {
	Price  float64
	Volume float64
}

// RoundToLotSize truncates value down to the nearest multiple of lotSize.
// A non-positive lotSize disables rounding.
func RoundToLotSize(value, lotSize float64) float64 {
	if lotSize <= 0 {
		return value
	}
	steps := math.Floor(value / lotSize)
	return roundTo(steps*lotSize, lotSize)
}

// RoundToLotSizeUp rounds value up to the nearest multiple of lotSize.
func RoundToLotSizeUp(value, lotSize float64) float64 {
	if lotSize <= 0 {
		return value
	}
	steps := math.Ceil(value / lotSize)
	return roundTo(steps*lotSize, lotSize)
}

// RoundToLotSizeNearest rounds value to the nearest multiple of lotSize.
func RoundToLotSizeNearest(value, lotSize float64) float64 {
	if lotSize <= 0 {
		return value
	}
	steps := math.Round(value / lotSize)
	return roundTo(steps*lotSize, lotSize)
}

// roundTo corrects the binary floating-point drift introduced by repeated
// division/multiplication by lotSize, rounding to the number of decimals
// implied by lotSize.
func roundTo(value, lotSize float64) float64 {
	decimals := 0
	for lotSize < 1 && decimals < 12 {
		lotSize *= 10
		decimals++
	}
	mult := math.Pow(10, float64(decimals))
	return math.Round(value*mult) / mult
}

// CalculateSpread returns the percentage spread of priceHigh over priceLow.
// Returns 0 if priceLow is non-positive.
func CalculateSpread(priceHigh, priceLow float64) float64 {
	if priceLow <= 0 {
		return 0
	}
	return (priceHigh - priceLow) / priceLow * 100
}

// CalculateSpreadFromPrices returns the spread between two prices regardless
// of which one is higher. Returns 0 if either price is non-positive.
func CalculateSpreadFromPrices(priceA, priceB float64) float64 {
	if priceA <= 0 || priceB <= 0 {
		return 0
	}
	high, low := priceA, priceB
	if low > high {
		high, low = low, high
	}
	return CalculateSpread(high, low)
}

// CalculateNetSpread subtracts the round-trip taker fees (feeA + feeB, each
// paid on entry and exit) from a gross spread, all expressed in percent.
func CalculateNetSpread(spreadPct, feeA, feeB float64) float64 {
	feesPct := (feeA + feeB) * 100
	return spreadPct - 2*feesPct
}

// CalculateNetSpreadDirect computes the net spread directly from two prices.
func CalculateNetSpreadDirect(priceHigh, priceLow, feeA, feeB float64) float64 {
	return CalculateNetSpread(CalculateSpread(priceHigh, priceLow), feeA, feeB)
}

// CalculateWeightedAverage returns the volume-weighted average of values.
// Mismatched lengths, empty inputs, or a non-positive total weight yield 0.
// Negative weights are ignored.
func CalculateWeightedAverage(values, weights []float64) float64 {
	if len(values) == 0 || len(values) != len(weights) {
		return 0
	}
	var sum, totalWeight float64
	for i, w := range weights {
		if w < 0 {
			continue
		}
		sum += values[i] * w
		totalWeight += w
	}
	if totalWeight <= 0 {
		return 0
	}
	return sum / totalWeight
}

// SimulateMarketBuy walks asks consuming targetVolume units of base asset,
// returning the volume-weighted average price, the volume actually filled
// (capped at total book depth), and the slippage percent versus the best
// ask. Returns all zeros for an empty book or a non-positive target.
func SimulateMarketBuy(asks []OrderBookLevel, targetVolume float64) (avgPrice, filled, slippagePct float64) {
	return simulateMarket(asks, targetVolume)
}

// SimulateMarketSell walks bids consuming targetVolume units of base asset.
func SimulateMarketSell(bids []OrderBookLevel, targetVolume float64) (avgPrice, filled, slippagePct float64) {
	return simulateMarket(bids, targetVolume)
}

func simulateMarket(levels []OrderBookLevel, targetVolume float64) (avgPrice, filled, slippagePct float64) {
	if len(levels) == 0 || targetVolume <= 0 {
		return 0, 0, 0
	}

	bestPrice := levels[0].Price
	remaining := targetVolume
	var notional float64

	for _, level := range levels {
		if remaining <= 0 {
			break
		}
		take := math.Min(remaining, level.Volume)
		notional += take * level.Price
		filled += take
		remaining -= take
	}

	if filled == 0 {
		return 0, 0, 0
	}

	avgPrice = notional / filled
	slippagePct = (avgPrice - bestPrice) / bestPrice * 100
	return avgPrice, filled, slippagePct
}

// consume walks levels consuming q units — of the base asset when inBase is
// true, of the quote asset (price*volume) otherwise — and reports how much
// of q was actually filled, the resulting volume-weighted price, and the
// unfilled remainder. This generalizes SimulateMarketBuy/Sell to either
// side of a trade, grounding the optimizer's per-leg book walk.
func Consume(levels []OrderBookLevel, q float64, inBase bool) (filled, avgPrice, remainder float64) {
	if len(levels) == 0 || q <= 0 {
		return 0, 0, q
	}

	remaining := q
	var notional, baseFilled float64

	for _, level := range levels {
		if remaining <= 0 {
			break
		}
		var levelCapacity float64
		if inBase {
			levelCapacity = level.Volume
		} else {
			levelCapacity = level.Volume * level.Price
		}

		take := math.Min(remaining, levelCapacity)
		var baseTake float64
		if inBase {
			baseTake = take
		} else {
			baseTake = take / level.Price
		}

		notional += baseTake * level.Price
		baseFilled += baseTake
		remaining -= take
	}

	if baseFilled == 0 {
		return 0, 0, q
	}

	avgPrice = notional / baseFilled
	if inBase {
		filled = baseFilled
	} else {
		filled = notional
	}
	return filled, avgPrice, remaining
}

// CalculatePNL returns the profit/loss of a position of quantity units
// entered at entryPrice and marked at currentPrice. side must be "long" or
// "short"; any other value returns 0.
func CalculatePNL(side string, entryPrice, currentPrice, quantity float64) float64 {
	switch side {
	case "long":
		return (currentPrice - entryPrice) * quantity
	case "short":
		return (entryPrice - currentPrice) * quantity
	default:
		return 0
	}
}

// CalculateTotalPNL sums the PNL of a long leg and a short leg of equal
// quantity — the typical shape of a two-leg arbitrage position.
func CalculateTotalPNL(longEntry, longExit, shortEntry, shortExit, quantity float64) float64 {
	return CalculatePNL("long", longEntry, longExit, quantity) + CalculatePNL("short", shortEntry, shortExit, quantity)
}

// SplitVolume divides totalVolume into nParts equal, lot-rounded chunks.
// Returns nil if nParts or totalVolume is non-positive.
func SplitVolume(totalVolume float64, nParts int, lotSize float64) []float64 {
	if nParts <= 0 || totalVolume <= 0 {
		return nil
	}
	part := RoundToLotSize(totalVolume/float64(nParts), lotSize)
	parts := make([]float64, nParts)
	for i := range parts {
		parts[i] = part
	}
	return parts
}

// IsSpreadSufficient reports whether spread meets or exceeds threshold.
func IsSpreadSufficient(spread, threshold float64) bool {
	return spread >= threshold
}

// ShouldExit reports whether spread has fallen to or below the exit
// threshold.
func ShouldExit(spread, exitThreshold float64) bool {
	return spread <= exitThreshold
}

// IsStopLossHit reports whether pnl has breached a stop-loss of stopLoss
// (expressed as a positive loss magnitude). stopLoss of 0 disables the
// check.
func IsStopLossHit(pnl, stopLoss float64) bool {
	if stopLoss <= 0 {
		return false
	}
	return pnl <= -stopLoss
}

// Clamp restricts value to the closed interval [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
