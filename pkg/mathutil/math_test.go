package mathutil

import (
	"math"
	"testing"
)

func TestRoundToLotSize(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		lotSize  float64
		expected float64
	}{
		{"exact match", 0.123, 0.001, 0.123},
		{"round down", 0.123456, 0.001, 0.123},
		{"round down 2", 1.999, 0.01, 1.99},
		{"whole numbers", 100.5, 1.0, 100.0},
		{"zero value", 0, 0.001, 0},
		{"zero lotSize", 0.123, 0, 0.123},
		{"negative lotSize", 0.123, -0.001, 0.123},
		{"very small lotSize", 1.23456789, 0.00000001, 1.23456789},
		{"BTC lot 0.001", 0.5, 0.001, 0.5},
		{"BTC lot 0.001 round", 0.1234, 0.001, 0.123},
		{"BTC split 4 parts", 0.25, 0.001, 0.25},
		{"large number", 12345.6789, 0.01, 12345.67},
		{"very large", 1000000.999, 1.0, 1000000.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RoundToLotSize(tt.value, tt.lotSize)
			if !floatEquals(result, tt.expected) {
				t.Errorf("RoundToLotSize(%v, %v) = %v, want %v", tt.value, tt.lotSize, result, tt.expected)
			}
		})
	}
}

func TestRoundToLotSizeUp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		lotSize  float64
		expected float64
	}{
		{"exact match", 0.123, 0.001, 0.123},
		{"round up", 0.1231, 0.001, 0.124},
		{"round up 2", 1.991, 0.01, 2.0},
		{"zero lotSize", 0.123, 0, 0.123},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RoundToLotSizeUp(tt.value, tt.lotSize)
			if !floatEquals(result, tt.expected) {
				t.Errorf("RoundToLotSizeUp(%v, %v) = %v, want %v", tt.value, tt.lotSize, result, tt.expected)
			}
		})
	}
}

func TestRoundToLotSizeNearest(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		lotSize  float64
		expected float64
	}{
		{"exact match", 0.123, 0.001, 0.123},
		{"round down", 0.1234, 0.001, 0.123},
		{"round up", 0.1236, 0.001, 0.124},
		{"midpoint rounds up", 0.1235, 0.001, 0.124},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RoundToLotSizeNearest(tt.value, tt.lotSize)
			if !floatEquals(result, tt.expected) {
				t.Errorf("RoundToLotSizeNearest(%v, %v) = %v, want %v", tt.value, tt.lotSize, result, tt.expected)
			}
		})
	}
}

func TestCalculateSpread(t *testing.T) {
	tests := []struct {
		name      string
		priceHigh float64
		priceLow  float64
		expected  float64
	}{
		{"1% spread", 101.0, 100.0, 1.0},
		{"0.2% spread", 25050.0, 25000.0, 0.2},
		{"0.5% spread", 100.5, 100.0, 0.5},
		{"zero spread", 100.0, 100.0, 0.0},
		{"zero priceLow", 100.0, 0.0, 0.0},
		{"negative priceLow", 100.0, -50.0, 0.0},
		{"10% spread", 110.0, 100.0, 10.0},
		{"50% spread", 150.0, 100.0, 50.0},
		{"0.01% spread", 100.01, 100.0, 0.01},
		{"0.05% spread", 100.05, 100.0, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateSpread(tt.priceHigh, tt.priceLow)
			if !floatEquals(result, tt.expected) {
				t.Errorf("CalculateSpread(%v, %v) = %v, want %v", tt.priceHigh, tt.priceLow, result, tt.expected)
			}
		})
	}
}

func TestCalculateSpreadFromPrices(t *testing.T) {
	tests := []struct {
		name     string
		priceA   float64
		priceB   float64
		expected float64
	}{
		{"A higher", 101.0, 100.0, 1.0},
		{"B higher", 100.0, 101.0, 1.0},
		{"equal", 100.0, 100.0, 0.0},
		{"zero A", 0.0, 100.0, 0.0},
		{"zero B", 100.0, 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateSpreadFromPrices(tt.priceA, tt.priceB)
			if !floatEquals(result, tt.expected) {
				t.Errorf("CalculateSpreadFromPrices(%v, %v) = %v, want %v", tt.priceA, tt.priceB, result, tt.expected)
			}
		})
	}
}

func TestCalculateNetSpread(t *testing.T) {
	tests := []struct {
		name      string
		spreadPct float64
		feeA      float64
		feeB      float64
		expected  float64
	}{
		{"doc example 1", 1.0, 0.0004, 0.0005, 0.82},
		{"doc example 2", 0.5, 0.0005, 0.0005, 0.3},
		{"zero fees", 1.0, 0, 0, 1.0},
		{"zero spread", 0, 0.0005, 0.0005, -0.2},
		{"high fees eat all profit", 0.1, 0.0005, 0.0005, -0.1},
		{"Bybit 0.06% both", 1.0, 0.0006, 0.0006, 0.76},
		{"Bitget 0.04% both", 1.0, 0.0004, 0.0004, 0.84},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateNetSpread(tt.spreadPct, tt.feeA, tt.feeB)
			if !floatEquals(result, tt.expected) {
				t.Errorf("CalculateNetSpread(%v, %v, %v) = %v, want %v", tt.spreadPct, tt.feeA, tt.feeB, result, tt.expected)
			}
		})
	}
}

func TestCalculateNetSpreadDirect(t *testing.T) {
	result := CalculateNetSpreadDirect(101.0, 100.0, 0.0004, 0.0005)
	expected := 0.82
	if !floatEquals(result, expected) {
		t.Errorf("CalculateNetSpreadDirect = %v, want %v", result, expected)
	}
}

func TestCalculateWeightedAverage(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		weights  []float64
		expected float64
	}{
		{"doc example", []float64{100.0, 101.0, 102.0}, []float64{10.0, 20.0, 10.0}, 101.0},
		{"equal weights", []float64{100.0, 102.0}, []float64{1.0, 1.0}, 101.0},
		{"single element", []float64{100.0}, []float64{10.0}, 100.0},
		{"empty values", []float64{}, []float64{}, 0},
		{"empty weights", []float64{100}, []float64{}, 0},
		{"length mismatch", []float64{100, 101}, []float64{1}, 0},
		{"zero weights", []float64{100, 101}, []float64{0, 0}, 0},
		{"negative weight ignored", []float64{100.0, 101.0, 102.0}, []float64{10.0, -5.0, 10.0}, 101.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateWeightedAverage(tt.values, tt.weights)
			if !floatEquals(result, tt.expected) {
				t.Errorf("CalculateWeightedAverage(%v, %v) = %v, want %v", tt.values, tt.weights, result, tt.expected)
			}
		})
	}
}

func TestSimulateMarketBuy(t *testing.T) {
	asks := []OrderBookLevel{
		{Price: 100.0, Volume: 10.0},
		{Price: 101.0, Volume: 20.0},
		{Price: 102.0, Volume: 30.0},
	}

	tests := []struct {
		name           string
		asks           []OrderBookLevel
		targetVolume   float64
		expectedPrice  float64
		expectedFilled float64
		expectedSlip   float64
	}{
		{"single level", asks, 5.0, 100.0, 5.0, 0.0},
		{"two levels", asks, 20.0, 100.5, 20.0, 0.5},
		{"exceed liquidity", asks, 100.0, 101.333333, 60.0, 1.333333},
		{"empty orderbook", []OrderBookLevel{}, 10.0, 0, 0, 0},
		{"zero volume", asks, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, filled, slip := SimulateMarketBuy(tt.asks, tt.targetVolume)
			if !floatEquals(price, tt.expectedPrice) {
				t.Errorf("price = %v, want %v", price, tt.expectedPrice)
			}
			if !floatEquals(filled, tt.expectedFilled) {
				t.Errorf("filled = %v, want %v", filled, tt.expectedFilled)
			}
			if !floatEquals(slip, tt.expectedSlip) {
				t.Errorf("slippage = %v, want %v", slip, tt.expectedSlip)
			}
		})
	}
}

func TestSimulateMarketSell(t *testing.T) {
	bids := []OrderBookLevel{
		{Price: 100.0, Volume: 10.0},
		{Price: 99.0, Volume: 20.0},
		{Price: 98.0, Volume: 30.0},
	}

	price, filled, slip := SimulateMarketSell(bids, 20.0)

	if !floatEquals(price, 99.5) {
		t.Errorf("price = %v, want 99.5", price)
	}
	if !floatEquals(filled, 20.0) {
		t.Errorf("filled = %v, want 20", filled)
	}
	if !floatEquals(slip, -0.5) {
		t.Errorf("slippage = %v, want -0.5", slip)
	}
}

func TestConsume(t *testing.T) {
	asks := []OrderBookLevel{
		{Price: 100.0, Volume: 10.0},
		{Price: 101.0, Volume: 20.0},
	}

	// Consuming in base units should match SimulateMarketBuy.
	filled, avgPrice, remainder := Consume(asks, 20.0, true)
	if !floatEquals(filled, 20.0) || !floatEquals(avgPrice, 100.5) || !floatEquals(remainder, 0) {
		t.Errorf("Consume(inBase) = (%v, %v, %v), want (20, 100.5, 0)", filled, avgPrice, remainder)
	}

	// Consuming in quote units: spend 1005 quote, should buy 10 @100 + exactly enough of the
	// second level to reach 1005 total, i.e. all 10 base units filled at the first level plus
	// 5 more quote's worth of the second level (5/101 base).
	filled, avgPrice, remainder = Consume(asks, 1005.0, false)
	if remainder != 0 {
		t.Errorf("Consume(inQuote) left remainder %v, want 0", remainder)
	}
	if !floatEquals(filled, 1005.0) {
		t.Errorf("Consume(inQuote) filled = %v, want 1005", filled)
	}

	// Exhausting the book leaves a remainder and reports what was filled.
	_, _, remainder = Consume(asks, 1000.0, true)
	if !floatEquals(remainder, 970.0) {
		t.Errorf("Consume exceeding depth remainder = %v, want 970", remainder)
	}

	// Empty book.
	filled, avgPrice, remainder = Consume(nil, 10, true)
	if filled != 0 || avgPrice != 0 || remainder != 10 {
		t.Errorf("Consume(empty) = (%v, %v, %v), want (0, 0, 10)", filled, avgPrice, remainder)
	}
}

func TestCalculatePNL(t *testing.T) {
	tests := []struct {
		name         string
		side         string
		entryPrice   float64
		currentPrice float64
		quantity     float64
		expected     float64
	}{
		{"long profit", "long", 100.0, 110.0, 1.0, 10.0},
		{"long loss", "long", 100.0, 90.0, 1.0, -10.0},
		{"long breakeven", "long", 100.0, 100.0, 1.0, 0.0},
		{"short profit", "short", 100.0, 90.0, 1.0, 10.0},
		{"short loss", "short", 100.0, 110.0, 1.0, -10.0},
		{"short breakeven", "short", 100.0, 100.0, 1.0, 0.0},
		{"long with qty", "long", 100.0, 110.0, 0.5, 5.0},
		{"short with qty", "short", 100.0, 90.0, 2.0, 20.0},
		{"zero quantity", "long", 100.0, 110.0, 0, 0},
		{"invalid side", "buy", 100.0, 110.0, 1.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculatePNL(tt.side, tt.entryPrice, tt.currentPrice, tt.quantity)
			if !floatEquals(result, tt.expected) {
				t.Errorf("CalculatePNL(...) = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestCalculateTotalPNL(t *testing.T) {
	result := CalculateTotalPNL(100.0, 100.5, 101.0, 100.5, 1.0)
	if !floatEquals(result, 1.0) {
		t.Errorf("CalculateTotalPNL = %v, want 1.0", result)
	}

	result2 := CalculateTotalPNL(100.0, 99.0, 101.0, 102.0, 1.0)
	if !floatEquals(result2, -2.0) {
		t.Errorf("CalculateTotalPNL (loss) = %v, want -2.0", result2)
	}
}

func TestSplitVolume(t *testing.T) {
	tests := []struct {
		name        string
		totalVolume float64
		nParts      int
		lotSize     float64
		expected    []float64
	}{
		{"BTC 4 parts", 1.0, 4, 0.001, []float64{0.25, 0.25, 0.25, 0.25}},
		{"single order", 0.5, 1, 0.001, []float64{0.5}},
		{"with rounding", 1.0, 3, 0.01, []float64{0.33, 0.33, 0.33}},
		{"zero parts", 1.0, 0, 0.001, nil},
		{"zero volume", 0, 4, 0.001, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SplitVolume(tt.totalVolume, tt.nParts, tt.lotSize)
			if tt.expected == nil {
				if result != nil {
					t.Errorf("expected nil, got %v", result)
				}
				return
			}
			if len(result) != len(tt.expected) {
				t.Errorf("len = %d, want %d", len(result), len(tt.expected))
				return
			}
			for i := range result {
				if !floatEquals(result[i], tt.expected[i]) {
					t.Errorf("part[%d] = %v, want %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestIsSpreadSufficient(t *testing.T) {
	if !IsSpreadSufficient(1.0, 0.5) {
		t.Error("1.0 >= 0.5 should be true")
	}
	if IsSpreadSufficient(0.3, 0.5) {
		t.Error("0.3 < 0.5 should be false")
	}
	if !IsSpreadSufficient(0.5, 0.5) {
		t.Error("0.5 >= 0.5 should be true")
	}
}

func TestShouldExit(t *testing.T) {
	if !ShouldExit(0.1, 0.2) {
		t.Error("0.1 <= 0.2 should trigger exit")
	}
	if ShouldExit(0.5, 0.2) {
		t.Error("0.5 > 0.2 should not trigger exit")
	}
}

func TestIsStopLossHit(t *testing.T) {
	if !IsStopLossHit(-100, 100) {
		t.Error("-100 <= -100 should hit SL")
	}
	if IsStopLossHit(-50, 100) {
		t.Error("-50 > -100 should not hit SL")
	}
	if IsStopLossHit(-100, 0) {
		t.Error("SL=0 means disabled")
	}
	if IsStopLossHit(50, 100) {
		t.Error("positive PNL should never hit SL")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		value, min, max, expected float64
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}

	for _, tt := range tests {
		result := Clamp(tt.value, tt.min, tt.max)
		if result != tt.expected {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.value, tt.min, tt.max, result, tt.expected)
		}
	}
}

func BenchmarkRoundToLotSize(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RoundToLotSize(0.123456789, 0.001)
	}
}

func BenchmarkCalculateSpread(b *testing.B) {
	for i := 0; i < b.N; i++ {
		CalculateSpread(25050, 25000)
	}
}

func BenchmarkSimulateMarketBuy(b *testing.B) {
	asks := []OrderBookLevel{
		{Price: 100.0, Volume: 10.0},
		{Price: 101.0, Volume: 20.0},
		{Price: 102.0, Volume: 30.0},
		{Price: 103.0, Volume: 40.0},
		{Price: 104.0, Volume: 50.0},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SimulateMarketBuy(asks, 50.0)
	}
}

const floatEpsilon = 1e-6

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatEpsilon
}
