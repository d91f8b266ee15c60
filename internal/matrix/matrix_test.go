package matrix

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"triarb/internal/models"
)

func lvl(price, qty string) models.BookLevel {
	return models.BookLevel{Price: decimal.RequireFromString(price), Quantity: decimal.RequireFromString(qty)}
}

func testCycle() models.Cycle {
	start := models.TradingPair{Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT"}
	middle := models.TradingPair{Symbol: "ETHBTC", Base: "ETH", Quote: "BTC"}
	end := models.TradingPair{Symbol: "ETHUSDT", Base: "ETH", Quote: "USDT"}
	return models.Cycle{
		ID:     "USDT:BTCUSDT:ETHBTC:ETHUSDT",
		Base:   "USDT",
		Start:  start,
		Middle: middle,
		End:    end,
		Tape: [3]models.ActionStep{
			{Symbol: start.Symbol, Side: models.SideAsks, Direction: models.Buy},
			{Symbol: middle.Symbol, Side: models.SideAsks, Direction: models.Buy},
			{Symbol: end.Symbol, Side: models.SideBids, Direction: models.Sell},
		},
	}
}

func TestMatrix_CreatePair_Idempotent(t *testing.T) {
	m := New()
	m.CreatePair("BTCUSDT", 0.0001)
	m.CreatePair("BTCUSDT", 999) // second call must be a no-op

	if got := m.Step("BTCUSDT"); got != 0.0001 {
		t.Fatalf("Step() = %v, want 0.0001 (first registration wins)", got)
	}
}

func TestMatrix_CreateCycle_RequiresRegisteredSymbols(t *testing.T) {
	m := New()
	c := testCycle()

	if err := m.CreateCycle(c); err == nil {
		t.Fatal("CreateCycle should fail when its symbols are not registered")
	}

	for _, sym := range c.Symbols() {
		m.CreatePair(sym, 0.0001)
	}
	if err := m.CreateCycle(c); err != nil {
		t.Fatalf("CreateCycle failed after registering all symbols: %v", err)
	}
}

// TestMatrix_UpdatePair_StalenessDrop checks that an update whose timestamp
// is older than what's already stored leaves the book untouched.
func TestMatrix_UpdatePair_StalenessDrop(t *testing.T) {
	m := New()
	m.CreatePair("BTCUSDT", 0.0001)

	t10 := time.Unix(0, 10*int64(time.Millisecond))
	t5 := time.Unix(0, 5*int64(time.Millisecond))

	asksAtT10 := []models.BookLevel{lvl("50000", "1")}
	asksAtT5 := []models.BookLevel{lvl("49000", "1")}

	m.UpdatePair("BTCUSDT", t10, asksAtT10, nil)
	m.UpdatePair("BTCUSDT", t5, asksAtT5, nil)

	book, ok := m.Book("BTCUSDT")
	if !ok {
		t.Fatal("book should exist")
	}
	if !book.Timestamp.Equal(t10) {
		t.Fatalf("Timestamp = %v, want %v (older update must be dropped)", book.Timestamp, t10)
	}
	if !book.Asks[0].Price.Equal(asksAtT10[0].Price) {
		t.Fatalf("Asks = %v, want the t=10 snapshot", book.Asks)
	}
}

// TestMatrix_UpdatePair_EqualTimestampDropped checks that t <= existing
// leaves the book unchanged, not just t < existing.
func TestMatrix_UpdatePair_EqualTimestampDropped(t *testing.T) {
	m := New()
	m.CreatePair("BTCUSDT", 0.0001)

	ts := time.Unix(0, 10*int64(time.Millisecond))
	first := []models.BookLevel{lvl("50000", "1")}
	second := []models.BookLevel{lvl("51000", "1")}

	m.UpdatePair("BTCUSDT", ts, first, nil)
	m.UpdatePair("BTCUSDT", ts, second, nil)

	book, _ := m.Book("BTCUSDT")
	if !book.Asks[0].Price.Equal(first[0].Price) {
		t.Fatalf("an update at the same timestamp must be dropped, got %v", book.Asks)
	}
}

// TestMatrix_Snapshot_SymbolsMatchTape checks that the returned cycle's
// symbols line up with the books returned alongside it.
func TestMatrix_Snapshot_SymbolsMatchTape(t *testing.T) {
	m := New()
	c := testCycle()
	for _, sym := range c.Symbols() {
		m.CreatePair(sym, 0.0001)
	}
	if err := m.CreateCycle(c); err != nil {
		t.Fatal(err)
	}

	got, books, _, ok := m.Snapshot(c.ID)
	if !ok {
		t.Fatal("Snapshot should find the registered cycle")
	}
	wantSymbols := c.Symbols()
	gotSymbols := got.Symbols()
	if gotSymbols != wantSymbols {
		t.Fatalf("Snapshot cycle symbols = %v, want %v", gotSymbols, wantSymbols)
	}
	if len(books) != 3 {
		t.Fatalf("expected 3 books, got %d", len(books))
	}
}

func TestMatrix_Snapshot_MinimumTimestamp(t *testing.T) {
	m := New()
	c := testCycle()
	for _, sym := range c.Symbols() {
		m.CreatePair(sym, 0.0001)
	}
	if err := m.CreateCycle(c); err != nil {
		t.Fatal(err)
	}

	t1 := time.Unix(0, 100*int64(time.Millisecond))
	t2 := time.Unix(0, 50*int64(time.Millisecond)) // oldest
	t3 := time.Unix(0, 200*int64(time.Millisecond))

	m.UpdatePair("BTCUSDT", t1, []models.BookLevel{lvl("50000", "1")}, []models.BookLevel{lvl("49900", "1")})
	m.UpdatePair("ETHBTC", t2, []models.BookLevel{lvl("0.05", "10")}, []models.BookLevel{lvl("0.049", "10")})
	m.UpdatePair("ETHUSDT", t3, []models.BookLevel{lvl("2600", "10")}, []models.BookLevel{lvl("2550", "10")})

	_, _, ts, ok := m.Snapshot(c.ID)
	if !ok {
		t.Fatal("snapshot not found")
	}
	if !ts.Equal(t2) {
		t.Fatalf("Snapshot ts = %v, want the oldest input %v", ts, t2)
	}
}

func TestMatrix_Snapshot_UnknownCycle(t *testing.T) {
	m := New()
	if _, _, _, ok := m.Snapshot("nope"); ok {
		t.Fatal("Snapshot of an unregistered cycle should report ok=false")
	}
}

// TestMatrix_ConcurrentAccess exercises the RWMutex under concurrent
// readers and writers with -race.
func TestMatrix_ConcurrentAccess(t *testing.T) {
	m := New()
	c := testCycle()
	for _, sym := range c.Symbols() {
		m.CreatePair(sym, 0.0001)
	}
	if err := m.CreateCycle(c); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ts := time.Unix(0, 0)
			for {
				select {
				case <-stop:
					return
				default:
					ts = ts.Add(time.Millisecond)
					m.UpdatePair("BTCUSDT", ts, []models.BookLevel{lvl("50000", "1")}, []models.BookLevel{lvl("49900", "1")})
				}
			}
		}(i)
	}

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					m.Snapshot(c.ID)
				}
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(stop)
	wg.Wait()
}
