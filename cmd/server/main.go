package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"triarb/internal/api"
	"triarb/internal/compute"
	"triarb/internal/config"
	"triarb/internal/exchange"
	"triarb/internal/executor"
	"triarb/internal/ingest"
	"triarb/internal/matrix"
	"triarb/internal/models"
	"triarb/internal/notifier"
	"triarb/internal/topology"
	"triarb/internal/websocket"
	"triarb/pkg/logging"
	"triarb/pkg/ratelimit"
	"triarb/pkg/retry"
)

// demoCatalogue is the fixed symbol catalogue this process seeds its
// exchange.Simulated adapter with when no real exchange adapter is wired
// in. It is exactly spec.md's own worked example: USDT -> BTC -> ETH ->
// USDT and its reverse.
func demoCatalogue() []exchange.SymbolInfo {
	return []exchange.SymbolInfo{
		{Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT", BasePrecision: 6, QuotePrecision: 2, Step: 0.0001, Status: "TRADING"},
		{Symbol: "ETHUSDT", Base: "ETH", Quote: "USDT", BasePrecision: 5, QuotePrecision: 2, Step: 0.001, Status: "TRADING"},
		{Symbol: "ETHBTC", Base: "ETH", Quote: "BTC", BasePrecision: 5, QuotePrecision: 6, Step: 0.001, Status: "TRADING"},
	}
}

// seedDemoBooks gives the simulated exchange a starting order book for
// every catalogue symbol, so SubscribeDepth has something to deliver on
// process start instead of erroring out for want of a seeded book.
func seedDemoBooks(sim *exchange.Simulated) {
	now := time.Now()
	sim.SeedBook("BTCUSDT", exchange.DepthUpdate{
		Asks:      []models.BookLevel{{Price: decimalOf(60000), Quantity: decimalOf(2)}},
		Bids:      []models.BookLevel{{Price: decimalOf(59990), Quantity: decimalOf(2)}},
		Timestamp: now,
	})
	sim.SeedBook("ETHUSDT", exchange.DepthUpdate{
		Asks:      []models.BookLevel{{Price: decimalOf(3000), Quantity: decimalOf(20)}},
		Bids:      []models.BookLevel{{Price: decimalOf(2995), Quantity: decimalOf(20)}},
		Timestamp: now,
	})
	sim.SeedBook("ETHBTC", exchange.DepthUpdate{
		Asks:      []models.BookLevel{{Price: decimalOf(0.05), Quantity: decimalOf(30)}},
		Bids:      []models.BookLevel{{Price: decimalOf(0.0499), Quantity: decimalOf(30)}},
		Timestamp: now,
	})
}

// buildGrid enumerates the investment quantities the optimizer tries for a
// cycle's first leg: min, min+step, ... up to and including max.
func buildGrid(min, max, step float64) []float64 {
	if step <= 0 {
		return nil
	}
	var grid []float64
	for q := min; q <= max+step/2; q += step {
		grid = append(grid, q)
	}
	return grid
}

func decimalOf(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func configPath() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return "config.json"
}

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.InitGlobalLogger(logging.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	defer logger.Sync()

	logging.Info("starting triarb engine",
		logging.String("base", cfg.Investment.Base),
		logging.Int("depth_size", cfg.Depth.Size))

	catalogue := demoCatalogue()
	exch := exchange.NewSimulated(catalogue)
	seedDemoBooks(exch)

	pairs, err := buildPairs(catalogue)
	if err != nil {
		logging.Fatal("catalogue validation failed", logging.Err(err))
	}

	topo := topology.Build(pairs, models.Asset(cfg.Investment.Base))
	if len(topo.Cycles) == 0 {
		logging.Fatal("no triangular cycles found for base asset",
			logging.String("base", cfg.Investment.Base))
	}
	logging.Info("topology built",
		logging.Int("cycles", len(topo.Cycles)),
		logging.Int("subscriptions", len(topo.Subscriptions)))

	mx := matrix.New()
	pairBySymbol := make(map[string]models.TradingPair, len(pairs))
	for _, p := range pairs {
		pairBySymbol[p.Symbol] = p
	}
	for _, symbol := range topo.Subscriptions {
		mx.CreatePair(symbol, pairBySymbol[symbol].Step)
	}
	for _, cycle := range topo.Cycles {
		if err := mx.CreateCycle(cycle); err != nil {
			logging.Fatal("failed to register cycle", logging.String("cycle_id", cycle.ID), logging.Err(err))
		}
	}

	ig := ingest.New(mx, cfg.Pools.DepthWorkers, len(topo.Subscriptions)*4)
	ig.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, symbol := range topo.Subscriptions {
		symbol := symbol
		err := exch.SubscribeDepth(ctx, symbol, cfg.Depth.Size, func(upd exchange.DepthUpdate) {
			ig.Enqueue(ingest.DepthMessage{
				Symbol:    symbol,
				Timestamp: upd.Timestamp,
				Asks:      upd.Asks,
				Bids:      upd.Bids,
			})
		})
		if err != nil {
			logging.Fatal("failed to subscribe to depth feed", logging.Symbol(symbol), logging.Err(err))
		}
	}

	hub := websocket.NewHub()
	go hub.Run()

	// cfg.Telegram carries the TELEGRAM.TOKEN/TELEGRAM.USER_ID slot the
	// external interface reserves, but neither names a webhook URL, so
	// WebhookNotifier is wired here only when TRIARB_WEBHOOK_URL is set in the
	// environment — the token alone is not a POST target.
	notifiers := []notifier.Notifier{notifier.NewConsoleNotifier(), notifier.NewHubNotifier(hub)}
	if url := os.Getenv("TRIARB_WEBHOOK_URL"); url != "" {
		notifiers = append(notifiers, notifier.NewWebhookNotifier(url, 5*time.Second))
	}
	notify := notifier.NewMulti(notifiers...)

	exec := executor.New(exch, notify, executor.Config{
		Cap:         cfg.Trading.ExecutionCap,
		OrderRetry:  retry.DefaultConfig(),
		PollRetry:   executor.DefaultPollRetry(),
		RateLimiter: ratelimit.NewRateLimiter(10, 10),
	})

	grid := buildGrid(cfg.Investment.Min, cfg.Investment.Max, cfg.Investment.Step)
	cycleIDs := mx.CycleIDs()

	comp := compute.New(mx, cycleIDs, compute.Config{
		Fee:             cfg.Trading.TakerFee / 100,
		Grid:            grid,
		AgeThresholdMs:  cfg.Trading.AgeThresholdMs,
		ProfitThreshold: cfg.Trading.ProfitThresholdPct / 100,
		Workers:         cfg.Pools.ComputeWorkers,
	}, func(deal models.Deal) {
		ageMs := float64(time.Since(deal.Timestamp).Milliseconds())
		hub.BroadcastCycleEvaluated(deal.CycleID, deal.ExpectedProfit, deal.StartQty, ageMs)

		if !cfg.Trading.Enabled {
			notify.SendMessage(notifier.SeverityInfo, fmt.Sprintf("paper deal: cycle=%s profit=%.4f%%", deal.CycleID, deal.ExpectedProfit*100))
			return
		}

		go func() {
			submitCtx, submitCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer submitCancel()
			if err := exec.Submit(submitCtx, deal, ageMs); err != nil {
				logging.Error("deal submission failed", logging.String("deal_id", deal.DealID.String()), logging.Err(err))
				notify.SendMessage(notifier.SeverityError, fmt.Sprintf("deal %s failed: %v", deal.DealID, err))
			}
		}()
	})
	comp.Start()

	router := api.SetupRoutes(&api.Dependencies{
		Matrix:   mx,
		Topology: topo,
		Hub:      hub,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Info("http server listening", logging.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("http server failed", logging.Err(err))
		}
	}()

	notify.SendMessage(notifier.SeverityInfo, "engine started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("shutdown signal received")

	cancel()
	ig.Stop()
	comp.Stop()
	hub.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("http server forced to shutdown", logging.Err(err))
	}

	logging.Info("engine stopped")
}

// buildPairs validates the exchange catalogue and derives the engine's
// TradingPair set from it. A catalogue entry with a non-positive lot step
// is a fatal configuration error — the optimizer cannot round quantities
// without one.
func buildPairs(catalogue []exchange.SymbolInfo) ([]models.TradingPair, error) {
	pairs := make([]models.TradingPair, 0, len(catalogue))
	for _, s := range catalogue {
		if s.Step <= 0 {
			return nil, fmt.Errorf("symbol %s has no positive lot step", s.Symbol)
		}
		pairs = append(pairs, models.TradingPair{
			Symbol:         s.Symbol,
			Base:           s.Base,
			Quote:          s.Quote,
			BasePrecision:  s.BasePrecision,
			QuotePrecision: s.QuotePrecision,
			Step:           s.Step,
		})
	}
	return pairs, nil
}
