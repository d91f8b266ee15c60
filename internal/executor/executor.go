// Package executor serializes accepted deals into market orders against a
// single exchange connection, one deal at a time.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"triarb/internal/exchange"
	"triarb/internal/metrics"
	"triarb/internal/models"
	"triarb/pkg/logging"
	"triarb/pkg/ratelimit"
	"triarb/pkg/retry"
)

// State names the executor's position in a single deal's lifecycle.
type State string

const (
	Idle         State = "IDLE"
	Submitting   State = "SUBMITTING"
	AwaitingFill State = "AWAITING_FILL"
	Done         State = "DONE"
	Failed       State = "FAILED"
)

// ValidTransitions enumerates the legal State graph. Submitting and
// AwaitingFill alternate once per leg before the terminal states; Done and
// Failed both reset to Idle for the next deal.
var ValidTransitions = map[State][]State{
	Idle:         {Submitting},
	Submitting:   {AwaitingFill, Failed},
	AwaitingFill: {Submitting, Done, Failed},
	Done:         {Idle},
	Failed:       {Idle},
}

// CanTransition reports whether from -> to is a legal state change.
func CanTransition(from, to State) bool {
	allowed, ok := ValidTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ErrRejectedCap is returned by Submit when the execution cap is already
// reached; it carries no side effects.
var ErrRejectedCap = errors.New("executor: execution cap reached")

var errOrderNotFilled = errors.New("executor: order not yet filled")

// LegError identifies which leg of a deal a Submit failure occurred on.
type LegError struct {
	LegIndex int
	Symbol   string
	Err      error
}

func (e *LegError) Error() string {
	return fmt.Sprintf("executor: leg %d (%s): %v", e.LegIndex, e.Symbol, e.Err)
}

func (e *LegError) Unwrap() error { return e.Err }

// DealNotifier is the minimal collaborator the executor needs after a deal
// finishes: something that can announce it. The concrete implementations
// live in package notifier; the executor only depends on this shape so it
// never imports notifier directly.
type DealNotifier interface {
	SendDeal(deal models.Deal, ageMs float64)
}

// Executor is a single shared state machine: only one deal executes at a
// time, and its mutex is held across every network call a deal makes,
// including order-status polling, so count never overshoots cap under
// concurrent Submit calls and so acceptance order is exactly mutex
// acquisition order.
type Executor struct {
	exch     exchange.Exchange
	notifier DealNotifier
	limiter  *ratelimit.RateLimiter
	orderCfg retry.Config
	pollCfg  retry.Config
	cap      int64

	mu    sync.Mutex
	state State
	count int64
}

// Config controls retry/rate-limit shaping independent from the execution
// cap, which is passed separately since it is a domain limit, not a
// transport one.
type Config struct {
	Cap         int64
	OrderRetry  retry.Config
	PollRetry   retry.Config
	RateLimiter *ratelimit.RateLimiter
}

// New returns an idle Executor. A nil rate limiter is replaced by
// ratelimit.NewRateLimiter(0, 0): 10 tokens/sec with a burst of 20.
func New(exch exchange.Exchange, notifier DealNotifier, cfg Config) *Executor {
	if cfg.RateLimiter == nil {
		cfg.RateLimiter = ratelimit.NewRateLimiter(0, 0)
	}
	return &Executor{
		exch:     exch,
		notifier: notifier,
		limiter:  cfg.RateLimiter,
		orderCfg: cfg.OrderRetry,
		pollCfg:  cfg.PollRetry,
		cap:      cfg.Cap,
		state:    Idle,
	}
}

// State reports the executor's current state, for the metrics gauge.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Count reports the number of deals submitted so far (including any
// currently in flight or that failed after the counter was reserved).
func (e *Executor) Count() int64 {
	return atomic.LoadInt64(&e.count)
}

func (e *Executor) transition(to State) {
	if !CanTransition(e.state, to) {
		logging.Error("invalid executor state transition",
			logging.String("from", string(e.state)), logging.String("to", string(to)))
	}
	e.state = to
	metrics.SetExecutorState(stateMetricLabel(to))
}

// stateMetricLabel lower-snakes a State into the label SetExecutorState
// expects ("awaiting_fill" rather than "AWAITING_FILL").
func stateMetricLabel(s State) string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case AwaitingFill:
		return "awaiting_fill"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return string(s)
	}
}

// fail marks the in-progress deal FAILED then immediately resets to IDLE so
// the executor is ready for the next Submit without a spurious transition
// warning on the way out of the terminal state.
func (e *Executor) fail() {
	e.transition(Failed)
	metrics.DealsExecutedTotal.WithLabelValues("failed").Inc()
	e.transition(Idle)
}

// Submit runs deal to completion: three market orders placed and polled to
// FILLED in leg order. It blocks until the deal reaches DONE or FAILED, or
// the cap rejects it outright.
//
// The cap is checked once, lock-free, before contending for the mutex (so a
// saturated executor doesn't serialize rejections behind the in-flight
// deal), then re-checked under the mutex before the atomic increment that
// reserves the slot. A trade failure after that point does not refund the
// counter — cap accounting is optimistic by design, not a retry budget.
func (e *Executor) Submit(ctx context.Context, deal models.Deal, ageMs float64) error {
	if e.cap > 0 && atomic.LoadInt64(&e.count) >= e.cap {
		metrics.DealsExecutedTotal.WithLabelValues("rejected_cap").Inc()
		return ErrRejectedCap
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cap > 0 && atomic.LoadInt64(&e.count) >= e.cap {
		metrics.DealsExecutedTotal.WithLabelValues("rejected_cap").Inc()
		return ErrRejectedCap
	}
	atomic.AddInt64(&e.count, 1)

	for i, action := range deal.Actions {
		e.transition(Submitting)

		if err := e.limiter.Wait(ctx); err != nil {
			e.fail()
			return &LegError{LegIndex: i, Symbol: action.Symbol, Err: err}
		}

		var orderID string
		placeErr := retry.Do(ctx, func() error {
			var err error
			orderID, err = e.exch.MarketOrder(ctx, action.Symbol, action.Direction, action.Quantity)
			return err
		}, e.orderCfg)
		if placeErr != nil {
			logging.Error("market order placement failed",
				logging.String("deal_id", deal.DealID.String()), logging.Symbol(action.Symbol), logging.Err(placeErr))
			e.fail()
			return &LegError{LegIndex: i, Symbol: action.Symbol, Err: placeErr}
		}

		e.transition(AwaitingFill)

		fillErr := retry.Do(ctx, func() error {
			status, err := e.exch.GetOrder(ctx, action.Symbol, orderID)
			if err != nil {
				return err
			}
			if status != exchange.OrderFilled {
				return errOrderNotFilled
			}
			return nil
		}, e.pollCfg)
		if fillErr != nil {
			logging.Error("order did not reach FILLED",
				logging.String("deal_id", deal.DealID.String()), logging.Symbol(action.Symbol),
				logging.String("order_id", orderID), logging.Err(fillErr))
			e.fail()
			return &LegError{LegIndex: i, Symbol: action.Symbol, Err: fillErr}
		}
	}

	e.transition(Done)
	metrics.DealsExecutedTotal.WithLabelValues("done").Inc()
	if e.notifier != nil {
		e.notifier.SendDeal(deal, ageMs)
	}
	e.transition(Idle)
	return nil
}

// DefaultPollRetry bounds order-status polling for immediate-consistency
// lag right after placement: frequent early checks, backing off, capped at
// a ceiling well under the 10s soft shutdown budget.
func DefaultPollRetry() retry.Config {
	return retry.Config{
		MaxRetries:   20,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   1.5,
		JitterFactor: 0.1,
		RetryIf: func(err error) bool {
			return errors.Is(err, errOrderNotFilled) || errors.Is(err, exchange.ErrOrderNotFound)
		},
	}
}
