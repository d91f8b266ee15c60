package notifier

import (
	"triarb/internal/models"
	"triarb/pkg/logging"
)

// ConsoleNotifier logs every announcement through the structured logger.
// It is always safe to wire in — there is no I/O that can fail — and the
// server wires it unconditionally, alongside a webhook when one is set.
type ConsoleNotifier struct{}

func NewConsoleNotifier() *ConsoleNotifier { return &ConsoleNotifier{} }

func (c *ConsoleNotifier) SendDeal(deal models.Deal, ageMs float64) {
	logging.Info("deal accepted",
		logging.String("deal_id", deal.DealID.String()),
		logging.String("cycle_id", deal.CycleID),
		logging.PNL(deal.ExpectedProfit),
		logging.Float64("start_qty", deal.StartQty),
		logging.Latency(ageMs),
	)
}

func (c *ConsoleNotifier) SendMessage(severity Severity, text string) {
	switch severity {
	case SeverityError:
		logging.Error(text)
	case SeverityWarn:
		logging.Warn(text)
	default:
		logging.Info(text)
	}
}
