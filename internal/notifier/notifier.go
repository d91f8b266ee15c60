// Package notifier announces accepted deals and operational messages to
// whatever is listening — a log, a webhook, eventually a Telegram chat.
package notifier

import "triarb/internal/models"

// Severity classifies a plain-text message the way an operator would
// triage it, mirroring the info/warn/error levels the original bot's
// notification log used.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Notifier is the collaborator the rest of the engine announces through.
// Implementations must not block the caller for long: SendDeal runs on the
// executor's goroutine, between deals.
type Notifier interface {
	// SendDeal announces a deal the executor has just finished, along
	// with the book age (ms) it was evaluated against.
	SendDeal(deal models.Deal, ageMs float64)

	// SendMessage announces a plain operational event — startup,
	// shutdown, a fatal configuration error, a leg failure.
	SendMessage(severity Severity, text string)
}
