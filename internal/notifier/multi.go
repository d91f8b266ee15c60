package notifier

import "triarb/internal/models"

// Multi fans an announcement out to every wrapped Notifier, in order, one
// call after another. A failing sender never hides the others — each
// implementation swallows its own errors — but a slow one delays every
// sender after it until its own timeout ends (see WebhookNotifier).
type Multi struct {
	notifiers []Notifier
}

// NewMulti returns a Multi that broadcasts to every notifier in ns.
func NewMulti(ns ...Notifier) *Multi {
	return &Multi{notifiers: ns}
}

func (m *Multi) SendDeal(deal models.Deal, ageMs float64) {
	for _, n := range m.notifiers {
		n.SendDeal(deal, ageMs)
	}
}

func (m *Multi) SendMessage(severity Severity, text string) {
	for _, n := range m.notifiers {
		n.SendMessage(severity, text)
	}
}
