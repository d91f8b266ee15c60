package notifier

import (
	"triarb/internal/models"
)

// hubBroadcaster is the slice of websocket.Hub this package depends on —
// just enough to push deal/message events to connected UI clients without
// importing the transport types those clients speak.
type hubBroadcaster interface {
	BroadcastDeal(deal models.Deal, ageMs float64)
	BroadcastMessage(severity, text string)
}

// HubNotifier relays announcements to every connected WebSocket client
// through a websocket.Hub, so a UI can show deals and operational events in
// real time without polling the REST surface.
type HubNotifier struct {
	hub hubBroadcaster
}

// NewHubNotifier returns a HubNotifier that broadcasts through hub.
func NewHubNotifier(hub hubBroadcaster) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (h *HubNotifier) SendDeal(deal models.Deal, ageMs float64) {
	h.hub.BroadcastDeal(deal, ageMs)
}

func (h *HubNotifier) SendMessage(severity Severity, text string) {
	h.hub.BroadcastMessage(string(severity), text)
}
