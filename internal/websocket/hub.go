package websocket

import (
	"bytes"
	"encoding/json"
	"sync"
	"sync/atomic"

	"triarb/internal/models"
	"triarb/pkg/logging"
)

// jsonBufferPool reuses encode buffers across Broadcast calls instead of
// allocating one per call.
var jsonBufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// Hub fans out deal/stat events to every connected WebSocket client. It is
// the read-only push side of the engine's HTTP observability surface: the
// compute/executor pipeline never blocks on it, and a slow or disconnected
// client only ever loses its own messages, never another client's.
type Hub struct {
	clients map[*Client]bool

	broadcast chan []byte

	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	stopOnce   sync.Once

	mu      sync.RWMutex
	dropped int64
}

// NewHub returns a Hub with no connected clients. Call Run in its own
// goroutine before any Broadcast call is expected to reach a client.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
	}
}

// Run is the Hub's single event loop: client (un)registration and message
// fan-out all happen here, so clients never needs its own lock held across
// a client write. Run exits once Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.stop:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			var slow []*Client
			for _, client := range clients {
				select {
				case client.send <- message:
				default:
					slow = append(slow, client)
				}
			}

			if len(slow) > 0 {
				h.mu.Lock()
				for _, client := range slow {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
				}
				h.mu.Unlock()
				logging.Warn("websocket: dropped slow clients", logging.Int("count", len(slow)))
			}
		}
	}
}

// Stop ends Run. Safe to call more than once or before Run has started.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// Broadcast marshals message to JSON and queues it for every connected
// client. If the hub's internal broadcast channel is saturated, the
// message is dropped rather than blocking the caller — this method runs on
// the executor and compute goroutines, which must never stall on a UI
// push.
func (h *Hub) Broadcast(message interface{}) {
	buf := jsonBufferPool.Get().(*bytes.Buffer)
	buf.Reset()

	if err := json.NewEncoder(buf).Encode(message); err != nil {
		logging.Error("websocket: marshal broadcast message failed", logging.Err(err))
		jsonBufferPool.Put(buf)
		return
	}

	data := buf.Bytes()
	if n := len(data); n > 0 && data[n-1] == '\n' {
		data = data[:n-1]
	}
	msgCopy := make([]byte, len(data))
	copy(msgCopy, data)
	jsonBufferPool.Put(buf)

	h.BroadcastRaw(msgCopy)
}

// BroadcastRaw queues an already-serialized payload, with the same
// drop-on-saturation behavior as Broadcast.
func (h *Hub) BroadcastRaw(data []byte) {
	select {
	case h.broadcast <- data:
	default:
		atomic.AddInt64(&h.dropped, 1)
	}
}

// BroadcastDeal announces a deal the executor has just finished.
func (h *Hub) BroadcastDeal(deal models.Deal, ageMs float64) {
	h.Broadcast(NewDealAcceptedMessage(deal, ageMs))
}

// BroadcastCycleEvaluated announces a cycle evaluation that cleared the
// profit threshold, independent of whether a deal was ultimately
// submitted.
func (h *Hub) BroadcastCycleEvaluated(cycleID string, expectedProfit, startQty, ageMs float64) {
	h.Broadcast(NewCycleEvaluatedMessage(cycleID, expectedProfit, startQty, ageMs))
}

// BroadcastStats announces the current rolling cycle-age statistics.
func (h *Hub) BroadcastStats(mean, stddev, bestRecent float64) {
	h.Broadcast(NewStatsUpdateMessage(mean, stddev, bestRecent))
}

// BroadcastMessage announces a plain operational event.
func (h *Hub) BroadcastMessage(severity, text string) {
	h.Broadcast(NewNotificationMessage(severity, text))
}

// DroppedMessages reports how many broadcasts were discarded because the
// hub's internal queue was saturated, for observability.
func (h *Hub) DroppedMessages() int64 {
	return atomic.LoadInt64(&h.dropped)
}

// ClientCount returns the number of currently registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
