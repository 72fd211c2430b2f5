// Package events pushes integration events to connected dashboards over WebSocket.
package events

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ashureev/careerdesk/internal/domain"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

const (
	subscriberBuffer = 16
	writeTimeout     = 5 * time.Second
)

// Event is a connection-state change pushed to every dashboard.
type Event struct {
	Type    string         `json:"type"`
	Service domain.Service `json:"service"`
	At      time.Time      `json:"at"`
}

// AuthSuccess is published after a token is stored for a service.
func AuthSuccess(s domain.Service) Event {
	return Event{Type: s.EventPrefix() + "_AUTH_SUCCESS", Service: s, At: time.Now().UTC()}
}

// Disconnected is published after a token is cleared.
func Disconnected(s domain.Service) Event {
	return Event{Type: s.EventPrefix() + "_DISCONNECTED", Service: s, At: time.Now().UTC()}
}

// Publisher accepts events. Publishing never blocks.
type Publisher interface {
	Publish(ev Event)
}

// Hub fans events out to WebSocket subscribers.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	logger *zap.Logger

	originPatterns []string
}

// NewHub creates a hub. originPatterns are passed to websocket.Accept.
func NewHub(logger *zap.Logger, originPatterns []string) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:           make(map[chan Event]struct{}),
		logger:         logger,
		originPatterns: originPatterns,
	}
}

// Publish delivers ev to every subscriber. Slow subscribers miss events.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.logger.Warn("Dropping event for slow subscriber", zap.String("type", ev.Type))
		}
	}
}

// Subscribe registers a channel. Call the returned func to unsubscribe.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// ServeHTTP upgrades the request and streams events until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.logger.Warn("Failed to accept WebSocket", zap.Error(err))
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "bye"); closeErr != nil {
			h.logger.Debug("Failed to close websocket", zap.Error(closeErr))
		}
	}()

	events, unsubscribe := h.Subscribe()
	defer unsubscribe()

	// Clients never send; CloseRead handles pings and detects disconnects.
	ctx := ws.CloseRead(r.Context())

	h.logger.Debug("Event subscriber connected", zap.String("remote_addr", r.RemoteAddr))
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if err := h.write(ctx, ws, ev); err != nil {
				h.logger.Debug("Event write failed", zap.Error(err))
				return
			}
		}
	}
}

func (h *Hub) write(ctx context.Context, ws *websocket.Conn, ev Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, ws, ev)
}
