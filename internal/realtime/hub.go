// Package realtime serves the record operations as JSON events over WebSocket.
// Every inbound event is answered on the same connection; nothing is broadcast.
package realtime

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// Hub tracks the live connections and owns the context their events run under
type Hub struct {
	register   chan *Client
	unregister chan *Client
	clients    map[*Client]struct{}

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}

	connections prometheus.Gauge
	events      *prometheus.CounterVec
}

// NewHub creates a hub and registers its metrics with reg, when given
func NewHub(reg prometheus.Registerer) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]struct{}),
		ctx:        ctx,
		cancel:     cancel,
		stopped:    make(chan struct{}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sportfed_realtime_connections",
			Help: "Open realtime connections.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sportfed_realtime_events_total",
			Help: "Realtime events handled, by event and outcome.",
		}, []string{"event", "outcome"}),
	}

	if reg != nil {
		reg.MustRegister(h.connections, h.events)
	}

	return h
}

// Run processes registrations until Shutdown
func (h *Hub) Run() {
	defer close(h.stopped)

	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.connections.Inc()
			log.WithField("user", client.session.UserID).Debug("realtime client registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
				h.connections.Dec()
				log.WithField("user", client.session.UserID).Debug("realtime client unregistered")
			}

		case <-h.ctx.Done():
			for client := range h.clients {
				client.close()
			}
			clear(h.clients)
			h.connections.Set(0)
			return
		}
	}
}

// Shutdown closes every connection and stops Run
func (h *Hub) Shutdown() {
	h.cancel()
	<-h.stopped
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
		c.close()
	}
}

func (h *Hub) observe(event, outcome string) {
	h.events.WithLabelValues(event, outcome).Inc()
}
