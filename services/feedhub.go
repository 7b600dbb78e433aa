// Package services holds the auth and salary business logic and the live
// salary feed.
package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/SaranyaKannan28/summer-internship/events"
	"github.com/SaranyaKannan28/summer-internship/metrics"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// FeedHub fans salary events out to the WebSocket clients of their owner.
type FeedHub struct {
	natsConn *nats.Conn
	sub      *nats.Subscription

	// userID -> connected clients
	clients   map[uint]map[*FeedClient]bool
	clientsMu sync.RWMutex

	register   chan *FeedClient
	unregister chan *FeedClient
	done       chan struct{}
	stopOnce   sync.Once

	log     zerolog.Logger
	metrics *metrics.Metrics
}

// FeedClient represents a WebSocket client watching its owner's records
type FeedClient struct {
	hub        *FeedHub
	conn       *websocket.Conn
	send       chan []byte
	userID     uint
	remoteAddr string
}

// FeedMessage is a message sent to/from clients
type FeedMessage struct {
	Type  string              `json:"type"` // ping, pong, salary, error
	Event *events.SalaryEvent `json:"event,omitempty"`
	Error string              `json:"error,omitempty"`
}

// NewFeedHub creates a new feed hub
func NewFeedHub(natsConn *nats.Conn, log zerolog.Logger, m *metrics.Metrics) *FeedHub {
	return &FeedHub{
		natsConn:   natsConn,
		clients:    make(map[uint]map[*FeedClient]bool),
		register:   make(chan *FeedClient),
		unregister: make(chan *FeedClient),
		done:       make(chan struct{}),
		log:        log.With().Str("component", "feedhub").Logger(),
		metrics:    m,
	}
}

// Start subscribes to every salary subject. Run must be running for clients
// to be registered.
func (h *FeedHub) Start() error {
	sub, err := h.natsConn.Subscribe(events.AllSalaries, func(msg *nats.Msg) {
		h.dispatch(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to salary events: %w", err)
	}
	h.sub = sub
	return nil
}

// Register adds a client to the hub
func (h *FeedHub) Register(client *FeedClient) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *FeedHub) remove(client *FeedClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Run starts the hub's main loop and returns after Stop.
func (h *FeedHub) Run() {
	h.log.Info().Msg("feed hub started")

	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*FeedClient]bool)
			}
			h.clients[client.userID][client] = true
			h.clientsMu.Unlock()
			h.metrics.FeedClientsAdd(1)
			h.log.Debug().Uint("user_id", client.userID).Str("remote", client.remoteAddr).Msg("client connected")

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if set, ok := h.clients[client.userID]; ok && set[client] {
				delete(set, client)
				if len(set) == 0 {
					delete(h.clients, client.userID)
				}
				close(client.send)
				h.metrics.FeedClientsAdd(-1)
			}
			h.clientsMu.Unlock()
			h.log.Debug().Uint("user_id", client.userID).Str("remote", client.remoteAddr).Msg("client disconnected")

		case <-h.done:
			h.clientsMu.Lock()
			for userID, set := range h.clients {
				for client := range set {
					close(client.send)
					h.metrics.FeedClientsAdd(-1)
				}
				delete(h.clients, userID)
			}
			h.clientsMu.Unlock()
			h.log.Info().Msg("feed hub stopped")
			return
		}
	}
}

// Stop unsubscribes from NATS and disconnects every client.
func (h *FeedHub) Stop() {
	h.stopOnce.Do(func() {
		if h.sub != nil {
			if err := h.sub.Unsubscribe(); err != nil {
				h.log.Warn().Err(err).Msg("failed to unsubscribe from salary events")
			}
		}
		close(h.done)
	})
}

// dispatch sends an event to the clients of its owner only.
func (h *FeedHub) dispatch(data []byte) {
	event, err := events.Decode(data)
	if err != nil {
		h.log.Warn().Err(err).Msg("dropping malformed salary event")
		return
	}

	msg, err := json.Marshal(FeedMessage{Type: "salary", Event: &event})
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to encode feed message")
		return
	}

	h.clientsMu.RLock()
	for client := range h.clients[event.OwnerUserID] {
		select {
		case client.send <- msg:
		default:
			// Client buffer full, skip
		}
	}
	h.clientsMu.RUnlock()
}

// deliver queues data for client without blocking. The hub closes send only
// while holding the write lock and after removing the client, so a client still
// present under the read lock has an open channel.
func (h *FeedHub) deliver(client *FeedClient, data []byte) bool {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	if !h.clients[client.userID][client] {
		return false
	}
	select {
	case client.send <- data:
		return true
	default:
		// Client buffer full, skip
		return false
	}
}

// HubStats reports connected clients
type HubStats struct {
	Clients int `json:"clients"`
	Users   int `json:"users"`
}

func (h *FeedHub) Stats() HubStats {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	stats := HubStats{Users: len(h.clients)}
	for _, set := range h.clients {
		stats.Clients += len(set)
	}
	return stats
}
