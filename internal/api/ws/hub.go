// Package ws is the mock backend's STOMP broker. Clients subscribe to company room
// topics and publish chat messages, which are validated, stored and broadcast back
// to every subscriber of the room.
package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/eonjenawa/eonjenawa-cli/internal/api/middleware"
	"github.com/eonjenawa/eonjenawa-cli/internal/models"
)

// Recorder validates, stamps and stores a published chat message.
type Recorder interface {
	Record(ctx context.Context, nickname string, in models.ChatPublish) (models.ChatMessage, error)
}

// Hub manages rooms keyed by destination and the connected clients.
type Hub struct {
	recorder Recorder
	secret   string
	log      *zap.Logger
	upgrader websocket.Upgrader

	sendLimit rate.Limit
	sendBurst int

	mu      sync.RWMutex
	rooms   map[string]*Room
	clients map[*Client]struct{}
	closed  bool
}

// NewHub creates a broker. Each connection may SEND 5 messages per second, with
// bursts of 10.
func NewHub(recorder Recorder, secret string, log *zap.Logger) *Hub {
	return &Hub{
		recorder:  recorder,
		secret:    secret,
		log:       log,
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		sendLimit: rate.Limit(5),
		sendBurst: 10,
		rooms:     make(map[string]*Room),
		clients:   make(map[*Client]struct{}),
	}
}

// getRoom returns the live room for destination, creating it when missing.
func (h *Hub) getRoom(destination string) *Room {
	h.mu.RLock()
	r := h.rooms[destination]
	h.mu.RUnlock()
	if r != nil {
		return r
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if r = h.rooms[destination]; r == nil {
		r = newRoom(destination, h.log, h.removeRoom)
		h.rooms[destination] = r
	}
	return r
}

// subscribe adds the subscription, retrying on a fresh room when the one found
// was removed for being empty in the meantime.
func (h *Hub) subscribe(destination string, c *Client, subID string) *Room {
	for {
		r := h.getRoom(destination)
		if r.subscribe(c, subID) {
			return r
		}
		h.mu.RLock()
		closed := h.closed
		h.mu.RUnlock()
		if closed {
			return r
		}
	}
}

// removeRoom forgets r once its last subscription is gone.
func (h *Hub) removeRoom(r *Room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[r.destination] == r {
		delete(h.rooms, r.destination)
	}
}

// subscriberCount is the number of live subscriptions on destination.
func (h *Hub) subscriberCount(destination string) int {
	h.mu.RLock()
	r := h.rooms[destination]
	h.mu.RUnlock()
	if r == nil {
		return 0
	}
	return r.subscriberCount()
}

func (h *Hub) roomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Broadcast sends a stored message to every subscriber of its company's room. A
// room nobody subscribes to has no one to deliver to.
func (h *Hub) Broadcast(msg models.ChatMessage) {
	h.mu.RLock()
	r := h.rooms[models.RoomTopic(msg.CompanyID)]
	h.mu.RUnlock()
	if r != nil {
		r.publish(msg)
	}
}

// ServeWS upgrades the connection and runs the STOMP session until it ends. A
// bearer token on the handshake is used when CONNECT carries none.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "broker is shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("ws upgrade error", zap.Error(err))
		return
	}

	handshakeToken, _ := middleware.BearerToken(r.Header.Get("Authorization"))
	client := newClient(h, conn, handshakeToken)

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	go client.writePump()
	client.readPump()

	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()
}

// Close disconnects every client and stops all rooms.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	rooms := h.rooms
	h.rooms = make(map[string]*Room)
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.Close()
	}
	for _, r := range rooms {
		r.stop()
	}
}
