// Package websocket rozsyła zdarzenia o zmianach w drzewie plików do
// przeglądarek właściciela. Każdy użytkownik może mieć wiele otwartych
// połączeń naraz; zdarzenie trafia do wszystkich jego klientów, nigdy
// do cudzych.
package websocket

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub keeps the live connections grouped per user. Register and
// Unregister are serviced by Run; PublishEvent reads the map directly
// under the lock, so publishers never block on the hub goroutine.
type Hub struct {
	clients    map[int64]map[*Client]struct{}
	mu         sync.RWMutex
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run obsługuje rejestrację i wyrejestrowanie klientów. Uruchamiane raz,
// w osobnej goroutine, na czas życia serwera.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.UserID]; !ok {
		h.clients[client.UserID] = make(map[*Client]struct{})
	}
	h.clients[client.UserID][client] = struct{}{}
	log.Printf("WebSocket: user %d connected (%d active)", client.UserID, len(h.clients[client.UserID]))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	userClients, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := userClients[client]; !ok {
		return
	}
	delete(userClients, client)
	close(client.send)
	if len(userClients) == 0 {
		delete(h.clients, client.UserID)
	}
	log.Printf("WebSocket: user %d disconnected", client.UserID)
}

// PublishEvent delivers one serialized event to every connection of the
// given user. A client whose send buffer is full misses the message;
// the journal endpoint exists to backfill such gaps.
func (h *Hub) PublishEvent(userID int64, eventData []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- eventData:
		default:
			log.Printf("WARN: WebSocket send buffer full for user %d, dropping event", userID)
		}
	}
}
