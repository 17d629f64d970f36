// Package realtime pushes revalidated view paths to connected dashboards over websockets.
package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"crm-backend/internal/metrics"
)

const writeWait = 5 * time.Second

type Event struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Hub struct {
	clients    map[*websocket.Conn]uuid.UUID
	clientsMux sync.Mutex
	broadcast  chan Event
	log        logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]uuid.UUID),
		broadcast: make(chan Event, 64),
		log:       log,
	}
}

// Run fans queued events out to every subscriber until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case event := <-h.broadcast:
			h.send(event)
		}
	}
}

// Broadcast queues a revalidate event. It never blocks the caller; when the queue is full the event is dropped.
func (h *Hub) Broadcast(path string) {
	select {
	case h.broadcast <- Event{Type: "revalidate", Path: path}:
	default:
		h.log.WithField("path", path).Warn("[Realtime] Broadcast queue full, dropping event")
	}
}

// ServeWS upgrades the request and keeps the subscriber registered until it disconnects
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("[Realtime] WebSocket upgrade error")
		return
	}
	defer conn.Close()

	h.clientsMux.Lock()
	h.clients[conn] = userID
	h.clientsMux.Unlock()
	metrics.RealtimeClients.Inc()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.clientsMux.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				metrics.RealtimeClients.Dec()
			}
			h.clientsMux.Unlock()
			return
		}
	}
}

func (h *Hub) ClientCount() int {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	return len(h.clients)
}

func (h *Hub) send(event Event) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	for client := range h.clients {
		client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteJSON(event); err != nil {
			client.Close()
			delete(h.clients, client)
			metrics.RealtimeClients.Dec()
		}
	}
}

func (h *Hub) closeAll() {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
		metrics.RealtimeClients.Dec()
	}
}
