package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Conn is the part of the websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub tracks websocket subscribers per conversation and pushes broker events
// to them. Connections that fail a write are dropped on the spot.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[Conn]struct{}
	log  *zap.SugaredLogger
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{subs: make(map[string]map[Conn]struct{}), log: log}
}

func (h *Hub) Subscribe(convID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[convID] == nil {
		h.subs[convID] = make(map[Conn]struct{})
	}
	h.subs[convID][c] = struct{}{}
}

func (h *Hub) Unsubscribe(convID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.subs[convID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.subs, convID)
		}
	}
}

func (h *Hub) Broadcast(convID string, payload interface{}) {
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.subs[convID]))
	for c := range h.subs[convID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debugw("ws write failed, dropping subscriber", "conversation_id", convID)
			h.Unsubscribe(convID, c)
			_ = c.Close()
		}
	}
}

// HandleEvent feeds a raw broker record into the hub. The key is the
// conversation id, matching what the event publisher writes.
func (h *Hub) HandleEvent(key string, value []byte) {
	var payload map[string]interface{}
	if err := json.Unmarshal(value, &payload); err != nil {
		h.log.Warnw("bad event payload", "err", err)
		return
	}
	h.Broadcast(key, payload)
}
