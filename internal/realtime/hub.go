package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat, in seconds.
	PingInterval = 30
	PongWait     = 60
)

// Q&A events pushed to session subscribers.
const (
	EventQuestionSubmitted = "question_submitted"
	EventQuestionAnswered  = "question_answered"
	EventViewerCount       = "viewer_count"
)

// Hub maintains session id -> set of connections and broadcasts messages.
// With Redis configured, publishes go through the session channel so every
// instance delivers them once.
type Hub struct {
	sessions map[int64]map[string]*Client
	subs     map[int64]func()
	mu       sync.RWMutex
	logger   *zap.Logger
	redis    Publisher
	redisSub Subscriber
}

// Publisher publishes session events to other instances.
type Publisher interface {
	PublishSessionEvent(sessionID int64, event string, payload []byte) error
}

// Subscriber subscribes to session channels and invokes handler for incoming events.
type Subscriber interface {
	SubscribeSession(sessionID int64, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub. pub and sub may be nil for a single instance.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		sessions: make(map[int64]map[string]*Client),
		subs:     make(map[int64]func()),
		logger:   logger,
		redis:    pub,
		redisSub: sub,
	}
}

// Register adds a client to a session room. Starts the Redis subscription for the session on its first client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.sessions[c.SessionID] == nil {
		h.sessions[c.SessionID] = make(map[string]*Client)
		if h.redisSub != nil {
			sessionID := c.SessionID
			cancel, err := h.redisSub.SubscribeSession(sessionID, func(event string, payload []byte) {
				h.Broadcast(sessionID, event, json.RawMessage(payload))
			})
			if err != nil {
				h.logger.Warn("session subscribe failed", zap.Int64("session_id", sessionID), zap.Error(err))
			} else {
				h.subs[sessionID] = cancel
			}
		}
	}
	h.sessions[c.SessionID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined session", zap.String("client_id", c.ID), zap.Int64("session_id", c.SessionID))
}

// Unregister removes a client from its room. Cancels the Redis subscription when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.sessions[c.SessionID]; ok {
		if _, ok := m[c.ID]; ok {
			delete(m, c.ID)
			close(c.send)
		}
		if len(m) == 0 {
			delete(h.sessions, c.SessionID)
			if cancel, ok := h.subs[c.SessionID]; ok {
				cancel()
				delete(h.subs, c.SessionID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left session", zap.String("client_id", c.ID), zap.Int64("session_id", c.SessionID))
}

// Broadcast sends a message to all local clients of a session.
func (h *Hub) Broadcast(sessionID int64, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(payload); err != nil {
			h.logger.Warn("marshal event", zap.String("event", event), zap.Error(err))
			return
		}
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.sessions[sessionID] {
		select {
		case c.send <- msg:
		default:
			h.logger.Debug("client buffer full, dropping event", zap.String("client_id", c.ID))
		}
	}
}

// Publish delivers an event to every subscriber of a session across instances.
// Without Redis it broadcasts locally.
func (h *Hub) Publish(sessionID int64, event string, payload interface{}) {
	if h.redis == nil {
		h.Broadcast(sessionID, event, payload)
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("marshal event", zap.String("event", event), zap.Error(err))
		return
	}
	if err := h.redis.PublishSessionEvent(sessionID, event, data); err != nil {
		h.logger.Warn("publish session event failed, broadcasting locally",
			zap.Int64("session_id", sessionID), zap.String("event", event), zap.Error(err))
		h.Broadcast(sessionID, event, json.RawMessage(data))
	}
}

// ViewerCount returns the number of local clients watching a session.
func (h *Hub) ViewerCount(sessionID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}
