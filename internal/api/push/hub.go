// Package push implements the optional WebSocket delivery layer for
// portal clients. Polling remains the authoritative contract: anything
// pushed here is also visible through the regular polled endpoints
// within one interval.
package push

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Message types pushed to portal clients
const (
	TypeChatMessage  = "chat_message"
	TypeNotification = "notification"
	TypeAnnouncement = "announcement"
	TypeVMStatus     = "vm_status"
	TypeConnected    = "connected"
)

// Hub manages all active portal WebSocket connections
type Hub struct {
	// Registered sessions (SessionID -> Session)
	sessions map[string]*Session

	// Client id to SessionID mapping (for quick lookup)
	clientSessions map[string]string

	register   chan *Session
	unregister chan *Session
	broadcast  chan *Message
	toClient   chan *clientMessage

	mu sync.RWMutex
}

// Session represents a single connected portal client
type Session struct {
	SessionID string
	ClientID  string
	Hub       *Hub
	Send      chan *Message

	ConnectedAt time.Time
}

// Message represents a pushed payload
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

type clientMessage struct {
	clientID string
	message  *Message
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		sessions:       make(map[string]*Session),
		clientSessions: make(map[string]string),
		register:       make(chan *Session),
		unregister:     make(chan *Session),
		broadcast:      make(chan *Message, 256),
		toClient:       make(chan *clientMessage, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	log.Println("✅ Portal push hub started")

	for {
		select {
		case session := <-h.register:
			h.mu.Lock()

			// Disconnect previous session for the same client, if any
			if existingID, exists := h.clientSessions[session.ClientID]; exists {
				if existing, ok := h.sessions[existingID]; ok {
					log.Printf("⚠️ Replacing previous session for client %s", session.ClientID)
					close(existing.Send)
					delete(h.sessions, existingID)
				}
			}

			h.sessions[session.SessionID] = session
			h.clientSessions[session.ClientID] = session.SessionID
			total := len(h.sessions)
			h.mu.Unlock()

			log.Printf("🔌 Portal client connected: Client=%s, Total=%d", session.ClientID, total)

			h.deliver(session, &Message{
				Type:      TypeConnected,
				Data:      map[string]interface{}{"message": "Connected to Luid panel"},
				Timestamp: time.Now(),
			})

		case session := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.sessions[session.SessionID]; ok {
				delete(h.sessions, session.SessionID)
				if h.clientSessions[session.ClientID] == session.SessionID {
					delete(h.clientSessions, session.ClientID)
				}
				close(session.Send)
				log.Printf("🔌 Portal client disconnected: Client=%s, Total=%d",
					session.ClientID, len(h.sessions))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, session := range h.sessions {
				h.deliver(session, message)
			}
			h.mu.RUnlock()

		case cm := <-h.toClient:
			h.mu.RLock()
			if sessionID, ok := h.clientSessions[cm.clientID]; ok {
				if session, ok := h.sessions[sessionID]; ok {
					h.deliver(session, cm.message)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// deliver sends without blocking the hub loop; a slow consumer just
// drops the push (the poller will catch up on the next tick).
func (h *Hub) deliver(session *Session, message *Message) {
	select {
	case session.Send <- message:
	default:
		log.Printf("⚠️ Dropping push for slow client %s", session.ClientID)
	}
}

// Broadcast pushes a message to every connected portal client
func (h *Hub) Broadcast(messageType string, data interface{}) {
	h.broadcast <- &Message{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// SendToClient pushes a message to a single portal client if connected
func (h *Hub) SendToClient(clientID, messageType string, data interface{}) {
	h.toClient <- &clientMessage{
		clientID: clientID,
		message: &Message{
			Type:      messageType,
			Data:      data,
			Timestamp: time.Now(),
		},
	}
}

// ConnectedCount returns how many portal clients are connected
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Encode serializes a message for the wire
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}
