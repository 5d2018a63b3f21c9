// Package hub fans configuration-change events out to connected observers
// over a dedicated WebSocket channel. Delivery is fire-and-forget: there is
// no backlog, no acknowledgement and no retry. An observer sees only the
// events emitted while it is connected.
package hub

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Event names emitted on the settings channel.
const (
	EventSettingChanged     = "setting-changed"
	EventSettingsChanged    = "settings-changed"
	EventBrandingChanged    = "branding-changed"
	EventFeatureFlagChanged = "feature-flag-changed"
	EventMaintenanceMode    = "maintenance-mode-changed"
)

const writeTimeout = 5 * time.Second

// Envelope is the wire shape of every event.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// SettingChange is one redacted setting in a single or bulk event payload.
type SettingChange struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Category string `json:"category"`
}

// Stats reports current observer connections for diagnostics.
type Stats struct {
	TotalConnections int    `json:"totalConnections"`
	Timestamp        string `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes to the connection
}

func (c *client) write(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// Hub is the process-scoped observer registry. Construct one at startup
// with New and share it between the HTTP layer and the services.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS upgrades the request and keeps the observer registered until the
// connection drops. Incoming frames are discarded; the channel is one-way.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Settings channel upgrade failed: %v", err)
		return
	}

	cl := &client{conn: conn}
	h.register(cl)
	defer h.unregister(cl)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	log.Printf("Settings observer connected: %s (total: %d)", cl.conn.RemoteAddr(), total)
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	_, ok := h.clients[cl]
	if ok {
		delete(h.clients, cl)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		cl.conn.Close()
		log.Printf("Settings observer disconnected: %s (total: %d)", cl.conn.RemoteAddr(), total)
	}
}

// broadcast delivers the event to every observer registered at the moment
// of the call. The set is snapshotted first so concurrent connects and
// disconnects never corrupt the fan-out. Observers whose write fails are
// dropped.
func (h *Hub) broadcast(event string, data interface{}) {
	h.mu.RLock()
	snapshot := make([]*client, 0, len(h.clients))
	for cl := range h.clients {
		snapshot = append(snapshot, cl)
	}
	h.mu.RUnlock()

	env := Envelope{Event: event, Data: data}
	for _, cl := range snapshot {
		if err := cl.write(env); err != nil {
			log.Printf("WARN: dropping settings observer %s: %v", cl.conn.RemoteAddr(), err)
			h.unregister(cl)
		}
	}
	log.Printf("Broadcast %s to %d observers", event, len(snapshot))
}

// EmitSettingChanged announces a single setting write. Value must already
// be redacted by the caller.
func (h *Hub) EmitSettingChanged(key, value, category string) {
	h.broadcast(EventSettingChanged, gin.H{
		"key":       key,
		"value":     value,
		"category":  category,
		"timestamp": now(),
	})
}

// EmitBulkSettingsChanged announces a bulk write, listing every affected
// setting in input order.
func (h *Hub) EmitBulkSettingsChanged(settings []SettingChange) {
	h.broadcast(EventSettingsChanged, gin.H{
		"settings":  settings,
		"timestamp": now(),
	})
}

// EmitBrandingChanged pushes the complete assembled branding mapping.
func (h *Hub) EmitBrandingChanged(branding map[string]interface{}) {
	h.broadcast(EventBrandingChanged, gin.H{
		"branding":  branding,
		"timestamp": now(),
	})
}

// EmitFeatureFlagChanged announces that a tenant feature flag flipped.
func (h *Hub) EmitFeatureFlagChanged(flagKey string, enabled bool) {
	h.broadcast(EventFeatureFlagChanged, gin.H{
		"flagKey":   flagKey,
		"enabled":   enabled,
		"timestamp": now(),
	})
}

// EmitMaintenanceMode announces a maintenance-mode toggle together with the
// operator-facing message.
func (h *Hub) EmitMaintenanceMode(enabled bool, message string) {
	h.broadcast(EventMaintenanceMode, gin.H{
		"enabled":   enabled,
		"message":   message,
		"timestamp": now(),
	})
}

// ConnectionStats returns the current observer count.
func (h *Hub) ConnectionStats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Stats{
		TotalConnections: len(h.clients),
		Timestamp:        now(),
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
