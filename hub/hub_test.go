package hub

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/settings", h.HandleWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialObserver(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/settings"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForObservers(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.ConnectionStats().TotalConnections == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("observer count never reached %d (have %d)", want, h.ConnectionStats().TotalConnections)
}

func TestBroadcastReachesEveryObserver(t *testing.T) {
	h := New()
	srv := newTestServer(t, h)

	conns := []*websocket.Conn{
		dialObserver(t, srv),
		dialObserver(t, srv),
		dialObserver(t, srv),
	}
	waitForObservers(t, h, len(conns))

	h.EmitSettingChanged("email.smtp.host", "smtp.example.com", "EMAIL")

	for i, conn := range conns {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("observer %d read: %v", i, err)
		}
		if env.Event != EventSettingChanged {
			t.Fatalf("observer %d got event %q, want %q", i, env.Event, EventSettingChanged)
		}
		data, ok := env.Data.(map[string]interface{})
		if !ok {
			t.Fatalf("observer %d payload is %T", i, env.Data)
		}
		if data["key"] != "email.smtp.host" || data["value"] != "smtp.example.com" || data["category"] != "EMAIL" {
			t.Fatalf("observer %d payload: %+v", i, data)
		}
		if _, ok := data["timestamp"].(string); !ok {
			t.Fatalf("observer %d missing timestamp: %+v", i, data)
		}
	}
}

func TestDisconnectedObserverReceivesNothing(t *testing.T) {
	h := New()
	srv := newTestServer(t, h)

	gone := dialObserver(t, srv)
	stay := dialObserver(t, srv)
	waitForObservers(t, h, 2)

	gone.Close()
	waitForObservers(t, h, 1)

	h.EmitMaintenanceMode(true, "back soon")

	_ = stay.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	if err := stay.ReadJSON(&env); err != nil {
		t.Fatalf("surviving observer read: %v", err)
	}
	if env.Event != EventMaintenanceMode {
		t.Fatalf("event = %q, want %q", env.Event, EventMaintenanceMode)
	}
	data := env.Data.(map[string]interface{})
	if data["enabled"] != true || data["message"] != "back soon" {
		t.Fatalf("payload: %+v", data)
	}
}

func TestBulkEventPreservesOrder(t *testing.T) {
	h := New()
	srv := newTestServer(t, h)

	conn := dialObserver(t, srv)
	waitForObservers(t, h, 1)

	h.EmitBulkSettingsChanged([]SettingChange{
		{Key: "a.first", Value: "1", Category: "SYSTEM"},
		{Key: "b.second", Value: "[ENCRYPTED]", Category: "SYSTEM"},
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Event != EventSettingsChanged {
		t.Fatalf("event = %q", env.Event)
	}

	data := env.Data.(map[string]interface{})
	settings, ok := data["settings"].([]interface{})
	if !ok || len(settings) != 2 {
		t.Fatalf("settings payload: %+v", data["settings"])
	}
	first := settings[0].(map[string]interface{})
	second := settings[1].(map[string]interface{})
	if first["key"] != "a.first" || second["key"] != "b.second" {
		t.Fatalf("settings out of order: %+v", settings)
	}
	if second["value"] != "[ENCRYPTED]" {
		t.Fatalf("redacted value not delivered verbatim: %+v", second)
	}
}

func TestConnectionStats(t *testing.T) {
	h := New()
	srv := newTestServer(t, h)

	if got := h.ConnectionStats().TotalConnections; got != 0 {
		t.Fatalf("fresh hub reports %d connections", got)
	}

	conn := dialObserver(t, srv)
	waitForObservers(t, h, 1)

	conn.Close()
	waitForObservers(t, h, 0)
}
