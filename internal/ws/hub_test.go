package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pitwall/pitwall/internal/alerts"
	"github.com/pitwall/pitwall/internal/monitor"
	"github.com/pitwall/pitwall/internal/store"
	wsHub "github.com/pitwall/pitwall/internal/ws"
)

const testInterval = 20 * time.Millisecond

// --- helpers ----------------------------------------------------------------

func newStore(ids ...string) *store.Store {
	st := store.New(5 * time.Minute)
	for _, id := range ids {
		st.Put(id, status(42.0))
	}
	return st
}

func status(fuel float64) monitor.Status {
	return monitor.Status{
		Timestamp: 12.0,
		Lap:       3,
		FuelPct:   fuel,
	}
}

// startHub starts a test HTTP server with the hub as its handler and the
// hub's Run loop on a cancellable context. Returns the ws:// URL and the hub.
func startHub(t *testing.T, st *store.Store) (wsURL string, hub *wsHub.Hub) {
	t.Helper()

	hub = wsHub.New(st, testInterval)
	ctx, cancel := context.WithCancel(context.Background())

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	wsURL = "ws" + strings.TrimPrefix(srv.URL, "http")
	return wsURL, hub
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readMessage reads one text message from conn with a short deadline.
func readMessage(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	return msg
}

// --- tests ------------------------------------------------------------------

func TestHub_Connect_ReceivesImmediateStatus(t *testing.T) {
	st := newStore("stint-1")
	wsURL, _ := startHub(t, st)

	conn := dial(t, wsURL)
	msg := readMessage(t, conn)

	var m map[string]interface{}
	if err := json.Unmarshal(msg, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["event"] != "status" {
		t.Errorf("event: got %v, want status", m["event"])
	}
	sessions, ok := m["data"].([]interface{})
	if !ok {
		t.Fatal("data: missing or wrong type")
	}
	if len(sessions) != 1 {
		t.Fatalf("sessions: got %d, want 1", len(sessions))
	}
	s := sessions[0].(map[string]interface{})
	if s["session_id"] != "stint-1" {
		t.Errorf("session_id: got %v, want stint-1", s["session_id"])
	}
	if s["last_seen"] == nil || s["last_seen"] == "" {
		t.Error("last_seen: missing")
	}
}

func TestHub_EmptyStore_EmptySessions(t *testing.T) {
	wsURL, _ := startHub(t, newStore())
	conn := dial(t, wsURL)
	msg := readMessage(t, conn)

	var m map[string]interface{}
	json.Unmarshal(msg, &m) //nolint:errcheck
	sessions := m["data"].([]interface{})
	if len(sessions) != 0 {
		t.Errorf("sessions: got %d, want 0", len(sessions))
	}
}

func TestHub_CountClients(t *testing.T) {
	wsURL, hub := startHub(t, newStore())

	for i := 0; i < 3; i++ {
		conn := dial(t, wsURL)
		readMessage(t, conn) // consume initial message
	}

	time.Sleep(10 * time.Millisecond)
	if n := hub.Count(); n != 3 {
		t.Errorf("Count: got %d, want 3", n)
	}
}

func TestHub_CountDecreasesOnDisconnect(t *testing.T) {
	wsURL, hub := startHub(t, newStore())

	conn := dial(t, wsURL)
	readMessage(t, conn)
	time.Sleep(10 * time.Millisecond)

	if n := hub.Count(); n != 1 {
		t.Errorf("Count before disconnect: got %d, want 1", n)
	}

	conn.Close()
	time.Sleep(50 * time.Millisecond) // let readPump detect the close

	if n := hub.Count(); n != 0 {
		t.Errorf("Count after disconnect: got %d, want 0", n)
	}
}

func TestHub_ReceivesBroadcastOnTick(t *testing.T) {
	st := newStore()
	wsURL, _ := startHub(t, st)

	conn := dial(t, wsURL)
	readMessage(t, conn) // consume immediate status (empty store)

	// A session arriving after connect shows up in the next tick broadcast.
	st.Put("stint-2", status(38.5))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("waiting for tick broadcast: %v", err)
	}

	var m map[string]interface{}
	json.Unmarshal(msg, &m) //nolint:errcheck
	sessions := m["data"].([]interface{})
	if len(sessions) != 1 {
		t.Fatalf("tick broadcast: got %d sessions, want 1", len(sessions))
	}
	s := sessions[0].(map[string]interface{})
	if s["session_id"] != "stint-2" {
		t.Errorf("session_id: got %v, want stint-2", s["session_id"])
	}
}

func TestHub_PublishTransitions_ImmediateAlertFrame(t *testing.T) {
	st := newStore("stint-1")
	wsURL, hub := startHub(t, st)

	conn := dial(t, wsURL)
	readMessage(t, conn) // consume initial status
	time.Sleep(10 * time.Millisecond)

	hub.PublishTransitions("stint-1", []alerts.Transition{{
		Metric:    "water_temp",
		From:      alerts.Nominal,
		To:        alerts.Warning,
		Value:     96.5,
		Timestamp: 120.0,
	}})

	// The alert frame may be interleaved with periodic status frames.
	deadline := time.Now().Add(2 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for alert frame: %v", err)
		}
		var m map[string]interface{}
		if err := json.Unmarshal(msg, &m); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if m["event"] != "alert" {
			continue
		}
		data := m["data"].(map[string]interface{})
		if data["session_id"] != "stint-1" {
			t.Errorf("session_id: got %v, want stint-1", data["session_id"])
		}
		if data["metric"] != "water_temp" {
			t.Errorf("metric: got %v, want water_temp", data["metric"])
		}
		if data["to"] != "warning" {
			t.Errorf("to: got %v, want warning", data["to"])
		}
		return
	}
}

func TestHub_AllClientsReceiveAlert(t *testing.T) {
	wsURL, hub := startHub(t, newStore())

	conns := make([]*websocket.Conn, 3)
	for i := range conns {
		conns[i] = dial(t, wsURL)
		readMessage(t, conns[i]) // consume initial status
	}
	time.Sleep(10 * time.Millisecond)

	hub.PublishTransitions("s", []alerts.Transition{{
		Metric: "oil_temp", From: alerts.Warning, To: alerts.Critical,
		Value: 152.0, Timestamp: 300.0,
	}})

	for i, conn := range conns {
		deadline := time.Now().Add(2 * time.Second)
		for {
			conn.SetReadDeadline(deadline)
			_, msg, err := conn.ReadMessage()
			if err != nil {
				t.Fatalf("client %d: waiting for alert frame: %v", i, err)
			}
			var m map[string]interface{}
			json.Unmarshal(msg, &m) //nolint:errcheck
			if m["event"] == "alert" {
				break
			}
		}
	}
}
