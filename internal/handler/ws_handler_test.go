package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/Igorithmltd/muta-app-backend-sub001/internal/auth"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/config"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/domain"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/hub"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/registry"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/service"
)

const testSecret = "handler-test-secret"

type fakeStore struct {
	mu       sync.Mutex
	appended []*domain.Message
}

func (f *fakeStore) Append(ctx context.Context, msg *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, msg)
	return nil
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) records() []*domain.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Message, len(f.appended))
	copy(out, f.appended)
	return out
}

type testServer struct {
	server   *httptest.Server
	store    *fakeStore
	registry *registry.InMemoryRegistry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	wsCfg := config.WebSocketConfig{
		PingInterval:   30 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 4096,
	}

	h := hub.NewHub()
	go h.Run()

	reg := registry.NewInMemoryRegistry()
	st := &fakeStore{}
	svc := service.NewRelayService(h, reg, st, nil)
	verifier := auth.NewJWTVerifier(testSecret, "")

	router := mux.NewRouter()
	NewWSHandler(h, svc, verifier, wsCfg).RegisterRoutes(router)
	NewHTTPHandler(reg, h).RegisterRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{server: srv, store: st, registry: reg}
}

func (ts *testServer) wsURL(token string) string {
	url := "ws" + strings.TrimPrefix(ts.server.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	return url
}

func signToken(t *testing.T, userID string) string {
	t.Helper()
	claims := &auth.Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: userID,
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func dial(t *testing.T, ts *testServer, userID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(ts.wsURL(signToken(t, userID)), nil)
	if err != nil {
		t.Fatalf("dial failed for %s: %v", userID, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, ev interface{}) {
	t.Helper()
	if err := conn.WriteJSON(ev); err != nil {
		t.Fatalf("failed to send event: %v", err)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("failed to decode event %s: %v", data, err)
	}
	return out
}

func waitOnline(t *testing.T, ts *testServer, userID string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := ts.registry.Lookup(userID); ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("user %s never came online", userID)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHandshakeRejectsMissingToken(t *testing.T) {
	ts := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(ts.wsURL(""), nil)
	if err == nil {
		t.Fatal("dial without token should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", resp)
	}
}

func TestHandshakeRejectsInvalidToken(t *testing.T) {
	ts := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(ts.wsURL("garbage"), nil)
	if err == nil {
		t.Fatal("dial with an invalid token should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", resp)
	}
}

func TestJoinRoomAnnouncement(t *testing.T) {
	ts := newTestServer(t)
	alice := dial(t, ts, "alice")

	sendEvent(t, alice, &domain.JoinRoomEvent{Event: domain.EventJoinRoom, RoomID: "forum"})

	ev := readEvent(t, alice)
	if ev["event"] != domain.EventUserJoined || ev["userId"] != "alice" {
		t.Fatalf("expected own userJoined, got %v", ev)
	}
}

func TestPrivateMessageScenario(t *testing.T) {
	ts := newTestServer(t)
	alice := dial(t, ts, "alice")
	bob := dial(t, ts, "bob")
	waitOnline(t, ts, "alice")
	waitOnline(t, ts, "bob")

	sendEvent(t, alice, &domain.SendPrivateMessageEvent{
		Event:      domain.EventSendPrivateMessage,
		SenderID:   "alice",
		ReceiverID: "bob",
		Message:    "hi",
	})

	ev := readEvent(t, bob)
	if ev["event"] != domain.EventReceivePrivateMessage {
		t.Fatalf("expected receivePrivateMessage, got %v", ev)
	}
	if ev["senderId"] != "alice" || ev["receiverId"] != "bob" || ev["message"] != "hi" {
		t.Errorf("wrong payload: %v", ev)
	}

	// Sender receives its own echo too.
	ev = readEvent(t, alice)
	if ev["event"] != domain.EventReceivePrivateMessage {
		t.Fatalf("expected sender echo, got %v", ev)
	}

	records := ts.store.records()
	if len(records) != 1 {
		t.Fatalf("expected 1 persisted record, got %d", len(records))
	}
	rec := records[0]
	if rec.Kind != domain.KindPrivate || rec.RoomID != "alice-bob" || rec.SenderID != "alice" || rec.ReceiverID != "bob" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestMalformedEventRejectedWithoutDroppingConnection(t *testing.T) {
	ts := newTestServer(t)
	alice := dial(t, ts, "alice")

	if err := alice.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	ev := readEvent(t, alice)
	if ev["event"] != domain.EventError || ev["code"] != domain.ErrCodeBadRequest {
		t.Fatalf("expected bad request error event, got %v", ev)
	}

	// Connection survives and stays usable.
	sendEvent(t, alice, &domain.JoinRoomEvent{Event: domain.EventJoinRoom, RoomID: "forum"})
	ev = readEvent(t, alice)
	if ev["event"] != domain.EventUserJoined {
		t.Fatalf("connection unusable after rejected event, got %v", ev)
	}
}

func TestUnknownEventRejected(t *testing.T) {
	ts := newTestServer(t)
	alice := dial(t, ts, "alice")

	sendEvent(t, alice, map[string]string{"event": "selfDestruct"})

	ev := readEvent(t, alice)
	if ev["event"] != domain.EventError || ev["code"] != domain.ErrCodeBadRequest {
		t.Fatalf("expected bad request error event, got %v", ev)
	}
}

func TestDisconnectBroadcastsUserLeft(t *testing.T) {
	ts := newTestServer(t)
	alice := dial(t, ts, "alice")
	bob := dial(t, ts, "bob")
	waitOnline(t, ts, "alice")
	waitOnline(t, ts, "bob")

	sendEvent(t, alice, &domain.JoinRoomEvent{Event: domain.EventJoinRoom, RoomID: "forum"})
	readEvent(t, alice) // alice's own userJoined
	sendEvent(t, bob, &domain.JoinRoomEvent{Event: domain.EventJoinRoom, RoomID: "forum"})
	readEvent(t, alice) // bob's userJoined
	readEvent(t, bob)

	alice.Close()

	ev := readEvent(t, bob)
	if ev["event"] != domain.EventUserLeft || ev["userId"] != "alice" {
		t.Fatalf("expected userLeft for alice, got %v", ev)
	}

	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := ts.registry.Lookup("alice"); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("alice still registered after disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPresenceAPI(t *testing.T) {
	ts := newTestServer(t)
	dial(t, ts, "alice")
	waitOnline(t, ts, "alice")

	resp, err := http.Get(ts.server.URL + "/api/v1/presence/alice")
	if err != nil {
		t.Fatalf("presence request failed: %v", err)
	}
	defer resp.Body.Close()

	var pr PresenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !pr.Online || pr.UserID != "alice" {
		t.Errorf("expected alice online, got %+v", pr)
	}

	resp2, err := http.Get(ts.server.URL + "/api/v1/presence/ghost")
	if err != nil {
		t.Fatalf("presence request failed: %v", err)
	}
	defer resp2.Body.Close()

	var pr2 PresenceResponse
	if err := json.NewDecoder(resp2.Body).Decode(&pr2); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if pr2.Online {
		t.Errorf("expected ghost offline, got %+v", pr2)
	}
}
