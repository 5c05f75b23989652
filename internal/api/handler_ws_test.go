package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"agrilink-backend/config"
	"agrilink-backend/internal/model"
	"agrilink-backend/internal/realtime"
	"agrilink-backend/internal/store"
)

type wsTestEnv struct {
	server   *httptest.Server
	store    store.Store
	presence *realtime.Presence
	rooms    *realtime.Rooms
}

func newWSTestEnv(t *testing.T) *wsTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := newTestStore(t)
	presence := realtime.NewPresence()
	rooms := realtime.NewRooms()
	events := realtime.NewRouter(presence, rooms)
	bridge := realtime.NewBridge(s, events, nil)

	h := NewHandler(HandlerConfig{
		Store:     s,
		Gateway:   realtime.NewGateway(events, bridge),
		Verifier:  realtime.NewVerifier(testSecret, s, time.Second),
		Presence:  presence,
		Rooms:     rooms,
		Events:    events,
		JWTSecret: testSecret,
		TokenTTL:  time.Hour,
	})

	r := NewRouter(h, &config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTLSeconds: 1})
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &wsTestEnv{server: server, store: s, presence: presence, rooms: rooms}
}

// waitForMembers blocks until the room reaches the expected size. Joins
// travel over separate connections, so ordering needs an explicit sync.
func (e *wsTestEnv) waitForMembers(t *testing.T, room string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(e.rooms.Members(room, nil)) == n
	}, 2*time.Second, 10*time.Millisecond)
}

func (e *wsTestEnv) wsURL(token string) string {
	return "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws?token=" + token
}

func (e *wsTestEnv) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, e.wsURL(token), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

type wsEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readEvent(t *testing.T, conn *websocket.Conn) wsEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var ev wsEvent
	require.NoError(t, wsjson.Read(ctx, conn, &ev))
	return ev
}

func sendEvent(t *testing.T, conn *websocket.Conn, evType string, data any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(ctx, conn, realtime.InboundEvent{Type: evType, Data: raw}))
}

// assertNoEvent fails if anything arrives within the grace window.
func assertNoEvent(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var ev wsEvent
	err := wsjson.Read(ctx, conn, &ev)
	assert.Error(t, err, "expected silence, got %q", ev.Type)
}

func TestWS_RejectsExpiredCredential(t *testing.T) {
	env := newWSTestEnv(t)
	u := seedUser(t, env.store, "amina@farm.example", "sunflower")

	claims := jwt.MapClaims{
		"user_id": u.ID,
		"iat":     time.Now().Add(-2 * time.Hour).Unix(),
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, resp, dialErr := websocket.Dial(ctx, env.wsURL(expired), nil)
	if conn != nil {
		conn.Close(websocket.StatusNormalClosure, "")
	}

	require.Error(t, dialErr)
	if resp != nil {
		assert.Equal(t, 401, resp.StatusCode)
	}
	assert.False(t, env.presence.IsOnline(u.ID), "a failed handshake must leave no presence entry")
}

func TestWS_HandshakeRegistersPresence(t *testing.T) {
	env := newWSTestEnv(t)
	u := seedUser(t, env.store, "amina@farm.example", "sunflower")

	conn := env.dial(t, authToken(t, u.ID))

	require.Eventually(t, func() bool {
		return env.presence.IsOnline(u.ID)
	}, 2*time.Second, 10*time.Millisecond)

	conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool {
		return !env.presence.IsOnline(u.ID)
	}, 2*time.Second, 10*time.Millisecond, "disconnect must clear the presence entry")
}

func TestWS_RoomBroadcastExcludesSender(t *testing.T) {
	env := newWSTestEnv(t)
	amina := seedUser(t, env.store, "amina@farm.example", "sunflower")
	bakari := seedUser(t, env.store, "bakari@farm.example", "sunflower")

	aminaConn := env.dial(t, authToken(t, amina.ID))
	bakariConn := env.dial(t, authToken(t, bakari.ID))

	sendEvent(t, aminaConn, realtime.EvtJoinRoom, realtime.RoomPayload{Room: "community_42"})
	env.waitForMembers(t, "community_42", 1)
	sendEvent(t, bakariConn, realtime.EvtJoinRoom, realtime.RoomPayload{Room: "community_42"})
	env.waitForMembers(t, "community_42", 2)

	// Amina was already in the room, so she sees Bakari arrive.
	joined := readEvent(t, aminaConn)
	require.Equal(t, realtime.EvtUserOnline, joined.Type)
	var presence realtime.PresencePayload
	require.NoError(t, json.Unmarshal(joined.Data, &presence))
	assert.Equal(t, bakari.ID, presence.UserID)
	assert.Equal(t, "community_42", presence.Room)

	post := map[string]any{"title": "aphids on maize", "body": "spotted this morning"}
	sendEvent(t, bakariConn, realtime.EvtNewPost, map[string]any{
		"room": "community_42",
		"post": post,
	})

	got := readEvent(t, aminaConn)
	require.Equal(t, realtime.EvtPostCreated, got.Type)
	var received map[string]any
	require.NoError(t, json.Unmarshal(got.Data, &received))
	assert.Equal(t, post, received, "the payload must arrive unchanged")

	assertNoEvent(t, bakariConn)
}

func TestWS_DirectMessageOnline(t *testing.T) {
	env := newWSTestEnv(t)
	amina := seedUser(t, env.store, "amina@farm.example", "sunflower")
	bakari := seedUser(t, env.store, "bakari@farm.example", "sunflower")

	aminaConn := env.dial(t, authToken(t, amina.ID))
	bakariConn := env.dial(t, authToken(t, bakari.ID))

	require.Eventually(t, func() bool {
		return env.presence.IsOnline(bakari.ID)
	}, 2*time.Second, 10*time.Millisecond)

	sendEvent(t, aminaConn, realtime.EvtDirectMessage, realtime.DirectMessagePayload{
		RecipientID: bakari.ID,
		Message:     "rain is coming, cover the seedlings",
	})

	got := readEvent(t, bakariConn)
	require.Equal(t, realtime.EvtPrivateMessage, got.Type)
	var msg model.MessagePayload
	require.NoError(t, json.Unmarshal(got.Data, &msg))
	assert.Equal(t, amina.ID, msg.SenderID)
	assert.Equal(t, "rain is coming, cover the seedlings", msg.Message)

	// Delivered live: nothing is persisted.
	time.Sleep(100 * time.Millisecond)
	stored, err := env.store.NotificationsForUser(context.Background(), bakari.ID, false, 0)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestWS_DirectMessageOfflineRecipientPersists(t *testing.T) {
	env := newWSTestEnv(t)
	amina := seedUser(t, env.store, "amina@farm.example", "sunflower")
	bakari := seedUser(t, env.store, "bakari@farm.example", "sunflower")

	aminaConn := env.dial(t, authToken(t, amina.ID))

	sendEvent(t, aminaConn, realtime.EvtDirectMessage, realtime.DirectMessagePayload{
		RecipientID: bakari.ID,
		Message:     "market opens early tomorrow",
	})

	var stored []model.Notification
	require.Eventually(t, func() bool {
		var err error
		stored, err = env.store.NotificationsForUser(context.Background(), bakari.ID, false, 0)
		return err == nil && len(stored) == 1
	}, 2*time.Second, 10*time.Millisecond)

	n := stored[0]
	assert.Equal(t, model.TypeMessage, n.Type)
	assert.Equal(t, model.StatusPending, n.Status)
	assert.Equal(t, "New message from amina@farm.example", n.Title)
	assert.Equal(t, "market opens early tomorrow", n.Message)

	var payload model.MessagePayload
	require.NoError(t, json.Unmarshal(n.Payload, &payload))
	assert.Equal(t, amina.ID, payload.SenderID)
}

func TestWS_TypingIndicator(t *testing.T) {
	env := newWSTestEnv(t)
	amina := seedUser(t, env.store, "amina@farm.example", "sunflower")
	bakari := seedUser(t, env.store, "bakari@farm.example", "sunflower")

	aminaConn := env.dial(t, authToken(t, amina.ID))
	bakariConn := env.dial(t, authToken(t, bakari.ID))

	sendEvent(t, aminaConn, realtime.EvtJoinRoom, realtime.RoomPayload{Room: "community_7"})
	env.waitForMembers(t, "community_7", 1)
	sendEvent(t, bakariConn, realtime.EvtJoinRoom, realtime.RoomPayload{Room: "community_7"})
	readEvent(t, aminaConn) // Bakari's arrival

	sendEvent(t, bakariConn, realtime.EvtTypingStart, realtime.RoomPayload{Room: "community_7"})

	got := readEvent(t, aminaConn)
	require.Equal(t, realtime.EvtUserTyping, got.Type)
	var typing realtime.TypingPayload
	require.NoError(t, json.Unmarshal(got.Data, &typing))
	assert.Equal(t, bakari.ID, typing.UserID)
	assert.Equal(t, "community_7", typing.Room)
}
