package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"agrilink-backend/internal/model"
	"agrilink-backend/internal/realtime"
)

// HandleWS upgrades the connection after verifying the handshake
// credential. Browser WebSocket clients cannot set arbitrary headers, so
// the token is accepted from a query param as well as the Authorization
// header. Nothing is registered until verification succeeds.
func (h *Handler) HandleWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
	}

	user, err := h.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	opts := &websocket.AcceptOptions{}
	// Dev frontends often run on a different origin than the API.
	if h.wsInsecure {
		opts.InsecureSkipVerify = true
	}

	conn, err := websocket.Accept(c.Writer, c.Request, opts)
	if err != nil {
		return // Accept already wrote the error response
	}

	client := realtime.NewClient(user.ID, user.Email, conn)
	h.presence.Register(client)
	defer h.teardown(client)

	for {
		var in realtime.InboundEvent
		if err := wsjson.Read(c.Request.Context(), conn, &in); err != nil {
			return
		}
		h.dispatch(client, in)
	}
}

// teardown runs synchronously on disconnect: every room the session
// belonged to gets a departure notice, then the presence entry goes.
func (h *Handler) teardown(client *realtime.Client) {
	for _, room := range h.rooms.LeaveAll(client) {
		h.events.ToRoom(room, realtime.Event{
			Type: realtime.EvtUserOffline,
			Data: realtime.PresencePayload{UserID: client.UserID(), Room: room},
		}, nil)
	}
	h.presence.Unregister(client)
	client.Shutdown()
}

// dispatch routes one inbound client event. Malformed payloads are
// dropped; the fire-and-forget paths never report errors to the sender.
func (h *Handler) dispatch(client *realtime.Client, in realtime.InboundEvent) {
	switch in.Type {
	case realtime.EvtJoinRoom:
		var p realtime.RoomPayload
		if err := json.Unmarshal(in.Data, &p); err != nil || p.Room == "" {
			return
		}
		h.rooms.Join(client, p.Room)
		h.events.ToRoom(p.Room, realtime.Event{
			Type: realtime.EvtUserOnline,
			Data: realtime.PresencePayload{UserID: client.UserID(), Room: p.Room},
		}, client)

	case realtime.EvtLeaveRoom:
		var p realtime.RoomPayload
		if err := json.Unmarshal(in.Data, &p); err != nil || p.Room == "" {
			return
		}
		h.rooms.Leave(client, p.Room)
		h.events.ToRoom(p.Room, realtime.Event{
			Type: realtime.EvtUserOffline,
			Data: realtime.PresencePayload{UserID: client.UserID(), Room: p.Room},
		}, client)

	case realtime.EvtNewPost:
		var p struct {
			Room string          `json:"room"`
			Post json.RawMessage `json:"post"`
		}
		if err := json.Unmarshal(in.Data, &p); err != nil || p.Room == "" {
			return
		}
		h.events.ToRoom(p.Room, realtime.Event{
			Type: realtime.EvtPostCreated,
			Data: p.Post,
		}, client)

	case realtime.EvtDirectMessage:
		var p realtime.DirectMessagePayload
		if err := json.Unmarshal(in.Data, &p); err != nil || p.RecipientID == 0 {
			return
		}
		h.directMessage(client, p)

	case realtime.EvtTypingStart:
		h.typing(client, in.Data, realtime.EvtUserTyping)

	case realtime.EvtTypingStop:
		h.typing(client, in.Data, realtime.EvtUserStoppedTyping)

	default:
		log.Printf("realtime: unknown event %q from user %d", in.Type, client.UserID())
	}
}

// directMessage pushes to the recipient's live session; an offline
// recipient gets a durable message notification instead.
func (h *Handler) directMessage(client *realtime.Client, p realtime.DirectMessagePayload) {
	payload := model.MessagePayload{SenderID: client.UserID(), Message: p.Message}

	delivered := h.events.ToUser(p.RecipientID, realtime.Event{
		Type: realtime.EvtPrivateMessage,
		Data: payload,
	})
	if delivered {
		return
	}

	// Not tied to the sender's connection context: the record must be
	// written even if the sender disconnects mid-flight.
	title := "New message from " + client.Email()
	if _, err := h.gateway.Notify(context.Background(), p.RecipientID, model.TypeMessage, title, p.Message, payload); err != nil {
		log.Printf("realtime: failed to persist message notification for user %d: %v", p.RecipientID, err)
	}
}

// typing re-broadcasts a typing indicator. Fire and forget.
func (h *Handler) typing(client *realtime.Client, data json.RawMessage, outType string) {
	var p realtime.RoomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		return
	}
	h.events.ToRoom(p.Room, realtime.Event{
		Type: outType,
		Data: realtime.TypingPayload{UserID: client.UserID(), Room: p.Room},
	}, client)
}
