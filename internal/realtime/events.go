package realtime

import "encoding/json"

// Event is the wire envelope for all realtime traffic, both directions.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// InboundEvent is the client-to-server envelope. Data stays raw until the
// event type selects a payload shape.
type InboundEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client-to-server event names.
const (
	EvtJoinRoom      = "join_room"
	EvtLeaveRoom     = "leave_room"
	EvtNewPost       = "new_post"
	EvtDirectMessage = "direct_message"
	EvtTypingStart   = "typing_start"
	EvtTypingStop    = "typing_stop"
)

// Server-to-client event names.
const (
	EvtNotification      = "notification"
	EvtCommunityNotice   = "community_notification"
	EvtSystemNotice      = "system_notification"
	EvtDiagnosisResult   = "diagnosis_result"
	EvtWeatherAlert      = "weather_alert"
	EvtMarketUpdate      = "market_update"
	EvtCalendarReminder  = "calendar_reminder"
	EvtLearningProgress  = "learning_progress"
	EvtPostCreated       = "post_created"
	EvtPrivateMessage    = "private_message"
	EvtUserTyping        = "user_typing"
	EvtUserStoppedTyping = "user_stopped_typing"
	EvtUserOnline        = "user_online"
	EvtUserOffline       = "user_offline"
)

// RoomPayload is the payload of join/leave/typing events.
type RoomPayload struct {
	Room string `json:"room"`
}

// DirectMessagePayload is the payload of a direct_message event.
type DirectMessagePayload struct {
	RecipientID uint   `json:"recipient_id"`
	Message     string `json:"message"`
}

// PresencePayload announces a user entering or leaving a room.
type PresencePayload struct {
	UserID uint   `json:"user_id"`
	Room   string `json:"room,omitempty"`
}

// TypingPayload announces a typing indicator inside a room.
type TypingPayload struct {
	UserID uint   `json:"user_id"`
	Room   string `json:"room"`
}
