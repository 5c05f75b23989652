package model

import (
	"encoding/json"
	"time"
)

// Known notification payload shapes. Anything else travels as an opaque
// JSON blob through EncodePayload.

// DiagnosisResultPayload carries the outcome of an AI crop diagnosis.
type DiagnosisResultPayload struct {
	DiagnosisID string  `json:"diagnosis_id,omitempty"`
	Crop        string  `json:"crop"`
	Condition   string  `json:"condition"`
	Confidence  float64 `json:"confidence"`
	Advice      string  `json:"advice,omitempty"`
}

// WeatherAlertPayload carries a weather warning for a region.
type WeatherAlertPayload struct {
	Region      string `json:"region"`
	Severity    string `json:"severity"`
	Headline    string `json:"headline"`
	Description string `json:"description,omitempty"`
}

// MarketPricePayload carries a commodity price update.
type MarketPricePayload struct {
	Commodity string  `json:"commodity"`
	Market    string  `json:"market"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Change    float64 `json:"change,omitempty"`
}

// ReminderPayload carries a calendar or learning reminder.
type ReminderPayload struct {
	Subject string    `json:"subject"`
	DueAt   time.Time `json:"due_at"`
}

// LearningProgressPayload carries a course progress update.
type LearningProgressPayload struct {
	Course  string `json:"course"`
	Lesson  string `json:"lesson,omitempty"`
	Percent int    `json:"percent"`
}

// MessagePayload carries a direct message persisted for an offline recipient.
type MessagePayload struct {
	SenderID uint   `json:"sender_id"`
	Message  string `json:"message"`
}

// EncodePayload serializes a payload value for storage on a Notification.
// A nil value yields a nil payload.
func EncodePayload(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}
