package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType enumerates the kinds of notifications the system produces.
type NotificationType string

const (
	TypeWeatherAlert    NotificationType = "weather_alert"
	TypeDiagnosisResult NotificationType = "diagnosis_result"
	TypeCommunity       NotificationType = "community"
	TypeLearningRemind  NotificationType = "learning_reminder"
	TypeAchievement     NotificationType = "achievement"
	TypeSystemUpdate    NotificationType = "system_update"
	TypeCalendarEvent   NotificationType = "calendar_event"
	TypeMarketPrice     NotificationType = "market_price"
	TypePestOutbreak    NotificationType = "pest_outbreak"
	TypeSeasonalAdvice  NotificationType = "seasonal_advice"
	TypeMessage         NotificationType = "message"
)

// NotificationPriority orders how urgently a notification should be surfaced.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

// NotificationCategory drives presentation styling on the client.
type NotificationCategory string

const (
	CategoryInfo    NotificationCategory = "info"
	CategoryWarning NotificationCategory = "warning"
	CategorySuccess NotificationCategory = "success"
	CategoryError   NotificationCategory = "error"
)

// NotificationStatus is the lifecycle state of a stored notification.
// Transitions are monotonic forward except failed, which is terminal
// from any state.
type NotificationStatus string

const (
	StatusPending   NotificationStatus = "pending"
	StatusSent      NotificationStatus = "sent"
	StatusDelivered NotificationStatus = "delivered"
	StatusRead      NotificationStatus = "read"
	StatusFailed    NotificationStatus = "failed"
)

var statusRank = map[NotificationStatus]int{
	StatusPending:   0,
	StatusSent:      1,
	StatusDelivered: 2,
	StatusRead:      3,
}

// CanTransition reports whether a status change is allowed.
func CanTransition(from, to NotificationStatus) bool {
	if from == StatusFailed {
		return false
	}
	if to == StatusFailed {
		return true
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// Channels flags which delivery channels a notification is eligible for.
// Only push and in-app are delivered by this process; email and sms are
// recorded for external senders.
type Channels struct {
	Push  bool `json:"push"`
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	InApp bool `json:"in_app"`
}

// Notification is a durable record of something a user should be told about.
// It survives process restarts and recipient offline periods independently
// of realtime push success.
type Notification struct {
	ID        string               `gorm:"primaryKey;size:36" json:"id"`
	UserID    uint                 `gorm:"index;not null" json:"user_id"`
	Type      NotificationType     `gorm:"size:32;not null;index" json:"type"`
	Title     string               `gorm:"size:255;not null" json:"title"`
	Message   string               `gorm:"type:text;not null" json:"message"`
	Priority  NotificationPriority `gorm:"size:16;not null" json:"priority"`
	Category  NotificationCategory `gorm:"size:16;not null" json:"category"`
	Channels  Channels             `gorm:"embedded;embeddedPrefix:channel_" json:"channels"`
	Status    NotificationStatus   `gorm:"size:16;not null;index" json:"status"`
	Payload   json.RawMessage      `gorm:"type:text" json:"payload,omitempty"`
	ScheduledAt *time.Time         `json:"scheduled_at,omitempty"`
	ExpiresAt   *time.Time         `gorm:"index" json:"expires_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// BeforeCreate fills generated and defaulted fields.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Status == "" {
		n.Status = StatusPending
	}
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
	if n.Category == "" {
		n.Category = CategoryInfo
	}
	return nil
}
