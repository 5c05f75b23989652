package realtime

import (
	"context"

	"agrilink-backend/internal/model"
	"agrilink-backend/internal/store"
)

// PushDispatcher hands a stored notification to the web-push worker pool.
type PushDispatcher interface {
	Dispatch(notificationID string)
}

// Bridge guarantees a notification is never silently lost: it durably
// stores the record first, then attempts a best-effort realtime push.
type Bridge struct {
	store  store.Store
	router *Router
	push   PushDispatcher // optional; nil disables the web-push channel
}

// NewBridge creates a bridge. push may be nil.
func NewBridge(s store.Store, router *Router, push PushDispatcher) *Bridge {
	return &Bridge{store: s, router: router, push: push}
}

// Notify stores a pending notification for the user, then tries a direct
// push. Persistence failure is the one error this layer does not swallow.
// Push success is only a hint; the stored record's lifecycle is advanced
// by the read/acknowledge path, not by transport delivery.
func (b *Bridge) Notify(ctx context.Context, userID uint, typ model.NotificationType, title, message string, payload any) (*model.Notification, error) {
	raw, err := model.EncodePayload(payload)
	if err != nil {
		return nil, err
	}

	n := &model.Notification{
		UserID:   userID,
		Type:     typ,
		Title:    title,
		Message:  message,
		Payload:  raw,
		Channels: model.Channels{InApp: true, Push: true},
		Status:   model.StatusPending,
	}

	if err := b.store.CreateNotification(ctx, n); err != nil {
		return nil, err
	}

	b.router.ToUser(userID, Event{Type: EvtNotification, Data: n})

	if b.push != nil && n.Channels.Push {
		b.push.Dispatch(n.ID)
	}

	return n, nil
}
