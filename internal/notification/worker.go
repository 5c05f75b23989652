package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"agrilink-backend/internal/model"
	"agrilink-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// pushPayload is the JSON body handed to the browser's service worker.
type pushPayload struct {
	Type    model.NotificationType `json:"type"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
}

// WorkerPool manages a pool of workers delivering the push channel of
// stored notifications.
type WorkerPool struct {
	size    int
	jobs    chan string
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size), // Buffered channel
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Push worker %d started", id)
	for {
		select {
		case notificationID := <-wp.jobs:
			wp.sendPushForNotification(ctx, notificationID)
		case <-ctx.Done():
			log.Printf("Push worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool.
func (wp *WorkerPool) Dispatch(notificationID string) {
	wp.jobs <- notificationID
}

// sendPushForNotification fetches the notification and the recipient's
// browser subscriptions and fans the push out to each.
func (wp *WorkerPool) sendPushForNotification(ctx context.Context, notificationID string) {
	n, err := wp.store.NotificationByID(ctx, notificationID)
	if err != nil {
		log.Printf("Error fetching notification %s: %v", notificationID, err)
		return
	}
	if !n.Channels.Push {
		return
	}

	subs, err := wp.store.PushSubscriptionsForUser(ctx, n.UserID)
	if err != nil {
		log.Printf("Error fetching subscriptions for user %d: %v", n.UserID, err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(pushPayload{Type: n.Type, Title: n.Title, Message: n.Message})
	if err != nil {
		log.Printf("Error encoding push payload for notification %s: %v", n.ID, err)
		return
	}

	log.Printf("Sending %d push notification(s) for user %d", len(subs), n.UserID)
	for _, sub := range subs {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending push to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
