package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agrilink-backend/internal/model"
)

// ErrInvalidTransition is returned when a notification status update would
// move the lifecycle backwards.
var ErrInvalidTransition = errors.New("invalid notification status transition")

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	CreateUser(ctx context.Context, u *model.User) error
	UserByID(ctx context.Context, id uint) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)

	CreateNotification(ctx context.Context, n *model.Notification) error
	NotificationByID(ctx context.Context, id string) (*model.Notification, error)
	NotificationsForUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]model.Notification, error)
	UpdateNotificationStatus(ctx context.Context, id string, status model.NotificationStatus) error
	MarkAllRead(ctx context.Context, userID uint) error
	DeleteNotification(ctx context.Context, id string, userID uint) error
	DeleteExpiredNotifications(ctx context.Context, now time.Time) (int64, error)

	SavePushSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeletePushSubscription(ctx context.Context, endpoint string) error
	PushSubscriptionsForUser(ctx context.Context, userID uint) ([]model.PushSubscription, error)

	CreateCommunityPost(ctx context.Context, p *model.CommunityPost) error
	CommunityPosts(ctx context.Context, communityID uint, limit int) ([]model.CommunityPost, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) CreateUser(ctx context.Context, u *model.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *gormStore) UserByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *gormStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *gormStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification for user %d: %w", n.UserID, err)
	}
	return nil
}

func (s *gormStore) NotificationByID(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	if err := s.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *gormStore) NotificationsForUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]model.Notification, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if unreadOnly {
		q = q.Where("status <> ?", model.StatusRead)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []model.Notification
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateNotificationStatus advances a notification's lifecycle. The
// transition is validated inside the transaction so concurrent updates
// cannot move the status backwards.
func (s *gormStore) UpdateNotificationStatus(ctx context.Context, id string, status model.NotificationStatus) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n model.Notification
		if err := tx.First(&n, "id = ?", id).Error; err != nil {
			return err
		}
		if !model.CanTransition(n.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, n.Status, status)
		}
		return tx.Model(&n).Update("status", status).Error
	})
}

func (s *gormStore) MarkAllRead(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND status IN ?", userID,
			[]model.NotificationStatus{model.StatusPending, model.StatusSent, model.StatusDelivered}).
		Update("status", model.StatusRead).Error
}

func (s *gormStore) DeleteNotification(ctx context.Context, id string, userID uint) error {
	return s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Notification{}).Error
}

// DeleteExpiredNotifications removes notifications whose expiry time has
// elapsed. This is the passive-expiry sweep; nothing else deletes records.
func (s *gormStore) DeleteExpiredNotifications(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Delete(&model.Notification{})
	return res.RowsAffected, res.Error
}

// SavePushSubscription inserts or refreshes a subscription keyed by endpoint.
func (s *gormStore) SavePushSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(sub).Error
}

func (s *gormStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

func (s *gormStore) PushSubscriptionsForUser(ctx context.Context, userID uint) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *gormStore) CreateCommunityPost(ctx context.Context, p *model.CommunityPost) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *gormStore) CommunityPosts(ctx context.Context, communityID uint, limit int) ([]model.CommunityPost, error) {
	q := s.db.WithContext(ctx).Where("community_id = ?", communityID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var posts []model.CommunityPost
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}
