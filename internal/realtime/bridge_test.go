package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"agrilink-backend/internal/db"
	"agrilink-backend/internal/model"
	"agrilink-backend/internal/store"
)

// newTestStore opens an isolated in-memory database per test.
func newTestStore(t *testing.T) store.Store {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})

	return store.NewGormStore(gormDB)
}

func TestBridge_NotifyOfflineUserPersistsPending(t *testing.T) {
	s := newTestStore(t)
	router, _, _ := newTestRouter()
	bridge := NewBridge(s, router, nil)

	n, err := bridge.Notify(context.Background(), 5, model.TypeMessage, "New message", "hello", model.MessagePayload{SenderID: 1, Message: "hello"})

	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, model.StatusPending, n.Status)
	assert.NotEmpty(t, n.ID)

	// Round-trip: the record durably exists and matches.
	stored, err := s.NotificationByID(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(5), stored.UserID)
	assert.Equal(t, model.TypeMessage, stored.Type)
	assert.Equal(t, "New message", stored.Title)
	assert.Equal(t, "hello", stored.Message)
	assert.Equal(t, model.StatusPending, stored.Status)

	var payload model.MessagePayload
	require.NoError(t, json.Unmarshal(stored.Payload, &payload))
	assert.Equal(t, uint(1), payload.SenderID)
}

func TestBridge_NotifyOnlineUserStillPersists(t *testing.T) {
	s := newTestStore(t)
	router, presence, _ := newTestRouter()
	bridge := NewBridge(s, router, nil)

	session := newFakeSession(5)
	presence.Register(session)

	n, err := bridge.Notify(context.Background(), 5, model.TypeWeatherAlert, "Storm warning", "heavy rain expected", nil)
	require.NoError(t, err)

	// Push is a side effect, not a precondition: the record exists either way.
	stored, err := s.NotificationByID(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)

	// The live session received the realtime hint.
	events := session.received()
	require.Len(t, events, 1)
	assert.Equal(t, EvtNotification, events[0].Type)
}

func TestBridge_PersistenceFailurePropagates(t *testing.T) {
	s := newTestStore(t)
	router, _, _ := newTestRouter()
	bridge := NewBridge(s, router, nil)

	// Close the database out from under the bridge.
	sqlDB, err := s.DB().DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = bridge.Notify(context.Background(), 5, model.TypeSystemUpdate, "t", "m", nil)
	assert.Error(t, err, "store failure must reach the caller")
}

type recordingDispatcher struct {
	ids []string
}

func (r *recordingDispatcher) Dispatch(id string) { r.ids = append(r.ids, id) }

func TestBridge_DispatchesPushChannel(t *testing.T) {
	s := newTestStore(t)
	router, _, _ := newTestRouter()
	dispatcher := &recordingDispatcher{}
	bridge := NewBridge(s, router, dispatcher)

	n, err := bridge.Notify(context.Background(), 9, model.TypeMarketPrice, "Maize up", "price moved", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{n.ID}, dispatcher.ids)
}
