package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"agrilink-backend/config"
	"agrilink-backend/internal/db"
	"agrilink-backend/internal/model"
	"agrilink-backend/internal/realtime"
	"agrilink-backend/internal/store"
)

const testSecret = "test-secret"

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

// newTestRouter wires a full HTTP router around an isolated store.
func newTestRouter(t *testing.T) (*gin.Engine, store.Store) {
	return newTestRouterWith(t, nil)
}

// newTestRouterWith lets a test swap collaborators before the router is
// built, typically to stub an external service.
func newTestRouterWith(t *testing.T, customize func(*HandlerConfig)) (*gin.Engine, store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := newTestStore(t)
	presence := realtime.NewPresence()
	rooms := realtime.NewRooms()
	events := realtime.NewRouter(presence, rooms)
	bridge := realtime.NewBridge(s, events, nil)

	cfg := HandlerConfig{
		Store:     s,
		Gateway:   realtime.NewGateway(events, bridge),
		Verifier:  realtime.NewVerifier(testSecret, s, time.Second),
		Presence:  presence,
		Rooms:     rooms,
		Events:    events,
		JWTSecret: testSecret,
		TokenTTL:  time.Hour,
	}
	if customize != nil {
		customize(&cfg)
	}
	h := NewHandler(cfg)

	serverCfg := &config.ServerConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTLSeconds: 1,
	}
	return NewRouter(h, serverCfg), s
}

func seedUser(t *testing.T, s store.Store, email, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{Name: "Amina", Email: email, PasswordHash: string(hash)}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func authToken(t *testing.T, userID uint) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
