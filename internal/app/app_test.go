package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchparty/server/internal/controller"
	connInmemory "github.com/watchparty/server/internal/repository/connection/inmemory"
	roomInmemory "github.com/watchparty/server/internal/repository/room/inmemory"
	roomRedis "github.com/watchparty/server/internal/repository/room/redis"
	"github.com/watchparty/server/internal/service/room"
	"github.com/watchparty/server/pkg/ctxlogger"
)

func TestAppConfigValidate(t *testing.T) {
	cfg := &AppConfig{MembersLimit: 9, RoomTTLHours: 24}
	require.NoError(t, cfg.Validate())

	cfg = &AppConfig{MembersLimit: 0, RoomTTLHours: 24}
	require.Error(t, cfg.Validate())

	cfg = &AppConfig{MembersLimit: 9, RoomTTLHours: 0}
	require.Error(t, cfg.Validate())
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	err := Run(context.Background(), &AppConfig{MembersLimit: 0, RoomTTLHours: 24})
	require.Error(t, err)

	err = Run(context.Background(), &AppConfig{MembersLimit: 9, RoomTTLHours: 24, LogLevel: "verbose"})
	require.Error(t, err)
}

// TestAppStack wires the layers the way Run does and drives them over real
// HTTP and websocket connections.
func TestAppStack(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()

	h := ctxlogger.ContextHandler{Handler: slog.NewJSONHandler(io.Discard, nil)}
	logger := slog.New(&h)

	persistence := roomRedis.NewRepo(rc, time.Hour)
	roomService := room.NewService(roomInmemory.NewRepo(), connInmemory.NewRepo(), persistence, logger, &room.Config{
		MembersLimit: 9,
	})
	c := controller.NewController(roomService, logger)

	srv := httptest.NewServer(c.GetMux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/v1/rooms/ab12")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	payload, err := json.Marshal(map[string]string{"roomId": "ab12", "username": "alice"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "join-room", "payload": json.RawMessage(payload)}))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	for ev.Type != "room-state" {
		require.NoError(t, conn.ReadJSON(&ev))
	}

	resp, err = http.Get(srv.URL + "/api/v1/rooms/ab12")
	require.NoError(t, err)
	var info struct {
		RoomId    string `json:"roomId"`
		UserCount int    `json:"userCount"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	resp.Body.Close()
	assert.Equal(t, "AB12", info.RoomId)
	assert.Equal(t, 1, info.UserCount)
	assert.NotEmpty(t, mr.Keys(), "room must be mirrored to redis")

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/rooms/ab12", nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	assert.Equal(t, http.StatusOK, delResp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/v1/rooms/ab12")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, mr.Keys(), "mirror must be cleaned up with the room")
}
