package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchparty/server/internal/repository/room"
)

func newTestRepo(t *testing.T, expire time.Duration) (*repo, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	return NewRepo(rc, expire), mr
}

func testRoom() *room.Room {
	now := time.Unix(time.Now().Unix(), 0)
	return &room.Room{
		Id:               "AB12",
		VideoUrl:         "https://example.com/movie.mp4",
		CurrentTime:      42.5,
		IsPlaying:        true,
		HostConnectionId: "conn-1",
		HostUsername:     "alice",
		Members: []room.Member{
			{ConnectionId: "conn-1", Username: "alice", JoinedAt: now},
			{ConnectionId: "conn-2", Username: "bob", JoinedAt: now.Add(time.Second)},
		},
		CreatedAt: now,
	}
}

func TestSaveAndGetRoom(t *testing.T) {
	r, _ := newTestRepo(t, time.Hour)
	ctx := context.Background()

	saved := testRoom()
	require.NoError(t, r.SaveRoom(ctx, saved))

	got, err := r.GetRoom(ctx, "AB12")
	require.NoError(t, err)
	assert.Equal(t, saved.Id, got.Id)
	assert.Equal(t, saved.VideoUrl, got.VideoUrl)
	assert.Equal(t, saved.CurrentTime, got.CurrentTime)
	assert.Equal(t, saved.IsPlaying, got.IsPlaying)
	assert.Equal(t, saved.HostConnectionId, got.HostConnectionId)
	assert.Equal(t, saved.HostUsername, got.HostUsername)
	assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
	require.Len(t, got.Members, 2)
	assert.Equal(t, "conn-1", got.Members[0].ConnectionId)
	assert.Equal(t, "bob", got.Members[1].Username)
}

func TestGetRoomNotFound(t *testing.T) {
	r, _ := newTestRepo(t, time.Hour)

	_, err := r.GetRoom(context.Background(), "NOPE")
	require.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestSaveRoomOverwrites(t *testing.T) {
	r, _ := newTestRepo(t, time.Hour)
	ctx := context.Background()

	saved := testRoom()
	require.NoError(t, r.SaveRoom(ctx, saved))

	saved.CurrentTime = 0
	saved.IsPlaying = false
	saved.VideoUrl = "https://example.com/other.mp4"
	saved.Members = saved.Members[:1]
	require.NoError(t, r.SaveRoom(ctx, saved))

	got, err := r.GetRoom(ctx, "AB12")
	require.NoError(t, err)
	assert.Equal(t, float64(0), got.CurrentTime)
	assert.False(t, got.IsPlaying)
	assert.Equal(t, "https://example.com/other.mp4", got.VideoUrl)
	assert.Len(t, got.Members, 1)
}

func TestRoomExpiry(t *testing.T) {
	r, mr := newTestRepo(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, r.SaveRoom(ctx, testRoom()))
	assert.Equal(t, time.Hour, mr.TTL("room:AB12"))

	mr.FastForward(30 * time.Minute)

	// a read refreshes the ttl
	_, err := r.GetRoom(ctx, "AB12")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("room:AB12"))

	mr.FastForward(2 * time.Hour)

	_, err = r.GetRoom(ctx, "AB12")
	require.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestDeleteRoom(t *testing.T) {
	r, _ := newTestRepo(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, r.SaveRoom(ctx, testRoom()))
	require.NoError(t, r.DeleteRoom(ctx, "AB12"))

	_, err := r.GetRoom(ctx, "AB12")
	require.ErrorIs(t, err, room.ErrRoomNotFound)

	require.ErrorIs(t, r.DeleteRoom(ctx, "AB12"), room.ErrRoomNotFound)
}
