package inmemory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchparty/server/internal/repository/room"
)

func TestCreateOrGetRoom(t *testing.T) {
	r := NewRepo()
	ctx := context.Background()

	created, isNew, err := r.CreateOrGetRoom(ctx, &room.CreateOrGetRoomParams{
		RoomId:              "AB12",
		CreatorConnectionId: "conn-1",
		CreatorUsername:     "alice",
	})
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "AB12", created.Id)
	assert.Equal(t, "conn-1", created.HostConnectionId)
	assert.Equal(t, "alice", created.HostUsername)
	assert.Equal(t, "", created.VideoUrl)
	assert.Equal(t, float64(0), created.CurrentTime)
	assert.False(t, created.IsPlaying)
	require.Len(t, created.Members, 1)
	assert.Equal(t, "conn-1", created.Members[0].ConnectionId)
	assert.False(t, created.CreatedAt.IsZero())

	// second call returns the existing room untouched
	existing, isNew, err := r.CreateOrGetRoom(ctx, &room.CreateOrGetRoomParams{
		RoomId:              "AB12",
		CreatorConnectionId: "conn-2",
		CreatorUsername:     "bob",
	})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, "conn-1", existing.HostConnectionId)
	assert.Len(t, existing.Members, 1)
}

func TestGetRoomNotFound(t *testing.T) {
	r := NewRepo()

	_, err := r.GetRoom(context.Background(), "NOPE")
	require.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestGetRoomReturnsCopy(t *testing.T) {
	r := NewRepo()
	ctx := context.Background()

	_, _, err := r.CreateOrGetRoom(ctx, &room.CreateOrGetRoomParams{
		RoomId:              "AB12",
		CreatorConnectionId: "conn-1",
		CreatorUsername:     "alice",
	})
	require.NoError(t, err)

	got, err := r.GetRoom(ctx, "AB12")
	require.NoError(t, err)
	got.VideoUrl = "mutated"
	got.Members[0].Username = "mutated"

	fresh, err := r.GetRoom(ctx, "AB12")
	require.NoError(t, err)
	assert.Equal(t, "", fresh.VideoUrl, "caller mutation must not reach the stored room")
	assert.Equal(t, "alice", fresh.Members[0].Username)
}

func TestMemberList(t *testing.T) {
	r := NewRepo()
	ctx := context.Background()

	_, _, err := r.CreateOrGetRoom(ctx, &room.CreateOrGetRoomParams{
		RoomId:              "AB12",
		CreatorConnectionId: "conn-1",
		CreatorUsername:     "alice",
	})
	require.NoError(t, err)

	err = r.AddMemberToList(ctx, &room.AddMemberToListParams{
		RoomId:       "AB12",
		ConnectionId: "conn-2",
		Username:     "bob",
	})
	require.NoError(t, err)

	err = r.AddMemberToList(ctx, &room.AddMemberToListParams{
		RoomId:       "AB12",
		ConnectionId: "conn-2",
		Username:     "bob",
	})
	require.ErrorIs(t, err, room.ErrMemberAlreadyExists)

	err = r.AddMemberToList(ctx, &room.AddMemberToListParams{
		RoomId:       "AB12",
		ConnectionId: "conn-3",
		Username:     "carol",
	})
	require.NoError(t, err)

	removed, err := r.RemoveMemberFromList(ctx, &room.RemoveMemberFromListParams{
		RoomId:       "AB12",
		ConnectionId: "conn-2",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", removed.Username)

	got, err := r.GetRoom(ctx, "AB12")
	require.NoError(t, err)
	require.Len(t, got.Members, 2)
	assert.Equal(t, "conn-1", got.Members[0].ConnectionId, "removal must preserve join order")
	assert.Equal(t, "conn-3", got.Members[1].ConnectionId)

	_, err = r.RemoveMemberFromList(ctx, &room.RemoveMemberFromListParams{
		RoomId:       "AB12",
		ConnectionId: "conn-2",
	})
	require.ErrorIs(t, err, room.ErrMemberNotFound)

	_, err = r.RemoveMemberFromList(ctx, &room.RemoveMemberFromListParams{
		RoomId:       "NOPE",
		ConnectionId: "conn-1",
	})
	require.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestUpdatePlayerState(t *testing.T) {
	r := NewRepo()
	ctx := context.Background()

	_, _, err := r.CreateOrGetRoom(ctx, &room.CreateOrGetRoomParams{
		RoomId:              "AB12",
		CreatorConnectionId: "conn-1",
		CreatorUsername:     "alice",
	})
	require.NoError(t, err)

	err = r.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{
		RoomId:      "AB12",
		IsPlaying:   true,
		CurrentTime: 42.5,
	})
	require.NoError(t, err)

	got, err := r.GetRoom(ctx, "AB12")
	require.NoError(t, err)
	assert.True(t, got.IsPlaying)
	assert.Equal(t, 42.5, got.CurrentTime)

	err = r.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{RoomId: "NOPE"})
	require.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestUpdateVideoUrlResetsPosition(t *testing.T) {
	r := NewRepo()
	ctx := context.Background()

	_, _, err := r.CreateOrGetRoom(ctx, &room.CreateOrGetRoomParams{
		RoomId:              "AB12",
		CreatorConnectionId: "conn-1",
		CreatorUsername:     "alice",
	})
	require.NoError(t, err)

	err = r.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{
		RoomId:      "AB12",
		IsPlaying:   true,
		CurrentTime: 42,
	})
	require.NoError(t, err)

	err = r.UpdateVideoUrl(ctx, &room.UpdateVideoUrlParams{
		RoomId:   "AB12",
		VideoUrl: "https://example.com/movie.mp4",
	})
	require.NoError(t, err)

	got, err := r.GetRoom(ctx, "AB12")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/movie.mp4", got.VideoUrl)
	assert.Equal(t, float64(0), got.CurrentTime)
	assert.True(t, got.IsPlaying, "transport state must survive a video change")
}

func TestUpdateHost(t *testing.T) {
	r := NewRepo()
	ctx := context.Background()

	_, _, err := r.CreateOrGetRoom(ctx, &room.CreateOrGetRoomParams{
		RoomId:              "AB12",
		CreatorConnectionId: "conn-1",
		CreatorUsername:     "alice",
	})
	require.NoError(t, err)

	err = r.UpdateHost(ctx, &room.UpdateHostParams{
		RoomId:           "AB12",
		HostConnectionId: "conn-2",
		HostUsername:     "bob",
	})
	require.NoError(t, err)

	got, err := r.GetRoom(ctx, "AB12")
	require.NoError(t, err)
	assert.Equal(t, "conn-2", got.HostConnectionId)
	assert.Equal(t, "bob", got.HostUsername)
}

func TestRemoveRoom(t *testing.T) {
	r := NewRepo()
	ctx := context.Background()

	_, _, err := r.CreateOrGetRoom(ctx, &room.CreateOrGetRoomParams{
		RoomId:              "AB12",
		CreatorConnectionId: "conn-1",
		CreatorUsername:     "alice",
	})
	require.NoError(t, err)

	require.NoError(t, r.RemoveRoom(ctx, "AB12"))

	_, err = r.GetRoom(ctx, "AB12")
	require.ErrorIs(t, err, room.ErrRoomNotFound)

	require.ErrorIs(t, r.RemoveRoom(ctx, "AB12"), room.ErrRoomNotFound)
}
