package inmemory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slices"

	"github.com/watchparty/server/internal/repository/room"
)

type repo struct {
	rooms map[string]*room.Room
	mu    sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		rooms: make(map[string]*room.Room),
	}
}

func copyRoom(r *room.Room) room.Room {
	c := *r
	c.Members = make([]room.Member, len(r.Members))
	copy(c.Members, r.Members)
	return c
}

func (r *repo) GetRoom(_ context.Context, roomId string) (room.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.rooms[roomId]
	if !ok {
		return room.Room{}, room.ErrRoomNotFound
	}

	return copyRoom(stored), nil
}

// CreateOrGetRoom returns the existing room, or creates one with the
// creator as host and sole member. The second return reports whether the
// room was created by this call.
func (r *repo) CreateOrGetRoom(_ context.Context, params *room.CreateOrGetRoomParams) (room.Room, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.rooms[params.RoomId]; ok {
		return copyRoom(stored), false, nil
	}

	now := time.Now()
	created := &room.Room{
		Id:               params.RoomId,
		VideoUrl:         "",
		CurrentTime:      0,
		IsPlaying:        false,
		HostConnectionId: params.CreatorConnectionId,
		HostUsername:     params.CreatorUsername,
		Members: []room.Member{{
			ConnectionId: params.CreatorConnectionId,
			Username:     params.CreatorUsername,
			JoinedAt:     now,
		}},
		CreatedAt: now,
	}
	r.rooms[params.RoomId] = created

	return copyRoom(created), true, nil
}

func (r *repo) AddMemberToList(_ context.Context, params *room.AddMemberToListParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrRoomNotFound
	}

	if slices.IndexFunc(stored.Members, func(m room.Member) bool {
		return m.ConnectionId == params.ConnectionId
	}) != -1 {
		return room.ErrMemberAlreadyExists
	}

	stored.Members = append(stored.Members, room.Member{
		ConnectionId: params.ConnectionId,
		Username:     params.Username,
		JoinedAt:     time.Now(),
	})

	return nil
}

// RemoveMemberFromList removes the member and returns it. Join order of
// the remaining members is preserved.
func (r *repo) RemoveMemberFromList(_ context.Context, params *room.RemoveMemberFromListParams) (room.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.rooms[params.RoomId]
	if !ok {
		return room.Member{}, room.ErrRoomNotFound
	}

	index := slices.IndexFunc(stored.Members, func(m room.Member) bool {
		return m.ConnectionId == params.ConnectionId
	})
	if index == -1 {
		return room.Member{}, room.ErrMemberNotFound
	}

	removed := stored.Members[index]
	stored.Members = append(stored.Members[:index], stored.Members[index+1:]...)

	return removed, nil
}

func (r *repo) UpdatePlayerState(_ context.Context, params *room.UpdatePlayerStateParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrRoomNotFound
	}

	stored.IsPlaying = params.IsPlaying
	stored.CurrentTime = params.CurrentTime

	return nil
}

// UpdateVideoUrl sets the video and resets the playback position. The
// transport state is intentionally left untouched.
func (r *repo) UpdateVideoUrl(_ context.Context, params *room.UpdateVideoUrlParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrRoomNotFound
	}

	stored.VideoUrl = params.VideoUrl
	stored.CurrentTime = 0

	return nil
}

func (r *repo) UpdateHost(_ context.Context, params *room.UpdateHostParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrRoomNotFound
	}

	stored.HostConnectionId = params.HostConnectionId
	stored.HostUsername = params.HostUsername

	return nil
}

func (r *repo) RemoveRoom(_ context.Context, roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomId]; !ok {
		return room.ErrRoomNotFound
	}

	delete(r.rooms, roomId)

	return nil
}
