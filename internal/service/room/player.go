package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/watchparty/server/internal/repository/room"
)

type UpdatePlayerStateParams struct {
	RoomId      string
	SenderId    string
	CurrentTime float64
}

type UpdatePlayerStateResponse struct {
	CurrentTime float64
	OthersConns []*websocket.Conn
}

// PlayVideo starts playback at the given position. Host only.
func (s *service) PlayVideo(ctx context.Context, params *UpdatePlayerStateParams) (UpdatePlayerStateResponse, error) {
	return s.updatePlayerState(ctx, params, func(r *room.Room) (bool, float64) {
		return true, params.CurrentTime
	})
}

// PauseVideo pauses playback at the given position. Host only.
func (s *service) PauseVideo(ctx context.Context, params *UpdatePlayerStateParams) (UpdatePlayerStateResponse, error) {
	return s.updatePlayerState(ctx, params, func(r *room.Room) (bool, float64) {
		return false, params.CurrentTime
	})
}

// SeekVideo moves the playback position without touching the transport
// state. Host only.
func (s *service) SeekVideo(ctx context.Context, params *UpdatePlayerStateParams) (UpdatePlayerStateResponse, error) {
	return s.updatePlayerState(ctx, params, func(r *room.Room) (bool, float64) {
		return r.IsPlaying, params.CurrentTime
	})
}

func (s *service) updatePlayerState(ctx context.Context, params *UpdatePlayerStateParams, next func(*room.Room) (bool, float64)) (UpdatePlayerStateResponse, error) {
	if params.CurrentTime < 0 {
		return UpdatePlayerStateResponse{}, ErrInvalidCurrentTime
	}

	roomId := normalizeRoomId(params.RoomId)

	unlock := s.lockRoom(roomId)
	defer unlock()

	r, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return UpdatePlayerStateResponse{}, ErrRoomNotFound
		}
		return UpdatePlayerStateResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	if r.HostConnectionId != params.SenderId {
		return UpdatePlayerStateResponse{}, ErrPermissionDenied
	}

	isPlaying, currentTime := next(&r)
	if err := s.roomRepo.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{
		RoomId:      roomId,
		IsPlaying:   isPlaying,
		CurrentTime: currentTime,
	}); err != nil {
		return UpdatePlayerStateResponse{}, fmt.Errorf("failed to update player state: %w", err)
	}

	r.IsPlaying = isPlaying
	r.CurrentTime = currentTime
	s.persistRoom(ctx, &r)

	return UpdatePlayerStateResponse{
		CurrentTime: currentTime,
		OthersConns: s.getMemberConns(r.Members, params.SenderId),
	}, nil
}

type ChangeVideoParams struct {
	RoomId   string
	SenderId string
	VideoUrl string
}

type ChangeVideoResponse struct {
	VideoUrl string
	AllConns []*websocket.Conn
}

// ChangeVideo loads a new video and resets the position to zero. The
// transport state is deliberately left as-is. Host only; unlike playback
// updates, the change is echoed back to the host as well.
func (s *service) ChangeVideo(ctx context.Context, params *ChangeVideoParams) (ChangeVideoResponse, error) {
	roomId := normalizeRoomId(params.RoomId)

	unlock := s.lockRoom(roomId)
	defer unlock()

	r, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return ChangeVideoResponse{}, ErrRoomNotFound
		}
		return ChangeVideoResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	if r.HostConnectionId != params.SenderId {
		return ChangeVideoResponse{}, ErrPermissionDenied
	}

	if err := s.roomRepo.UpdateVideoUrl(ctx, &room.UpdateVideoUrlParams{
		RoomId:   roomId,
		VideoUrl: params.VideoUrl,
	}); err != nil {
		return ChangeVideoResponse{}, fmt.Errorf("failed to update video url: %w", err)
	}

	r.VideoUrl = params.VideoUrl
	r.CurrentTime = 0
	s.persistRoom(ctx, &r)

	return ChangeVideoResponse{
		VideoUrl: params.VideoUrl,
		AllConns: s.getMemberConns(r.Members, ""),
	}, nil
}
