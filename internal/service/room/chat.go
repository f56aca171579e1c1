package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/watchparty/server/internal/repository/room"
)

type SendMessageParams struct {
	RoomId   string
	SenderId string
	Username string
	Message  string
}

type SendMessageResponse struct {
	Username  string
	Message   string
	Timestamp time.Time
	SenderId  string
	AllConns  []*websocket.Conn
}

// SendMessage fans a chat message out to the whole room, sender included.
// Messages are not stored; the timestamp is assigned here, never trusted
// from the client. Any member may send — there is no host check.
func (s *service) SendMessage(ctx context.Context, params *SendMessageParams) (SendMessageResponse, error) {
	roomId := normalizeRoomId(params.RoomId)

	unlock := s.lockRoom(roomId)
	defer unlock()

	r, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return SendMessageResponse{}, ErrRoomNotFound
		}
		return SendMessageResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	if !isMember(r.Members, params.SenderId) {
		return SendMessageResponse{}, ErrPermissionDenied
	}

	return SendMessageResponse{
		Username:  params.Username,
		Message:   params.Message,
		Timestamp: time.Now().UTC(),
		SenderId:  params.SenderId,
		AllConns:  s.getMemberConns(r.Members, ""),
	}, nil
}
