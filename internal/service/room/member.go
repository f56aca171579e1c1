package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/watchparty/server/internal/repository/room"
)

type ConnectMemberParams struct {
	Conn         *websocket.Conn
	ConnectionId string
}

// ConnectMember registers a freshly upgraded connection. The connection
// belongs to no room until it joins one.
func (s *service) ConnectMember(ctx context.Context, params *ConnectMemberParams) error {
	if err := s.connRepo.Add(params.Conn, params.ConnectionId); err != nil {
		s.logger.InfoContext(ctx, "failed to register connection", "error", err)
		return err
	}

	return nil
}

// RemoveConnection drops the connection from the registry after the
// disconnect flow has run. Unknown connections are ignored.
func (s *service) RemoveConnection(ctx context.Context, connectionId string) {
	if err := s.connRepo.RemoveByConnectionId(connectionId); err != nil {
		s.logger.DebugContext(ctx, "failed to remove connection", "error", err)
	}
}

type DisconnectMemberParams struct {
	ConnectionId string
}

type DisconnectMemberResponse struct {
	RoomId         string
	WasMember      bool
	IsRoomDeleted  bool
	LeftMemberId   string
	NewHost        *Member
	MemberList     []Member
	RemainingConns []*websocket.Conn
}

// DisconnectMember removes the connection from its room. If the departed
// connection was host, authority moves to the earliest-joined remaining
// member; if the room empties, it is deleted. A connection that belongs to
// no room is a silent no-op, not an error.
func (s *service) DisconnectMember(ctx context.Context, params *DisconnectMemberParams) (DisconnectMemberResponse, error) {
	roomId, err := s.connRepo.GetRoomId(params.ConnectionId)
	if err != nil {
		s.logger.DebugContext(ctx, "disconnect for connection without room",
			"connection_id", params.ConnectionId)
		return DisconnectMemberResponse{}, nil
	}

	return s.leaveRoom(ctx, roomId, params.ConnectionId)
}

// leaveRoom removes the connection from the given room, promoting a new
// host or deleting the room as needed. It takes the room lock itself.
func (s *service) leaveRoom(ctx context.Context, roomId string, connectionId string) (DisconnectMemberResponse, error) {
	unlock := s.lockRoom(roomId)
	defer unlock()

	removed, err := s.roomRepo.RemoveMemberFromList(ctx, &room.RemoveMemberFromListParams{
		RoomId:       roomId,
		ConnectionId: connectionId,
	})
	if err != nil {
		// already cleaned up concurrently
		if errors.Is(err, room.ErrRoomNotFound) || errors.Is(err, room.ErrMemberNotFound) {
			s.connRepo.ClearRoomId(connectionId)
			return DisconnectMemberResponse{}, nil
		}
		return DisconnectMemberResponse{}, fmt.Errorf("failed to remove member: %w", err)
	}

	s.connRepo.ClearRoomId(connectionId)

	r, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		return DisconnectMemberResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	if len(r.Members) == 0 {
		if err := s.roomRepo.RemoveRoom(ctx, roomId); err != nil {
			return DisconnectMemberResponse{}, fmt.Errorf("failed to remove room: %w", err)
		}

		s.deletePersistedRoom(ctx, roomId)

		return DisconnectMemberResponse{
			RoomId:        roomId,
			WasMember:     true,
			IsRoomDeleted: true,
			LeftMemberId:  removed.ConnectionId,
		}, nil
	}

	var newHost *Member
	if r.HostConnectionId == connectionId {
		// failover tie-break: earliest-joined remaining member
		successor := r.Members[0]
		if err := s.roomRepo.UpdateHost(ctx, &room.UpdateHostParams{
			RoomId:           roomId,
			HostConnectionId: successor.ConnectionId,
			HostUsername:     successor.Username,
		}); err != nil {
			return DisconnectMemberResponse{}, fmt.Errorf("failed to update host: %w", err)
		}

		r.HostConnectionId = successor.ConnectionId
		r.HostUsername = successor.Username
		newHost = &Member{
			Username: successor.Username,
			UserId:   successor.ConnectionId,
		}

		s.logger.InfoContext(ctx, "host reassigned",
			"room_id", roomId, "host_connection_id", successor.ConnectionId)
	}

	s.persistRoom(ctx, &r)

	return DisconnectMemberResponse{
		RoomId:         roomId,
		WasMember:      true,
		LeftMemberId:   removed.ConnectionId,
		NewHost:        newHost,
		MemberList:     memberList(r.Members),
		RemainingConns: s.getMemberConns(r.Members, ""),
	}, nil
}
