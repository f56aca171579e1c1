package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/watchparty/server/internal/repository/room"
)

type JoinRoomParams struct {
	RoomId       string
	ConnectionId string
	Username     string
}

type JoinRoomResponse struct {
	RoomState    RoomState
	JoinedMember Member
	MemberList   []Member
	OthersConns  []*websocket.Conn
	AllConns     []*websocket.Conn
	LeftRoom     *DisconnectMemberResponse
	IsNewRoom    bool
	Rejoined     bool
}

// JoinRoom adds the connection to the room, creating the room with the
// joiner as host when it does not exist yet. A connection owns at most one
// room, so joining a different room runs the departure flow on the old one
// first; LeftRoom carries its outcome. A join repeated by the same
// connection mutates nothing but still returns the full state so a
// retrying client converges.
func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	roomId := normalizeRoomId(params.RoomId)

	var leftRoom *DisconnectMemberResponse
	if oldRoomId, err := s.connRepo.GetRoomId(params.ConnectionId); err == nil && oldRoomId != roomId {
		left, err := s.leaveRoom(ctx, oldRoomId, params.ConnectionId)
		if err != nil {
			return JoinRoomResponse{}, fmt.Errorf("failed to leave previous room: %w", err)
		}
		if left.WasMember {
			leftRoom = &left
		}
	}

	unlock := s.lockRoom(roomId)
	defer unlock()

	r, isNew, err := s.roomRepo.CreateOrGetRoom(ctx, &room.CreateOrGetRoomParams{
		RoomId:              roomId,
		CreatorConnectionId: params.ConnectionId,
		CreatorUsername:     params.Username,
	})
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to create or get room: %w", err)
	}

	rejoined := false
	if !isNew {
		if isMember(r.Members, params.ConnectionId) {
			s.logger.InfoContext(ctx, "connection already in room, ignoring join",
				"room_id", roomId, "connection_id", params.ConnectionId)
			rejoined = true
		} else {
			if len(r.Members) >= s.membersLimit {
				return JoinRoomResponse{}, ErrMembersLimitReached
			}

			if err := s.roomRepo.AddMemberToList(ctx, &room.AddMemberToListParams{
				RoomId:       roomId,
				ConnectionId: params.ConnectionId,
				Username:     params.Username,
			}); err != nil && !errors.Is(err, room.ErrMemberAlreadyExists) {
				return JoinRoomResponse{}, fmt.Errorf("failed to add member: %w", err)
			}

			r, err = s.roomRepo.GetRoom(ctx, roomId)
			if err != nil {
				return JoinRoomResponse{}, fmt.Errorf("failed to get room: %w", err)
			}
		}
	}

	if err := s.connRepo.SetRoomId(params.ConnectionId, roomId); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to index connection room: %w", err)
	}

	s.persistRoom(ctx, &r)

	return JoinRoomResponse{
		RoomState: RoomState{
			VideoUrl:     r.VideoUrl,
			CurrentTime:  r.CurrentTime,
			IsPlaying:    r.IsPlaying,
			IsHost:       params.ConnectionId == r.HostConnectionId,
			HostUsername: r.HostUsername,
		},
		JoinedMember: Member{
			Username: params.Username,
			UserId:   params.ConnectionId,
		},
		MemberList:  memberList(r.Members),
		OthersConns: s.getMemberConns(r.Members, params.ConnectionId),
		AllConns:    s.getMemberConns(r.Members, ""),
		LeftRoom:    leftRoom,
		IsNewRoom:   isNew,
		Rejoined:    rejoined,
	}, nil
}

// GetRoomInfo is the read-only lookup behind the REST room route.
func (s *service) GetRoomInfo(ctx context.Context, roomId string) (RoomInfo, error) {
	r, err := s.roomRepo.GetRoom(ctx, normalizeRoomId(roomId))
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return RoomInfo{}, ErrRoomNotFound
		}
		return RoomInfo{}, fmt.Errorf("failed to get room: %w", err)
	}

	return RoomInfo{
		RoomId:       r.Id,
		HostUsername: r.HostUsername,
		UserCount:    len(r.Members),
		VideoUrl:     r.VideoUrl,
	}, nil
}

type CloseRoomResponse struct {
	Conns []*websocket.Conn
}

// CloseRoom tears a room down administratively, dropping its state and the
// membership index for every connection in it. The connections themselves
// stay open; their later disconnects become no-ops.
func (s *service) CloseRoom(ctx context.Context, roomId string) (CloseRoomResponse, error) {
	roomId = normalizeRoomId(roomId)

	unlock := s.lockRoom(roomId)
	defer unlock()

	r, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return CloseRoomResponse{}, ErrRoomNotFound
		}
		return CloseRoomResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	for _, m := range r.Members {
		s.connRepo.ClearRoomId(m.ConnectionId)
	}

	if err := s.roomRepo.RemoveRoom(ctx, roomId); err != nil {
		return CloseRoomResponse{}, fmt.Errorf("failed to remove room: %w", err)
	}

	s.deletePersistedRoom(ctx, roomId)

	return CloseRoomResponse{
		Conns: s.getMemberConns(r.Members, ""),
	}, nil
}
