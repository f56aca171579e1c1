package room

import (
	"context"
	"errors"
	"strings"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/slices"

	"github.com/watchparty/server/internal/repository/room"
)

// Room ids are case-normalized so "ab12" and "AB12" address the same room.
func normalizeRoomId(roomId string) string {
	return strings.ToUpper(roomId)
}

func isMember(members []room.Member, connectionId string) bool {
	return slices.IndexFunc(members, func(m room.Member) bool {
		return m.ConnectionId == connectionId
	}) != -1
}

func memberList(members []room.Member) []Member {
	list := make([]Member, 0, len(members))
	for _, m := range members {
		list = append(list, Member{
			Username: m.Username,
			UserId:   m.ConnectionId,
		})
	}

	return list
}

// getMemberConns resolves the conns to notify, skipping excludeId and any
// member whose connection is already gone. Resolution happens under the
// room lock so the broadcast decision is part of the atomic step; the
// actual writes are the caller's business.
func (s *service) getMemberConns(members []room.Member, excludeId string) []*websocket.Conn {
	conns := make([]*websocket.Conn, 0, len(members))
	for _, m := range members {
		if m.ConnectionId == excludeId {
			continue
		}

		conn, err := s.connRepo.GetConn(m.ConnectionId)
		if err != nil {
			continue
		}

		conns = append(conns, conn)
	}

	return conns
}

// persistRoom mirrors state to the durable store, best-effort. A mirror
// failure never fails the operation that produced the state.
func (s *service) persistRoom(ctx context.Context, r *room.Room) {
	if s.persistence == nil {
		return
	}

	if err := s.persistence.SaveRoom(ctx, r); err != nil {
		s.logger.WarnContext(ctx, "failed to persist room", "room_id", r.Id, "error", err)
	}
}

func (s *service) deletePersistedRoom(ctx context.Context, roomId string) {
	if s.persistence == nil {
		return
	}

	if err := s.persistence.DeleteRoom(ctx, roomId); err != nil && !errors.Is(err, room.ErrRoomNotFound) {
		s.logger.WarnContext(ctx, "failed to delete persisted room", "room_id", roomId, "error", err)
	}
}
