package room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/watchparty/server/internal/repository/room"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrInvalidCurrentTime  = errors.New("invalid current time")
	ErrMembersLimitReached = errors.New("members limit reached")
)

type iRoomRepo interface {
	GetRoom(context.Context, string) (room.Room, error)
	CreateOrGetRoom(context.Context, *room.CreateOrGetRoomParams) (room.Room, bool, error)
	AddMemberToList(context.Context, *room.AddMemberToListParams) error
	RemoveMemberFromList(context.Context, *room.RemoveMemberFromListParams) (room.Member, error)
	UpdatePlayerState(context.Context, *room.UpdatePlayerStateParams) error
	UpdateVideoUrl(context.Context, *room.UpdateVideoUrlParams) error
	UpdateHost(context.Context, *room.UpdateHostParams) error
	RemoveRoom(context.Context, string) error
}

type iConnRepo interface {
	Add(conn *websocket.Conn, connectionId string) error
	SetRoomId(connectionId string, roomId string) error
	ClearRoomId(connectionId string) error
	GetRoomId(connectionId string) (string, error)
	GetConn(connectionId string) (*websocket.Conn, error)
	GetConnectionId(conn *websocket.Conn) (string, error)
	RemoveByConn(conn *websocket.Conn) (string, error)
	RemoveByConnectionId(connectionId string) error
}

// RoomPersistence is the optional durable mirror of room state. The
// service works identically without one.
type RoomPersistence interface {
	SaveRoom(context.Context, *room.Room) error
	DeleteRoom(context.Context, string) error
}

type Config struct {
	MembersLimit int
}

type service struct {
	roomRepo     iRoomRepo
	connRepo     iConnRepo
	persistence  RoomPersistence
	logger       *slog.Logger
	membersLimit int
	locks        roomLocks
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, persistence RoomPersistence, logger *slog.Logger, cfg *Config) *service {
	return &service{
		roomRepo:     roomRepo,
		connRepo:     connRepo,
		persistence:  persistence,
		logger:       logger,
		membersLimit: cfg.MembersLimit,
		locks:        newRoomLocks(),
	}
}
