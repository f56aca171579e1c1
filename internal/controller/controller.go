package controller

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/watchparty/server/internal/service/room"
	"github.com/watchparty/server/pkg/validator"
	"github.com/watchparty/server/pkg/wsrouter"
)

type iRoomService interface {
	ConnectMember(context.Context, *room.ConnectMemberParams) error
	RemoveConnection(ctx context.Context, connectionId string)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	PlayVideo(context.Context, *room.UpdatePlayerStateParams) (room.UpdatePlayerStateResponse, error)
	PauseVideo(context.Context, *room.UpdatePlayerStateParams) (room.UpdatePlayerStateResponse, error)
	SeekVideo(context.Context, *room.UpdatePlayerStateParams) (room.UpdatePlayerStateResponse, error)
	ChangeVideo(context.Context, *room.ChangeVideoParams) (room.ChangeVideoResponse, error)
	SendMessage(context.Context, *room.SendMessageParams) (room.SendMessageResponse, error)
	DisconnectMember(context.Context, *room.DisconnectMemberParams) (room.DisconnectMemberResponse, error)
	GetRoomInfo(ctx context.Context, roomId string) (room.RoomInfo, error)
	CloseRoom(ctx context.Context, roomId string) (room.CloseRoomResponse, error)
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	logger      *slog.Logger
	wsmux       *wsrouter.WSRouter
	writeLocks  *sync.Map
}

func NewController(roomService iRoomService, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		validate:    validator.NewValidator(),
		logger:      logger,
		writeLocks:  &sync.Map{},
	}
	c.wsmux = c.getWSRouter()

	return c
}
