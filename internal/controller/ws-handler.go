package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/watchparty/server/internal/service/room"
)

// serveWS upgrades the connection, registers it under a server-minted
// connectionId and runs the message loop. The disconnect flow runs on the
// way out no matter how the loop ends.
func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	connectionId := uuid.NewString()
	if err := c.roomService.ConnectMember(r.Context(), &room.ConnectMemberParams{
		Conn:         conn,
		ConnectionId: connectionId,
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to register connection", "error", err)
		conn.Close()
		return
	}
	defer c.writeLocks.Delete(conn)
	defer c.disconnect(r.Context(), connectionId)

	ctx := context.WithValue(r.Context(), connectionIdCtxKey, connectionId)
	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(r.Context(), "connection closed", "connection_id", connectionId, "error", err)
	}
}

func (c controller) disconnect(ctx context.Context, connectionId string) {
	resp, err := c.roomService.DisconnectMember(ctx, &room.DisconnectMemberParams{
		ConnectionId: connectionId,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to disconnect member", "connection_id", connectionId, "error", err)
	}

	c.broadcastDeparture(ctx, &resp)

	c.roomService.RemoveConnection(ctx, connectionId)
}

// broadcastDeparture notifies the remaining members of a room the
// connection left, whether by disconnecting or by joining another room.
func (c controller) broadcastDeparture(ctx context.Context, resp *room.DisconnectMemberResponse) {
	if !resp.WasMember || resp.IsRoomDeleted {
		return
	}

	if resp.NewHost != nil {
		c.broadcast(ctx, resp.RemainingConns, &Output{
			Type: "new-host",
			Payload: map[string]any{
				"username": resp.NewHost.Username,
			},
		})
	}

	c.broadcast(ctx, resp.RemainingConns, &Output{
		Type:    "user-list",
		Payload: resp.MemberList,
	})
	c.broadcast(ctx, resp.RemainingConns, &Output{
		Type: "user-left",
		Payload: map[string]any{
			"userId": resp.LeftMemberId,
		},
	})
}

// unmarshalAndValidate parses the payload into dest and validates it. On
// failure an "error" event goes to the sender and false is returned.
func (c controller) unmarshalAndValidate(ctx context.Context, conn *websocket.Conn, payload json.RawMessage, dest any) bool {
	if err := json.Unmarshal(payload, dest); err != nil {
		c.logger.DebugContext(ctx, "failed to unmarshal payload", "error", err)
		c.writeError(ctx, conn, "invalid payload")
		return false
	}

	if validationErrors, ok := c.validate.Validate(dest); !ok {
		c.logger.DebugContext(ctx, "payload validation failed", "errors", validationErrors)
		c.writeError(ctx, conn, validationErrors[0].Message)
		return false
	}

	return true
}

type JoinRoomInput struct {
	RoomId   string `json:"roomId" validate:"required,min=1,max=32"`
	Username string `json:"username" validate:"required,min=1,max=64"`
}

func (c controller) handleJoinRoom(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input JoinRoomInput
	if !c.unmarshalAndValidate(ctx, conn, payload, &input) {
		return nil
	}

	joinRoomResp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		RoomId:       input.RoomId,
		ConnectionId: c.getConnectionIdFromCtx(ctx),
		Username:     input.Username,
	})
	if err != nil {
		if errors.Is(err, room.ErrMembersLimitReached) {
			c.writeError(ctx, conn, "room is full")
			return nil
		}

		c.logger.WarnContext(ctx, "failed to join room", "error", err)
		c.writeError(ctx, conn, "Failed to join room")
		return nil
	}

	if joinRoomResp.LeftRoom != nil {
		c.broadcastDeparture(ctx, joinRoomResp.LeftRoom)
	}

	c.unicast(ctx, conn, &Output{
		Type:    "room-state",
		Payload: joinRoomResp.RoomState,
	})

	if !joinRoomResp.Rejoined {
		c.broadcast(ctx, joinRoomResp.OthersConns, &Output{
			Type: "user-joined",
			Payload: map[string]any{
				"username": joinRoomResp.JoinedMember.Username,
				"userId":   joinRoomResp.JoinedMember.UserId,
			},
		})
	}

	c.broadcast(ctx, joinRoomResp.AllConns, &Output{
		Type:    "user-list",
		Payload: joinRoomResp.MemberList,
	})

	return nil
}

type PlayerStateInput struct {
	RoomId      string  `json:"roomId" validate:"required,max=32"`
	CurrentTime float64 `json:"currentTime" validate:"gte=0"`
}

type playerStateFunc func(context.Context, *room.UpdatePlayerStateParams) (room.UpdatePlayerStateResponse, error)

func (c controller) handleVideoPlay(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	return c.handlePlayerState(ctx, conn, payload, "video-play", c.roomService.PlayVideo)
}

func (c controller) handleVideoPause(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	return c.handlePlayerState(ctx, conn, payload, "video-pause", c.roomService.PauseVideo)
}

func (c controller) handleVideoSeek(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	return c.handlePlayerState(ctx, conn, payload, "video-seek", c.roomService.SeekVideo)
}

func (c controller) handlePlayerState(ctx context.Context, conn *websocket.Conn, payload json.RawMessage, eventType string, update playerStateFunc) error {
	var input PlayerStateInput
	if !c.unmarshalAndValidate(ctx, conn, payload, &input) {
		return nil
	}

	resp, err := update(ctx, &room.UpdatePlayerStateParams{
		RoomId:      input.RoomId,
		SenderId:    c.getConnectionIdFromCtx(ctx),
		CurrentTime: input.CurrentTime,
	})
	if err != nil {
		c.handlePlayerError(ctx, conn, eventType, err)
		return nil
	}

	c.broadcast(ctx, resp.OthersConns, &Output{
		Type: eventType,
		Payload: map[string]any{
			"currentTime": resp.CurrentTime,
		},
	})

	return nil
}

// handlePlayerError applies the uniform error policy: authorization and
// not-found drop silently, validation surfaces to the actor, anything else
// is internal and surfaces best-effort.
func (c controller) handlePlayerError(ctx context.Context, conn *websocket.Conn, eventType string, err error) {
	switch {
	case errors.Is(err, room.ErrPermissionDenied), errors.Is(err, room.ErrRoomNotFound):
		c.logger.DebugContext(ctx, "dropped unauthorized event", "type", eventType, "error", err)
	case errors.Is(err, room.ErrInvalidCurrentTime):
		c.writeError(ctx, conn, "currentTime must be non-negative")
	default:
		c.logger.WarnContext(ctx, "failed to handle event", "type", eventType, "error", err)
		c.writeError(ctx, conn, "internal error")
	}
}

type VideoChangeInput struct {
	RoomId   string `json:"roomId" validate:"required,max=32"`
	VideoUrl string `json:"videoUrl" validate:"required,max=2048"`
}

func (c controller) handleVideoChange(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input VideoChangeInput
	if !c.unmarshalAndValidate(ctx, conn, payload, &input) {
		return nil
	}

	changeVideoResp, err := c.roomService.ChangeVideo(ctx, &room.ChangeVideoParams{
		RoomId:   input.RoomId,
		SenderId: c.getConnectionIdFromCtx(ctx),
		VideoUrl: input.VideoUrl,
	})
	if err != nil {
		c.handlePlayerError(ctx, conn, "video-change", err)
		return nil
	}

	c.broadcast(ctx, changeVideoResp.AllConns, &Output{
		Type: "video-change",
		Payload: map[string]any{
			"videoUrl": changeVideoResp.VideoUrl,
		},
	})

	return nil
}

type SendMessageInput struct {
	RoomId   string `json:"roomId" validate:"required,max=32"`
	Username string `json:"username" validate:"required,max=64"`
	Message  string `json:"message" validate:"required,max=2000"`
}

func (c controller) handleSendMessage(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input SendMessageInput
	if !c.unmarshalAndValidate(ctx, conn, payload, &input) {
		return nil
	}

	sendMessageResp, err := c.roomService.SendMessage(ctx, &room.SendMessageParams{
		RoomId:   input.RoomId,
		SenderId: c.getConnectionIdFromCtx(ctx),
		Username: input.Username,
		Message:  input.Message,
	})
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) || errors.Is(err, room.ErrPermissionDenied) {
			c.logger.DebugContext(ctx, "dropped message for unknown room or non-member", "error", err)
			return nil
		}

		c.logger.WarnContext(ctx, "failed to send message", "error", err)
		c.writeError(ctx, conn, "internal error")
		return nil
	}

	c.broadcast(ctx, sendMessageResp.AllConns, &Output{
		Type: "receive-message",
		Payload: map[string]any{
			"username":  sendMessageResp.Username,
			"message":   sendMessageResp.Message,
			"timestamp": sendMessageResp.Timestamp,
			"userId":    sendMessageResp.SenderId,
		},
	})

	return nil
}
