package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/watchparty/server/internal/repository/room"
)

func (r repo) SaveRoom(ctx context.Context, params *room.Room) error {
	membersJSON, err := json.Marshal(params.Members)
	if err != nil {
		return fmt.Errorf("failed to marshal members: %w", err)
	}

	roomKey := r.getRoomKey(params.Id)
	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, roomKey,
		"room_id", params.Id,
		"video_url", params.VideoUrl,
		"current_time", params.CurrentTime,
		"is_playing", params.IsPlaying,
		"host_connection_id", params.HostConnectionId,
		"host_username", params.HostUsername,
		"members", membersJSON,
		"created_at", params.CreatedAt.Unix(),
	)
	pipe.Expire(ctx, roomKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	roomKey := r.getRoomKey(roomId)
	cmd := r.rc.HGetAll(ctx, roomKey)
	fields, err := cmd.Result()
	if err != nil {
		return room.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	if len(fields) == 0 {
		return room.Room{}, room.ErrRoomNotFound
	}

	var stored room.Room
	if err := cmd.Scan(&stored); err != nil {
		return room.Room{}, fmt.Errorf("failed to scan room: %w", err)
	}

	if membersJSON, ok := fields["members"]; ok {
		if err := json.Unmarshal([]byte(membersJSON), &stored.Members); err != nil {
			return room.Room{}, fmt.Errorf("failed to unmarshal members: %w", err)
		}
	}

	if createdAt, ok := fields["created_at"]; ok {
		unix, err := strconv.ParseInt(createdAt, 10, 64)
		if err != nil {
			return room.Room{}, fmt.Errorf("failed to parse created_at: %w", err)
		}
		stored.CreatedAt = time.Unix(unix, 0)
	}

	r.rc.Expire(ctx, roomKey, r.expireDuration)

	return stored, nil
}

func (r repo) DeleteRoom(ctx context.Context, roomId string) error {
	res, err := r.rc.Del(ctx, r.getRoomKey(roomId)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	if res == 0 {
		return room.ErrRoomNotFound
	}

	return nil
}
