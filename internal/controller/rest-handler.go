package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/watchparty/server/internal/service/room"
)

func (c controller) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (c controller) healthz(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"timestamp": time.Now().UTC(),
	})
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	roomInfo, err := c.roomService.GetRoomInfo(r.Context(), roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			c.writeJSON(w, http.StatusNotFound, map[string]any{"error": "Room not found"})
			return
		}

		c.logger.WarnContext(r.Context(), "failed to get room info", "error", err)
		c.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Server error"})
		return
	}

	c.writeJSON(w, http.StatusOK, roomInfo)
}

func (c controller) deleteRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	if _, err := c.roomService.CloseRoom(r.Context(), roomId); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			c.writeJSON(w, http.StatusNotFound, map[string]any{"error": "Room not found"})
			return
		}

		c.logger.WarnContext(r.Context(), "failed to close room", "error", err)
		c.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Server error"})
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
