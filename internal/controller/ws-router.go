package controller

import (
	"github.com/watchparty/server/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.wsRequestIdMw())
	mux.Use(c.wsLoggingMw())

	// room
	mux.Handle("join-room", c.handleJoinRoom)

	// player
	mux.Handle("video-play", c.handleVideoPlay)
	mux.Handle("video-pause", c.handleVideoPause)
	mux.Handle("video-seek", c.handleVideoSeek)
	mux.Handle("video-change", c.handleVideoChange)

	// chat
	mux.Handle("send-message", c.handleSendMessage)

	return mux
}
