package controller

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// unicast writes one message to one connection, fire-and-forget. Writes to
// the same connection are serialized; gorilla allows a single writer at a
// time. A failed write closes the connection; the read loop's error path
// runs the disconnect flow.
func (c controller) unicast(ctx context.Context, conn *websocket.Conn, out *Output) {
	if conn == nil {
		return
	}

	entry, _ := c.writeLocks.LoadOrStore(conn, &sync.Mutex{})
	mu := entry.(*sync.Mutex)

	mu.Lock()
	err := conn.WriteJSON(out)
	mu.Unlock()

	if err != nil {
		c.logger.DebugContext(ctx, "failed to write message", "type", out.Type, "error", err)
		c.writeLocks.Delete(conn)
		conn.Close()
	}
}

func (c controller) broadcast(ctx context.Context, conns []*websocket.Conn, out *Output) {
	for _, conn := range conns {
		c.unicast(ctx, conn, out)
	}
}

func (c controller) writeError(ctx context.Context, conn *websocket.Conn, message string) {
	c.unicast(ctx, conn, &Output{
		Type:    "error",
		Payload: message,
	})
}
