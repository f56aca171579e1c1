package inmemory

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/watchparty/server/internal/repository/connection"
)

// repo indexes live connections both ways (conn <-> connectionId) and
// keeps the connectionId -> roomId back-reference so disconnect handling
// never scans rooms for a membership.
type repo struct {
	connList map[*websocket.Conn]string
	idList   map[string]*websocket.Conn
	roomList map[string]string
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		connList: make(map[*websocket.Conn]string),
		idList:   make(map[string]*websocket.Conn),
		roomList: make(map[string]string),
	}
}

func (r *repo) Add(conn *websocket.Conn, connectionId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connList[conn] != "" || r.idList[connectionId] != nil {
		return connection.ErrAlreadyExists
	}

	r.connList[conn] = connectionId
	r.idList[connectionId] = conn

	return nil
}

// SetRoomId records the room the connection belongs to. Called by the
// coordinator inside the room lock, together with the members mutation.
func (r *repo) SetRoomId(connectionId string, roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.idList[connectionId] == nil {
		return connection.ErrNotFound
	}

	r.roomList[connectionId] = roomId

	return nil
}

func (r *repo) ClearRoomId(connectionId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.roomList[connectionId]; !ok {
		return connection.ErrNotFound
	}

	delete(r.roomList, connectionId)

	return nil
}

func (r *repo) GetRoomId(connectionId string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomId, ok := r.roomList[connectionId]
	if !ok {
		return "", connection.ErrNotFound
	}

	return roomId, nil
}

func (r *repo) GetConn(connectionId string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.idList[connectionId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}

func (r *repo) GetConnectionId(conn *websocket.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connectionId, ok := r.connList[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	return connectionId, nil
}

func (r *repo) RemoveByConn(conn *websocket.Conn) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	connectionId, ok := r.connList[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, connectionId)
	delete(r.roomList, connectionId)

	return connectionId, nil
}

func (r *repo) RemoveByConnectionId(connectionId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.idList[connectionId]
	if !ok {
		return connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, connectionId)
	delete(r.roomList, connectionId)

	return nil
}
