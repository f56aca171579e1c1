package room

import "sync"

// roomLocks hands out one mutex per roomId so events for the same room are
// applied strictly in arrival order while different rooms never contend.
// Entries are refcounted and dropped once the last holder releases, so the
// map does not grow with dead rooms.
type roomLocks struct {
	mu    sync.Mutex
	locks map[string]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

func newRoomLocks() roomLocks {
	return roomLocks{locks: make(map[string]*roomLock)}
}

func (l *roomLocks) lock(roomId string) func() {
	l.mu.Lock()
	entry, ok := l.locks[roomId]
	if !ok {
		entry = &roomLock{}
		l.locks[roomId] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, roomId)
		}
		l.mu.Unlock()
	}
}

// lockRoom acquires the per-room mutex and returns the release func.
func (s *service) lockRoom(roomId string) func() {
	return s.locks.lock(roomId)
}
