package ws

import (
	"sync"
	"time"

	"github.com/judgegodwins/chess-rooms/game"
)

type graceKey struct {
	roomID string
	color  game.Color
}

// roomTimers holds at most one flag timer per room and one grace timer per vacated seat.
type roomTimers struct {
	mu    sync.Mutex
	flags map[string]*time.Timer
	grace map[graceKey]*time.Timer
}

func newRoomTimers() *roomTimers {
	return &roomTimers{
		flags: make(map[string]*time.Timer),
		grace: make(map[graceKey]*time.Timer),
	}
}

func (t *roomTimers) setFlag(roomID string, d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.flags[roomID]; ok {
		old.Stop()
	}
	t.flags[roomID] = time.AfterFunc(d, fn)
}

func (t *roomTimers) clearFlag(roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.flags[roomID]; ok {
		old.Stop()
		delete(t.flags, roomID)
	}
}

func (t *roomTimers) setGrace(roomID string, color game.Color, d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := graceKey{roomID, color}
	if old, ok := t.grace[key]; ok {
		old.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if t.grace[key] == timer {
			delete(t.grace, key)
		}
		t.mu.Unlock()
		fn()
	})
	t.grace[key] = timer
}

func (t *roomTimers) cancelGrace(roomID string, color game.Color) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := graceKey{roomID, color}
	if old, ok := t.grace[key]; ok {
		old.Stop()
		delete(t.grace, key)
	}
}

func (t *roomTimers) stopRoom(roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.flags[roomID]; ok {
		old.Stop()
		delete(t.flags, roomID)
	}
	for key, timer := range t.grace {
		if key.roomID == roomID {
			timer.Stop()
			delete(t.grace, key)
		}
	}
}

func (t *roomTimers) pending(roomID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	if _, ok := t.flags[roomID]; ok {
		n++
	}
	for key := range t.grace {
		if key.roomID == roomID {
			n++
		}
	}
	return n
}
