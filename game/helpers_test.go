package game

import (
	"strings"
	"sync"
	"time"
)

// stubEngine treats a position as the space separated list of moves played so far.
// White moves on even counts. A move whose origin equals its destination is illegal and
// the move "a1a8" ends the game in favour of the mover.
type stubEngine struct{}

func (stubEngine) Initial() Position { return "start" }

func (stubEngine) Turn(pos Position) (Color, error) {
	if len(strings.Fields(string(pos)))%2 == 1 {
		return White, nil
	}
	return Black, nil
}

func (e stubEngine) Apply(pos Position, intent MoveIntent) (Transition, error) {
	if intent.From == intent.To {
		return Transition{}, ErrIllegalMove
	}
	mover, _ := e.Turn(pos)
	tr := Transition{
		Position: Position(string(pos) + " " + intent.UCI()),
		Notation: strings.ToUpper(intent.To),
	}
	if intent.UCI() == "a1a8" {
		tr.Result = &Result{Winner: mover, Reason: ReasonCheckmate}
	}
	return tr, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRegistry(clock *fakeClock) *Registry {
	return NewRegistry(Settings{
		Engine:      stubEngine{},
		ClockBudget: time.Minute,
		Now:         clock.Now,
	})
}

// startedRoom returns a room with "alice" as white on conn-a and "bob" as black on conn-b.
func startedRoom(clock *fakeClock) (*Registry, *Room) {
	registry := newTestRegistry(clock)
	room, _, err := registry.Create("conn-a", "alice", White)
	if err != nil {
		panic(err)
	}
	if _, _, err := room.Join("conn-b", "bob", NoColor); err != nil {
		panic(err)
	}
	return registry, room
}

func mv(from, to string) MoveIntent {
	return MoveIntent{From: from, To: to}
}
