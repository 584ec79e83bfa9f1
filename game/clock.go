package game

import "time"

// ClockKeeper tracks the remaining time of both seats. It is not safe for concurrent
// use; the owning Room serialises access.
type ClockKeeper struct {
	remaining [seatCount]time.Duration
	lastMove  time.Time
	running   bool
}

// ClockSnapshot is the wire view of a ClockKeeper. Durations are in milliseconds.
// LastMoveAt stays nil until the clocks have started.
type ClockSnapshot struct {
	WhiteMs    int64      `json:"white_ms"`
	BlackMs    int64      `json:"black_ms"`
	Running    bool       `json:"running"`
	LastMoveAt *time.Time `json:"last_move_at,omitempty"`
}

func NewClockKeeper(budget time.Duration) *ClockKeeper {
	return &ClockKeeper{remaining: [seatCount]time.Duration{budget, budget}}
}

// Start begins charging time from now. Calling it on a running clock is a no-op.
func (k *ClockKeeper) Start(now time.Time) {
	if k.running {
		return
	}
	k.running = true
	k.lastMove = now
}

// Stop freezes both clocks.
func (k *ClockKeeper) Stop() {
	k.running = false
}

func (k *ClockKeeper) Running() bool {
	return k.running
}

// Peek returns what seat would have left if charged at now, without committing.
func (k *ClockKeeper) Peek(seat Color, now time.Time) time.Duration {
	left := k.remaining[seat.index()]
	if !k.running {
		return left
	}
	if elapsed := now.Sub(k.lastMove); elapsed > 0 {
		left -= elapsed
	}
	if left < 0 {
		return 0
	}
	return left
}

// Charge subtracts the time elapsed since the last accepted move from seat and restarts
// the interval at now. The result never goes below zero.
func (k *ClockKeeper) Charge(seat Color, now time.Time) time.Duration {
	left := k.Peek(seat, now)
	k.remaining[seat.index()] = left
	if k.running && now.After(k.lastMove) {
		k.lastMove = now
	}
	return left
}

func (k *ClockKeeper) Remaining(seat Color) time.Duration {
	return k.remaining[seat.index()]
}

// Deadline is the instant at which seat flags if it does not move. ok is false while
// the clock is stopped.
func (k *ClockKeeper) Deadline(seat Color) (time.Time, bool) {
	if !k.running {
		return time.Time{}, false
	}
	return k.lastMove.Add(k.remaining[seat.index()]), true
}

func (k *ClockKeeper) Snapshot() ClockSnapshot {
	snap := ClockSnapshot{
		WhiteMs: k.remaining[White.index()].Milliseconds(),
		BlackMs: k.remaining[Black.index()].Milliseconds(),
		Running: k.running,
	}
	if !k.lastMove.IsZero() {
		last := k.lastMove
		snap.LastMoveAt = &last
	}
	return snap
}
