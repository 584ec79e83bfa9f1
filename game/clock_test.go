package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClockKeeper_DoesNotRunBeforeStart(t *testing.T) {
	req := require.New(t)
	clock := newFakeClock()
	k := NewClockKeeper(time.Minute)

	clock.Advance(30 * time.Second)

	req.False(k.Running())
	req.Equal(time.Minute, k.Peek(White, clock.Now()))
	req.Equal(time.Minute, k.Charge(White, clock.Now()))

	_, ok := k.Deadline(White)
	req.False(ok)
}

func TestClockKeeper_ChargesElapsedTimeToMover(t *testing.T) {
	req := require.New(t)
	clock := newFakeClock()
	k := NewClockKeeper(time.Minute)
	k.Start(clock.Now())

	// White thinks for 10s
	clock.Advance(10 * time.Second)
	req.Equal(50*time.Second, k.Charge(White, clock.Now()))

	// Black thinks for 4s, white is not charged for it
	clock.Advance(4 * time.Second)
	req.Equal(56*time.Second, k.Charge(Black, clock.Now()))
	req.Equal(50*time.Second, k.Remaining(White))

	snap := k.Snapshot()
	req.Equal(int64(50_000), snap.WhiteMs)
	req.Equal(int64(56_000), snap.BlackMs)
	req.True(snap.Running)
}

func TestClockKeeper_PeekDoesNotCommit(t *testing.T) {
	req := require.New(t)
	clock := newFakeClock()
	k := NewClockKeeper(time.Minute)
	k.Start(clock.Now())

	clock.Advance(20 * time.Second)

	req.Equal(40*time.Second, k.Peek(White, clock.Now()))
	req.Equal(time.Minute, k.Remaining(White))
}

func TestClockKeeper_NeverGoesNegative(t *testing.T) {
	req := require.New(t)
	clock := newFakeClock()
	k := NewClockKeeper(time.Minute)
	k.Start(clock.Now())

	previous := k.Remaining(White)
	for i := 0; i < 5; i++ {
		clock.Advance(25 * time.Second)
		left := k.Charge(White, clock.Now())
		req.LessOrEqual(left, previous)
		req.GreaterOrEqual(left, time.Duration(0))
		previous = left
	}

	req.Equal(time.Duration(0), k.Remaining(White))
}

func TestClockKeeper_Deadline(t *testing.T) {
	req := require.New(t)
	clock := newFakeClock()
	k := NewClockKeeper(time.Minute)
	start := clock.Now()
	k.Start(start)

	deadline, ok := k.Deadline(White)
	req.True(ok)
	req.Equal(start.Add(time.Minute), deadline)

	k.Stop()
	_, ok = k.Deadline(White)
	req.False(ok)
}

func TestClockKeeper_SnapshotOmitsLastMoveBeforeStart(t *testing.T) {
	req := require.New(t)
	clock := newFakeClock()
	k := NewClockKeeper(time.Minute)

	b, err := json.Marshal(k.Snapshot())
	req.NoError(err)
	req.NotContains(string(b), "last_move_at")

	k.Start(clock.Now())
	snap := k.Snapshot()
	req.NotNil(snap.LastMoveAt)
	req.Equal(clock.Now(), *snap.LastMoveAt)
}

func TestChatLog_AppendKeepsOrder(t *testing.T) {
	req := require.New(t)
	var log ChatLog

	log.Append(ChatEntry{DisplayName: "alice", Text: "hi"})
	log.Append(ChatEntry{DisplayName: "bob", Text: "hello"})

	all := log.All()
	req.Len(all, 2)
	req.Equal("hi", all[0].Text)
	req.Equal("hello", all[1].Text)

	// All returns a copy
	all[0].Text = "changed"
	req.Equal("hi", log.All()[0].Text)
	req.Equal(2, log.Len())
}
