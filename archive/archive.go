// Package archive keeps a history record of finished games. Live rooms are never
// restored from it.
package archive

//go:generate go run go.uber.org/mock/mockgen -source=archive.go -destination=../mocks/mock_archive.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/judgegodwins/chess-rooms/game"
	"github.com/samber/lo"
)

var ErrNotFound = errors.New("game not archived")

type Record struct {
	RoomID        string        `json:"room_id"`
	White         string        `json:"white"`
	Black         string        `json:"black"`
	Winner        game.Color    `json:"winner"`
	Reason        game.Reason   `json:"reason"`
	FinalPosition game.Position `json:"final_position"`
	Moves         []string      `json:"moves"`
	FinishedAt    time.Time     `json:"finished_at"`
}

type Archiver interface {
	Save(ctx context.Context, record Record) error
	Load(ctx context.Context, roomID string) (Record, error)
}

// FromSnapshot builds the record of a finished room. ok is false while the game is
// still undecided.
func FromSnapshot(snap game.Snapshot, finishedAt time.Time) (Record, bool) {
	if snap.Result == nil {
		return Record{}, false
	}

	names := lo.SliceToMap(snap.Seats, func(s game.SeatView) (game.Color, string) {
		return s.Color, s.DisplayName
	})

	return Record{
		RoomID:        snap.RoomID,
		White:         names[game.White],
		Black:         names[game.Black],
		Winner:        snap.Result.Winner,
		Reason:        snap.Result.Reason,
		FinalPosition: snap.Position,
		Moves: lo.Map(snap.Moves, func(m game.MoveRecord, _ int) string {
			return m.Notation
		}),
		FinishedAt: finishedAt.UTC(),
	}, true
}
