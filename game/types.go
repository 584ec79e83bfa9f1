package game

import (
	"strings"
	"time"
)

type Color string

const (
	White     Color = "white"
	Black     Color = "black"
	NoColor   Color = ""
	seatCount       = 2
)

// ParseColor accepts "white"/"w" and "black"/"b". An empty string yields NoColor.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return NoColor, nil
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	default:
		return NoColor, ErrInvalidColor
	}
}

func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	}
	return NoColor
}

func (c Color) index() int {
	if c == Black {
		return 1
	}
	return 0
}

func (c Color) valid() bool {
	return c == White || c == Black
}

type State int

const (
	WaitingForOpponent State = iota
	InProgress
	Finished
)

func (s State) String() string {
	return []string{"waiting_for_opponent", "in_progress", "finished"}[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Reason string

const (
	ReasonCheckmate            Reason = "checkmate"
	ReasonStalemate            Reason = "stalemate"
	ReasonInsufficientMaterial Reason = "insufficient_material"
	ReasonRepetition           Reason = "repetition"
	ReasonMoveRule             Reason = "move_rule"
	ReasonDraw                 Reason = "draw"
	ReasonFlagFall             Reason = "flag_fall"
	ReasonResignation          Reason = "resignation"
	ReasonAbandonment          Reason = "abandonment"
)

// Result describes how a game ended. Winner is NoColor for a draw.
type Result struct {
	Winner Color  `json:"winner"`
	Reason Reason `json:"reason"`
}

// Seat holds the occupant of one colour. An empty ConnectionID means the seat is free.
type Seat struct {
	Color        Color  `json:"color"`
	ConnectionID string `json:"-"`
	DisplayName  string `json:"display_name"`
}

func (s Seat) Occupied() bool {
	return s.ConnectionID != ""
}

// MoveRecord is one entry of the append-only move log.
type MoveRecord struct {
	Number   int       `json:"number"`
	Color    Color     `json:"color"`
	UCI      string    `json:"uci"`
	Notation string    `json:"notation"`
	Position Position  `json:"position"`
	At       time.Time `json:"at"`
}
