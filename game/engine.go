//go:generate go run go.uber.org/mock/mockgen -source=engine.go -destination=../mocks/mock_engine.go -package=mocks
package game

import (
	"fmt"
	"strings"
)

// Position is an opaque game state produced by a RuleEngine (a FEN string for chess).
type Position string

// MoveIntent is a client-proposed move that has not been validated yet.
type MoveIntent struct {
	From      string `json:"from" validate:"required,len=2"`
	To        string `json:"to" validate:"required,len=2"`
	Promotion string `json:"promotion,omitempty" validate:"omitempty,oneof=q r b n"`
}

// UCI renders the intent in long algebraic form, e.g. "e7e8q".
func (m MoveIntent) UCI() string {
	return strings.ToLower(m.From + m.To + m.Promotion)
}

func (m MoveIntent) String() string {
	return m.UCI()
}

// ParseUCI splits "e2e4" / "e7e8q" into a MoveIntent.
func ParseUCI(s string) (MoveIntent, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return MoveIntent{}, fmt.Errorf("%w: %q is not a uci move", ErrIllegalMove, s)
	}
	intent := MoveIntent{From: s[0:2], To: s[2:4]}
	if len(s) == 5 {
		intent.Promotion = s[4:]
	}
	return intent, nil
}

// Transition is the verdict of a RuleEngine for an accepted move.
type Transition struct {
	Position Position
	Notation string
	// Result is nil while the game goes on.
	Result *Result
}

// RuleEngine validates moves. Implementations must be pure: the same position and
// intent always produce the same transition.
type RuleEngine interface {
	Initial() Position
	Turn(pos Position) (Color, error)
	Apply(pos Position, intent MoveIntent) (Transition, error)
}
