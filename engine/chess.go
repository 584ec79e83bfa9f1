package engine

import (
	"fmt"

	"github.com/corentings/chess/v2"
	"github.com/judgegodwins/chess-rooms/game"
)

// DefaultFEN is the standard starting position.
const DefaultFEN game.Position = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Chess validates standard chess moves with corentings/chess. Positions are FEN strings.
type Chess struct {
	start game.Position
}

func NewChess() Chess {
	return Chess{start: DefaultFEN}
}

// NewChessFrom starts every game from fen instead of the standard position.
func NewChessFrom(fen game.Position) (Chess, error) {
	if _, err := load(fen); err != nil {
		return Chess{}, err
	}
	return Chess{start: fen}, nil
}

func (c Chess) Initial() game.Position {
	if c.start == "" {
		return DefaultFEN
	}
	return c.start
}

func (c Chess) Turn(pos game.Position) (game.Color, error) {
	g, err := load(pos)
	if err != nil {
		return game.NoColor, err
	}
	return colorOf(g.Position().Turn()), nil
}

func (c Chess) Apply(pos game.Position, intent game.MoveIntent) (game.Transition, error) {
	g, err := load(pos)
	if err != nil {
		return game.Transition{}, err
	}

	before := g.Position()
	uci := intent.UCI()
	if !legal(before, uci) {
		return game.Transition{}, fmt.Errorf("%w: %s", game.ErrIllegalMove, uci)
	}

	mv, err := chess.UCINotation{}.Decode(before, uci)
	if err != nil {
		return game.Transition{}, fmt.Errorf("%w: %v", game.ErrIllegalMove, err)
	}
	if err := g.Move(mv, nil); err != nil {
		return game.Transition{}, fmt.Errorf("%w: %v", game.ErrIllegalMove, err)
	}

	// encode the pushed move, it carries the check and mate tags
	moves := g.Moves()
	san := chess.AlgebraicNotation{}.Encode(before, moves[len(moves)-1])

	return game.Transition{
		Position: game.Position(g.FEN()),
		Notation: san,
		Result:   resultOf(g),
	}, nil
}

func load(pos game.Position) (*chess.Game, error) {
	option, err := chess.FEN(string(pos))
	if err != nil {
		return nil, fmt.Errorf("loading position %q: %w", pos, err)
	}
	return chess.NewGame(option), nil
}

func legal(pos *chess.Position, uci string) bool {
	for _, mv := range pos.ValidMoves() {
		if mv.String() == uci {
			return true
		}
	}
	return false
}

func resultOf(g *chess.Game) *game.Result {
	var winner game.Color
	switch g.Outcome() {
	case chess.WhiteWon:
		winner = game.White
	case chess.BlackWon:
		winner = game.Black
	case chess.Draw:
		winner = game.NoColor
	default:
		return nil
	}

	return &game.Result{Winner: winner, Reason: reasonOf(g.Method())}
}

func reasonOf(m chess.Method) game.Reason {
	switch m {
	case chess.Checkmate:
		return game.ReasonCheckmate
	case chess.Stalemate:
		return game.ReasonStalemate
	case chess.InsufficientMaterial:
		return game.ReasonInsufficientMaterial
	case chess.ThreefoldRepetition, chess.FivefoldRepetition:
		return game.ReasonRepetition
	case chess.FiftyMoveRule, chess.SeventyFiveMoveRule:
		return game.ReasonMoveRule
	default:
		return game.ReasonDraw
	}
}

func colorOf(c chess.Color) game.Color {
	if c == chess.White {
		return game.White
	}
	return game.Black
}
