package game

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Room is the authoritative state of one two-player match and its chat. Every exported
// method runs under the room's own mutex, so operations on one room never interleave
// while different rooms proceed in parallel.
type Room struct {
	ID string

	mu       sync.Mutex
	engine   RuleEngine
	now      func() time.Time
	seats    [seatCount]Seat
	position Position
	moves    []MoveRecord
	chat     ChatLog
	clocks   *ClockKeeper
	state    State
	started  bool
	result   *Result
	closed   bool
	seq      uint64
}

type SeatView struct {
	Color       Color  `json:"color"`
	DisplayName string `json:"display_name"`
	Occupied    bool   `json:"occupied"`
}

// Snapshot is a consistent copy of a room taken under its lock.
type Snapshot struct {
	RoomID   string        `json:"room_id"`
	State    State         `json:"state"`
	Started  bool          `json:"started"`
	Position Position      `json:"position"`
	Turn     Color         `json:"turn"`
	Seats    []SeatView    `json:"seats"`
	Moves    []MoveRecord  `json:"moves"`
	Chat     []ChatEntry   `json:"chat"`
	Clocks   ClockSnapshot `json:"clocks"`
	Result   *Result       `json:"result,omitempty"`
	Seq      uint64        `json:"seq"`
}

type MoveResult struct {
	Move   MoveRecord
	Turn   Color
	Clocks ClockSnapshot
	// Result is set when the move (or a flag-fall) ended the game.
	Result *Result
	Seq    uint64
}

type DisconnectResult struct {
	Vacated  Color
	Occupied int
	State    State
	Seats    []SeatView
	Seq      uint64
}

func newRoom(id string, engine RuleEngine, budget time.Duration, now func() time.Time) *Room {
	return &Room{
		ID:       id,
		engine:   engine,
		now:      now,
		seats:    [seatCount]Seat{{Color: White}, {Color: Black}},
		position: engine.Initial(),
		clocks:   NewClockKeeper(budget),
		state:    WaitingForOpponent,
	}
}

// Join seats a connection. An explicit colour must be free; without one the first free
// seat is assigned. The game starts the first time both seats are filled.
func (r *Room) Join(connectionID, displayName string, requested Color) (Color, Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return NoColor, Snapshot{}, ErrRoomNotFound
	}
	if r.seatOf(connectionID) != NoColor {
		return NoColor, Snapshot{}, ErrAlreadySeated
	}

	free := lo.Filter(r.seats[:], func(s Seat, _ int) bool { return !s.Occupied() })
	if len(free) == 0 {
		return NoColor, Snapshot{}, ErrRoomFull
	}

	color := requested
	switch {
	case color == NoColor:
		color = free[0].Color
	case !color.valid(), r.seats[color.index()].Occupied():
		return NoColor, Snapshot{}, ErrInvalidColor
	}

	r.seats[color.index()] = Seat{Color: color, ConnectionID: connectionID, DisplayName: strings.TrimSpace(displayName)}

	if !r.started && r.occupied() == seatCount {
		r.started = true
		r.state = InProgress
		r.clocks.Start(r.now())
	}
	r.seq++

	return color, r.snapshot(), nil
}

// AttemptMove validates and applies a move for the seat held by connectionID. Any
// rejection other than a flag-fall leaves the room exactly as it was.
func (r *Room) AttemptMove(connectionID string, intent MoveIntent) (MoveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return MoveResult{}, ErrRoomNotFound
	}
	seat := r.seatOf(connectionID)
	if seat == NoColor {
		return MoveResult{}, ErrNotSeated
	}
	if r.state != InProgress {
		return MoveResult{}, ErrGameOver
	}

	turn, err := r.engine.Turn(r.position)
	if err != nil {
		return MoveResult{}, fmt.Errorf("reading side to move: %w", err)
	}
	if seat != turn {
		return MoveResult{}, ErrNotYourTurn
	}

	now := r.now()
	if r.clocks.Peek(seat, now) == 0 {
		r.clocks.Charge(seat, now)
		r.finish(Result{Winner: seat.Opponent(), Reason: ReasonFlagFall})
		r.seq++
		return MoveResult{Turn: turn, Clocks: r.clocks.Snapshot(), Result: r.result, Seq: r.seq}, ErrFlagFall
	}

	transition, err := r.engine.Apply(r.position, intent)
	if err != nil {
		if errors.Is(err, ErrIllegalMove) {
			return MoveResult{}, err
		}
		return MoveResult{}, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}

	r.clocks.Charge(seat, now)
	record := MoveRecord{
		Number:   len(r.moves) + 1,
		Color:    seat,
		UCI:      intent.UCI(),
		Notation: transition.Notation,
		Position: transition.Position,
		At:       now,
	}
	r.moves = append(r.moves, record)
	r.position = transition.Position
	if transition.Result != nil {
		r.finish(*transition.Result)
	}
	r.seq++

	return MoveResult{
		Move:   record,
		Turn:   seat.Opponent(),
		Clocks: r.clocks.Snapshot(),
		Result: r.result,
		Seq:    r.seq,
	}, nil
}

// PostChat appends a message. Seated connections speak under their seat name, anyone
// else under fallbackName.
func (r *Room) PostChat(connectionID, fallbackName, text string) (ChatEntry, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ChatEntry{}, 0, ErrRoomNotFound
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatEntry{}, 0, ErrEmptyMessage
	}

	name := strings.TrimSpace(fallbackName)
	if seat := r.seatOf(connectionID); seat != NoColor {
		name = r.seats[seat.index()].DisplayName
	}
	if name == "" {
		name = "anonymous"
	}

	entry := ChatEntry{DisplayName: name, Text: text, At: r.now()}
	r.chat.Append(entry)
	r.seq++
	return entry, r.seq, nil
}

// Resign ends an in-progress game in favour of the opponent.
func (r *Room) Resign(connectionID string) (Result, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Result{}, 0, ErrRoomNotFound
	}
	seat := r.seatOf(connectionID)
	if seat == NoColor {
		return Result{}, 0, ErrNotSeated
	}
	if r.state != InProgress {
		return Result{}, 0, ErrGameOver
	}

	r.clocks.Charge(seat, r.now())
	r.finish(Result{Winner: seat.Opponent(), Reason: ReasonResignation})
	r.seq++
	return *r.result, r.seq, nil
}

// Disconnect vacates every seat held by connectionID, keeping the last display name on
// the free seat. Once no seat is occupied the room
// is closed and all further operations fail with ErrRoomNotFound. Idempotent.
func (r *Room) Disconnect(connectionID string) DisconnectResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	vacated := NoColor
	for i := range r.seats {
		if r.seats[i].Occupied() && r.seats[i].ConnectionID == connectionID {
			vacated = r.seats[i].Color
			// the name stays so the seat still reads as "alice (away)"
			r.seats[i].ConnectionID = ""
		}
	}

	if vacated != NoColor {
		r.seq++
		if r.occupied() == 0 {
			r.closed = true
			r.clocks.Stop()
		}
	}

	return DisconnectResult{
		Vacated:  vacated,
		Occupied: r.occupied(),
		State:    r.state,
		Seats:    r.seatViews(),
		Seq:      r.seq,
	}
}

// CheckFlag finishes the game when the side to move has no time left.
func (r *Room) CheckFlag() (Result, uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.state != InProgress {
		return Result{}, r.seq, false
	}
	turn, err := r.engine.Turn(r.position)
	if err != nil {
		return Result{}, r.seq, false
	}
	now := r.now()
	if r.clocks.Peek(turn, now) > 0 {
		return Result{}, r.seq, false
	}

	r.clocks.Charge(turn, now)
	r.finish(Result{Winner: turn.Opponent(), Reason: ReasonFlagFall})
	r.seq++
	return *r.result, r.seq, true
}

// ForfeitVacant awards the game to the remaining player when color's seat is still
// empty. It does nothing once the seat has been re-filled or the game is over.
func (r *Room) ForfeitVacant(color Color) (Result, uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.state != InProgress || !color.valid() {
		return Result{}, r.seq, false
	}
	if r.seats[color.index()].Occupied() || !r.seats[color.Opponent().index()].Occupied() {
		return Result{}, r.seq, false
	}

	r.finish(Result{Winner: color.Opponent(), Reason: ReasonAbandonment})
	r.seq++
	return *r.result, r.seq, true
}

// FlagDeadline is when the side to move runs out of time.
func (r *Room) FlagDeadline() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.state != InProgress {
		return time.Time{}, false
	}
	turn, err := r.engine.Turn(r.position)
	if err != nil {
		return time.Time{}, false
	}
	return r.clocks.Deadline(turn)
}

// Occupants returns the connection ids currently seated, white first.
func (r *Room) Occupants() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return lo.FilterMap(r.seats[:], func(s Seat, _ int) (string, bool) {
		return s.ConnectionID, s.Occupied()
	})
}

func (r *Room) SeatOf(connectionID string) Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seatOf(connectionID)
}

func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

func (r *Room) snapshot() Snapshot {
	turn, _ := r.engine.Turn(r.position)
	moves := make([]MoveRecord, len(r.moves))
	copy(moves, r.moves)

	var result *Result
	if r.result != nil {
		res := *r.result
		result = &res
	}

	return Snapshot{
		RoomID:   r.ID,
		State:    r.state,
		Started:  r.started,
		Position: r.position,
		Turn:     turn,
		Seats:    r.seatViews(),
		Moves:    moves,
		Chat:     r.chat.All(),
		Clocks:   r.clocks.Snapshot(),
		Result:   result,
		Seq:      r.seq,
	}
}

func (r *Room) seatViews() []SeatView {
	return lo.Map(r.seats[:], func(s Seat, _ int) SeatView {
		return SeatView{Color: s.Color, DisplayName: s.DisplayName, Occupied: s.Occupied()}
	})
}

func (r *Room) seatOf(connectionID string) Color {
	if connectionID == "" {
		return NoColor
	}
	seat, ok := lo.Find(r.seats[:], func(s Seat) bool { return s.ConnectionID == connectionID })
	if !ok {
		return NoColor
	}
	return seat.Color
}

func (r *Room) occupied() int {
	return lo.CountBy(r.seats[:], func(s Seat) bool { return s.Occupied() })
}

func (r *Room) finish(result Result) {
	r.state = Finished
	r.result = &result
	r.clocks.Stop()
}

// Replay feeds a move log through engine from its initial position and returns the
// resulting position.
func Replay(engine RuleEngine, moves []MoveRecord) (Position, error) {
	pos := engine.Initial()
	for _, m := range moves {
		intent, err := ParseUCI(m.UCI)
		if err != nil {
			return "", err
		}
		transition, err := engine.Apply(pos, intent)
		if err != nil {
			return "", fmt.Errorf("replaying move %d (%s): %w", m.Number, m.UCI, err)
		}
		pos = transition.Position
	}
	return pos, nil
}
