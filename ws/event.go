package ws

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/judgegodwins/chess-rooms/game"
)

type Event struct {
	Type    string          `json:"type"`
	TraceID string          `json:"trace_id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

type EventHandler func(ctx context.Context, evt Event, c *Client) error

// inbound
const (
	EventCreateRoom   = "create_room"
	EventJoinRoom     = "join_room"
	EventRequestState = "request_state"
	EventMove         = "move"
	EventSendMessage  = "send_message"
	EventResign       = "resign"
)

// outbound
const (
	EventRoomCreated    = "room_created"
	EventStateSnapshot  = "state_snapshot"
	EventPlayersUpdated = "players_updated"
	EventChatHistory    = "chat_history"
	EventJoinRejected   = "join_rejected"
	EventMoveAccepted   = "move_accepted"
	EventMoveRejected   = "move_rejected"
	EventChatAppended   = "chat_appended"
	EventGameOver       = "game_over"
	EventError          = "error"
)

type PayloadCreateRoom struct {
	DisplayName string `json:"display_name" validate:"max=32"`
	Color       string `json:"color" validate:"omitempty,oneof=white black w b"`
}

type PayloadJoinRoom struct {
	RoomID      string `json:"room_id" validate:"required"`
	DisplayName string `json:"display_name" validate:"max=32"`
	Color       string `json:"color" validate:"omitempty,oneof=white black w b"`
}

type PayloadRoom struct {
	RoomID string `json:"room_id" validate:"required"`
}

type PayloadMove struct {
	RoomID    string `json:"room_id" validate:"required"`
	UCI       string `json:"uci,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Promotion string `json:"promotion,omitempty"`
}

// Intent prefers the uci field and falls back to from/to/promotion.
func (p PayloadMove) Intent() (game.MoveIntent, error) {
	if p.UCI != "" {
		return game.ParseUCI(p.UCI)
	}
	return game.MoveIntent{From: p.From, To: p.To, Promotion: p.Promotion}, nil
}

type PayloadSendMessage struct {
	RoomID string `json:"room_id" validate:"required"`
	Text   string `json:"text" validate:"required,max=500"`
}

type PayloadRoomCreated struct {
	RoomID string     `json:"room_id"`
	Color  game.Color `json:"color"`
}

type PayloadPlayers struct {
	RoomID string          `json:"room_id"`
	Seats  []game.SeatView `json:"seats"`
	Seq    uint64          `json:"seq"`
}

type PayloadChatHistory struct {
	RoomID   string           `json:"room_id"`
	Messages []game.ChatEntry `json:"messages"`
}

type PayloadRejected struct {
	RoomID  string `json:"room_id,omitempty"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type PayloadMoveAccepted struct {
	RoomID   string             `json:"room_id"`
	Move     game.MoveRecord    `json:"move"`
	Position game.Position      `json:"position"`
	Turn     game.Color         `json:"turn"`
	Clocks   game.ClockSnapshot `json:"clocks"`
	Seq      uint64             `json:"seq"`
}

type PayloadChatAppended struct {
	RoomID string `json:"room_id"`
	game.ChatEntry
	Seq uint64 `json:"seq"`
}

type PayloadGameOver struct {
	RoomID string      `json:"room_id"`
	Result game.Result `json:"result"`
	Seq    uint64      `json:"seq"`
}

type PayloadError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewEvent(evtType string, payload any) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return NewEventStruct(evtType, b, ""), nil
}

// NewErrorEvent echoes traceID so the client can match the failure to its request.
func NewErrorEvent(traceID string, err error) (Event, error) {
	b, mErr := json.Marshal(PayloadError{Code: errorCode(err), Message: err.Error()})
	if mErr != nil {
		return Event{}, mErr
	}

	return NewEventStruct(EventError, b, traceID), nil
}

func NewEventStruct(evtType string, payload []byte, traceID string) Event {
	return Event{
		Type:    evtType,
		TraceID: traceID,
		Payload: payload,
	}
}

var (
	errUnknownEvent   = errors.New("there is no such event type")
	errInvalidPayload = errors.New("invalid payload")
)

// errorCode maps domain errors to stable wire codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, game.ErrRoomFull):
		return "room_full"
	case errors.Is(err, game.ErrInvalidColor):
		return "invalid_color"
	case errors.Is(err, game.ErrAlreadySeated):
		return "already_seated"
	case errors.Is(err, game.ErrNotSeated):
		return "not_seated"
	case errors.Is(err, game.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, game.ErrIllegalMove):
		return "illegal_move"
	case errors.Is(err, game.ErrGameOver):
		return "game_over"
	case errors.Is(err, game.ErrFlagFall):
		return "flag_fall"
	case errors.Is(err, game.ErrEmptyMessage):
		return "empty_message"
	case errors.Is(err, game.ErrAllocationExhausted):
		return "allocation_exhausted"
	case errors.Is(err, errUnknownEvent):
		return "unknown_event"
	case errors.Is(err, errInvalidPayload):
		return "invalid_payload"
	default:
		return "internal"
	}
}
