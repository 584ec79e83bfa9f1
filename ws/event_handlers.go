package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/judgegodwins/chess-rooms/game"
	"github.com/judgegodwins/chess-rooms/util"
)

func decodePayload(e Event, v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	if err := util.Validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	return nil
}

func CreateRoom(ctx context.Context, e Event, c *Client) error {
	var payload PayloadCreateRoom
	if err := decodePayload(e, &payload); err != nil {
		return err
	}

	color, err := game.ParseColor(payload.Color)
	if err != nil {
		return err
	}

	m := c.manager
	room, snap, err := m.registry.Create(c.ID, c.displayName(payload.DisplayName), color)
	if err != nil {
		return err
	}
	c.trackRoom(room.ID)

	m.log.Info("room created", "room_id", room.ID, "client_id", c.ID)

	if err := c.reply(e, EventRoomCreated, PayloadRoomCreated{RoomID: room.ID, Color: room.SeatOf(c.ID)}); err != nil {
		return err
	}
	return c.reply(e, EventStateSnapshot, snap)
}

// JoinRoom seats the client. Rejections go to the requester only as join_rejected.
func JoinRoom(ctx context.Context, e Event, c *Client) error {
	var payload PayloadJoinRoom
	if err := decodePayload(e, &payload); err != nil {
		return err
	}

	m := c.manager
	reject := func(err error) error {
		m.log.Info("join rejected", "room_id", payload.RoomID, "client_id", c.ID, "error", err)
		return c.reply(e, EventJoinRejected, PayloadRejected{
			RoomID:  payload.RoomID,
			Reason:  errorCode(err),
			Message: err.Error(),
		})
	}

	color, err := game.ParseColor(payload.Color)
	if err != nil {
		return reject(err)
	}

	room, err := m.registry.Lookup(payload.RoomID)
	if err != nil {
		return reject(err)
	}

	seat, snap, err := room.Join(c.ID, c.displayName(payload.DisplayName), color)
	if err != nil {
		return reject(err)
	}
	c.trackRoom(room.ID)
	m.timers.cancelGrace(room.ID, seat)

	m.log.Info("seat taken", "room_id", room.ID, "client_id", c.ID, "color", seat)

	m.emitToRoom(room, e.TraceID, EventPlayersUpdated, PayloadPlayers{RoomID: room.ID, Seats: snap.Seats, Seq: snap.Seq})
	m.emitToRoom(room, e.TraceID, EventStateSnapshot, snap)
	if err := c.reply(e, EventChatHistory, PayloadChatHistory{RoomID: room.ID, Messages: snap.Chat}); err != nil {
		return err
	}

	m.armFlag(room)
	return nil
}

func RequestState(ctx context.Context, e Event, c *Client) error {
	var payload PayloadRoom
	if err := decodePayload(e, &payload); err != nil {
		return err
	}

	room, err := c.manager.registry.Lookup(payload.RoomID)
	if err != nil {
		return err
	}

	return c.reply(e, EventStateSnapshot, room.Snapshot())
}

// SubmitMove answers every rejected move with move_rejected to the mover only.
func SubmitMove(ctx context.Context, e Event, c *Client) error {
	var payload PayloadMove
	if err := decodePayload(e, &payload); err != nil {
		return err
	}

	m := c.manager
	reject := func(err error) error {
		m.log.Debug("move rejected", "room_id", payload.RoomID, "client_id", c.ID, "error", err)
		return c.reply(e, EventMoveRejected, PayloadRejected{
			RoomID:  payload.RoomID,
			Reason:  errorCode(err),
			Message: err.Error(),
		})
	}

	intent, err := payload.Intent()
	if err != nil {
		return reject(err)
	}
	if err := util.Validate.Struct(intent); err != nil {
		return reject(fmt.Errorf("%w: %v", game.ErrIllegalMove, err))
	}

	room, err := m.registry.Lookup(payload.RoomID)
	if err != nil {
		return reject(err)
	}

	res, err := room.AttemptMove(c.ID, intent)
	if errors.Is(err, game.ErrFlagFall) {
		if rErr := reject(err); rErr != nil {
			return rErr
		}
		m.gameOver(room, e.TraceID, *res.Result, res.Seq)
		return nil
	}
	if err != nil {
		return reject(err)
	}

	m.emitToRoom(room, e.TraceID, EventMoveAccepted, PayloadMoveAccepted{
		RoomID:   room.ID,
		Move:     res.Move,
		Position: res.Move.Position,
		Turn:     res.Turn,
		Clocks:   res.Clocks,
		Seq:      res.Seq,
	})

	if res.Result != nil {
		m.gameOver(room, e.TraceID, *res.Result, res.Seq)
		return nil
	}

	m.armFlag(room)
	return nil
}

func SendMessage(ctx context.Context, e Event, c *Client) error {
	var payload PayloadSendMessage
	if err := decodePayload(e, &payload); err != nil {
		return err
	}

	room, err := c.manager.registry.Lookup(payload.RoomID)
	if err != nil {
		return err
	}

	entry, seq, err := room.PostChat(c.ID, c.displayName(""), payload.Text)
	if err != nil {
		return err
	}

	appended := PayloadChatAppended{RoomID: room.ID, ChatEntry: entry, Seq: seq}
	c.manager.emitToRoom(room, e.TraceID, EventChatAppended, appended)

	// spectators are not in the broadcast set
	if room.SeatOf(c.ID) == game.NoColor {
		return c.reply(e, EventChatAppended, appended)
	}
	return nil
}

func Resign(ctx context.Context, e Event, c *Client) error {
	var payload PayloadRoom
	if err := decodePayload(e, &payload); err != nil {
		return err
	}

	room, err := c.manager.registry.Lookup(payload.RoomID)
	if err != nil {
		return err
	}

	result, seq, err := room.Resign(c.ID)
	if err != nil {
		return err
	}

	c.manager.gameOver(room, e.TraceID, result, seq)
	return nil
}
