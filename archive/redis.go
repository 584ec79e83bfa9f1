package archive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/judgegodwins/chess-rooms/game"
	"github.com/judgegodwins/chess-rooms/util"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

// Redis stores each game as a hash plus a list of SAN moves, both expiring after ttl.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewRedis(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *Redis {
	return &Redis{rdb: rdb, ttl: ttl, log: log}
}

func (r *Redis) Save(ctx context.Context, record Record) error {
	gameKey := util.GetGameKey(record.RoomID)
	movesKey := util.GetGameMovesKey(record.RoomID)

	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, gameKey, map[string]interface{}{
			util.GameRoomIDKey:     record.RoomID,
			util.GameWhiteKey:      record.White,
			util.GameBlackKey:      record.Black,
			util.GameWinnerKey:     string(record.Winner),
			util.GameReasonKey:     string(record.Reason),
			util.GamePositionKey:   string(record.FinalPosition),
			util.GameFinishedAtKey: record.FinishedAt.Format(time.RFC3339Nano),
		})
		pipe.Del(ctx, movesKey)
		if len(record.Moves) > 0 {
			pipe.RPush(ctx, movesKey, lo.ToAnySlice(record.Moves)...)
		}
		pipe.Expire(ctx, gameKey, r.ttl)
		pipe.Expire(ctx, movesKey, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("archiving game %s: %w", record.RoomID, err)
	}

	r.log.Debug("game archived", "room_id", record.RoomID, "moves", len(record.Moves))
	return nil
}

func (r *Redis) Load(ctx context.Context, roomID string) (Record, error) {
	fields, err := r.rdb.HGetAll(ctx, util.GetGameKey(roomID)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("loading game %s: %w", roomID, err)
	}
	if len(fields) == 0 {
		return Record{}, ErrNotFound
	}

	moves, err := r.rdb.LRange(ctx, util.GetGameMovesKey(roomID), 0, -1).Result()
	if err != nil {
		return Record{}, fmt.Errorf("loading moves of %s: %w", roomID, err)
	}

	finishedAt, err := time.Parse(time.RFC3339Nano, fields[util.GameFinishedAtKey])
	if err != nil {
		return Record{}, fmt.Errorf("corrupt finished_at for %s: %w", roomID, err)
	}

	return Record{
		RoomID:        fields[util.GameRoomIDKey],
		White:         fields[util.GameWhiteKey],
		Black:         fields[util.GameBlackKey],
		Winner:        game.Color(fields[util.GameWinnerKey]),
		Reason:        game.Reason(fields[util.GameReasonKey]),
		FinalPosition: game.Position(fields[util.GamePositionKey]),
		Moves:         moves,
		FinishedAt:    finishedAt,
	}, nil
}
