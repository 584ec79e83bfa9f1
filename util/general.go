package util

import "fmt"

// Archive hash fields.
const (
	GameRoomIDKey     = "room_id"
	GameWhiteKey      = "white"
	GameBlackKey      = "black"
	GameWinnerKey     = "winner"
	GameReasonKey     = "reason"
	GamePositionKey   = "final_position"
	GameFinishedAtKey = "finished_at"
)

func GetGameKey(roomID string) string {
	return fmt.Sprintf("game:%v", roomID)
}

func GetGameMovesKey(roomID string) string {
	return fmt.Sprintf("game:%v:moves", roomID)
}
