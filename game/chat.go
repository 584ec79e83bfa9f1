package game

import "time"

type ChatEntry struct {
	DisplayName string    `json:"display_name"`
	Text        string    `json:"text"`
	At          time.Time `json:"at"`
}

// ChatLog is an append-only, ordered list of messages. The owning Room serialises access.
type ChatLog struct {
	entries []ChatEntry
}

func (l *ChatLog) Append(entry ChatEntry) {
	l.entries = append(l.entries, entry)
}

// All returns a copy, in append order.
func (l *ChatLog) All() []ChatEntry {
	entries := make([]ChatEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

func (l *ChatLog) Len() int {
	return len(l.entries)
}
