package game

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"
)

const (
	roomIDAlphabet  = "abcdefghijklmnopqrstuvwxyz0123456789"
	maxIDAttempts   = 16
	defaultIDLength = 5
	DefaultBudget   = 10 * time.Minute
)

// Settings configures every room a Registry creates.
type Settings struct {
	Engine      RuleEngine
	ClockBudget time.Duration
	IDLength    int
	// Now and NewID default to time.Now and a crypto/rand base-36 generator.
	Now   func() time.Time
	NewID func(length int) (string, error)
}

// Registry maps room ids to live rooms. Its lock only guards the map; room mutation
// happens under each room's own lock.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	settings Settings
}

func NewRegistry(settings Settings) *Registry {
	if settings.ClockBudget <= 0 {
		settings.ClockBudget = DefaultBudget
	}
	if settings.IDLength <= 0 {
		settings.IDLength = defaultIDLength
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	if settings.NewID == nil {
		settings.NewID = RandomID
	}

	return &Registry{
		rooms:    make(map[string]*Room),
		settings: settings,
	}
}

// Create allocates a fresh id and registers a room with the creator seated. A missing
// colour defaults to white.
func (g *Registry) Create(connectionID, displayName string, color Color) (*Room, Snapshot, error) {
	if color == NoColor {
		color = White
	}
	if !color.valid() {
		return nil, Snapshot{}, ErrInvalidColor
	}

	room, err := g.insert()
	if err != nil {
		return nil, Snapshot{}, err
	}

	_, snapshot, err := room.Join(connectionID, displayName, color)
	if err != nil {
		g.Remove(room.ID)
		return nil, Snapshot{}, err
	}

	return room, snapshot, nil
}

func (g *Registry) insert() (*Room, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := g.settings.NewID(g.settings.IDLength)
		if err != nil {
			return nil, fmt.Errorf("generating room id: %w", err)
		}

		g.mu.Lock()
		if _, taken := g.rooms[id]; taken {
			g.mu.Unlock()
			continue
		}
		room := newRoom(id, g.settings.Engine, g.settings.ClockBudget, g.settings.Now)
		g.rooms[id] = room
		g.mu.Unlock()

		return room, nil
	}

	return nil, ErrAllocationExhausted
}

func (g *Registry) Lookup(id string) (*Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	room, ok := g.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Remove deletes id from the registry. Removing an unknown id is a no-op.
func (g *Registry) Remove(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, id)
}

func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// RandomID draws length characters from [a-z0-9] using crypto/rand.
func RandomID(length int) (string, error) {
	max := big.NewInt(int64(len(roomIDAlphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = roomIDAlphabet[n.Int64()]
	}
	return string(b), nil
}
