package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/judgegodwins/chess-rooms/archive"
	"github.com/judgegodwins/chess-rooms/game"
	"github.com/judgegodwins/chess-rooms/http_utils"
	"github.com/judgegodwins/chess-rooms/tokens"
	"github.com/judgegodwins/chess-rooms/util"
	"github.com/samber/lo"
)

const archiveTimeout = 5 * time.Second

type ClientList map[string]*Client

type wsQuery struct {
	Token string `form:"token"`
}

// Manager is the session gateway: it owns the live connections and turns their events
// into Room operations and the resulting broadcasts.
type Manager struct {
	sync.RWMutex
	clients  ClientList
	handlers map[string]EventHandler

	registry *game.Registry
	archive  archive.Archiver
	config   *util.Config
	log      *slog.Logger
	upgrader websocket.Upgrader
	timers   *roomTimers
	now      func() time.Time
}

// NewManager wires the gateway. archiver may be nil, in which case finished games are
// not recorded.
func NewManager(config *util.Config, registry *game.Registry, archiver archive.Archiver, log *slog.Logger) *Manager {
	m := &Manager{
		clients:  make(ClientList),
		handlers: make(map[string]EventHandler),
		registry: registry,
		archive:  archiver,
		config:   config,
		log:      log,
		timers:   newRoomTimers(),
		now:      time.Now,
	}

	origins := config.Origins()
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || lo.Contains(origins, origin)
		},
	}

	m.setupEventHandlers()

	return m
}

func (m *Manager) setupEventHandlers() {
	m.handlers[EventCreateRoom] = CreateRoom
	m.handlers[EventJoinRoom] = JoinRoom
	m.handlers[EventRequestState] = RequestState
	m.handlers[EventMove] = SubmitMove
	m.handlers[EventSendMessage] = SendMessage
	m.handlers[EventResign] = Resign
}

func (m *Manager) routeEvent(ctx context.Context, evt Event, c *Client) error {
	if handler, ok := m.handlers[evt.Type]; ok {
		return handler(ctx, evt, c)
	}

	return errUnknownEvent
}

func (m *Manager) addClient(client *Client) {
	m.Lock()
	defer m.Unlock()

	m.clients[client.ID] = client
}

func (m *Manager) removeClient(client *Client) {
	m.Lock()
	defer m.Unlock()

	if _, ok := m.clients[client.ID]; ok {
		client.connection.Close()
		delete(m.clients, client.ID)
	}
}

func (m *Manager) getClient(id string) (*Client, bool) {
	m.RLock()
	defer m.RUnlock()

	client, ok := m.clients[id]
	return client, ok
}

// ClientCount is the number of live connections.
func (m *Manager) ClientCount() int {
	m.RLock()
	defer m.RUnlock()

	return len(m.clients)
}

// Websocket connection handler
func (m *Manager) ServeWS(c *gin.Context) {
	var query wsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, http_utils.NewErrorResponse(err.Error()))
		return
	}

	var username string
	if query.Token != "" {
		payload, err := tokens.ParseJWTToken(query.Token, []byte(m.config.JWTSecret))
		if err != nil {
			c.JSON(http.StatusUnauthorized, http_utils.NewErrorResponse("unauthorized"))
			return
		}
		username = payload.Username
	}

	conn, err := m.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the failure response
		m.log.Warn("error upgrading to websocket connection", "error", err)
		return
	}

	client := NewClient(conn, m, username)
	m.addClient(client)
	log := m.log.With("client_id", client.ID)
	log.Debug("client connected")

	ctx, cancel := context.WithCancel(c.Request.Context())
	readDone := make(chan struct{})

	go func() {
		defer close(readDone)
		client.readMessages(ctx)
	}()
	go client.writeMessages(ctx)

	err = <-client.Err()

	cancel()
	client.close()
	closeErr := conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(writeWait))
	if closeErr != nil && !errors.Is(closeErr, websocket.ErrCloseSent) {
		log.Debug("error sending close message", "error", closeErr)
	}
	m.removeClient(client)

	// the reader may be mid-event; wait so every seat it took is released below
	<-readDone
	m.disconnectClient(client)

	log.Debug("client disconnected", "error", err)
}

// disconnectClient vacates every seat the client held.
func (m *Manager) disconnectClient(c *Client) {
	for _, roomID := range c.JoinedRooms() {
		m.leaveRoom(roomID, c)
	}
}

func (m *Manager) leaveRoom(roomID string, c *Client) {
	c.untrackRoom(roomID)

	room, err := m.registry.Lookup(roomID)
	if err != nil {
		return
	}

	res := room.Disconnect(c.ID)
	if res.Vacated == game.NoColor {
		return
	}

	log := m.log.With("room_id", roomID, "client_id", c.ID)

	if res.Occupied == 0 {
		m.timers.stopRoom(roomID)
		m.registry.Remove(roomID)
		log.Info("room closed")
		return
	}

	log.Info("seat vacated", "color", res.Vacated)
	m.emitToRoom(room, "", EventPlayersUpdated, PayloadPlayers{RoomID: roomID, Seats: res.Seats, Seq: res.Seq})

	if res.State == game.InProgress && m.config.DisconnectGrace > 0 {
		m.armGrace(room, res.Vacated)
	}
}

// emitToRoom delivers one event to every connection seated in room.
func (m *Manager) emitToRoom(room *game.Room, traceID, evtType string, payload any) {
	evt, err := NewEvent(evtType, payload)
	if err != nil {
		m.log.Error("error encoding event", "event", evtType, "room_id", room.ID, "error", err)
		return
	}
	evt.TraceID = traceID

	for _, id := range room.Occupants() {
		if client, ok := m.getClient(id); ok {
			client.PushToEgress(evt)
		}
	}
}

func (m *Manager) gameOver(room *game.Room, traceID string, result game.Result, seq uint64) {
	m.timers.stopRoom(room.ID)
	m.log.Info("game over", "room_id", room.ID, "winner", result.Winner, "reason", result.Reason)
	m.emitToRoom(room, traceID, EventGameOver, PayloadGameOver{RoomID: room.ID, Result: result, Seq: seq})
	m.archiveGame(room)
}

func (m *Manager) archiveGame(room *game.Room) {
	if m.archive == nil {
		return
	}

	record, ok := archive.FromSnapshot(room.Snapshot(), m.now())
	if !ok {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()

		if err := m.archive.Save(ctx, record); err != nil {
			m.log.Error("error archiving game", "room_id", record.RoomID, "error", err)
		}
	}()
}

// armFlag schedules a flag check for the side to move, or clears it when no clock runs.
func (m *Manager) armFlag(room *game.Room) {
	deadline, ok := room.FlagDeadline()
	if !ok {
		m.timers.clearFlag(room.ID)
		return
	}

	m.timers.setFlag(room.ID, max(deadline.Sub(m.now()), 0), func() {
		result, seq, flagged := room.CheckFlag()
		if !flagged {
			m.armFlag(room)
			return
		}
		m.gameOver(room, "", result, seq)
	})
}

func (m *Manager) armGrace(room *game.Room, color game.Color) {
	m.timers.setGrace(room.ID, color, m.config.DisconnectGrace, func() {
		if result, seq, ok := room.ForfeitVacant(color); ok {
			m.gameOver(room, "", result, seq)
		}
	})
}
