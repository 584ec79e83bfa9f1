package ws

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
	egressBuffer   = 256
)

var errSlowConsumer = errors.New("client egress buffer full")

type Client struct {
	ID string
	// Username comes from the connection token and is the default display name.
	Username string

	connection *websocket.Conn
	manager    *Manager
	egress     chan Event
	err        chan error
	done       chan struct{}
	closeOnce  sync.Once

	mu          sync.Mutex
	joinedRooms []string
}

func NewClient(conn *websocket.Conn, manager *Manager, username string) *Client {
	return &Client{
		ID:          uuid.NewString(),
		Username:    username,
		connection:  conn,
		manager:     manager,
		egress:      make(chan Event, egressBuffer),
		err:         make(chan error, 1),
		done:        make(chan struct{}),
		joinedRooms: []string{},
	}
}

// Reads incoming events until the connection fails or ctx is cancelled. Every event is
// routed synchronously, so a client's events are applied in arrival order.
func (c *Client) readMessages(ctx context.Context) {
	log := c.manager.log.With("client_id", c.ID)
	c.connection.SetReadLimit(maxMessageSize)

	if err := c.connection.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.handleError(err)
		return
	}

	c.connection.SetPongHandler(c.pongHandler)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, payload, err := c.connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn("error reading message", "error", err)
			}
			c.handleError(err)
			return
		}

		var evt Event
		if err := json.Unmarshal(payload, &evt); err != nil {
			c.pushError("", errInvalidPayload)
			continue
		}

		log.Debug("event received", "event", evt.Type, "trace_id", evt.TraceID)

		if err := c.manager.routeEvent(ctx, evt, c); err != nil {
			log.Info("event failed", "event", evt.Type, "trace_id", evt.TraceID, "error", err)
			c.pushError(evt.TraceID, err)
		}
	}
}

// writes messages pushed to the client's egress channel
func (c *Client) writeMessages(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case message := <-c.egress:
			if err := c.connection.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.handleError(err)
				return
			}
			if err := c.connection.WriteJSON(message); err != nil {
				c.handleError(err)
				return
			}
		case <-ticker.C:
			if err := c.connection.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.handleError(err)
				return
			}
		}
	}
}

// Sets a new read deadline when a pong is received for a ping message.
func (c *Client) pongHandler(string) error {
	return c.connection.SetReadDeadline(time.Now().Add(pongWait))
}

// Reports the first fatal error to ServeWS, which then tears the connection down.
func (c *Client) handleError(e error) {
	select {
	case c.err <- e:
	default:
	}
}

func (c *Client) Err() <-chan error {
	return c.err
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// PushToEgress never blocks. A client that cannot keep up is disconnected rather than
// stalling the room.
func (c *Client) PushToEgress(evt Event) {
	select {
	case <-c.done:
	case c.egress <- evt:
	default:
		c.handleError(errSlowConsumer)
	}
}

// Creates an event and pushes to client's egress
func (c *Client) PushEventToEgress(evtType string, payload any) error {
	evt, err := NewEvent(evtType, payload)
	if err != nil {
		return err
	}
	c.PushToEgress(evt)
	return nil
}

// reply answers a request, echoing its trace id.
func (c *Client) reply(req Event, evtType string, payload any) error {
	evt, err := NewEvent(evtType, payload)
	if err != nil {
		return err
	}
	evt.TraceID = req.TraceID
	c.PushToEgress(evt)
	return nil
}

func (c *Client) pushError(traceID string, err error) {
	evt, mErr := NewErrorEvent(traceID, err)
	if mErr != nil {
		c.handleError(mErr)
		return
	}
	c.PushToEgress(evt)
}

// displayName prefers the name sent with the request over the token username.
func (c *Client) displayName(requested string) string {
	if name := strings.TrimSpace(requested); name != "" {
		return name
	}
	return c.Username
}

func (c *Client) trackRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !lo.Contains(c.joinedRooms, roomID) {
		c.joinedRooms = append(c.joinedRooms, roomID)
	}
}

func (c *Client) untrackRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.joinedRooms = lo.Without(c.joinedRooms, roomID)
}

// JoinedRooms lists the rooms this client holds a seat in.
func (c *Client) JoinedRooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	rooms := make([]string, len(c.joinedRooms))
	copy(rooms, c.joinedRooms)
	return rooms
}
