package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AnychainX/Live-Commerce-Chat/internal/config"
	"github.com/AnychainX/Live-Commerce-Chat/internal/logging"
)

// Client is one websocket connection. ID is ephemeral, assigned per
// connection; Identity is the stable client id that survives reconnects and
// is what rooms key participants and bans on.
type Client struct {
	ID       string
	Identity string
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	config   config.WebSocketConfig

	mu         sync.Mutex
	rooms      map[string]struct{}
	sendClosed bool
}

func NewClient(id, identity string, hub *Hub, conn *websocket.Conn, cfg config.WebSocketConfig) *Client {
	return &Client{
		ID:       id,
		Identity: identity,
		Hub:      hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		config:   cfg,
		rooms:    make(map[string]struct{}),
	}
}

// JoinedRoom records room membership on the connection so a lost connection
// can be cleaned out of every room it belonged to, not just one.
func (c *Client) JoinedRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[roomID] = struct{}{}
}

func (c *Client) LeftRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, roomID)
}

func (c *Client) InRoom(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rooms[roomID]
	return ok
}

// Rooms returns the ids of every room this connection has joined.
func (c *Client) Rooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.rooms))
	for id := range c.rooms {
		ids = append(ids, id)
	}
	return ids
}

func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				l := logging.L()
				l.Warn().Str(logging.FieldConnID, c.ID).Err(err).Msg("websocket read error")
			}
			break
		}

		handler(c, message)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// CloseSend closes the send channel exactly once. The hub calls this when it
// drops the connection; any SendMessage racing the close becomes a no-op
// instead of a send on a closed channel.
func (c *Client) CloseSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendClosed {
		return
	}
	c.sendClosed = true
	close(c.Send)
}

// SendMessage queues an event on this connection only. A full buffer drops
// the event rather than blocking the caller; a dropped connection swallows
// it entirely.
func (c *Client) SendMessage(event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendClosed {
		return nil
	}
	select {
	case c.Send <- data:
	default:
	}
	return nil
}
