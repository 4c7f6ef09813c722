package hub

import (
	"encoding/json"
	"sync"

	"github.com/AnychainX/Live-Commerce-Chat/internal/config"
	"github.com/AnychainX/Live-Commerce-Chat/internal/logging"
)

// Hub fans server events out to the connections subscribed to each room.
// Delivery is fire-and-forget relative to the state mutation that produced
// the event: a subscriber whose send buffer is full gets dropped instead of
// delaying anyone else. Within one room, events reach every subscriber in
// the order they were queued.
type Hub struct {
	clients    map[string]*Client            // connID -> client
	rooms      map[string]map[string]*Client // roomID -> connID -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *roomMessage
	mu         sync.RWMutex
	config     config.WebSocketConfig
}

type roomMessage struct {
	RoomID  string
	Message []byte
	Exclude string // conn ID to exclude
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *roomMessage, 256),
		config:     cfg,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			l := logging.L()
			l.Debug().Str(logging.FieldConnID, client.ID).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				for roomID, members := range h.rooms {
					delete(members, client.ID)
					if len(members) == 0 {
						delete(h.rooms, roomID)
					}
				}
				delete(h.clients, client.ID)
				client.CloseSend()
			}
			h.mu.Unlock()
			l := logging.L()
			l.Debug().Str(logging.FieldConnID, client.ID).Msg("client unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			if members, ok := h.rooms[msg.RoomID]; ok {
				for connID, client := range members {
					if connID == msg.Exclude {
						continue
					}
					select {
					case client.Send <- msg.Message:
					default:
						go h.removeClient(client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribe adds a client to a room's fan-out set.
func (h *Hub) Subscribe(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]*Client)
	}
	h.rooms[roomID][client.ID] = client
	l := logging.L()
	l.Info().Str(logging.FieldConnID, client.ID).Str(logging.FieldRoomID, roomID).Msg("client subscribed to room")
}

// Unsubscribe removes a client from a room's fan-out set.
func (h *Hub) Unsubscribe(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[roomID]; ok {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	l := logging.L()
	l.Info().Str(logging.FieldConnID, client.ID).Str(logging.FieldRoomID, roomID).Msg("client unsubscribed from room")
}

// BroadcastToRoom queues an event for every connection subscribed to the
// room. Pass an empty exclude to reach everyone.
func (h *Hub) BroadcastToRoom(roomID string, event interface{}, exclude string) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.broadcast <- &roomMessage{
		RoomID:  roomID,
		Message: data,
		Exclude: exclude,
	}
	return nil
}

// RoomClientCount reports how many connections are subscribed to a room.
func (h *Hub) RoomClientCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if members, ok := h.rooms[roomID]; ok {
		return len(members)
	}
	return 0
}

func (h *Hub) removeClient(client *Client) {
	h.unregister <- client
}
