package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RoomPublisher publishes room events to Redis for fan-out.
type RoomPublisher interface {
	PublishRoomEvent(roomID, event, exclude string, payload []byte) error
}

// RoomSubscriber subscribes to a room's Redis channel and invokes handler
// for incoming events.
type RoomSubscriber interface {
	SubscribeRoom(roomID string, handler func(event, exclude string, payload []byte)) (cancel func(), err error)
}

// Hub tracks open connections and room-scoped broadcast groups. A connection
// is attached for its whole lifetime and subscribed to a room only after a
// successful join. When a Redis publisher is configured, room broadcasts go
// through Redis and the per-room subscription performs the single local
// fan-out; without Redis the hub delivers directly.
type Hub struct {
	conns  map[string]*Client            // connection id -> client, all attached
	rooms  map[string]map[string]*Client // room id -> broadcast group
	subs   map[string]func()             // cancel Redis subscription per room
	mu     sync.RWMutex
	logger *zap.Logger
	pub    RoomPublisher
	sub    RoomSubscriber
}

// NewHub creates a hub. pub and sub may be nil for single-process delivery.
func NewHub(logger *zap.Logger, pub RoomPublisher, sub RoomSubscriber) *Hub {
	return &Hub{
		conns:  make(map[string]*Client),
		rooms:  make(map[string]map[string]*Client),
		subs:   make(map[string]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// Attach registers an open connection with the hub. The connection belongs
// to no broadcast group until Subscribe.
func (h *Hub) Attach(c *Client) {
	h.mu.Lock()
	h.conns[c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("connection attached", zap.String("conn_id", c.ID))
}

// Detach removes a connection from the hub and from its room group, if any.
// The room's Redis subscription is cancelled when the last member leaves.
func (h *Hub) Detach(c *Client) {
	h.mu.Lock()
	delete(h.conns, c.ID)
	if c.room != "" {
		if group, ok := h.rooms[c.room]; ok {
			delete(group, c.ID)
			if len(group) == 0 {
				delete(h.rooms, c.room)
				if cancel, ok := h.subs[c.room]; ok {
					cancel()
					delete(h.subs, c.room)
				}
			}
		}
		c.room = ""
	}
	h.mu.Unlock()
	h.logger.Debug("connection detached", zap.String("conn_id", c.ID))
}

// Subscribe adds a connection to a room's broadcast group. Unknown
// connection ids are ignored: a join can race the transport closing the
// connection. Starts the room's Redis subscription for the first member.
func (h *Hub) Subscribe(connectionID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[connectionID]
	if !ok || c.room == roomID {
		return
	}
	if c.room != "" {
		// single-room membership: leave the previous group first
		if group, ok := h.rooms[c.room]; ok {
			delete(group, c.ID)
		}
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]*Client)
		if h.sub != nil {
			cancel, err := h.sub.SubscribeRoom(roomID, func(event, exclude string, payload []byte) {
				h.deliver(roomID, exclude, event, payload)
			})
			if err != nil {
				h.logger.Warn("room subscription failed", zap.String("room_id", roomID), zap.Error(err))
			} else {
				h.subs[roomID] = cancel
			}
		}
	}
	h.rooms[roomID][connectionID] = c
	c.room = roomID
}

// Send delivers an event to a single connection, joined or not.
func (h *Hub) Send(connectionID, event string, payload interface{}) {
	data, err := marshalPayload(payload)
	if err != nil {
		h.logger.Warn("marshal payload", zap.String("event", event), zap.Error(err))
		return
	}
	h.mu.RLock()
	c, ok := h.conns[connectionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	c.enqueue(WSMessage{Event: event, Data: data})
}

// Broadcast delivers an event to every connection in the room's group.
func (h *Hub) Broadcast(roomID, event string, payload interface{}) {
	h.fanOut(roomID, "", event, payload)
}

// BroadcastExcept delivers an event to every connection in the room's group
// except the given one.
func (h *Hub) BroadcastExcept(roomID, exceptID, event string, payload interface{}) {
	h.fanOut(roomID, exceptID, event, payload)
}

// RoomCount returns the number of connections in a room's broadcast group.
func (h *Hub) RoomCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) fanOut(roomID, exceptID, event string, payload interface{}) {
	data, err := marshalPayload(payload)
	if err != nil {
		h.logger.Warn("marshal payload", zap.String("event", event), zap.Error(err))
		return
	}
	if h.pub != nil {
		// Publish only: the room subscription delivers locally exactly once.
		if err := h.pub.PublishRoomEvent(roomID, event, exceptID, data); err == nil {
			return
		}
		h.logger.Warn("publish room event failed, delivering locally",
			zap.String("room_id", roomID), zap.String("event", event))
	}
	h.deliver(roomID, exceptID, event, data)
}

// deliver fans a message out to the local room group. Slow clients with a
// full send buffer are skipped; delivery is fire-and-forget.
func (h *Hub) deliver(roomID, exceptID, event string, data []byte) {
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	group := h.rooms[roomID]
	targets := make([]*Client, 0, len(group))
	for id, c := range group {
		if id == exceptID {
			continue
		}
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.enqueue(msg)
	}
}

func marshalPayload(payload interface{}) (json.RawMessage, error) {
	switch v := payload.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	default:
		return json.Marshal(v)
	}
}
