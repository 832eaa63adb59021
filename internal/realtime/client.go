package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/iamezell/arcbeta/internal/lobby"
	"github.com/iamezell/arcbeta/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins in dev; restrict in production
	},
}

// Client is a single WebSocket connection. Its state machine is explicit:
// a client is Unjoined until a joinLobby request succeeds, after which
// participant holds the persisted record.
type Client struct {
	ID          string
	hub         *Hub
	coordinator *lobby.Coordinator
	conn        *websocket.Conn
	send        chan WSMessage
	logger      *zap.Logger

	// room is the broadcast group membership, owned by the hub mutex.
	room string
	// participant is set by the read pump after a successful join.
	participant *models.Participant
}

// ServeWs handles the WebSocket upgrade and runs the client loop. The
// connection id is assigned here, never chosen by the client.
func ServeWs(hub *Hub, coordinator *lobby.Coordinator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:          uuid.NewString(),
			hub:         hub,
			coordinator: coordinator,
			conn:        conn,
			send:        make(chan WSMessage, sendBufferSize),
			logger:      logger,
		}
		hub.Attach(client)
		go client.writePump()
		client.readPump()
	}
}

// enqueue hands a message to the write pump without blocking. Messages to a
// client whose buffer is full are dropped.
func (c *Client) enqueue(msg WSMessage) {
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) readPump() {
	ctx := context.Background()
	defer func() {
		c.hub.Detach(c)
		c.coordinator.HandleDisconnect(ctx, c.ID)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("read error", zap.String("conn_id", c.ID), zap.Error(err))
			}
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Debug("bad frame", zap.String("conn_id", c.ID), zap.Error(err))
			continue
		}

		switch msg.Event {
		case lobby.EventJoinLobby:
			var req lobby.JoinRequest
			if len(msg.Data) > 0 {
				if err := json.Unmarshal(msg.Data, &req); err != nil {
					c.logger.Debug("bad join payload", zap.String("conn_id", c.ID), zap.Error(err))
					continue
				}
			}
			if p, err := c.coordinator.HandleJoin(ctx, c.ID, req); err == nil {
				c.participant = p
			}
		case lobby.EventActivateLevel:
			_ = c.coordinator.HandleActivate(ctx, c.ID)
		case lobby.EventPlayerMove:
			if c.participant == nil {
				continue // unjoined connections have no room to relay into
			}
			var mv lobby.MoveUpdate
			if err := json.Unmarshal(msg.Data, &mv); err != nil {
				continue
			}
			c.coordinator.HandleMove(c.ID, c.participant.RoomID, mv)
		default:
			// unknown events are ignored
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
