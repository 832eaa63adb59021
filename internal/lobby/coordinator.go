// Package lobby implements the real-time session core: the participant
// registry and room state contracts, and the coordinator that maps
// connection events to state mutations and broadcast decisions.
package lobby

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iamezell/arcbeta/internal/models"
)

// DefaultRoomID is the well-known room every participant joins.
const DefaultRoomID = "lobby"

// Client-facing error messages, displayed verbatim by the presentation layer.
const (
	msgInvalidRole      = "Invalid role"
	msgDirectorOnly     = "Only Director can activate level"
	msgJoinFailed       = "Failed to join lobby"
	msgActivationFailed = "Failed to activate level"
)

// ErrRejected is returned when an event was refused and a scoped error
// notification has already been sent to the offending connection.
var ErrRejected = errors.New("lobby: event rejected")

// ParticipantStore is the participant registry. A record exists iff the
// connection is open and joined; reads are total (nil, nil on missing keys).
type ParticipantStore interface {
	Upsert(ctx context.Context, p *models.Participant) error
	Get(ctx context.Context, connectionID string) (*models.Participant, error)
	ListByRoom(ctx context.Context, roomID string) ([]models.Participant, error)
	// Delete removes and returns the prior record, or nil, nil if absent.
	Delete(ctx context.Context, connectionID string) (*models.Participant, error)
}

// RoomStore tracks per-room activation state.
type RoomStore interface {
	GetOrCreate(ctx context.Context, roomID string) (*models.Room, error)
	Activate(ctx context.Context, roomID string) (*models.Room, error)
	// GetStatus never fails on unknown rooms; it reports a default inactive record.
	GetStatus(ctx context.Context, roomID string) (*models.Room, error)
}

// Broadcaster is the transport contract the coordinator fans out through.
// Delivery is fire-and-forget; implementations must not block.
type Broadcaster interface {
	// Subscribe adds a connection to a room's broadcast group.
	Subscribe(connectionID, roomID string)
	// Send delivers an event to a single connection, joined or not.
	Send(connectionID, event string, payload interface{})
	// Broadcast delivers an event to every connection in the room's group.
	Broadcast(roomID, event string, payload interface{})
	// BroadcastExcept delivers to every connection in the group except one.
	BroadcastExcept(roomID, exceptID, event string, payload interface{})
}

// Coordinator is the protocol engine driving the lobby session. It owns
// authorization and fan-out policy per event; all stores are injected.
type Coordinator struct {
	participants ParticipantStore
	rooms        RoomStore
	hub          Broadcaster
	roomID       string
	logger       *zap.Logger
}

// NewCoordinator creates a coordinator for the given lobby room.
// An empty roomID selects DefaultRoomID.
func NewCoordinator(participants ParticipantStore, rooms RoomStore, hub Broadcaster, roomID string, logger *zap.Logger) *Coordinator {
	if roomID == "" {
		roomID = DefaultRoomID
	}
	return &Coordinator{
		participants: participants,
		rooms:        rooms,
		hub:          hub,
		roomID:       roomID,
		logger:       logger,
	}
}

// RoomID returns the lobby room identifier this coordinator manages.
func (co *Coordinator) RoomID() string {
	return co.roomID
}

// HandleJoin processes a joinLobby request. On success the participant is
// registered (upsert keyed by connection id), the connection is subscribed
// to the room group, userJoined is broadcast room-wide including the joiner,
// and the joiner alone receives a lobbyState snapshot computed after the
// registry mutation, so it includes the joiner itself.
func (co *Coordinator) HandleJoin(ctx context.Context, connectionID string, req JoinRequest) (*models.Participant, error) {
	role, ok := models.ParseRole(req.Role)
	if !ok {
		co.hub.Send(connectionID, EventError, ErrorMessage{Message: msgInvalidRole})
		return nil, ErrRejected
	}

	name := req.Name
	if name == "" {
		name = defaultName(connectionID)
	}

	p := &models.Participant{
		ConnectionID: connectionID,
		Name:         name,
		Role:         role,
		RoomID:       co.roomID,
	}
	if err := co.participants.Upsert(ctx, p); err != nil {
		co.logger.Error("join: upsert participant", zap.String("conn_id", connectionID), zap.Error(err))
		co.hub.Send(connectionID, EventError, ErrorMessage{Message: msgJoinFailed})
		return nil, err
	}

	co.hub.Subscribe(connectionID, co.roomID)
	co.hub.Broadcast(co.roomID, EventUserJoined, userInfo(*p))

	members, err := co.participants.ListByRoom(ctx, co.roomID)
	if err != nil {
		co.logger.Error("join: list room members", zap.String("room_id", co.roomID), zap.Error(err))
		co.hub.Send(connectionID, EventError, ErrorMessage{Message: msgJoinFailed})
		return nil, err
	}
	users := make([]UserInfo, 0, len(members))
	for _, m := range members {
		users = append(users, userInfo(m))
	}
	co.hub.Send(connectionID, EventLobbyState, LobbyState{Users: users})

	co.logger.Info("participant joined",
		zap.String("conn_id", connectionID),
		zap.String("name", p.Name),
		zap.String("role", string(p.Role)),
	)
	return p, nil
}

// HandleActivate processes an activateLevel request. Authorization is checked
// against the persisted participant record, never the client-asserted role;
// an unjoined connection has no record and is denied the same way.
func (co *Coordinator) HandleActivate(ctx context.Context, connectionID string) error {
	p, err := co.participants.Get(ctx, connectionID)
	if err != nil {
		co.logger.Error("activate: get participant", zap.String("conn_id", connectionID), zap.Error(err))
		co.hub.Send(connectionID, EventError, ErrorMessage{Message: msgActivationFailed})
		return err
	}
	if p == nil || !p.Role.CanActivate() {
		co.hub.Send(connectionID, EventError, ErrorMessage{Message: msgDirectorOnly})
		return ErrRejected
	}

	room, err := co.rooms.Activate(ctx, co.roomID)
	if err != nil {
		co.logger.Error("activate: room state", zap.String("room_id", co.roomID), zap.Error(err))
		co.hub.Send(connectionID, EventError, ErrorMessage{Message: msgActivationFailed})
		return err
	}

	co.hub.Broadcast(co.roomID, EventStartExperience, nil)
	co.logger.Info("experience activated",
		zap.String("room_id", room.RoomID),
		zap.String("director", p.Name),
	)
	return nil
}

// HandleMove relays a movement sample to every other member of the sender's
// room. Position is never persisted; this is a pure fan-out with
// fire-and-forget delivery.
func (co *Coordinator) HandleMove(connectionID, roomID string, mv MoveUpdate) {
	co.hub.BroadcastExcept(roomID, connectionID, EventPlayerMove, MoveRelay{
		ID:       connectionID,
		Position: mv.Position,
		Rotation: mv.Rotation,
	})
}

// HandleDisconnect removes the participant, if any, and notifies the room.
// A connection that closed before joining is a silent no-op: disconnect can
// race a join that never completed.
func (co *Coordinator) HandleDisconnect(ctx context.Context, connectionID string) {
	p, err := co.participants.Delete(ctx, connectionID)
	if err != nil {
		co.logger.Error("disconnect: delete participant", zap.String("conn_id", connectionID), zap.Error(err))
		return
	}
	if p == nil {
		return
	}

	co.hub.Broadcast(p.RoomID, EventUserLeft, UserLeft{ID: p.ConnectionID, Name: p.Name})
	co.logger.Info("participant left",
		zap.String("conn_id", p.ConnectionID),
		zap.String("name", p.Name),
	)
}

// defaultName derives a placeholder display name from the connection id.
func defaultName(connectionID string) string {
	short := connectionID
	if len(short) > 6 {
		short = short[:6]
	}
	return "User-" + short
}
