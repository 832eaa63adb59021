package lobby

import (
	"github.com/iamezell/arcbeta/internal/models"
)

// Wire event names, fixed by the presentation-layer contract.
const (
	// client -> server
	EventJoinLobby     = "joinLobby"
	EventActivateLevel = "activateLevel"
	EventPlayerMove    = "playerMove"

	// server -> client
	EventUserJoined      = "userJoined"
	EventLobbyState      = "lobbyState"
	EventStartExperience = "startExperience"
	EventUserLeft        = "userLeft"
	EventError           = "error"
)

// Vector3 is a position or Euler rotation sample.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// JoinRequest is the joinLobby payload.
type JoinRequest struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

// MoveUpdate is the playerMove payload from a client.
type MoveUpdate struct {
	Position Vector3 `json:"position"`
	Rotation Vector3 `json:"rotation"`
}

// MoveRelay is the playerMove payload rebroadcast to other room members,
// tagged with the sender's connection id.
type MoveRelay struct {
	ID       string  `json:"id"`
	Position Vector3 `json:"position"`
	Rotation Vector3 `json:"rotation"`
}

// UserInfo describes one participant in userJoined and lobbyState payloads.
type UserInfo struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Role models.Role `json:"role"`
}

// LobbyState is the full-room snapshot sent to a joining client.
type LobbyState struct {
	Users []UserInfo `json:"users"`
}

// UserLeft is the userLeft payload.
type UserLeft struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ErrorMessage is the scoped error payload; clients display Message verbatim.
type ErrorMessage struct {
	Message string `json:"message"`
}

func userInfo(p models.Participant) UserInfo {
	return UserInfo{ID: p.ConnectionID, Name: p.Name, Role: p.Role}
}
