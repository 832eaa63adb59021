package models

import (
	"time"
)

// Role is a participant's role in the lobby.
type Role string

const (
	RoleDirector Role = "Director"
	RoleActor    Role = "Actor"
	RoleAudience Role = "Audience"
)

// Roles lists all valid roles.
var Roles = []Role{RoleDirector, RoleActor, RoleAudience}

// ParseRole validates a client-supplied role string against the closed enumeration.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleDirector, RoleActor, RoleAudience:
		return true
	}
	return false
}

// CanActivate reports whether the role may trigger the shared experience.
func (r Role) CanActivate() bool {
	return r == RoleDirector
}

// Participant is a connected, role-assigned user occupying one room.
// A record exists iff the underlying connection is open and joined.
type Participant struct {
	ConnectionID string    `json:"id"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	RoomID       string    `json:"room_id"`
	CreatedAt    time.Time `json:"created_at"`
}
