package models

import (
	"time"
)

// Room tracks per-room activation state. Activation is one-way for the
// lifetime of the record; membership is derived from participants.
type Room struct {
	RoomID      string     `json:"room_id"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
}
