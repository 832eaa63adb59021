// Package rooms persists per-room activation state in PostgreSQL.
package rooms

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iamezell/arcbeta/internal/models"
)

// Repository handles the rooms table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a room state repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetOrCreate returns the room record, creating an inactive one if absent.
func (r *Repository) GetOrCreate(ctx context.Context, roomID string) (*models.Room, error) {
	const q = `INSERT INTO rooms (room_id) VALUES ($1)
		ON CONFLICT (room_id) DO UPDATE SET room_id = EXCLUDED.room_id
		RETURNING room_id, is_active, created_at, activated_at`
	var room models.Room
	err := r.pool.QueryRow(ctx, q, roomID).Scan(&room.RoomID, &room.IsActive, &room.CreatedAt, &room.ActivatedAt)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Activate marks the room active, creating the record if needed. Every call
// refreshes activated_at, including re-activation of an already-active room.
func (r *Repository) Activate(ctx context.Context, roomID string) (*models.Room, error) {
	const q = `INSERT INTO rooms (room_id, is_active, activated_at) VALUES ($1, TRUE, NOW())
		ON CONFLICT (room_id) DO UPDATE SET is_active = TRUE, activated_at = NOW()
		RETURNING room_id, is_active, created_at, activated_at`
	var room models.Room
	err := r.pool.QueryRow(ctx, q, roomID).Scan(&room.RoomID, &room.IsActive, &room.CreatedAt, &room.ActivatedAt)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetStatus reports the room's state. An unknown room reads as inactive
// rather than erroring; status reads are total.
func (r *Repository) GetStatus(ctx context.Context, roomID string) (*models.Room, error) {
	const q = `SELECT room_id, is_active, created_at, activated_at FROM rooms WHERE room_id = $1`
	var room models.Room
	err := r.pool.QueryRow(ctx, q, roomID).Scan(&room.RoomID, &room.IsActive, &room.CreatedAt, &room.ActivatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return &models.Room{RoomID: roomID}, nil
		}
		return nil, err
	}
	return &room, nil
}
