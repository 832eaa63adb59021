// Package participants persists the participant registry in PostgreSQL,
// keyed by connection id.
package participants

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iamezell/arcbeta/internal/models"
)

// Repository handles the participants table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a participant repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert inserts or replaces the participant for its connection id. A repeat
// join on the same connection overwrites the record rather than duplicating
// it; the original created_at survives the overwrite.
func (r *Repository) Upsert(ctx context.Context, p *models.Participant) error {
	const q = `INSERT INTO participants (connection_id, name, role, room_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (connection_id) DO UPDATE
			SET name = EXCLUDED.name, role = EXCLUDED.role, room_id = EXCLUDED.room_id
		RETURNING created_at`
	return r.pool.QueryRow(ctx, q, p.ConnectionID, p.Name, p.Role, p.RoomID).Scan(&p.CreatedAt)
}

// Get returns the participant for a connection id, or nil if absent.
func (r *Repository) Get(ctx context.Context, connectionID string) (*models.Participant, error) {
	const q = `SELECT connection_id, name, role, room_id, created_at
		FROM participants WHERE connection_id = $1`
	var p models.Participant
	err := r.pool.QueryRow(ctx, q, connectionID).Scan(&p.ConnectionID, &p.Name, &p.Role, &p.RoomID, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ListByRoom returns all participants in a room in insertion order.
func (r *Repository) ListByRoom(ctx context.Context, roomID string) ([]models.Participant, error) {
	const q = `SELECT connection_id, name, role, room_id, created_at
		FROM participants WHERE room_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ConnectionID, &p.Name, &p.Role, &p.RoomID, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete removes and returns the participant, or nil, nil when no record
// exists. Disconnect may race a join that never completed, so a missing row
// is not an error.
func (r *Repository) Delete(ctx context.Context, connectionID string) (*models.Participant, error) {
	const q = `DELETE FROM participants WHERE connection_id = $1
		RETURNING connection_id, name, role, room_id, created_at`
	var p models.Participant
	err := r.pool.QueryRow(ctx, q, connectionID).Scan(&p.ConnectionID, &p.Name, &p.Role, &p.RoomID, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Clear wipes the registry. Run at boot: a participant row is only valid
// while its connection is open, and no connection survives a restart.
func (r *Repository) Clear(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM participants`)
	return err
}
