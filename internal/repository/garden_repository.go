// This file provides persistence for gardens. Ownership is enforced in the
// queries themselves: every lookup and mutation carries the user_id so a
// user can never reach another user's garden.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/saeedpanahi1994/goldan-plant-care/internal/model"
)

// GardenRepo encapsulates all database queries related to gardens.
type GardenRepo struct {
	db *sql.DB
}

// NewGardenRepo constructs a GardenRepo with the provided DB handle.
func NewGardenRepo(db *sql.DB) *GardenRepo {
	return &GardenRepo{db: db}
}

// Create inserts a new garden for the owning user and populates the
// generated ID and timestamp fields on the given struct.
func (r *GardenRepo) Create(ctx context.Context, g *model.Garden) error {
	const q = `INSERT INTO gardens (user_id, name, location) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, g.UserID, g.Name, g.Location)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM gardens WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, g.ID).Scan(&g.CreatedAt, &g.UpdatedAt)
}

// GetByIDAndOwner fetches a garden by id only when it belongs to the given
// user. It returns ErrGardenNotFound otherwise.
func (r *GardenRepo) GetByIDAndOwner(ctx context.Context, id, userID uint64) (*model.Garden, error) {
	const q = `SELECT id, user_id, name, location, created_at, updated_at
	           FROM gardens WHERE id = ? AND user_id = ?`
	var g model.Garden
	err := r.db.QueryRowContext(ctx, q, id, userID).Scan(
		&g.ID, &g.UserID, &g.Name, &g.Location, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGardenNotFound
		}
		return nil, err
	}
	return &g, nil
}

// ListByOwner returns all gardens of a user ordered by creation time.
func (r *GardenRepo) ListByOwner(ctx context.Context, userID uint64) ([]model.Garden, error) {
	const q = `SELECT id, user_id, name, location, created_at, updated_at
	           FROM gardens WHERE user_id = ? ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Garden{}
	for rows.Next() {
		var g model.Garden
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.Location, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a garden owned by the given user. The FK cascade removes
// the user plants (and their care events) inside it. ErrGardenNotFound is
// returned when no row was deleted.
func (r *GardenRepo) Delete(ctx context.Context, id, userID uint64) error {
	const q = `DELETE FROM gardens WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrGardenNotFound
	}
	return nil
}
