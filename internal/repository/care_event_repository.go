// This file provides persistence for care events, the append-only history of
// watering and fertilizing confirmations per user plant.
package repository

import (
	"context"
	"database/sql"

	"github.com/saeedpanahi1994/goldan-plant-care/internal/model"
)

// CareEventRepo encapsulates database queries for care history rows.
type CareEventRepo struct {
	db *sql.DB
}

// NewCareEventRepo constructs a CareEventRepo with the provided DB handle.
func NewCareEventRepo(db *sql.DB) *CareEventRepo {
	return &CareEventRepo{db: db}
}

// Insert appends a care event and populates the generated ID.
func (r *CareEventRepo) Insert(ctx context.Context, e *model.CareEvent) error {
	const q = `INSERT INTO care_events (user_plant_id, kind, fertilizer_type, occurred_at) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.UserPlantID, e.Kind, e.FertilizerType, e.OccurredAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// ListByPlant returns the care history of a plant, newest first. Ownership
// is enforced through the join with user_plants.
func (r *CareEventRepo) ListByPlant(ctx context.Context, plantID, userID uint64) ([]model.CareEvent, error) {
	const q = `SELECT ce.id, ce.user_plant_id, ce.kind, ce.fertilizer_type, ce.occurred_at
	           FROM care_events ce
	           JOIN user_plants up ON up.id = ce.user_plant_id
	           WHERE ce.user_plant_id = ? AND up.user_id = ?
	           ORDER BY ce.occurred_at DESC, ce.id DESC`
	rows, err := r.db.QueryContext(ctx, q, plantID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.CareEvent{}
	for rows.Next() {
		var e model.CareEvent
		if err := rows.Scan(&e.ID, &e.UserPlantID, &e.Kind, &e.FertilizerType, &e.OccurredAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
