// This file provides persistence for user plants, the per-user instances of
// catalog species that carry the care schedule. All due-date arithmetic is
// delegated to the reminder package so the server and the offline client
// agree on the semantics.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/saeedpanahi1994/goldan-plant-care/internal/model"
	"github.com/saeedpanahi1994/goldan-plant-care/internal/reminder"
)

// Reminder types accepted by SetReminder.
const (
	ReminderWatering    = "watering"
	ReminderFertilizing = "fertilizing"
)

// ErrInvalidReminderType is returned by SetReminder for an unknown type.
var ErrInvalidReminderType = errors.New("invalid reminder type")

// UserPlantRow is a user plant joined with its catalog species. The catalog
// fields let callers resolve effective intervals and render the plant
// without a second lookup.
type UserPlantRow struct {
	model.UserPlant
	CommonName                string // catalog_plants.common_name
	ScientificName            string // catalog_plants.scientific_name
	ImageURL                  string // catalog_plants.image_url
	DefaultWateringInterval   int    // catalog_plants.default_watering_interval_days
	DefaultFertilizerInterval int    // catalog_plants.default_fertilizer_interval_days
}

// EffectiveWateringInterval resolves the watering interval governing this row.
func (p *UserPlantRow) EffectiveWateringInterval() int {
	return reminder.EffectiveInterval(p.CustomWateringInterval, p.DefaultWateringInterval)
}

// EffectiveFertilizerInterval resolves the fertilizing interval governing this row.
func (p *UserPlantRow) EffectiveFertilizerInterval() int {
	return reminder.EffectiveInterval(p.CustomFertilizerInterval, p.DefaultFertilizerInterval)
}

// UserPlantRepo encapsulates all database queries related to user plants.
type UserPlantRepo struct {
	db *sql.DB
}

// NewUserPlantRepo constructs a UserPlantRepo with the provided DB handle.
func NewUserPlantRepo(db *sql.DB) *UserPlantRepo {
	return &UserPlantRepo{db: db}
}

// joinedColumns selects a user plant together with its catalog species.
const joinedColumns = `up.id, up.user_id, up.garden_id, up.plant_id, up.nickname,
       up.custom_watering_interval, up.custom_fertilizer_interval, up.health_status,
       up.last_watered_at, up.next_watering_at, up.last_fertilized_at, up.next_fertilizing_at,
       up.last_fertilizer_type, up.created_at, up.updated_at,
       cp.common_name, cp.scientific_name, cp.image_url,
       cp.default_watering_interval_days, cp.default_fertilizer_interval_days`

const joinedFrom = ` FROM user_plants up JOIN catalog_plants cp ON cp.id = up.plant_id `

func scanRow(s interface{ Scan(...any) error }) (*UserPlantRow, error) {
	var p UserPlantRow
	err := s.Scan(
		&p.ID, &p.UserID, &p.GardenID, &p.PlantID, &p.Nickname,
		&p.CustomWateringInterval, &p.CustomFertilizerInterval, &p.HealthStatus,
		&p.LastWateredAt, &p.NextWateringAt, &p.LastFertilizedAt, &p.NextFertilizingAt,
		&p.LastFertilizerType, &p.CreatedAt, &p.UpdatedAt,
		&p.CommonName, &p.ScientificName, &p.ImageURL,
		&p.DefaultWateringInterval, &p.DefaultFertilizerInterval,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AddToGarden creates a user plant for the given catalog species inside a
// garden. The watering schedule is seeded as if the plant had just been
// watered: last_watered_at = now and next_watering_at a full default
// interval out. Fertilizing stays unscheduled until the first confirmation.
func (r *UserPlantRepo) AddToGarden(ctx context.Context, userID, gardenID uint64, catalog *model.CatalogPlant, nickname *string, now time.Time) (*UserPlantRow, error) {
	last, next := reminder.Confirm(now, catalog.DefaultWateringInterval)
	const q = `INSERT INTO user_plants
	           (user_id, garden_id, plant_id, nickname, health_status, last_watered_at, next_watering_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, userID, gardenID, catalog.ID, nickname, model.HealthHealthy, last, next)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByIDAndOwner(ctx, uint64(id), userID)
}

// GetByIDAndOwner fetches a user plant (joined with its catalog species) by
// id only when it belongs to the given user. It returns ErrPlantNotFound
// otherwise.
func (r *UserPlantRepo) GetByIDAndOwner(ctx context.Context, id, userID uint64) (*UserPlantRow, error) {
	const q = `SELECT ` + joinedColumns + joinedFrom + `WHERE up.id = ? AND up.user_id = ?`
	p, err := scanRow(r.db.QueryRowContext(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlantNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListByOwner returns all user plants of a user across their gardens,
// ordered by next watering due date so the most urgent come first.
func (r *UserPlantRepo) ListByOwner(ctx context.Context, userID uint64) ([]UserPlantRow, error) {
	const q = `SELECT ` + joinedColumns + joinedFrom + `WHERE up.user_id = ? ORDER BY up.next_watering_at ASC, up.id ASC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []UserPlantRow{}
	for rows.Next() {
		p, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ConfirmWatering records a watering confirmation at time now. The next due
// date becomes a full effective interval from now; an overdue plant does not
// catch up. The updated row is returned.
func (r *UserPlantRepo) ConfirmWatering(ctx context.Context, id, userID uint64, now time.Time) (*UserPlantRow, error) {
	p, err := r.GetByIDAndOwner(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	last, next := reminder.Confirm(now, p.EffectiveWateringInterval())
	const q = `UPDATE user_plants SET last_watered_at = ?, next_watering_at = ? WHERE id = ? AND user_id = ?`
	if _, err := r.db.ExecContext(ctx, q, last, next, id, userID); err != nil {
		return nil, err
	}
	p.LastWateredAt = last
	p.NextWateringAt = next
	return p, nil
}

// ConfirmFertilizing records a fertilizing confirmation at time now,
// optionally remembering the fertilizer type used. Semantics mirror
// ConfirmWatering with the fertilizer interval.
func (r *UserPlantRepo) ConfirmFertilizing(ctx context.Context, id, userID uint64, now time.Time, fertilizerType *string) (*UserPlantRow, error) {
	p, err := r.GetByIDAndOwner(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	last, next := reminder.Confirm(now, p.EffectiveFertilizerInterval())
	const q = `UPDATE user_plants SET last_fertilized_at = ?, next_fertilizing_at = ?, last_fertilizer_type = ? WHERE id = ? AND user_id = ?`
	if _, err := r.db.ExecContext(ctx, q, last, next, fertilizerType, id, userID); err != nil {
		return nil, err
	}
	p.LastFertilizedAt = &last
	p.NextFertilizingAt = &next
	p.LastFertilizerType = fertilizerType
	return p, nil
}

// SetReminder stores a custom interval override and restarts the countdown:
// the next due date becomes now + intervalDays rather than being derived
// from the last care event. Interval validation is the handler's job; this
// method assumes a positive number of days.
func (r *UserPlantRepo) SetReminder(ctx context.Context, id, userID uint64, reminderType string, intervalDays int, fertilizerType *string, now time.Time) (*UserPlantRow, error) {
	p, err := r.GetByIDAndOwner(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	next := reminder.ApplyReminder(now, intervalDays)
	switch reminderType {
	case ReminderWatering:
		const q = `UPDATE user_plants SET custom_watering_interval = ?, next_watering_at = ? WHERE id = ? AND user_id = ?`
		if _, err := r.db.ExecContext(ctx, q, intervalDays, next, id, userID); err != nil {
			return nil, err
		}
		p.CustomWateringInterval = &intervalDays
		p.NextWateringAt = next
	case ReminderFertilizing:
		const q = `UPDATE user_plants SET custom_fertilizer_interval = ?, next_fertilizing_at = ?, last_fertilizer_type = COALESCE(?, last_fertilizer_type) WHERE id = ? AND user_id = ?`
		if _, err := r.db.ExecContext(ctx, q, intervalDays, next, fertilizerType, id, userID); err != nil {
			return nil, err
		}
		p.CustomFertilizerInterval = &intervalDays
		p.NextFertilizingAt = &next
		if fertilizerType != nil {
			p.LastFertilizerType = fertilizerType
		}
	default:
		return nil, ErrInvalidReminderType
	}
	return p, nil
}

// UpdateHealth sets the health status of a user plant. The caller validates
// the status value.
func (r *UserPlantRepo) UpdateHealth(ctx context.Context, id, userID uint64, status string) error {
	const q = `UPDATE user_plants SET health_status = ? WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, q, status, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlantNotFound
	}
	return nil
}

// Delete removes a user plant owned by the given user. Care events cascade
// via FK. ErrPlantNotFound is returned when no row was deleted.
func (r *UserPlantRepo) Delete(ctx context.Context, id, userID uint64) error {
	const q = `DELETE FROM user_plants WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlantNotFound
	}
	return nil
}
