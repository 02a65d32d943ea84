package offline

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActionType is the kind of mutation queued while offline.
type ActionType string

const (
	ActionWater    ActionType = "water"
	ActionReminder ActionType = "reminder"
	ActionDelete   ActionType = "delete"
)

// ReminderData carries the payload of an ActionReminder. Water and delete
// actions need nothing beyond the plant id, so Data stays nil for them.
type ReminderData struct {
	ReminderType   string `json:"reminder_type"`
	IntervalDays   int    `json:"interval_days"`
	FertilizerType string `json:"fertilizer_type,omitempty"`
}

// PendingAction is one queued mutation. IDs are generated timestamp-first
// so lexicographic order equals creation order, which lets the queue drain
// FIFO with a plain ORDER BY id.
type PendingAction struct {
	ID        string
	Type      ActionType
	PlantID   int64
	Data      *ReminderData
	CreatedAt time.Time
}

// NewAction builds a PendingAction with a sortable unique id.
func NewAction(t ActionType, plantID int64, data *ReminderData, now time.Time) PendingAction {
	suffix := uuid.NewString()[:8]
	return PendingAction{
		ID:        fmt.Sprintf("%020d-%s-%d-%s", now.UnixNano(), t, plantID, suffix),
		Type:      t,
		PlantID:   plantID,
		Data:      data,
		CreatedAt: now,
	}
}

// AddPendingAction appends a to the queue.
func (s *Store) AddPendingAction(ctx context.Context, a PendingAction) error {
	var payload sql.NullString
	if a.Data != nil {
		b, err := json.Marshal(a.Data)
		if err != nil {
			return fmt.Errorf("marshal action data: %w", err)
		}
		payload = sql.NullString{String: string(b), Valid: true}
	}
	const q = `INSERT INTO pending_actions (id, type, plant_id, data, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, a.ID, string(a.Type), a.PlantID, payload, fmtTime(a.CreatedAt))
	return err
}

// PendingActions returns the queue in creation order.
func (s *Store) PendingActions(ctx context.Context) ([]PendingAction, error) {
	const q = `SELECT id, type, plant_id, data, created_at FROM pending_actions ORDER BY id ASC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []PendingAction{}
	for rows.Next() {
		var a PendingAction
		var typ, created string
		var payload sql.NullString
		if err := rows.Scan(&a.ID, &typ, &a.PlantID, &payload, &created); err != nil {
			return nil, err
		}
		a.Type = ActionType(typ)
		if payload.Valid {
			var d ReminderData
			if err := json.Unmarshal([]byte(payload.String), &d); err != nil {
				return nil, fmt.Errorf("action %s data: %w", a.ID, err)
			}
			a.Data = &d
		}
		if a.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("action %s created_at: %w", a.ID, err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// RemovePendingAction deletes one queued action by id.
func (s *Store) RemovePendingAction(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pending_actions WHERE id = ?`, id)
	return err
}

// ClearPendingActions empties the queue.
func (s *Store) ClearPendingActions(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pending_actions`)
	return err
}

// Compact drops actions made pointless by a later delete of the same plant:
// once the plant is gone server-side, replaying its earlier waters or
// reminder changes would only produce not-found errors. The delete itself
// and everything for other plants keep their relative order.
func Compact(actions []PendingAction) []PendingAction {
	deleteAhead := map[int64]bool{}
	drop := make([]bool, len(actions))
	for i := len(actions) - 1; i >= 0; i-- {
		a := actions[i]
		if a.Type == ActionDelete {
			deleteAhead[a.PlantID] = true
			continue
		}
		if deleteAhead[a.PlantID] {
			drop[i] = true
		}
	}
	kept := make([]PendingAction, 0, len(actions))
	for i, a := range actions {
		if !drop[i] {
			kept = append(kept, a)
		}
	}
	return kept
}
