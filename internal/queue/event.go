// Package queue defines message payloads exchanged over the message broker.
package queue

// CareConfirmedEvent is published when a watering or fertilizing
// confirmation succeeds. It carries enough information for downstream
// consumers (notification scheduling, analytics) to act without querying
// the primary database.
type CareConfirmedEvent struct {
	UserPlantID    uint64 `json:"user_plant_id"`
	UserID         uint64 `json:"user_id"`
	GardenID       uint64 `json:"garden_id"`
	PlantName      string `json:"plant_name"`
	Kind           string `json:"kind"` // watered | fertilized
	FertilizerType string `json:"fertilizer_type,omitempty"`
	IntervalDays   int    `json:"interval_days"`
	NextDueAt      string `json:"next_due_at"`
	ConfirmedAt    string `json:"confirmed_at"`
}
