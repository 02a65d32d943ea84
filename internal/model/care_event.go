package model

import "time"

// Care event kinds stored in care_events.kind.
const (
	CareWatered     = "watered"
	CareFertilized  = "fertilized"
	CareReminderSet = "reminder_set"
)

// CareEvent is one row of a user plant's care history. Events are append
// only and are removed together with their plant via the FK cascade.
//
// Fields:
//  ID             – primary key identifier.
//  UserPlantID    – plant the event belongs to.
//  Kind           – watered | fertilized | reminder_set.
//  FertilizerType – fertilizer used, when Kind is fertilized (nullable).
//  OccurredAt     – when the event happened.
type CareEvent struct {
	ID             uint64    // care_events.id
	UserPlantID    uint64    // care_events.user_plant_id
	Kind           string    // care_events.kind
	FertilizerType *string   // care_events.fertilizer_type (nullable)
	OccurredAt     time.Time // care_events.occurred_at
}
