package model

import "time"

// Health status values stored in user_plants.health_status.
const (
	HealthHealthy        = "healthy"
	HealthNeedsAttention = "needs_attention"
	HealthSick           = "sick"
	HealthRecovering     = "recovering"
)

// ValidHealthStatus reports whether s is one of the recognised health
// status values.
func ValidHealthStatus(s string) bool {
	switch s {
	case HealthHealthy, HealthNeedsAttention, HealthSick, HealthRecovering:
		return true
	}
	return false
}

// UserPlant is a user's personal instance of a catalog plant inside one of
// their gardens. It carries the care schedule state: optional per-plant
// interval overrides plus the last/next due timestamps that watering and
// fertilizing confirmations advance. The invariant maintained by the
// repository is next_watering_at = last_watered_at + effective interval,
// where the effective interval is the custom override when present and
// positive, otherwise the catalog default.
//
// Fields:
//  ID                       – primary key identifier.
//  UserID                   – owning user.
//  GardenID                 – garden this plant lives in.
//  PlantID                  – catalog species reference.
//  Nickname                 – optional user-given name.
//  CustomWateringInterval   – optional watering override in days.
//  CustomFertilizerInterval – optional fertilizing override in days.
//  HealthStatus             – healthy | needs_attention | sick | recovering.
//  LastWateredAt            – most recent watering confirmation.
//  NextWateringAt           – next watering due date.
//  LastFertilizedAt         – most recent fertilizing confirmation (nullable).
//  NextFertilizingAt        – next fertilizing due date (nullable).
//  LastFertilizerType       – fertilizer used at the last confirmation.
//  CreatedAt                – creation timestamp.
//  UpdatedAt                – last update timestamp.
type UserPlant struct {
	ID                       uint64     // user_plants.id
	UserID                   uint64     // user_plants.user_id
	GardenID                 uint64     // user_plants.garden_id
	PlantID                  uint64     // user_plants.plant_id
	Nickname                 *string    // user_plants.nickname (nullable)
	CustomWateringInterval   *int       // user_plants.custom_watering_interval (nullable)
	CustomFertilizerInterval *int       // user_plants.custom_fertilizer_interval (nullable)
	HealthStatus             string     // user_plants.health_status
	LastWateredAt            time.Time  // user_plants.last_watered_at
	NextWateringAt           time.Time  // user_plants.next_watering_at
	LastFertilizedAt         *time.Time // user_plants.last_fertilized_at (nullable)
	NextFertilizingAt        *time.Time // user_plants.next_fertilizing_at (nullable)
	LastFertilizerType       *string    // user_plants.last_fertilizer_type (nullable)
	CreatedAt                time.Time  // user_plants.created_at
	UpdatedAt                time.Time  // user_plants.updated_at
}
