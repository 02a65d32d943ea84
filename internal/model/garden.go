package model

import "time"

// Garden groups a user's plants under a named collection. A user may own
// several gardens (balcony, office, ...); deleting a garden cascades to the
// user plants inside it.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owning user.
//  Name      – display name of the garden.
//  Location  – optional free-text location hint.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Garden struct {
	ID        uint64    // gardens.id
	UserID    uint64    // gardens.user_id
	Name      string    // gardens.name
	Location  *string   // gardens.location (nullable)
	CreatedAt time.Time // gardens.created_at
	UpdatedAt time.Time // gardens.updated_at
}
