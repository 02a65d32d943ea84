package handler // handler defines http handlers for the Goldan API

import (
	"context" // context carries deadlines for background publishes
	"errors"  // errors provides sentinel values used in getUserID
	"strconv" // strconv converts strings to numeric types
	"time"    // time supplies timestamps for care confirmations

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/saeedpanahi1994/goldan-plant-care/internal/repository" // repository holds the data access layer
)

// PlantHandler bundles the repositories used by the garden and plant
// endpoints. Now is injectable so tests can pin the clock; production
// wiring leaves it nil and time.Now is used.
type PlantHandler struct {
	GardenRepo    *repository.GardenRepo    // GardenRepo provides garden persistence
	CatalogRepo   *repository.CatalogRepo   // CatalogRepo provides catalog species persistence
	UserPlantRepo *repository.UserPlantRepo // UserPlantRepo provides user plant persistence
	CareEventRepo *repository.CareEventRepo // CareEventRepo provides care history persistence
	Now           func() time.Time          // Now returns the current time (nil means time.Now)
}

// NewPlantHandler constructs a PlantHandler and panics if any dependency is nil.
func NewPlantHandler(gardenRepo *repository.GardenRepo, catalogRepo *repository.CatalogRepo, userPlantRepo *repository.UserPlantRepo, careEventRepo *repository.CareEventRepo) *PlantHandler {
	if gardenRepo == nil || catalogRepo == nil || userPlantRepo == nil || careEventRepo == nil {
		panic("nil repository passed to NewPlantHandler")
	}
	return &PlantHandler{
		GardenRepo:    gardenRepo,
		CatalogRepo:   catalogRepo,
		UserPlantRepo: userPlantRepo,
		CareEventRepo: careEventRepo,
	}
}

func (h *PlantHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

// contextWithTimeout returns a short-lived context for work that outlives
// the originating request, such as broker publishes.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id") // set by the JWTAuth middleware
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}
