package handler

// plant.go implements the user-plant endpoints consumed by the garden screen
// and by the offline client's replay loop. Every mutation returns the fully
// resolved plant so an online client can update without a second fetch; the
// offline client ignores the body and performs one authoritative refetch
// after draining its queue.

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/saeedpanahi1994/goldan-plant-care/internal/model"
	"github.com/saeedpanahi1994/goldan-plant-care/internal/queue"
	"github.com/saeedpanahi1994/goldan-plant-care/internal/reminder"
	"github.com/saeedpanahi1994/goldan-plant-care/internal/repository"
	queue_publisher "github.com/saeedpanahi1994/goldan-plant-care/internal/service"
)

// plantResponse is the wire shape of a user plant. Interval fields carry
// both the catalog defaults and the resolved effective values so the client
// can compute due-day buckets without re-implementing interval resolution.
type plantResponse struct {
	ID                          uint64     `json:"id"`
	GardenID                    uint64     `json:"garden_id"`
	PlantID                     uint64     `json:"plant_id"`
	Name                        string     `json:"name"`
	ScientificName              string     `json:"scientific_name"`
	Nickname                    *string    `json:"nickname,omitempty"`
	ImageURL                    string     `json:"image_url"`
	HealthStatus                string     `json:"health_status"`
	CustomWateringInterval      *int       `json:"custom_watering_interval,omitempty"`
	CustomFertilizerInterval    *int       `json:"custom_fertilizer_interval,omitempty"`
	DefaultWateringInterval     int        `json:"default_watering_interval"`
	DefaultFertilizerInterval   int        `json:"default_fertilizer_interval"`
	EffectiveWateringInterval   int        `json:"effective_watering_interval"`
	EffectiveFertilizerInterval int        `json:"effective_fertilizer_interval"`
	LastWateredAt               time.Time  `json:"last_watered_at"`
	NextWateringAt              time.Time  `json:"next_watering_at"`
	LastFertilizedAt            *time.Time `json:"last_fertilized_at,omitempty"`
	NextFertilizingAt           *time.Time `json:"next_fertilizing_at,omitempty"`
	LastFertilizerType          *string    `json:"last_fertilizer_type,omitempty"`
	DaysUntilWatering           int        `json:"days_until_watering"`
	WateringUrgency             string     `json:"watering_urgency"`
}

func toPlantResponse(p *repository.UserPlantRow, now time.Time) plantResponse {
	days := reminder.DaysUntil(p.NextWateringAt, now)
	return plantResponse{
		ID:                          p.ID,
		GardenID:                    p.GardenID,
		PlantID:                     p.PlantID,
		Name:                        p.CommonName,
		ScientificName:              p.ScientificName,
		Nickname:                    p.Nickname,
		ImageURL:                    p.ImageURL,
		HealthStatus:                p.HealthStatus,
		CustomWateringInterval:      p.CustomWateringInterval,
		CustomFertilizerInterval:    p.CustomFertilizerInterval,
		DefaultWateringInterval:     p.DefaultWateringInterval,
		DefaultFertilizerInterval:   p.DefaultFertilizerInterval,
		EffectiveWateringInterval:   p.EffectiveWateringInterval(),
		EffectiveFertilizerInterval: p.EffectiveFertilizerInterval(),
		LastWateredAt:               p.LastWateredAt,
		NextWateringAt:              p.NextWateringAt,
		LastFertilizedAt:            p.LastFertilizedAt,
		NextFertilizingAt:           p.NextFertilizingAt,
		LastFertilizerType:          p.LastFertilizerType,
		DaysUntilWatering:           days,
		WateringUrgency:             string(reminder.Classify(days)),
	}
}

// ListPlants handles GET /v1/plants and returns all of the user's plants
// with resolved intervals, ordered most urgent first.
func (h *PlantHandler) ListPlants(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	rows, err := h.UserPlantRepo.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not load plants")
	}
	now := h.now()
	plants := make([]plantResponse, 0, len(rows))
	for i := range rows {
		plants = append(plants, toPlantResponse(&rows[i], now))
	}
	return respond(c, http.StatusOK, echo.Map{"plants": plants})
}

// AddPlant handles POST /v1/gardens/:id/plants and creates a user plant for
// a catalog species inside the given garden.
func (h *PlantHandler) AddPlant(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	gardenID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid garden id")
	}
	var body struct {
		PlantID  uint64  `json:"plant_id"`
		Nickname *string `json:"nickname"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if body.PlantID == 0 {
		return fail(c, http.StatusBadRequest, "plant_id is required")
	}
	ctx := c.Request().Context()
	if _, err := h.GardenRepo.GetByIDAndOwner(ctx, gardenID, userID); err != nil {
		if err == repository.ErrGardenNotFound {
			return fail(c, http.StatusNotFound, "garden not found")
		}
		return fail(c, http.StatusInternalServerError, "db error")
	}
	catalog, err := h.CatalogRepo.GetByID(ctx, body.PlantID)
	if err != nil {
		if err == repository.ErrCatalogPlantNotFound {
			return fail(c, http.StatusNotFound, "catalog plant not found")
		}
		return fail(c, http.StatusInternalServerError, "db error")
	}
	now := h.now()
	row, err := h.UserPlantRepo.AddToGarden(ctx, userID, gardenID, catalog, body.Nickname, now)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not add plant")
	}
	return respond(c, http.StatusCreated, echo.Map{"plant": toPlantResponse(row, now)})
}

// WaterPlant handles POST /v1/plants/:id/water. Confirming always pushes the
// next due date a full effective interval from now; an overdue plant does
// not catch up.
func (h *PlantHandler) WaterPlant(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid plant id")
	}
	now := h.now()
	row, err := h.UserPlantRepo.ConfirmWatering(c.Request().Context(), id, userID, now)
	if err != nil {
		if err == repository.ErrPlantNotFound {
			return fail(c, http.StatusNotFound, "plant not found")
		}
		return fail(c, http.StatusInternalServerError, "could not confirm watering")
	}
	h.recordCare(c, row, model.CareWatered, nil, now)
	return respond(c, http.StatusOK, echo.Map{"plant": toPlantResponse(row, now)})
}

// FertilizePlant handles POST /v1/plants/:id/fertilize, optionally recording
// the fertilizer type supplied by the caller.
func (h *PlantHandler) FertilizePlant(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid plant id")
	}
	var body struct {
		FertilizerType *string `json:"fertilizer_type"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	now := h.now()
	row, err := h.UserPlantRepo.ConfirmFertilizing(c.Request().Context(), id, userID, now, body.FertilizerType)
	if err != nil {
		if err == repository.ErrPlantNotFound {
			return fail(c, http.StatusNotFound, "plant not found")
		}
		return fail(c, http.StatusInternalServerError, "could not confirm fertilizing")
	}
	h.recordCare(c, row, model.CareFertilized, body.FertilizerType, now)
	return respond(c, http.StatusOK, echo.Map{"plant": toPlantResponse(row, now)})
}

// SetReminder handles PUT /v1/plants/:id/reminder. Setting an interval also
// restarts the countdown from now. Invalid intervals are rejected with 400,
// never clamped.
func (h *PlantHandler) SetReminder(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid plant id")
	}
	var body struct {
		ReminderType   string  `json:"reminder_type"`
		IntervalDays   int     `json:"interval_days"`
		FertilizerType *string `json:"fertilizer_type"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	rtype := strings.TrimSpace(body.ReminderType)
	if rtype != repository.ReminderWatering && rtype != repository.ReminderFertilizing {
		return fail(c, http.StatusBadRequest, "reminder_type must be watering or fertilizing")
	}
	if body.IntervalDays <= 0 {
		return fail(c, http.StatusBadRequest, "interval_days must be a positive number of days")
	}
	now := h.now()
	row, err := h.UserPlantRepo.SetReminder(c.Request().Context(), id, userID, rtype, body.IntervalDays, body.FertilizerType, now)
	if err != nil {
		if err == repository.ErrPlantNotFound {
			return fail(c, http.StatusNotFound, "plant not found")
		}
		return fail(c, http.StatusInternalServerError, "could not set reminder")
	}
	h.recordCare(c, row, model.CareReminderSet, body.FertilizerType, now)
	return respond(c, http.StatusOK, echo.Map{"plant": toPlantResponse(row, now)})
}

// UpdateHealth handles PATCH /v1/plants/:id/health.
func (h *PlantHandler) UpdateHealth(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid plant id")
	}
	var body struct {
		HealthStatus string `json:"health_status"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if !model.ValidHealthStatus(body.HealthStatus) {
		return fail(c, http.StatusBadRequest, "invalid health_status")
	}
	if err := h.UserPlantRepo.UpdateHealth(c.Request().Context(), id, userID, body.HealthStatus); err != nil {
		if err == repository.ErrPlantNotFound {
			return fail(c, http.StatusNotFound, "plant not found")
		}
		return fail(c, http.StatusInternalServerError, "could not update health")
	}
	return respond(c, http.StatusOK, echo.Map{})
}

// DeletePlant handles DELETE /v1/plants/:id. Care events are removed by the
// FK cascade.
func (h *PlantHandler) DeletePlant(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid plant id")
	}
	if err := h.UserPlantRepo.Delete(c.Request().Context(), id, userID); err != nil {
		if err == repository.ErrPlantNotFound {
			return fail(c, http.StatusNotFound, "plant not found")
		}
		return fail(c, http.StatusInternalServerError, "could not delete plant")
	}
	return respond(c, http.StatusOK, echo.Map{})
}

// PlantHistory handles GET /v1/plants/:id/history and returns the care
// events of a plant, newest first.
func (h *PlantHandler) PlantHistory(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid plant id")
	}
	ctx := c.Request().Context()
	if _, err := h.UserPlantRepo.GetByIDAndOwner(ctx, id, userID); err != nil {
		if err == repository.ErrPlantNotFound {
			return fail(c, http.StatusNotFound, "plant not found")
		}
		return fail(c, http.StatusInternalServerError, "db error")
	}
	events, err := h.CareEventRepo.ListByPlant(ctx, id, userID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not load history")
	}
	type eventResponse struct {
		ID             uint64    `json:"id"`
		Kind           string    `json:"kind"`
		FertilizerType *string   `json:"fertilizer_type,omitempty"`
		OccurredAt     time.Time `json:"occurred_at"`
	}
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{ID: e.ID, Kind: e.Kind, FertilizerType: e.FertilizerType, OccurredAt: e.OccurredAt})
	}
	return respond(c, http.StatusOK, echo.Map{"events": out})
}

// recordCare appends a care history row and publishes a CareConfirmedEvent.
// Both are best-effort: a broker or history failure must not fail the
// confirmation the user already made.
func (h *PlantHandler) recordCare(c echo.Context, row *repository.UserPlantRow, kind string, fertilizerType *string, now time.Time) {
	ev := &model.CareEvent{UserPlantID: row.ID, Kind: kind, FertilizerType: fertilizerType, OccurredAt: now}
	if err := h.CareEventRepo.Insert(c.Request().Context(), ev); err != nil {
		c.Logger().Warnf("care history insert failed for plant %d: %v", row.ID, err)
	}
	if kind == model.CareReminderSet {
		return // reminder changes are history-only, no broker event
	}
	interval := row.EffectiveWateringInterval()
	nextDue := row.NextWateringAt
	if kind == model.CareFertilized {
		interval = row.EffectiveFertilizerInterval()
		if row.NextFertilizingAt != nil {
			nextDue = *row.NextFertilizingAt
		}
	}
	fert := ""
	if fertilizerType != nil {
		fert = *fertilizerType
	}
	event := queue.CareConfirmedEvent{
		UserPlantID:    row.ID,
		UserID:         row.UserID,
		GardenID:       row.GardenID,
		PlantName:      row.CommonName,
		Kind:           kind,
		FertilizerType: fert,
		IntervalDays:   interval,
		NextDueAt:      nextDue.UTC().Format(time.RFC3339),
		ConfirmedAt:    now.UTC().Format(time.RFC3339),
	}
	// Publish outside the request lifetime; the broker may be slow.
	go func() {
		ctx, cancel := contextWithTimeout()
		defer cancel()
		_ = queue_publisher.PublishCareConfirmed(ctx, event)
	}()
}
