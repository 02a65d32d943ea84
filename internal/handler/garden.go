package handler // handler package contains garden CRUD handlers

import (
	"net/http" // http provides status code constants
	"strconv"  // strconv parses string identifiers to numeric types
	"strings"  // strings offers trimming utilities

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers

	"github.com/saeedpanahi1994/goldan-plant-care/internal/model"      // model holds database row types
	"github.com/saeedpanahi1994/goldan-plant-care/internal/repository" // repository holds the data access layer
)

// CreateGarden handles POST /v1/gardens and creates a garden for the authenticated user
func (h *PlantHandler) CreateGarden(c echo.Context) error {
	userID, err := getUserID(c) // extract the user ID from context
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var body struct { // anonymous struct to bind incoming JSON
		Name     string  `json:"name"`     // Name is the only required field
		Location *string `json:"location"` // Location is an optional hint
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return fail(c, http.StatusBadRequest, "name is required")
	}
	garden := &model.Garden{
		UserID:   userID,
		Name:     name,
		Location: body.Location,
	}
	if err := h.GardenRepo.Create(c.Request().Context(), garden); err != nil {
		return fail(c, http.StatusInternalServerError, "could not create garden")
	}
	return respond(c, http.StatusCreated, echo.Map{"garden": garden})
}

// ListGardens handles GET /v1/gardens and returns all gardens of the authenticated user
func (h *PlantHandler) ListGardens(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	items, err := h.GardenRepo.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "db error")
	}
	return respond(c, http.StatusOK, echo.Map{"gardens": items})
}

// DeleteGarden handles DELETE /v1/gardens/:id. The FK cascade removes the
// plants inside the garden together with their care history.
func (h *PlantHandler) DeleteGarden(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.GardenRepo.Delete(c.Request().Context(), id, userID); err != nil {
		if err == repository.ErrGardenNotFound {
			return fail(c, http.StatusNotFound, "garden not found")
		}
		return fail(c, http.StatusInternalServerError, "delete failed")
	}
	return respond(c, http.StatusOK, echo.Map{})
}
