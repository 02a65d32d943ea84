package handler

// catalog.go exposes the public species catalog. These endpoints require no
// authentication so the app can show plant details and care defaults before
// a user signs in; they sit behind the shared Redis response cache.

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/saeedpanahi1994/goldan-plant-care/internal/repository"
)

// CatalogHandler serves read-only catalog browse endpoints.
type CatalogHandler struct {
	CatalogRepo *repository.CatalogRepo
}

// NewCatalogHandler constructs a CatalogHandler and panics on a nil repo.
func NewCatalogHandler(catalogRepo *repository.CatalogRepo) *CatalogHandler {
	if catalogRepo == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{CatalogRepo: catalogRepo}
}

// ListCatalog handles GET /v1/catalog and returns the full species catalog.
func (h *CatalogHandler) ListCatalog(c echo.Context) error {
	items, err := h.CatalogRepo.List(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not load catalog")
	}
	return respond(c, http.StatusOK, echo.Map{"catalog": items})
}

// GetCatalogPlant handles GET /v1/catalog/:id.
func (h *CatalogHandler) GetCatalogPlant(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	p, err := h.CatalogRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrCatalogPlantNotFound {
			return fail(c, http.StatusNotFound, "catalog plant not found")
		}
		return fail(c, http.StatusInternalServerError, "db error")
	}
	return respond(c, http.StatusOK, echo.Map{"plant": p})
}

// SearchCatalog handles GET /v1/catalog/search?q= and matches against common
// and scientific names.
func (h *CatalogHandler) SearchCatalog(c echo.Context) error {
	term := strings.TrimSpace(c.QueryParam("q"))
	if term == "" {
		return fail(c, http.StatusBadRequest, "q is required")
	}
	items, err := h.CatalogRepo.Search(c.Request().Context(), term)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "search failed")
	}
	return respond(c, http.StatusOK, echo.Map{"catalog": items})
}
