package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/saeedpanahi1994/goldan-plant-care/internal/handler"    // import the handlers that implement business logic
	"github.com/saeedpanahi1994/goldan-plant-care/internal/middleware" // import middleware for JWT authentication
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// The health endpoint is used by load balancers and monitoring systems
	// to verify that the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterCatalog registers the unauthenticated catalog browse endpoints.
// These return species reference data for guest users choosing a plant, so
// no JWT middleware is applied. Cache and rate-limit middleware passed in
// extra key everything under the shared "guest" identity here, which is
// safe because catalog responses are identical for every caller.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, extra ...echo.MiddlewareFunc) {
	pub := e.Group("/v1/catalog", extra...)
	pub.GET("", h.ListCatalog)
	// Search must be registered before the :id route so "search" is not
	// parsed as an identifier.
	pub.GET("/search", h.SearchCatalog)
	// Species details by catalog id
	pub.GET("/:id", h.GetCatalogPlant)
}

// RegisterPlants registers the authenticated garden and plant endpoints.
// Every route in this group runs the JWTAuth middleware; tokens come from
// the phone-OTP auth service that shares jwtSecret with this API. These are
// the endpoints the offline client replays its pending-action queue
// against, so their request shapes must stay stable.
//
// extra carries the cache and rate-limit middleware. They run after JWTAuth
// so "user_id" is already in the context when their keys are built: cache
// entries and token buckets are scoped per user, and an unauthenticated
// request is rejected before it can reach a cached response.
func RegisterPlants(e *echo.Echo, h *handler.PlantHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(extra...)

	// Gardens
	auth.POST("/gardens", h.CreateGarden)
	auth.GET("/gardens", h.ListGardens)
	auth.DELETE("/gardens/:id", h.DeleteGarden)
	auth.POST("/gardens/:id/plants", h.AddPlant)

	// User plants and care actions
	auth.GET("/plants", h.ListPlants)
	auth.POST("/plants/:id/water", h.WaterPlant)
	auth.POST("/plants/:id/fertilize", h.FertilizePlant)
	auth.PUT("/plants/:id/reminder", h.SetReminder)
	auth.PATCH("/plants/:id/health", h.UpdateHealth)
	auth.DELETE("/plants/:id", h.DeletePlant)
	auth.GET("/plants/:id/history", h.PlantHistory)
}
