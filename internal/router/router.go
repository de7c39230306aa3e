// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/kafaat/ais-aviation-system-sub010/internal/handler"
	"github.com/kafaat/ais-aviation-system-sub010/internal/middleware"
	"github.com/kafaat/ais-aviation-system-sub010/internal/pkg/metrics"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Health       *handler.HealthHandler
	Template     *handler.TemplateHandler
	Inventory    *handler.InventoryHandler
	SeatMap      *handler.SeatMapHandler
	Assignment   *handler.AssignmentHandler
	CheckIn      *handler.CheckInHandler
	BoardingPass *handler.BoardingPassHandler
}

// Register mounts all routes. /healthz and /metrics are unauthenticated;
// everything under /v1 requires an agent token. Template management and seat
// blocking are supervisor-only, and mutating routes are rate limited per
// agent.
func Register(e *echo.Echo, h Handlers, m *metrics.Metrics, jwtSecret string, rdb *redis.Client, ratePerMinute int) {
	e.Use(middleware.Prometheus(m))

	e.GET("/healthz", h.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")
	v1.Use(middleware.AgentAuth(jwtSecret))
	v1.Use(middleware.RequireRole(middleware.RoleAgent, middleware.RoleSupervisor))

	limited := middleware.RateLimit(rdb, ratePerMinute)
	supervisor := middleware.RequireRole(middleware.RoleSupervisor)

	// Seat map templates (supervisor-only).
	v1.POST("/templates", h.Template.Create, supervisor, limited)
	v1.PUT("/templates/:id", h.Template.Update, supervisor, limited)
	v1.DELETE("/templates/:id", h.Template.Deactivate, supervisor, limited)
	v1.GET("/templates/:id", h.Template.Get)
	v1.GET("/templates", h.Template.List)

	// Per-flight inventory and seat map.
	v1.POST("/flights/:id/inventory", h.Inventory.Initialize, supervisor, limited)
	v1.GET("/flights/:id/seatmap", h.SeatMap.Get)
	v1.GET("/flights/:id/checkin-stats", h.SeatMap.Stats)

	// Seat assignment.
	v1.POST("/flights/:id/seats/select", h.Assignment.Select, limited)
	v1.POST("/flights/:id/seats/change", h.Assignment.Change, limited)
	v1.POST("/flights/:id/seats/release", h.Assignment.Release, limited)
	v1.POST("/flights/:id/seats/auto-assign", h.Assignment.AutoAssign, limited)
	v1.POST("/flights/:id/seats/:seat/block", h.Assignment.Block, supervisor, limited)
	v1.POST("/flights/:id/seats/:seat/unblock", h.Assignment.Unblock, supervisor, limited)

	// Check-in and boarding passes.
	v1.POST("/flights/:id/checkin", h.CheckIn.CheckIn, limited)
	v1.POST("/flights/:id/checkin/undo", h.CheckIn.Undo, limited)
	v1.POST("/flights/:id/boarding-pass", h.BoardingPass.Issue, limited)
}
