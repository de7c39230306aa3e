package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports process liveness plus the state of the backing
// stores. Redis is optional, so a missing client reports "disabled" and the
// endpoint stays green.
type HealthHandler struct {
	DB    *sql.DB
	Redis *redis.Client
}

// NewHealthHandler constructs a HealthHandler. redisClient may be nil.
func NewHealthHandler(db *sql.DB, redisClient *redis.Client) *HealthHandler {
	if db == nil {
		panic("nil database passed to NewHealthHandler")
	}
	return &HealthHandler{DB: db, Redis: redisClient}
}

// Health handles GET /healthz. A failing database ping answers 503 so load
// balancers pull the instance; a failing redis only degrades caching and is
// reported without failing the check.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx := c.Request().Context()

	dbStatus := "ok"
	if err := h.DB.PingContext(ctx); err != nil {
		dbStatus = "down"
	}
	redisStatus := "disabled"
	if h.Redis != nil {
		redisStatus = "ok"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
		}
	}

	status := http.StatusOK
	overall := "ok"
	if dbStatus != "ok" {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}
	return c.JSON(status, echo.Map{
		"status": overall,
		"db":     dbStatus,
		"redis":  redisStatus,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
