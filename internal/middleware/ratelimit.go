package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimit returns a fixed-window limiter for mutating routes, keyed by the
// authenticated agent when present and the client IP otherwise. perMinute of
// zero or a nil redis client disables limiting entirely.
func RateLimit(rdb *redis.Client, perMinute int) echo.MiddlewareFunc {
	if rdb == nil || perMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := rateKey(c)

			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				// limiter unavailability must not take the API down
				return next(c)
			}
			if count == 1 {
				_ = rdb.Expire(ctx, key, time.Minute).Err()
			}
			if count > int64(perMinute) {
				c.Response().Header().Set("Retry-After", "60")
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}

func rateKey(c echo.Context) string {
	who := c.RealIP()
	if agent, ok := c.Get("agent_id").(string); ok && agent != "" {
		who = agent
	}
	return fmt.Sprintf("ratelimit:%s:%s", who, time.Now().UTC().Format("200601021504"))
}
