package prometrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// FiberMiddleware cuenta peticiones y mide su duración por método, ruta y estado.
func FiberMiddleware(r *Registry) fiber.Handler {
	requests := r.Counter("http", "requests_total", "Peticiones HTTP atendidas.", "method", "route", "status")
	duration := r.Histogram("http", "request_duration_seconds", "Duración de las peticiones HTTP.",
		[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}, "method", "route")

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		duration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
