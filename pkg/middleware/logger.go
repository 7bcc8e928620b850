package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ticket-desk/pkg/metrics"
)

// RequestLogger logs one line per request and records the Prometheus
// request counters. Route is the registered path pattern, not the raw URL.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			latency := time.Since(start)
			req := c.Request()
			res := c.Response()
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			metrics.HTTPRequestsTotal.WithLabelValues(req.Method, route, strconv.Itoa(res.Status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(req.Method, route).Observe(latency.Seconds())

			fields := []zap.Field{
				zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", res.Status),
				zap.Duration("latency", latency),
			}
			switch {
			case res.Status >= 500:
				logger.Error("request", fields...)
			case res.Status >= 400:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
			return nil
		}
	}
}
