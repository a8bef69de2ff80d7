package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	applogger "StockPulse/pkg/logger"
)

// RequestLogging logs one structured line per request. Paths in skip are
// not logged; probes and scrapes would otherwise dominate the output.
func RequestLogging(log *applogger.Logger, skip ...string) echo.MiddlewareFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			req := c.Request()
			if _, ok := skipped[req.URL.Path]; ok {
				return err
			}

			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("path", req.RequestURI),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", c.Response().Status),
				applogger.Duration("latency", time.Since(start)),
			}
			if err != nil {
				fields = append(fields, applogger.Error(err))
				log.Warn("request failed", fields...)
				return err
			}
			log.Info("request", fields...)
			return nil
		}
	}
}
