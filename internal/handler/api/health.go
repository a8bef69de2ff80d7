package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/cache"
)

// HealthHandler reports component health. The TTL cache being down is not
// unhealthy; the service degrades to upstream fetches without it.
type HealthHandler struct {
	store  drepo.QuoteStore
	ttl    cache.Service
	warmer *usecase.QuoteWarmer // nil when the stream is disabled
	env    string
}

func NewHealthHandler(store drepo.QuoteStore, ttl cache.Service, warmer *usecase.QuoteWarmer, env string) *HealthHandler {
	return &HealthHandler{store: store, ttl: ttl, warmer: warmer, env: env}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/health", h.Health)
}

type componentHealth struct {
	Status  string `json:"status"`
	Healthy bool   `json:"healthy"`
}

type healthResponse struct {
	Status      string                     `json:"status"`
	Timestamp   string                     `json:"timestamp"`
	Environment string                     `json:"environment"`
	Components  map[string]componentHealth `json:"components"`
}

func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	components := map[string]componentHealth{}
	healthy := true

	if err := h.store.Health(ctx); err != nil {
		components["database"] = componentHealth{Status: "error", Healthy: false}
		healthy = false
	} else {
		components["database"] = componentHealth{Status: "connected", Healthy: true}
	}

	if _, err := h.ttl.Exists(ctx, "health_probe"); err != nil {
		components["cache"] = componentHealth{Status: "degraded", Healthy: true}
	} else {
		components["cache"] = componentHealth{Status: "connected", Healthy: true}
	}

	if h.warmer != nil {
		if h.warmer.IsConnected() {
			components["stream"] = componentHealth{Status: "connected", Healthy: true}
		} else {
			components["stream"] = componentHealth{Status: "disconnected", Healthy: true}
		}
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, healthResponse{
		Status:      status,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Environment: h.env,
		Components:  components,
	})
}
