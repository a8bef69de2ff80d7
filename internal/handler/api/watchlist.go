package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	models "StockPulse/internal/domain/models"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	"StockPulse/pkg/http/middleware"
	xlogger "StockPulse/pkg/logger"
)

// WatchlistHandler exposes the authenticated watchlist CRUD endpoints.
type WatchlistHandler struct {
	logger    *xlogger.Logger
	watchlist *usecase.WatchlistService
	verify    middleware.TokenVerifier
}

func NewWatchlistHandler(logger *xlogger.Logger, watchlist *usecase.WatchlistService, verify middleware.TokenVerifier) *WatchlistHandler {
	return &WatchlistHandler{logger: logger, watchlist: watchlist, verify: verify}
}

func (h *WatchlistHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/watchlist", middleware.RequireAuth(h.verify))
	g.GET("", h.List)
	g.POST("", h.Add)
	g.DELETE("/:symbol", h.Remove)
}

type watchlistResponse struct {
	Watchlist []models.WatchlistItem `json:"watchlist"`
	Count     int                    `json:"count"`
}

func (h *WatchlistHandler) List(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return xhttp.UnauthorizedResponse(c, "missing user context")
	}
	items, err := h.watchlist.List(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("watchlist list failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if items == nil {
		items = []models.WatchlistItem{}
	}
	return xhttp.SuccessResponse(c, watchlistResponse{Watchlist: items, Count: len(items)})
}

func (h *WatchlistHandler) Add(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return xhttp.UnauthorizedResponse(c, "missing user context")
	}
	req := &models.WatchlistAddRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	item, err := h.watchlist.Add(c.Request().Context(), userID, req.Symbol)
	switch {
	case err == nil:
		return xhttp.CreatedResponse(c, item)
	case errors.Is(err, usecase.ErrEmptySymbol),
		errors.Is(err, usecase.ErrAlreadyTracked),
		errors.Is(err, usecase.ErrLimitReached):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	default:
		h.logger.Error("watchlist add failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
}

func (h *WatchlistHandler) Remove(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return xhttp.UnauthorizedResponse(c, "missing user context")
	}
	symbol := c.Param("symbol")

	err := h.watchlist.Remove(c.Request().Context(), userID, symbol)
	switch {
	case err == nil:
		return xhttp.NoContentResponse(c)
	case errors.Is(err, usecase.ErrNotTracked):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()))
	case errors.Is(err, usecase.ErrEmptySymbol):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	default:
		h.logger.Error("watchlist remove failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
}
