package api

import (
	"github.com/labstack/echo/v4"

	models "StockPulse/internal/domain/models"
	"StockPulse/internal/service/alphavantage"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"
)

// MarketHandler exposes the quote, search, chart and overview operations.
type MarketHandler struct {
	logger          *xlogger.Logger
	quotes          *alphavantage.Client
	overviewSymbols []string
}

func NewMarketHandler(logger *xlogger.Logger, quotes *alphavantage.Client, overviewSymbols []string) *MarketHandler {
	return &MarketHandler{logger: logger, quotes: quotes, overviewSymbols: overviewSymbols}
}

func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/stocks")
	g.GET("/quote/:symbol", h.Quote)
	g.GET("/search/:query", h.Search)
	g.GET("/chart/:symbol", h.Chart)
	g.GET("/market-overview", h.Overview)
}

func (h *MarketHandler) Quote(c echo.Context) error {
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	quote, err := h.quotes.GetQuote(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.upstreamFailure(c, "quote", err)
	}
	return xhttp.SuccessResponse(c, quote)
}

func (h *MarketHandler) Search(c echo.Context) error {
	req := &models.SearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	matches, err := h.quotes.SearchSymbols(c.Request().Context(), req.Query)
	if err != nil {
		return h.upstreamFailure(c, "search", err)
	}
	return xhttp.SuccessResponse(c, matches)
}

func (h *MarketHandler) Chart(c echo.Context) error {
	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	series, err := h.quotes.GetDailyChart(c.Request().Context(), req.Symbol, req.IsCompact())
	if err != nil {
		return h.upstreamFailure(c, "chart", err)
	}
	return xhttp.SuccessResponse(c, series)
}

func (h *MarketHandler) Overview(c echo.Context) error {
	overview, err := h.quotes.GetMarketOverview(c.Request().Context(), h.overviewSymbols)
	if err != nil {
		return h.upstreamFailure(c, "overview", err)
	}
	return xhttp.SuccessResponse(c, overview)
}

func (h *MarketHandler) upstreamFailure(c echo.Context, op string, err error) error {
	h.logger.Warn("market operation failed",
		xlogger.String("operation", op), xlogger.Error(err))
	return xhttp.AppErrorResponse(c, toAppError(err))
}

// toAppError maps the quote client's failure classification onto HTTP
// statuses. Upstream trouble is a gateway problem, not a client one.
func toAppError(err error) error {
	detail := err.Error()
	switch alphavantage.KindOf(err) {
	case alphavantage.KindValidation:
		return xhttp.BadRequestError(detail)
	case alphavantage.KindNotFound:
		return xhttp.NotFoundError(detail)
	case alphavantage.KindRateLimited:
		return xhttp.RateLimitedError(detail)
	case alphavantage.KindTimeout:
		return xhttp.GatewayTimeoutError(detail)
	case alphavantage.KindRequestFailed, alphavantage.KindUpstream,
		alphavantage.KindInvalidFormat, alphavantage.KindParse:
		return xhttp.BadGatewayError(detail)
	default:
		return err
	}
}
