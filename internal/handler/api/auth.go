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

// AuthHandler exposes registration, login and the profile endpoint.
type AuthHandler struct {
	logger *xlogger.Logger
	users  *usecase.UserService
	verify middleware.TokenVerifier
}

func NewAuthHandler(logger *xlogger.Logger, users *usecase.UserService, verify middleware.TokenVerifier) *AuthHandler {
	return &AuthHandler{logger: logger, users: users, verify: verify}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/profile", h.Profile, middleware.RequireAuth(h.verify))
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	req := &models.RegisterRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	user, token, err := h.users.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrUserExists) {
			return xhttp.AppErrorResponse(c, xhttp.ConflictError(err.Error()))
		}
		h.logger.Error("register failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.CreatedResponse(c, authResponse{User: user, Token: token})
}

func (h *AuthHandler) Login(c echo.Context) error {
	req := &models.LoginRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	user, token, err := h.users.Login(c.Request().Context(), req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			return xhttp.UnauthorizedResponse(c, "invalid credentials")
		}
		h.logger.Error("login failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, authResponse{User: user, Token: token})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return xhttp.UnauthorizedResponse(c, "missing user context")
	}
	user, err := h.users.Profile(c.Request().Context(), userID)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("user not found"))
	}
	return xhttp.SuccessResponse(c, user)
}
