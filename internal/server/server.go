// Package server exposes refinement sessions over a small JSON API.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/valpere/haikuloop/internal/orchestrator"
	"github.com/valpere/haikuloop/internal/service"
	"github.com/valpere/haikuloop/internal/store"
)

// Defaults applied to a create request that leaves a field out.
const (
	DefaultTopic    = "nature"
	DefaultMaxTurns = 4
)

type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

func NewHandler(svc *service.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// New builds the echo server with all routes registered.
func New(svc *service.Service, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	NewHandler(svc, logger).RegisterRoutes(e)
	return e
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/v1/sessions")
	g.POST("", h.CreateSession)
	g.GET("", h.ListSessions)
	g.GET("/:id", h.GetSession)
	g.DELETE("/:id", h.DeleteSession)
}

type errorResponse struct {
	Error string `json:"error"`
}

type createSessionRequest struct {
	Topic    string `json:"topic"`
	MaxTurns int    `json:"max_turns"`
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CreateSession runs a session synchronously and returns the stored record.
func (h *Handler) CreateSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Topic) == "" {
		req.Topic = DefaultTopic
	}
	if req.MaxTurns == 0 {
		req.MaxTurns = DefaultMaxTurns
	}

	rec, err := h.svc.RunSession(c.Request().Context(), req.Topic, req.MaxTurns, nil)
	if err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrInvalidMaxTurns):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		default:
			h.logger.Error("session failed", "topic", req.Topic, "error", err)
			return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
		}
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ListSessions(c echo.Context) error {
	filter := store.ListFilter{Topic: c.QueryParam("topic")}
	if v := c.QueryParam("approved"); v != "" {
		approved, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "approved must be a boolean"})
		}
		filter.ApprovedOnly = approved
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
		}
		filter.Limit = limit
	}

	list, err := h.svc.ListSessions(c.Request().Context(), filter)
	if err != nil {
		return h.storeError(c, err)
	}
	if list == nil {
		list = []store.Summary{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetSession(c echo.Context) error {
	rec, err := h.svc.GetSession(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteSession(c echo.Context) error {
	if err := h.svc.DeleteSession(c.Request().Context(), c.Param("id")); err != nil {
		return h.storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNoStore):
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		h.logger.Error("store operation failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
