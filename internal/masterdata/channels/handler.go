package channels

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rinori/backoffice/internal/auth"
	"github.com/rinori/backoffice/internal/platform/httpx"
	"github.com/rinori/backoffice/internal/shared"
)

// Handler wires HTTP endpoints for sales channel management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers sales channel routes. Mutations are master only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireMaster)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	all, err := h.service.List(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error("list channels", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "failed to list channels")
		return
	}
	httpx.JSON(w, http.StatusOK, all)
}

type createChannelRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createChannelRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	ch, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			httpx.Problem(w, http.StatusConflict, "conflict", "channel name already exists")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, ch)
}

type updateChannelRequest struct {
	Name   string `json:"name" validate:"required"`
	Active bool   `json:"active"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "invalid channel id")
		return
	}
	var req updateChannelRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	ch, err := h.service.Update(r.Context(), id, req.Name, req.Active)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "not found", "channel not found")
		case errors.Is(err, shared.ErrConflict):
			httpx.Problem(w, http.StatusConflict, "conflict", "channel name already exists")
		default:
			httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		}
		return
	}
	httpx.JSON(w, http.StatusOK, ch)
}
