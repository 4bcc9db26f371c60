package candidates

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rinori/backoffice/internal/platform/httpx"
	"github.com/rinori/backoffice/internal/shared"
)

// Handler wires HTTP endpoints for candidate review.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers candidate review routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Patch("/{id}", h.updateStatus)
	r.Post("/bulk-register", h.bulkRegister)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))
	all, err := h.service.List(r.Context(), status)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, all)
}

type updateStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "invalid candidate id")
		return
	}
	var req updateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.service.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "not found", "candidate not found")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

type bulkRegisterRequest struct {
	Registrations []Registration `json:"registrations" validate:"required,min=1,dive"`
}

func (h *Handler) bulkRegister(w http.ResponseWriter, r *http.Request) {
	var req bulkRegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	registered, err := h.service.BulkRegister(r.Context(), req.Registrations)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "not found", err.Error())
		case errors.Is(err, shared.ErrConflict):
			httpx.Problem(w, http.StatusConflict, "conflict", err.Error())
		default:
			h.logger.Error("bulk register candidates", slog.Any("error", err))
			httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"registered": registered})
}
