package taxrates

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rinori/backoffice/internal/platform/httpx"
	"github.com/rinori/backoffice/internal/shared"
)

// Handler wires HTTP endpoints for tax rate management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers tax rate routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{startYM}", h.update)
	r.Delete("/{startYM}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list tax rates", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "failed to list tax rates")
		return
	}
	httpx.JSON(w, http.StatusOK, all)
}

type taxRateRequest struct {
	StartYM string  `json:"start_ym" validate:"required"`
	Rate    float64 `json:"rate" validate:"gte=0,lt=1"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req taxRateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.service.Create(r.Context(), TaxRate{StartYM: req.StartYM, Rate: req.Rate}); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			httpx.Problem(w, http.StatusConflict, "conflict", "a rate already starts in that month")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]bool{"success": true})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req taxRateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return
	}
	rate := TaxRate{StartYM: chi.URLParam(r, "startYM"), Rate: req.Rate}
	if err := h.service.Update(r.Context(), rate); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "not found", "tax rate not found")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "startYM")); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "not found", "tax rate not found")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
