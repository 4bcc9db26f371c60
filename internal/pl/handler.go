package pl

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rinori/backoffice/internal/platform/httpx"
	"github.com/rinori/backoffice/internal/shared"
)

// Handler wires HTTP endpoints for profit and loss views.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers profit and loss routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/products", h.products)
	r.Get("/budget", h.withBudget)
	r.Get("/trend", h.trend)
}

// params reads the month range and channel filter. A single target_ym may
// stand in for both range ends.
func (h *Handler) params(w http.ResponseWriter, r *http.Request) (string, string, int64, bool) {
	q := r.URL.Query()
	fromYM := q.Get("from_ym")
	toYM := q.Get("to_ym")
	if fromYM == "" && toYM == "" {
		fromYM = q.Get("target_ym")
		toYM = fromYM
	}

	var channelID int64
	if v := q.Get("sales_channel_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "invalid request", "invalid sales channel id")
			return "", "", 0, false
		}
		channelID = id
	}
	return fromYM, toYM, channelID, true
}

func (h *Handler) respond(w http.ResponseWriter, data any, err error, what string) {
	if err != nil {
		if errors.Is(err, shared.ErrInvalidPeriod) {
			httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
			return
		}
		h.logger.Error(what, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "failed to compute "+what)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	fromYM, toYM, channelID, ok := h.params(w, r)
	if !ok {
		return
	}
	data, err := h.service.Summary(r.Context(), fromYM, toYM, channelID)
	h.respond(w, data, err, "pl summary")
}

func (h *Handler) products(w http.ResponseWriter, r *http.Request) {
	fromYM, toYM, channelID, ok := h.params(w, r)
	if !ok {
		return
	}
	data, err := h.service.Products(r.Context(), fromYM, toYM, channelID)
	h.respond(w, data, err, "pl product breakdown")
}

func (h *Handler) withBudget(w http.ResponseWriter, r *http.Request) {
	fromYM, toYM, channelID, ok := h.params(w, r)
	if !ok {
		return
	}
	data, err := h.service.WithBudget(r.Context(), fromYM, toYM, channelID)
	h.respond(w, data, err, "pl budget comparison")
}

func (h *Handler) trend(w http.ResponseWriter, r *http.Request) {
	_, _, channelID, ok := h.params(w, r)
	if !ok {
		return
	}
	months := 12
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "invalid request", "invalid months")
			return
		}
		months = n
	}
	data, err := h.service.Trend(r.Context(), channelID, months)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}
