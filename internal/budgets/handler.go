package budgets

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

// Handler wires HTTP endpoints for budget planning.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers budget routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/monthly", h.listMonthly)
	r.Put("/monthly", h.saveMonthly)
	r.Get("/ads", h.listAd)
	r.Put("/ads", h.saveAd)
	r.Get("/vs-actual", h.vsActual)
}

func (h *Handler) rangeParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	q := r.URL.Query()
	fromYM, toYM := q.Get("from_ym"), q.Get("to_ym")
	if fromYM == "" || toYM == "" {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "from_ym and to_ym are required")
		return "", "", false
	}
	return fromYM, toYM, true
}

func (h *Handler) listMonthly(w http.ResponseWriter, r *http.Request) {
	fromYM, toYM, ok := h.rangeParams(w, r)
	if !ok {
		return
	}
	all, err := h.service.ListMonthly(r.Context(), fromYM, toYM)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidPeriod) {
			httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
			return
		}
		h.logger.Error("list monthly budgets", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "failed to list budgets")
		return
	}
	httpx.JSON(w, http.StatusOK, all)
}

type planRequest struct {
	ProductCode string         `json:"product_code" validate:"required"`
	MonthlyQty  map[string]int `json:"monthly_qty" validate:"required"`
}

type saveMonthlyRequest struct {
	Plans []planRequest `json:"plans" validate:"required,min=1,dive"`
}

func (h *Handler) saveMonthly(w http.ResponseWriter, r *http.Request) {
	var req saveMonthlyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	plans := make([]Plan, 0, len(req.Plans))
	for _, p := range req.Plans {
		plans = append(plans, Plan{ProductCode: p.ProductCode, MonthlyQty: p.MonthlyQty})
	}
	saved, err := h.service.SaveMonthly(r.Context(), plans)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidPeriod) {
			httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
			return
		}
		h.logger.Error("save monthly budgets", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"saved": saved})
}

func (h *Handler) listAd(w http.ResponseWriter, r *http.Request) {
	periodYM := r.URL.Query().Get("period_ym")
	all, err := h.service.ListAd(r.Context(), periodYM)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidPeriod) {
			httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
			return
		}
		h.logger.Error("list ad budgets", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "failed to list ad budgets")
		return
	}
	httpx.JSON(w, http.StatusOK, all)
}

type adBudgetRequest struct {
	AdCategoryID int64   `json:"ad_category_id" validate:"required"`
	Amount       float64 `json:"amount" validate:"gte=0"`
}

type saveAdRequest struct {
	PeriodYM string            `json:"period_ym" validate:"required"`
	Budgets  []adBudgetRequest `json:"budgets" validate:"required,min=1,dive"`
}

func (h *Handler) saveAd(w http.ResponseWriter, r *http.Request) {
	var req saveAdRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	items := make([]AdBudget, 0, len(req.Budgets))
	for _, b := range req.Budgets {
		items = append(items, AdBudget{AdCategoryID: b.AdCategoryID, Amount: b.Amount})
	}
	saved, err := h.service.SaveAd(r.Context(), req.PeriodYM, items)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidPeriod) {
			httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
			return
		}
		h.logger.Error("save ad budgets", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"saved": saved})
}

func (h *Handler) vsActual(w http.ResponseWriter, r *http.Request) {
	fromYM, toYM, ok := h.rangeParams(w, r)
	if !ok {
		return
	}
	var channelID int64
	if v := r.URL.Query().Get("sales_channel_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "invalid request", "invalid sales channel id")
			return
		}
		channelID = id
	}

	report, err := h.service.VsActual(r.Context(), fromYM, toYM, channelID)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidPeriod) {
			httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
			return
		}
		h.logger.Error("budget vs actual", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "failed to build report")
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
