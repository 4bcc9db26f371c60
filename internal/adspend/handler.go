package adspend

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rinori/backoffice/internal/platform/httpx"
	"github.com/rinori/backoffice/internal/shared"
)

// Handler wires HTTP endpoints for ad categories and expenses.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers ad spend routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.listCategories)
		r.Post("/", h.createCategory)
		r.Put("/{id}", h.updateCategory)
		r.Delete("/{id}", h.deleteCategory)
	})
	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", h.listExpenses)
		r.Post("/", h.createExpense)
		r.Put("/{id}", h.updateExpense)
		r.Delete("/{id}", h.deleteExpense)
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("list ad categories", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "failed to list ad categories")
		return
	}
	httpx.JSON(w, http.StatusOK, all)
}

type categoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	c, err := h.service.CreateCategory(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			httpx.Problem(w, http.StatusConflict, "conflict", "category name already exists")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return
	}
	if err := h.service.UpdateCategory(r.Context(), id, req.Name); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "not found", "category not found")
		case errors.Is(err, shared.ErrConflict):
			httpx.Problem(w, http.StatusConflict, "conflict", "category name already exists")
		default:
			httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "not found", "category not found")
		case errors.Is(err, shared.ErrConflict):
			httpx.Problem(w, http.StatusConflict, "conflict", "category still has expenses")
		default:
			h.logger.Error("delete ad category", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "internal error", "failed to delete category")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ExpenseFilter{FromYM: q.Get("from"), ToYM: q.Get("to")}
	if v := q.Get("ad_category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "invalid request", "invalid ad category id")
			return
		}
		filter.AdCategoryID = id
	}

	all, err := h.service.ListExpenses(r.Context(), filter)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidPeriod) {
			httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
			return
		}
		h.logger.Error("list ad expenses", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "failed to list ad expenses")
		return
	}
	httpx.JSON(w, http.StatusOK, all)
}

type expenseRequest struct {
	ExpenseDate  string  `json:"expense_date" validate:"required"`
	AdCategoryID int64   `json:"ad_category_id" validate:"required"`
	Amount       float64 `json:"amount" validate:"gte=0"`
	Memo         string  `json:"memo"`
}

func (h *Handler) decodeExpense(w http.ResponseWriter, r *http.Request) (*Expense, bool) {
	var req expenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return nil, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return nil, false
	}
	date, err := time.Parse("2006-01-02", req.ExpenseDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "expense_date must be YYYY-MM-DD")
		return nil, false
	}
	userID, _ := shared.CurrentUserID(r.Context())
	return &Expense{
		ExpenseDate:  date,
		AdCategoryID: req.AdCategoryID,
		Amount:       req.Amount,
		Memo:         req.Memo,
		CreatedBy:    userID,
	}, true
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	e, ok := h.decodeExpense(w, r)
	if !ok {
		return
	}
	id, err := h.service.CreateExpense(r.Context(), *e)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusBadRequest, "invalid request", "category does not exist")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, ok := h.decodeExpense(w, r)
	if !ok {
		return
	}
	e.ID = id
	if err := h.service.UpdateExpense(r.Context(), *e); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "not found", "expense not found")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteExpense(r.Context(), id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "not found", "expense not found")
			return
		}
		h.logger.Error("delete ad expense", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "failed to delete expense")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
