package products

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rinori/backoffice/internal/platform/httpx"
	"github.com/rinori/backoffice/internal/shared"
)

// Handler wires HTTP endpoints for the product master.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers product master routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{code}", h.get)
	r.Put("/{code}", h.update)
	r.Delete("/{code}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{Search: q.Get("search")}
	if v := q.Get("product_type"); v != "" {
		t, err := ParseProductType(v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
			return
		}
		filter.Type = t
	}
	if v := q.Get("management_status"); v != "" {
		st, err := ParseManagementStatus(v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
			return
		}
		filter.Status = st
	}

	all, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "failed to list products")
		return
	}
	httpx.JSON(w, http.StatusOK, all)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "not found", "product not found")
			return
		}
		h.logger.Error("get product", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "failed to load product")
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

type productRequest struct {
	Code              string  `json:"product_code" validate:"required"`
	Name              string  `json:"product_name" validate:"required"`
	SalesPriceExclTax float64 `json:"sales_price_excl_tax" validate:"gte=0"`
	CostExclTax       float64 `json:"cost_excl_tax" validate:"gte=0"`
	Type              string  `json:"product_type" validate:"required"`
	Status            string  `json:"management_status" validate:"required"`
	ASIN              string  `json:"asin"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*Product, bool) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return nil, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return nil, false
	}
	t, err := ParseProductType(req.Type)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return nil, false
	}
	st, err := ParseManagementStatus(req.Status)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return nil, false
	}
	return &Product{
		Code:              req.Code,
		Name:              req.Name,
		SalesPriceExclTax: req.SalesPriceExclTax,
		CostExclTax:       req.CostExclTax,
		Type:              t,
		Status:            st,
		ASIN:              req.ASIN,
	}, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), *p)
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			httpx.Problem(w, http.StatusConflict, "conflict", "product code already exists")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	p, ok := h.decode(w, r)
	if !ok {
		return
	}
	p.Code = chi.URLParam(r, "code")
	updated, err := h.service.Update(r.Context(), *p)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "not found", "product not found")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "code")); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "not found", "product not found")
			return
		}
		h.logger.Error("delete product", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "failed to delete product")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
