package users

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

// Handler wires HTTP endpoints for user management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers user management routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/change-password", h.changePassword)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireMaster)
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Post("/{id}/reset-password", h.resetPassword)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "failed to list users")
		return
	}
	httpx.JSON(w, http.StatusOK, all)
}

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=master staff"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	user, err := h.service.Create(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			httpx.Problem(w, http.StatusConflict, "conflict", "username already exists")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "unauthorized", "login required")
		return
	}
	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.service.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "invalid user id")
		return
	}
	var req resetPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.service.ResetPassword(r.Context(), id, req.NewPassword); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "not found", "user not found")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "invalid user id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "not found", "user not found")
		case errors.Is(err, ErrLastMaster):
			httpx.Problem(w, http.StatusConflict, "conflict", err.Error())
		default:
			h.logger.Error("delete user", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "internal error", "failed to delete user")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
