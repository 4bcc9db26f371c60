package importer

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rinori/backoffice/internal/platform/httpx"
	"github.com/rinori/backoffice/internal/shared"
)

// Handler wires HTTP endpoints for sales imports.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	maxUpload int64
}

// NewHandler constructs a Handler instance. maxUpload caps the accepted
// request body in bytes.
func NewHandler(logger *slog.Logger, service *Service, maxUpload int64) *Handler {
	return &Handler{logger: logger, service: service, maxUpload: maxUpload}
}

// MountRoutes registers sales import routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sales", h.importSales)
	r.Get("/histories", h.listHistories)
	r.Delete("/histories/{id}", h.deleteHistory)
	r.Patch("/histories/{id}/channel", h.reassignChannel)
}

func (h *Handler) importSales(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "multipart form with a csv file is required")
		return
	}

	channelID, err := strconv.ParseInt(r.FormValue("sales_channel_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "invalid sales channel id")
		return
	}
	mode := Mode(r.FormValue("mode"))
	if mode == "" {
		// Never default: overwrite is destructive, the caller must choose.
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "mode is required")
		return
	}
	dataSource := DataSource(strings.ToLower(r.FormValue("data_source")))

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "csv file is required")
		return
	}
	defer file.Close()

	userID, _ := shared.CurrentUserID(r.Context())
	result, err := h.service.Import(r.Context(), Params{
		TargetYM:              r.FormValue("target_ym"),
		SalesChannelID:        channelID,
		Mode:                  mode,
		DataSource:            dataSource,
		Comment:               r.FormValue("comment"),
		FileName:              header.Filename,
		File:                  file,
		ImportedBy:            userID,
		SkipUnregisteredASINs: r.FormValue("skip_unregistered_asins") == "true",
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrImportInProgress):
			httpx.Problem(w, http.StatusConflict, "conflict", err.Error())
		case errors.Is(err, shared.ErrInvalidPeriod), errors.Is(err, ErrUnknownMode),
			errors.Is(err, ErrNoSKUColumn), errors.Is(err, ErrNoASINColumn),
			errors.Is(err, shared.ErrNotFound):
			httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		default:
			h.logger.Error("sales import", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "internal error", "import failed")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) listHistories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := HistoryFilter{TargetYM: q.Get("target_ym")}
	if v := q.Get("sales_channel_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "invalid request", "invalid sales channel id")
			return
		}
		filter.SalesChannelID = id
	}

	histories, err := h.service.ListHistories(r.Context(), filter)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidPeriod) {
			httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
			return
		}
		h.logger.Error("list import histories", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "failed to list histories")
		return
	}
	httpx.JSON(w, http.StatusOK, histories)
}

func (h *Handler) deleteHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "invalid history id")
		return
	}
	if err := h.service.DeleteHistory(r.Context(), id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "not found", "import history not found")
			return
		}
		h.logger.Error("delete import history", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "failed to delete history")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

type reassignChannelRequest struct {
	SalesChannelID int64 `json:"sales_channel_id"`
}

func (h *Handler) reassignChannel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "invalid history id")
		return
	}
	var req reassignChannelRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return
	}
	if err := h.service.ReassignChannel(r.Context(), id, req.SalesChannelID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "not found", "import history not found")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
