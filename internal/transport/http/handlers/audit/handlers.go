package audithandler

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"backoffice/internal/auth"
	"backoffice/internal/domain/audit"
	"backoffice/internal/transport/http/api"
	"backoffice/internal/transport/http/middleware"
	"backoffice/internal/transport/http/shared"
)

const exportLimit = 10000

type Handler struct {
	Service *audit.Service
	Log     *zap.Logger
}

func NewHandler(service *audit.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Service: service, Log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Get("/", h.handleList)
		r.Get("/export", h.handleExport)
	})
}

func parseFilter(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()
	v := shared.NewValidator()
	filter := audit.Filter{Action: q.Get("action"), Actor: q.Get("actor")}
	if d := v.OptionalDate("date", q.Get("date")); d != nil {
		filter.Date = *d
	}
	return filter, v.Err()
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	filter, err := parseFilter(r)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	page, err := shared.ParsePagination(r)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	entries, total, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, entries, reqID)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	filter, err := parseFilter(r)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	entries, _, err := h.Service.List(r.Context(), filter, exportLimit, 0)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-trail.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "action", "resource_type", "resource_id", "details", "performed_by", "request_id", "created_at"}); err != nil {
		h.Log.Warn("audit export header failed", zap.Error(err))
	}
	for _, e := range entries {
		row := []string{e.ID, e.Action, e.ResourceType, e.ResourceID, e.Details, e.PerformedBy, e.RequestID, e.CreatedAt.UTC().Format(time.RFC3339)}
		if err := writer.Write(row); err != nil {
			h.Log.Warn("audit export row failed", zap.Error(err))
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.Log.Warn("audit export flush failed", zap.Error(err))
	}
}
