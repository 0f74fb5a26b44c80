package jobshandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"backoffice/internal/auth"
	"backoffice/internal/platform/jobs"
	"backoffice/internal/transport/http/api"
	"backoffice/internal/transport/http/middleware"
)

type Handler struct {
	Service *jobs.Service
}

func NewHandler(service *jobs.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Get("/runs", h.handleRuns)
		r.Post("/{jobType}/run", h.handleRun)
	})
}

func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	runs, err := h.Service.Runs(r.Context(), limit)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, runs, reqID)
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	jobType := chi.URLParam(r, "jobType")
	details, err := h.Service.RunNow(r.Context(), jobType)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"jobType": jobType, "details": details}, reqID)
}
