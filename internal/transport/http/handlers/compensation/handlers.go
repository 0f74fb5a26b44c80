package compensationhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"backoffice/internal/auth"
	"backoffice/internal/domain/compensation"
	"backoffice/internal/transport/http/api"
	"backoffice/internal/transport/http/middleware"
	"backoffice/internal/transport/http/shared"
)

type Handler struct {
	Service *compensation.Service
}

func NewHandler(service *compensation.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/salary-structures", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleHR, auth.RoleFinance))
		r.Get("/", h.handleList)
		r.Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleHR)).Put("/{employeeID}", h.handleUpsert)
		r.With(middleware.RequireRole(auth.RoleHR)).Delete("/{employeeID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	out, err := h.Service.List(r.Context())
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, out, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	out, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, out, reqID)
}

func (h *Handler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var input compensation.UpsertInput
	if err := shared.DecodeJSON(r, &input); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	input.EmployeeID = chi.URLParam(r, "employeeID")
	out, err := h.Service.Upsert(r.Context(), input)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, out, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "employeeID")); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, reqID)
}
