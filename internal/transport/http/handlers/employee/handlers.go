package employeehandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"backoffice/internal/auth"
	"backoffice/internal/domain/employee"
	"backoffice/internal/transport/http/api"
	"backoffice/internal/transport/http/middleware"
	"backoffice/internal/transport/http/shared"
)

type Handler struct {
	Service *employee.Service
}

func NewHandler(service *employee.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleList)
		r.With(middleware.RequireRole(auth.RoleHR)).Post("/", h.handleCreate)
		r.With(middleware.RequireAuth).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleHR)).Post("/{employeeID}/resign", h.handleResign)
	})
}

type createRequest struct {
	EmployeeCode string `json:"employeeCode"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Department   string `json:"department"`
	JoinedOn     string `json:"joinedOn"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var req createRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	v := shared.NewValidator()
	joined := v.OptionalDate("joinedOn", req.JoinedOn)
	if err := v.Err(); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	emp, err := h.Service.Create(r.Context(), employee.CreateInput{
		EmployeeCode: req.EmployeeCode,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Department:   req.Department,
		JoinedOn:     joined,
	})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Created(w, emp, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	filter := employee.Filter{Department: r.URL.Query().Get("department")}
	if raw := r.URL.Query().Get("resigned"); raw != "" {
		resigned, err := strconv.ParseBool(raw)
		if err != nil {
			v := shared.NewValidator()
			v.Add("resigned", "must be true or false")
			api.FailError(w, v.Err(), reqID)
			return
		}
		filter.Resigned = &resigned
	}
	out, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(len(out)))
	api.Success(w, out, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	emp, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleResign(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var req struct {
		ResignedOn string `json:"resignedOn"`
	}
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	v := shared.NewValidator()
	on := v.Date("resignedOn", req.ResignedOn)
	if err := v.Err(); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	emp, err := h.Service.Resign(r.Context(), chi.URLParam(r, "employeeID"), on)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, emp, reqID)
}
