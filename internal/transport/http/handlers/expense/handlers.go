package expensehandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"backoffice/internal/auth"
	"backoffice/internal/domain/expense"
	"backoffice/internal/transport/http/api"
	"backoffice/internal/transport/http/middleware"
	"backoffice/internal/transport/http/shared"
)

type Handler struct {
	Service *expense.Service
}

func NewHandler(service *expense.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/expense-claims", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Post("/", h.handleSubmit)
		r.Get("/{claimID}", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleHR, auth.RoleFinance)).Post("/{claimID}/status", h.handleSetStatus)
	})
}

type submitRequest struct {
	EmployeeID   string          `json:"employeeId"`
	Title        string          `json:"title"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	DateOccurred string          `json:"dateOccurred"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var req submitRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	v := shared.NewValidator()
	occurred := v.Date("dateOccurred", req.DateOccurred)
	if err := v.Err(); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	claim, err := h.Service.Submit(r.Context(), expense.SubmitInput{
		EmployeeID:   req.EmployeeID,
		Title:        req.Title,
		Category:     req.Category,
		Description:  req.Description,
		Amount:       req.Amount,
		DateOccurred: occurred,
	})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Created(w, claim, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page, err := shared.ParsePagination(r)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	out, total, err := h.Service.List(r.Context(), expense.Filter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Status:     expense.Status(r.URL.Query().Get("status")),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, out, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	claim, err := h.Service.Get(r.Context(), chi.URLParam(r, "claimID"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, claim, reqID)
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var req struct {
		Status          expense.Status `json:"status"`
		RejectionReason string         `json:"rejectionReason"`
	}
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	claim, err := h.Service.SetStatus(r.Context(), chi.URLParam(r, "claimID"), req.Status, req.RejectionReason)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, claim, reqID)
}
