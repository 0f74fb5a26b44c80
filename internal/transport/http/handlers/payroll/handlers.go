package payrollhandler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"backoffice/internal/auth"
	"backoffice/internal/domain/payroll"
	"backoffice/internal/platform/export"
	"backoffice/internal/transport/http/api"
	"backoffice/internal/transport/http/middleware"
	"backoffice/internal/transport/http/shared"
)

const registerLimit = 10000

type Handler struct {
	Service     *payroll.Service
	Idempotency middleware.IdempotencyStore
}

func NewHandler(service *payroll.Service, idempotency middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Idempotency: idempotency}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleHR, auth.RoleFinance))
		r.Get("/", h.handleList)
		r.Post("/", h.handleGenerate)
		r.Get("/prefill", h.handlePrefill)
		r.Get("/register", h.handleRegister)
		r.With(middleware.Idempotent(h.Idempotency)).Post("/bulk-generate", h.handleBulkGenerate)
		r.With(middleware.Idempotent(h.Idempotency)).Post("/bulk-status", h.handleBulkStatus)
		r.Get("/{payrollID}", h.handleGet)
		r.Put("/{payrollID}", h.handleUpdate)
		r.Post("/{payrollID}/status", h.handleSetStatus)
	})
}

type generateRequest struct {
	EmployeeID  string             `json:"employeeId"`
	PeriodStart string             `json:"periodStart"`
	PeriodEnd   string             `json:"periodEnd"`
	Earnings    payroll.Earnings   `json:"earnings"`
	Deductions  payroll.Deductions `json:"deductions"`
	Attendance  payroll.Attendance `json:"attendance"`
	Status      payroll.Status     `json:"status"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var req generateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	v := shared.NewValidator()
	start := v.Date("periodStart", req.PeriodStart)
	end := v.Date("periodEnd", req.PeriodEnd)
	v.DateOrder("periodStart", start, "periodEnd", end)
	if err := v.Err(); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	rec, err := h.Service.Generate(r.Context(), payroll.GenerateInput{
		EmployeeID:  req.EmployeeID,
		PeriodStart: start,
		PeriodEnd:   end,
		Earnings:    req.Earnings,
		Deductions:  req.Deductions,
		Attendance:  req.Attendance,
		Status:      req.Status,
	})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Created(w, rec, reqID)
}

func (h *Handler) handlePrefill(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	v := shared.NewValidator()
	v.Required("employeeId", q.Get("employeeId"))
	year, month := v.Period(q.Get("year"), q.Get("month"))
	if err := v.Err(); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	out, err := h.Service.Prefill(r.Context(), q.Get("employeeId"), year, month)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, out, reqID)
}

func (h *Handler) handleBulkGenerate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	year, month := v.Period(r.URL.Query().Get("year"), r.URL.Query().Get("month"))
	if err := v.Err(); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	out, err := h.Service.BulkGenerate(r.Context(), year, month)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, out, reqID)
}

type bulkStatusRequest struct {
	Year   int            `json:"year"`
	Month  int            `json:"month"`
	Status payroll.Status `json:"status"`
}

func (h *Handler) handleBulkStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var req bulkStatusRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	v := shared.NewValidator()
	year, month := v.Period(strconv.Itoa(req.Year), strconv.Itoa(req.Month))
	if err := v.Err(); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	out, err := h.Service.BulkSetStatus(r.Context(), year, month, req.Status)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, out, reqID)
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
	filter.Limit, filter.Offset = page.Limit, page.Offset
	out, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, out, reqID)
}

func parseFilter(r *http.Request) (payroll.Filter, error) {
	q := r.URL.Query()
	filter := payroll.Filter{Status: payroll.Status(q.Get("status")), EmployeeID: q.Get("employeeId")}
	v := shared.NewValidator()
	if q.Get("year") != "" || q.Get("month") != "" {
		filter.Year, filter.Month = v.Period(q.Get("year"), q.Get("month"))
	}
	return filter, v.Err()
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	year, month := v.Period(r.URL.Query().Get("year"), r.URL.Query().Get("month"))
	if err := v.Err(); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	records, _, err := h.Service.List(r.Context(), payroll.Filter{Year: year, Month: month, Limit: registerLimit})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	var buf bytes.Buffer
	if err := export.PayrollRegister(&buf, year, month, records); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payroll-register-%d-%02d.xlsx", year, int(month)))
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	rec, err := h.Service.Get(r.Context(), chi.URLParam(r, "payrollID"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, rec, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var input payroll.UpdateInput
	if err := shared.DecodeJSON(r, &input); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	rec, err := h.Service.Update(r.Context(), chi.URLParam(r, "payrollID"), input)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, rec, reqID)
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var req struct {
		Status payroll.Status `json:"status"`
	}
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	rec, err := h.Service.SetStatus(r.Context(), chi.URLParam(r, "payrollID"), req.Status)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, rec, reqID)
}
