package payableshandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"backoffice/internal/auth"
	"backoffice/internal/domain/payables"
	"backoffice/internal/transport/http/api"
	"backoffice/internal/transport/http/middleware"
	"backoffice/internal/transport/http/shared"
)

type Handler struct {
	Service *payables.Service
}

func NewHandler(service *payables.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/invoices", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleFinance))
		r.Get("/", h.handleListInvoices)
		r.Post("/", h.handleCreateInvoice)
		r.Get("/{invoiceID}", h.handleGetInvoice)
		r.Post("/{invoiceID}/status", h.handleSetInvoiceStatus)
	})
	r.Route("/purchase-orders", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleFinance))
		r.Get("/", h.handleListPurchaseOrders)
		r.Post("/", h.handleCreatePurchaseOrder)
		r.Get("/{poID}", h.handleGetPurchaseOrder)
		r.Post("/{poID}/status", h.handleSetPurchaseOrderStatus)
	})
}

type invoiceRequest struct {
	InvoiceNumber string                 `json:"invoiceNumber"`
	Vendor        string                 `json:"vendor"`
	InvoiceDate   string                 `json:"invoiceDate"`
	DueDate       string                 `json:"dueDate"`
	Amount        decimal.Decimal        `json:"amount"`
	Description   string                 `json:"description"`
	FilePath      string                 `json:"filePath"`
	Status        payables.InvoiceStatus `json:"status"`
}

func (h *Handler) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var req invoiceRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	v := shared.NewValidator()
	invoiceDate := v.Date("invoiceDate", req.InvoiceDate)
	dueDate := v.OptionalDate("dueDate", req.DueDate)
	if err := v.Err(); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	inv, err := h.Service.CreateInvoice(r.Context(), payables.InvoiceInput{
		InvoiceNumber: req.InvoiceNumber,
		Vendor:        req.Vendor,
		InvoiceDate:   invoiceDate,
		DueDate:       dueDate,
		Amount:        req.Amount,
		Description:   req.Description,
		FilePath:      req.FilePath,
		Status:        req.Status,
	})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Created(w, inv, reqID)
}

func (h *Handler) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page, err := shared.ParsePagination(r)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	out, total, err := h.Service.ListInvoices(r.Context(), payables.InvoiceFilter{
		Status: payables.InvoiceStatus(r.URL.Query().Get("status")),
		Vendor: r.URL.Query().Get("vendor"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, out, reqID)
}

func (h *Handler) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	inv, err := h.Service.GetInvoice(r.Context(), chi.URLParam(r, "invoiceID"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, inv, reqID)
}

func (h *Handler) handleSetInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var req struct {
		Status payables.InvoiceStatus `json:"status"`
	}
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	inv, err := h.Service.SetInvoiceStatus(r.Context(), chi.URLParam(r, "invoiceID"), req.Status)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, inv, reqID)
}

type purchaseOrderRequest struct {
	PONumber      string            `json:"poNumber"`
	Vendor        string            `json:"vendor"`
	OrderDate     string            `json:"orderDate"`
	Items         []payables.Item   `json:"items"`
	TaxPercentage decimal.Decimal   `json:"taxPercentage"`
	Notes         string            `json:"notes"`
	Status        payables.POStatus `json:"status"`
}

func (h *Handler) handleCreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var req purchaseOrderRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	v := shared.NewValidator()
	orderDate := v.Date("orderDate", req.OrderDate)
	if err := v.Err(); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	po, err := h.Service.CreatePurchaseOrder(r.Context(), payables.PurchaseOrderInput{
		PONumber:      req.PONumber,
		Vendor:        req.Vendor,
		OrderDate:     orderDate,
		Items:         req.Items,
		TaxPercentage: req.TaxPercentage,
		Notes:         req.Notes,
		Status:        req.Status,
	})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Created(w, po, reqID)
}

func (h *Handler) handleListPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page, err := shared.ParsePagination(r)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	out, total, err := h.Service.ListPurchaseOrders(r.Context(), payables.PurchaseOrderFilter{
		Status: payables.POStatus(r.URL.Query().Get("status")),
		Vendor: r.URL.Query().Get("vendor"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, out, reqID)
}

func (h *Handler) handleGetPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	po, err := h.Service.GetPurchaseOrder(r.Context(), chi.URLParam(r, "poID"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, po, reqID)
}

func (h *Handler) handleSetPurchaseOrderStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var req struct {
		Status payables.POStatus `json:"status"`
	}
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	po, err := h.Service.SetPurchaseOrderStatus(r.Context(), chi.URLParam(r, "poID"), req.Status)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, po, reqID)
}
