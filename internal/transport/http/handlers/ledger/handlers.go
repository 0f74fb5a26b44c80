package ledgerhandler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"backoffice/internal/auth"
	"backoffice/internal/domain/ledger"
	"backoffice/internal/platform/apperror"
	"backoffice/internal/platform/export"
	"backoffice/internal/transport/http/api"
	"backoffice/internal/transport/http/middleware"
	"backoffice/internal/transport/http/shared"
)

type Handler struct {
	Service *ledger.Service
}

func NewHandler(service *ledger.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/ledger", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleFinance))
		r.Get("/", h.handleList)
		r.Get("/cash-position", h.handleCashPosition)
		r.Get("/statement", h.handleStatement)
		r.Post("/{kind}", h.handleAdd)
		r.Get("/{kind}/{entryID}", h.handleGet)
		r.Put("/{kind}/{entryID}", h.handleUpdate)
		r.Delete("/{kind}/{entryID}", h.handleDelete)
	})
}

// kindParam maps the "credits" and "debits" path segments to entry kinds.
func kindParam(r *http.Request) (ledger.Kind, error) {
	switch chi.URLParam(r, "kind") {
	case "credits":
		return ledger.KindCredit, nil
	case "debits":
		return ledger.KindDebit, nil
	}
	return "", apperror.New(apperror.CodeNotFound, "route not found", http.StatusNotFound)
}

type entryRequest struct {
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	PaymentMode string          `json:"paymentMode"`
	Reference   string          `json:"referenceNumber"`
	BillFile    string          `json:"billFile"`
	PaidBy      string          `json:"paidBy"`
}

func decodeEntry(r *http.Request) (ledger.EntryInput, error) {
	var req entryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		return ledger.EntryInput{}, err
	}
	v := shared.NewValidator()
	date := v.Date("date", req.Date)
	if err := v.Err(); err != nil {
		return ledger.EntryInput{}, err
	}
	return ledger.EntryInput{
		Date:        date,
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		PaymentMode: req.PaymentMode,
		Reference:   req.Reference,
		BillFile:    req.BillFile,
		PaidBy:      req.PaidBy,
	}, nil
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	kind, err := kindParam(r)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	input, err := decodeEntry(r)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	var entry ledger.Entry
	if kind == ledger.KindCredit {
		entry, err = h.Service.AddCredit(r.Context(), input)
	} else {
		entry, err = h.Service.AddDebit(r.Context(), input)
	}
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Created(w, entry, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	kind, err := kindParam(r)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	entry, err := h.Service.Get(r.Context(), kind, chi.URLParam(r, "entryID"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, entry, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	kind, err := kindParam(r)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	input, err := decodeEntry(r)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	entry, err := h.Service.Update(r.Context(), kind, chi.URLParam(r, "entryID"), input)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, entry, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	kind, err := kindParam(r)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	if err := h.Service.Delete(r.Context(), kind, chi.URLParam(r, "entryID")); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	v := shared.NewValidator()
	filter := ledger.Filter{
		Kind:     ledger.Kind(q.Get("kind")),
		Category: q.Get("category"),
		PaidBy:   q.Get("paidBy"),
	}
	if from := v.OptionalDate("from", q.Get("from")); from != nil {
		filter.From = *from
	}
	if to := v.OptionalDate("to", q.Get("to")); to != nil {
		filter.To = *to
	}
	if raw := q.Get("amount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			v.Add("amount", "must be a number")
		} else {
			filter.Amount = &amount
		}
	}
	if err := v.Err(); err != nil {
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

func (h *Handler) handleCashPosition(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	var from, to time.Time
	if d := v.OptionalDate("from", r.URL.Query().Get("from")); d != nil {
		from = *d
	}
	if d := v.OptionalDate("to", r.URL.Query().Get("to")); d != nil {
		to = *d
	}
	if err := v.Err(); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	pos, err := h.Service.CashPositionForPeriod(r.Context(), from, to)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, pos, reqID)
}

// handleStatement renders the month as PDF, or as JSON with format=json.
func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	year, month := v.Period(r.URL.Query().Get("year"), r.URL.Query().Get("month"))
	if err := v.Err(); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	st, err := h.Service.Statement(r.Context(), year, month)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	if r.URL.Query().Get("format") == "json" {
		api.Success(w, st, reqID)
		return
	}
	var buf bytes.Buffer
	if err := export.StatementPDF(&buf, st); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=statement-%d-%02d.pdf", year, int(month)))
	_, _ = w.Write(buf.Bytes())
}
