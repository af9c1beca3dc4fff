package export

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quillbooks/quillbooks/internal/ledger/reports"
	"github.com/quillbooks/quillbooks/internal/platform/httpx"
)

// Handler serves PDF renditions of the financial statements.
type Handler struct {
	client  *Client
	reports *reports.Service
	logger  *slog.Logger
}

// NewHandler constructs the export handler.
func NewHandler(logger *slog.Logger, client *Client, svc *reports.Service) *Handler {
	return &Handler{client: client, reports: svc, logger: logger}
}

// MountRoutes attaches the export endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/profit-and-loss.pdf", h.profitAndLoss)
	r.Get("/balance-sheet.pdf", h.balanceSheet)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) profitAndLoss(w http.ResponseWriter, r *http.Request) {
	from, ok := h.date(w, r, "from")
	if !ok {
		return
	}
	to, ok := h.date(w, r, "to")
	if !ok {
		return
	}
	pl, err := h.reports.ProfitAndLoss(r.Context(), from, to)
	if err != nil {
		h.logger.Error("profit and loss export", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	html, err := RenderProfitAndLoss(pl)
	if err != nil {
		h.logger.Error("render profit and loss", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.sendPDF(w, r, html, "profit-and-loss.pdf")
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.date(w, r, "as_of")
	if !ok {
		return
	}
	bs, err := h.reports.BalanceSheet(r.Context(), asOf)
	if err != nil {
		h.logger.Error("balance sheet export", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	html, err := RenderBalanceSheet(bs)
	if err != nil {
		h.logger.Error("render balance sheet", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.sendPDF(w, r, html, "balance-sheet.pdf")
}

func (h *Handler) sendPDF(w http.ResponseWriter, r *http.Request, html, filename string) {
	pdf, err := h.client.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("gotenberg render", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(pdf)
}

func (h *Handler) date(w http.ResponseWriter, r *http.Request, param string) (time.Time, bool) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", param+" is required (YYYY-MM-DD)")
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", param+" must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}
