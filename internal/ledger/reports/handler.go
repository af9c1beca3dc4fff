package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quillbooks/quillbooks/internal/platform/httpx"
)

// Handler exposes the financial statements over HTTP. Rendering beyond plain
// JSON belongs to the reporting collaborator.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs the reports handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger}
}

// MountRoutes attaches the statement endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/profit-and-loss", h.ProfitAndLoss)
	r.Get("/balance-sheet", h.BalanceSheet)
	r.Get("/cash-flow", h.CashFlow)
	r.Get("/trial-balance", h.TrialBalance)
}

func (h *Handler) ProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.period(w, r)
	if !ok {
		return
	}
	var (
		pl  ProfitAndLoss
		err error
	)
	if currency := r.URL.Query().Get("currency"); currency != "" {
		pl, err = h.service.ProfitAndLossIn(r.Context(), from, to, currency)
	} else {
		pl, err = h.service.ProfitAndLoss(r.Context(), from, to)
	}
	if err != nil {
		h.logger.Error("profit and loss", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pl)
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.date(w, r, "as_of")
	if !ok {
		return
	}
	bs, err := h.service.BalanceSheet(r.Context(), asOf)
	if err != nil {
		h.logger.Error("balance sheet", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}

func (h *Handler) CashFlow(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.period(w, r)
	if !ok {
		return
	}
	cf, err := h.service.CashFlow(r.Context(), from, to)
	if err != nil {
		h.logger.Error("cash flow", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cf)
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.date(w, r, "as_of")
	if !ok {
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), asOf)
	if err != nil {
		h.logger.Error("trial balance", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) period(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	from, ok := h.date(w, r, "from")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := h.date(w, r, "to")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "to must not precede from")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
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
