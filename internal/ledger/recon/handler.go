package recon

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/platform/httpx"
)

// Handler exposes bank statement import and reconciliation over HTTP.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs the reconciliation handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

// MountRoutes attaches the reconciliation endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/statements", h.Import)
	r.Post("/statements/{id}/run", h.Run)
	r.Post("/transactions", h.RecordTransaction)
}

type statementLineRequest struct {
	Date        string          `json:"date" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type importStatementRequest struct {
	AccountID     int64                  `json:"account_id" validate:"required"`
	StatementDate string                 `json:"statement_date" validate:"required"`
	TotalCredits  decimal.Decimal        `json:"total_credits"`
	TotalDebits   decimal.Decimal        `json:"total_debits"`
	EndingBalance decimal.Decimal        `json:"ending_balance"`
	ImportID      string                 `json:"import_id" validate:"required,uuid"`
	Lines         []statementLineRequest `json:"lines" validate:"dive"`
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req importStatementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	stmtDate, err := time.Parse("2006-01-02", req.StatementDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "statement_date must be YYYY-MM-DD")
		return
	}
	importID, err := uuid.Parse(req.ImportID)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "import_id must be a UUID")
		return
	}
	input := ImportInput{
		AccountID:     req.AccountID,
		StatementDate: stmtDate,
		TotalCredits:  req.TotalCredits,
		TotalDebits:   req.TotalDebits,
		EndingBalance: req.EndingBalance,
		ImportID:      importID,
	}
	for _, line := range req.Lines {
		date, err := time.Parse("2006-01-02", line.Date)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "line date must be YYYY-MM-DD")
			return
		}
		input.Lines = append(input.Lines, StatementLine{Date: date, Amount: line.Amount, Description: line.Description})
	}
	stmt, err := h.service.Import(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, stmt)
}

func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid statement id")
		return
	}
	result, err := h.service.Run(r.Context(), id, 0)
	if err != nil {
		h.logger.Error("reconciliation run", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

type recordTransactionRequest struct {
	AccountID   int64           `json:"account_id" validate:"required"`
	Date        string          `json:"date" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req recordTransactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
		return
	}
	txn, err := h.service.RecordTransaction(r.Context(), Transaction{
		AccountID:   req.AccountID,
		Date:        date,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, txn)
}
