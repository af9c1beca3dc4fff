package journal

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

// Handler exposes journal entry operations over HTTP.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs the journal handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

// MountRoutes attaches the journal endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/post", h.Post)
	r.Post("/{id}/reverse", h.Reverse)
}

type lineRequest struct {
	AccountID   int64           `json:"account_id" validate:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	CostCenter  string          `json:"cost_center"`
}

type createEntryRequest struct {
	Date      string        `json:"date" validate:"required"`
	Type      string        `json:"type" validate:"required"`
	Memo      string        `json:"memo"`
	Reference string        `json:"reference"`
	SourceID  string        `json:"source_id"`
	Lines     []lineRequest `json:"lines" validate:"required,min=2,dive"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
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
	sourceID := uuid.New()
	if req.SourceID != "" {
		parsed, err := uuid.Parse(req.SourceID)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "source_id must be a UUID")
			return
		}
		sourceID = parsed
	}
	input := CreateInput{
		Date:      date,
		Type:      EntryType(req.Type),
		Memo:      req.Memo,
		Reference: req.Reference,
		SourceID:  sourceID,
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, LineInput{
			AccountID:   line.AccountID,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Description: line.Description,
			CostCenter:  line.CostCenter,
		})
	}
	entry, err := h.service.Create(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list journal entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}
	entry, err := h.service.Post(r.Context(), PostInput{EntryID: id})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

type reverseRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Reverse(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}
	var req reverseRequest
	_ = httpx.DecodeJSON(r, &req)
	entry, err := h.service.Reverse(r.Context(), ReverseInput{EntryID: id, Reason: req.Reason})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return 0, false
	}
	return id, true
}
