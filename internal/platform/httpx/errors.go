package httpx

import (
	"errors"
	"net/http"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
)

// RespondError maps ledger errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrAccountNotFound),
		errors.Is(err, shared.ErrEntryNotFound),
		errors.Is(err, shared.ErrStatementNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrTooFewLines):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrUnbalanced),
		errors.Is(err, shared.ErrAlreadyPosted),
		errors.Is(err, shared.ErrNotPosted),
		errors.Is(err, shared.ErrPostingNotAllowed):
		Problem(w, http.StatusUnprocessableEntity, "Posting Rejected", err.Error())
	case errors.Is(err, shared.ErrRateUnavailable):
		Problem(w, http.StatusUnprocessableEntity, "Rate Unavailable", err.Error())
	case errors.Is(err, shared.ErrStatementImported):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrConflict),
		errors.Is(err, shared.ErrReconciliationBusy):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
