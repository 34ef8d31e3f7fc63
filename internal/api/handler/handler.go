// internal/api/handler/handler.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"cardflow/internal/api/types"
	"cardflow/internal/repository"
	"cardflow/internal/util"
)

// DefaultTimeout bounds request handling at the router level.
const DefaultTimeout = 30 * time.Second

func respondWithJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps the service error taxonomy onto HTTP statuses.
// Access-denied is deliberately reported as 404 so a balance probe
// cannot distinguish "not yours" from "does not exist".
func respondWithError(w http.ResponseWriter, logger *slog.Logger, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput), util.IsError(err, util.ErrSameCardTransfer):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrNotFound), util.IsError(err, util.ErrAccessDenied):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrInvalidCard):
		statusCode = http.StatusUnprocessableEntity
		message = "Card status forbids this operation"
	case util.IsError(err, util.ErrInsufficientBalance):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = "Insufficient balance"
	case util.IsError(err, util.ErrNotAccessible):
		statusCode = http.StatusConflict
		message = "Card is not accessible"
	case util.IsError(err, util.ErrConflict):
		statusCode = http.StatusConflict
		message = "Card number already exists"
	default:
		logger.Error("Unhandled service error", "error", err)
	}

	respondWithJSON(w, logger, statusCode, types.ErrorResponse{Error: message})
}

// pageFromQuery reads pagination parameters, leaving defaults to
// Page.Normalize.
func pageFromQuery(r *http.Request) repository.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	return repository.Page{
		Number:  page,
		Size:    size,
		SortBy:  q.Get("sort_by"),
		SortDir: q.Get("sort_dir"),
	}
}
