// internal/api/handler/card.go
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cardflow/internal/api/types"
	"cardflow/internal/domain"
	"cardflow/internal/service"
	"cardflow/internal/util"
)

// CardHandler handles HTTP requests for the card ledger. The caller's
// identity arrives pre-authenticated in the X-Owner-ID header;
// authentication itself happens outside this service.
type CardHandler struct {
	service service.CardService
	logger  *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(svc service.CardService, logger *slog.Logger) *CardHandler {
	return &CardHandler{service: svc, logger: logger}
}

func cardIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "cardID"), 10, 64)
}

func ownerIDHeader(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.Header.Get("X-Owner-ID"))
}

// CreateCardRequest is the request body for issuing a card.
type CreateCardRequest struct {
	OwnerID uuid.UUID `json:"owner_id"`
}

// Create handles card creation.
// POST /cards
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OwnerID == uuid.Nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	card, err := h.service.Create(r.Context(), req.OwnerID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	// The one place the real number leaves the service.
	respondWithJSON(w, h.logger, http.StatusCreated, card.UnmaskedView())
}

// GetAll handles the administrative listing.
// GET /cards
func (h *CardHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	paged, err := h.service.GetAll(r.Context(), pageFromQuery(r))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, types.NewCardPageResponse(paged))
}

// GetByID handles a single-card lookup.
// GET /cards/{cardID}
func (h *CardHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := cardIDParam(r)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	card, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, card.MaskedView())
}

// GetByNumber handles lookup by full card number.
// GET /cards/by-number?number=...
func (h *CardHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	number := r.URL.Query().Get("number")
	if number == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	card, err := h.service.GetByNumber(r.Context(), number)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, card.MaskedView())
}

// SetStatusRequest is the request body for a status change.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus handles administrative activate/block/expire.
// PUT /cards/{cardID}/status
func (h *CardHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := cardIDParam(r)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	status, ok := domain.ParseCardStatus(req.Status)
	if !ok {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	card, err := h.service.SetStatus(r.Context(), id, status)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, card.MaskedView())
}

// Delete handles card removal, returning the final snapshot.
// DELETE /cards/{cardID}
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := cardIDParam(r)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	card, err := h.service.Delete(r.Context(), id)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, card.MaskedView())
}

// BlockRequest stages a card for the next batch block.
// POST /cards/{cardID}/block-request
func (h *CardHandler) BlockRequest(w http.ResponseWriter, r *http.Request) {
	id, err := cardIDParam(r)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if err := h.service.AddToBlockQueue(r.Context(), id); err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusAccepted, map[string]string{"message": "Block request staged"})
}

// FlushBlockRequests applies every staged block request.
// POST /cards/block-requests/flush
func (h *CardHandler) FlushBlockRequests(w http.ResponseWriter, r *http.Request) {
	affected, err := h.service.BlockAllRequested(r.Context())
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]int64{"blocked": affected})
}

// Expire triggers the expiry sweep manually.
// POST /cards/expire
func (h *CardHandler) Expire(w http.ResponseWriter, r *http.Request) {
	affected, err := h.service.Expire(r.Context())
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]int64{"expired": affected})
}

// GetBalance handles the ownership-scoped balance query.
// GET /cards/{cardID}/balance
func (h *CardHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, err := cardIDParam(r)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	ownerID, err := ownerIDHeader(r)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	balance, err := h.service.GetBalance(r.Context(), id, ownerID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]decimal.Decimal{"balance": balance})
}

// AmountRequest is the request body for deposit and withdraw.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Deposit handles the deposit money request.
// POST /cards/{cardID}/deposit
func (h *CardHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.mutateBalance(w, r, h.service.Deposit, "Deposit successful")
}

// Withdraw handles the withdraw money request.
// POST /cards/{cardID}/withdraw
func (h *CardHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.mutateBalance(w, r, h.service.Withdraw, "Withdrawal successful")
}

func (h *CardHandler) mutateBalance(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id int64, amount decimal.Decimal) error, message string) {
	id, err := cardIDParam(r)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if !req.Amount.IsPositive() {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	if err := op(r.Context(), id, req.Amount); err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]string{"message": message})
}

// TransferRequest is the request body for a card-to-card transfer.
type TransferRequest struct {
	FromCardID int64           `json:"from_card_id"`
	ToCardID   int64           `json:"to_card_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// Transfer handles card-to-card transfers.
// POST /transfers
func (h *CardHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if !req.Amount.IsPositive() {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	if err := h.service.Transfer(r.Context(), req.FromCardID, req.ToCardID, req.Amount); err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]string{"message": "Transfer successful"})
}
