// internal/api/handler/user.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cardflow/internal/api/types"
	"cardflow/internal/service"
	"cardflow/internal/util"
)

// UserHandler handles HTTP requests for the user directory.
type UserHandler struct {
	userService service.UserService
	cardService service.CardService
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userSvc service.UserService, cardSvc service.CardService, logger *slog.Logger) *UserHandler {
	return &UserHandler{userService: userSvc, cardService: cardSvc, logger: logger}
}

// CreateUserRequest is the request body for registering a card holder.
type CreateUserRequest struct {
	Name string `json:"name"`
}

// Create registers a card holder.
// POST /users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	user, err := h.userService.Create(r.Context(), req.Name)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, user)
}

// Get returns a card holder by id.
// GET /users/{userID}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	user, err := h.userService.Get(r.Context(), id)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, user)
}

// Cards lists the user's cards, masked.
// GET /users/{userID}/cards
func (h *UserHandler) Cards(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	paged, err := h.cardService.GetCardsOfUser(r.Context(), id, pageFromQuery(r))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, types.NewCardPageResponse(paged))
}
