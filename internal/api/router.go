// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cardflow/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(cardHandler *handler.CardHandler, userHandler *handler.UserHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// User directory
	r.Route("/users", func(r chi.Router) {
		r.Post("/", userHandler.Create)
		r.Get("/{userID}", userHandler.Get)
		r.Get("/{userID}/cards", userHandler.Cards)
	})

	// Card ledger
	r.Route("/cards", func(r chi.Router) {
		r.Get("/", cardHandler.GetAll)
		r.Post("/", cardHandler.Create)
		r.Get("/by-number", cardHandler.GetByNumber)
		r.Post("/block-requests/flush", cardHandler.FlushBlockRequests)
		r.Post("/expire", cardHandler.Expire)

		r.Route("/{cardID}", func(r chi.Router) {
			r.Get("/", cardHandler.GetByID)
			r.Delete("/", cardHandler.Delete)
			r.Put("/status", cardHandler.SetStatus)
			r.Post("/block-request", cardHandler.BlockRequest)
			r.Get("/balance", cardHandler.GetBalance)
			r.Post("/deposit", cardHandler.Deposit)
			r.Post("/withdraw", cardHandler.Withdraw)
		})
	})

	// Transfer is a separate top-level endpoint as it involves two cards
	r.Post("/transfers", cardHandler.Transfer)

	return r
}
