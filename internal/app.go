// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	router "cardflow/internal/api"
	"cardflow/internal/api/handler"
	"cardflow/internal/cardcrypto"
	"cardflow/internal/cardnum"
	"cardflow/internal/config"
	"cardflow/internal/queue"
	"cardflow/internal/repository"
	"cardflow/internal/repository/postgres"
	"cardflow/internal/service"
	"cardflow/internal/util"
	"cardflow/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	CardRepository repository.CardRepository
	UserRepository repository.UserRepository

	// Services
	CardService service.CardService
	UserService service.UserService

	// Expiry sweep scheduler
	Cron *cron.Cron

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	codec, err := cardcrypto.NewCodec(cfg.EncryptionKey, cfg.HMACSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize card number codec: %w", err)
	}

	app.CardRepository = postgres.NewCardRepository(codec)
	app.UserRepository = postgres.NewUserRepository()
	app.Logger.Info("Repositories initialized.")

	generator := cardnum.NewGenerator(rand.New(rand.NewSource(time.Now().UnixNano())))
	blockQueue := queue.NewBlockQueue()

	app.CardService = service.NewCardService(
		app.DB, // DBTxBeginner
		app.DB, // DBExecutor
		app.CardRepository,
		app.UserRepository,
		generator,
		blockQueue,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		time.Now,
	)
	app.UserService = service.NewUserService(app.DB, app.UserRepository)
	app.Logger.Info("Services initialized.")

	app.Cron = cron.New()
	if _, err := app.Cron.AddFunc(cfg.SweepSchedule, app.runExpirySweep); err != nil {
		return fmt.Errorf("failed to schedule expiry sweep %q: %w", cfg.SweepSchedule, err)
	}
	app.Cron.Start()
	app.Logger.Info("Expiry sweep scheduled.", "schedule", cfg.SweepSchedule)

	cardHandler := handler.NewCardHandler(app.CardService, app.Logger)
	userHandler := handler.NewUserHandler(app.UserService, app.CardService, app.Logger)
	app.HTTPHandler = router.NewRouter(cardHandler, userHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

func (app *Application) runExpirySweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	expired, err := app.CardService.Expire(ctx)
	if err != nil {
		app.Logger.Error("Expiry sweep failed", "error", err)
		return
	}
	if expired > 0 {
		app.Logger.Info("Expiry sweep completed", "expired", expired)
	}
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Cron != nil {
		cronCtx := app.Cron.Stop()
		select {
		case <-cronCtx.Done():
		case <-ctx.Done():
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
