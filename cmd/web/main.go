package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/ironcycle/ironcycle/internal/auth"
	"github.com/ironcycle/ironcycle/internal/envstruct"
	"github.com/ironcycle/ironcycle/internal/errors"
	"github.com/ironcycle/ironcycle/internal/exercise"
	"github.com/ironcycle/ironcycle/internal/logging"
	"github.com/ironcycle/ironcycle/internal/program"
	"github.com/ironcycle/ironcycle/internal/sqlite"
	"github.com/ironcycle/ironcycle/internal/workout"
)

type application struct {
	logger          *slog.Logger
	sessionManager  *scs.SessionManager
	authService     *auth.Service
	programService  *program.Service
	workoutService  *workout.Service
	exerciseService *exercise.Service
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"IRONCYCLE_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"IRONCYCLE_SQLITE_URL" envDefault:"./ironcycle.sqlite3"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	app := newApplication(db, logger)

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func newApplication(db *sqlite.Database, logger *slog.Logger) *application {
	return &application{
		logger:          logger,
		sessionManager:  initializeSessionManager(db),
		authService:     auth.NewService(db, logger),
		programService:  program.NewService(db, logger),
		workoutService:  workout.NewService(db, logger),
		exerciseService: exercise.NewService(db, logger),
	}
}

func initializeSessionManager(dbs *sqlite.Database) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 12 * time.Hour                                                //nolint:mnd // half a day
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
