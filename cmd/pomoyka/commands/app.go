package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/pomoyka/pomoyka-client/internal/api"
	"github.com/pomoyka/pomoyka-client/internal/config"
	"github.com/pomoyka/pomoyka-client/internal/database"
	"github.com/pomoyka/pomoyka-client/internal/payment"
	"github.com/pomoyka/pomoyka-client/internal/services"
	"github.com/pomoyka/pomoyka-client/internal/session"
	"github.com/pomoyka/pomoyka-client/internal/utils"
	"github.com/sirupsen/logrus"
)

// ErrNotLoggedIn is returned by commands that need a session when none is held
var ErrNotLoggedIn = errors.New("not logged in, run `pomoyka login` first")

// App is the composition root shared by all commands
type App struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Session *session.Manager
	API     *api.Client

	closeStore func() error
}

// Options are the global flags
type Options struct {
	LogLevel string // Overrides LOG_LEVEL when set
}

// Open loads configuration, opens the token store and restores the session
func (a *App) Open(ctx context.Context, opts Options, logOut io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logger := newLogger(cfg.Log.Level, logOut)

	store, closeStore, err := openStore(cfg.Store)
	if err != nil {
		return err
	}

	// The auth client bypasses the session transport so a refresh never recurses
	authClient := api.NewClient(cfg.API, nil, logger)
	manager := session.NewManager(store, authClient, logger)
	snap := manager.Load(ctx)

	logger.WithFields(logrus.Fields{
		"api_url":      cfg.API.BaseURL,
		"store_driver": cfg.Store.Driver,
		"status":       snap.Status.String(),
	}).Debug("Client initialized")

	httpClient := &http.Client{Transport: session.NewTransport(nil, manager, logger)}

	a.Config = cfg
	a.Logger = logger
	a.Session = manager
	a.API = api.NewClient(cfg.API, httpClient, logger)
	a.closeStore = closeStore
	return nil
}

// Close releases the token store
func (a *App) Close() error {
	if a.closeStore == nil {
		return nil
	}
	closeStore := a.closeStore
	a.closeStore = nil
	return closeStore()
}

// RequireSession fails fast when no session is held
func (a *App) RequireSession() error {
	if a.Session == nil || !a.Session.Snapshot().Authenticated() {
		return ErrNotLoggedIn
	}
	return nil
}

// Coordinator builds a booking coordinator reading payment navigation from in
func (a *App) Coordinator(in io.Reader, out io.Writer) *services.BookingCoordinator {
	cfg := services.DefaultCoordinatorConfig()
	cfg.Window = services.BookingWindow{
		OpenHour:  a.Config.Booking.OpenHour,
		CloseHour: a.Config.Booking.CloseHour,
	}
	cfg.PollInterval = a.Config.Polling.Interval
	cfg.MaxPollAttempts = a.Config.Polling.MaxAttempts
	cfg.CheckoutURL = a.Config.Payment.CheckoutURL
	cfg.AllowedPrefixes = a.Config.Payment.AllowedPrefixes

	surface := &payment.StdinSurface{In: in, Out: out}
	return services.NewBookingCoordinator(a.API, surface, cfg, a.Logger)
}

func newLogger(level string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}

func openStore(cfg config.StoreConfig) (session.SecureStore, func() error, error) {
	if cfg.Driver == "memory" {
		return session.NewMemoryStore(), func() error { return nil }, nil
	}

	sealer, err := utils.NewSealer(cfg.Key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize token sealing: %w", err)
	}

	db, err := database.NewConnection(cfg)
	if err != nil {
		return nil, nil, err
	}

	return database.NewTokenRepository(db, sealer), db.Close, nil
}
