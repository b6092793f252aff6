package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/buildsmith/buildsmith/internal/backend"
	"github.com/buildsmith/buildsmith/internal/ci"
	"github.com/buildsmith/buildsmith/internal/common"
	"github.com/buildsmith/buildsmith/internal/grants"
	"github.com/buildsmith/buildsmith/internal/handlers"
	"github.com/buildsmith/buildsmith/internal/identity"
	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/buildsmith/buildsmith/internal/release"
	"github.com/buildsmith/buildsmith/internal/services/events"
	"github.com/buildsmith/buildsmith/internal/session"
	badgerstore "github.com/buildsmith/buildsmith/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Event fan-out for connected clients
	EventService *events.Service

	// Identity and session services
	IdentityProvider interfaces.IdentityProvider
	BackendClient    interfaces.BackendClient
	SessionIssuer    interfaces.SessionIssuer

	// Credential resolution and CI status
	Resolver         interfaces.CredentialResolver
	WorkflowClient   interfaces.WorkflowClient
	StatusAggregator interfaces.StatusAggregator

	// Release upload pipeline
	CDNClient *release.CDNClient
	Pipelines *release.PipelineFactory

	// HTTP handlers
	APIHandler   *handlers.APIHandler
	AuthHandler  *handlers.AuthHandler
	UserHandler  *handlers.UserHandler
	TeamHandler  *handlers.TeamHandler
	GameHandler  *handlers.GameHandler
	GrantHandler *handlers.GrantHandler
	WSHandler    *handlers.WebSocketHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize database
	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Event service must exist before the pipeline and WebSocket handler,
	// both of which publish or consume upload events
	app.EventService = events.NewService()

	// Initialize services
	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Initialize handlers
	if err := app.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("backend", cfg.Backend.BaseURL).
		Str("cdn", cfg.CDN.BaseURL).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := badgerstore.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices wires the domain services in dependency order
func (a *App) initServices() error {
	a.IdentityProvider = identity.NewGitHubProvider(&a.Config.OAuth)
	a.BackendClient = backend.NewClient(&a.Config.Backend)
	a.SessionIssuer = session.NewIssuer(a.BackendClient, &a.Config.Redirect)

	a.Resolver = grants.NewResolver(
		a.StorageManager.GrantStorage(),
		grants.NewGitHubProber(),
		&a.Config.Resolver,
	)
	a.WorkflowClient = ci.NewClient()
	a.StatusAggregator = ci.NewAggregator(a.Resolver, a.WorkflowClient)

	a.CDNClient = release.NewCDNClient(&a.Config.CDN)
	a.Pipelines = release.NewPipelineFactory(a.CDNClient, a.BackendClient, &a.Config.Upload, a.EventService)

	a.Logger.Debug().
		Int("max_probes", a.Config.Resolver.MaxProbes).
		Str("accepted_extension", a.Config.Upload.AcceptedExtension).
		Msg("Services initialized")

	return nil
}

// initHandlers creates the HTTP handlers backed by the services
func (a *App) initHandlers() error {
	a.APIHandler = handlers.NewAPIHandler()
	a.AuthHandler = handlers.NewAuthHandler(a.IdentityProvider, a.SessionIssuer)
	a.UserHandler = handlers.NewUserHandler(a.StorageManager.UserStorage(), a.Config.Backend.APIKey)
	a.TeamHandler = handlers.NewTeamHandler(a.StorageManager.UserStorage(), a.StorageManager.TeamStorage())
	a.GameHandler = handlers.NewGameHandler(
		a.StorageManager.UserStorage(),
		a.StorageManager.TeamStorage(),
		a.StorageManager.GameStorage(),
		a.StatusAggregator,
		a.Pipelines,
	)
	a.GrantHandler = handlers.NewGrantHandler(a.StorageManager.GrantStorage())
	a.WSHandler = handlers.NewWebSocketHandler(a.EventService)

	return nil
}

// Close shuts down application components in reverse dependency order
func (a *App) Close() error {
	if a.EventService != nil {
		a.EventService.Close()
		a.Logger.Info().Msg("Event service closed")
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
