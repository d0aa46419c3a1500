package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"conformly/internal/api"
	"conformly/internal/config"
	"conformly/internal/database"
	"conformly/internal/models"
	"conformly/internal/services"
)

// App wires the compliance client together and owns its lifecycle.
type App struct {
	ctx context.Context
	cfg config.Config
	log *zap.Logger

	Keys         *services.KeyringService
	API          *api.Client
	Wizard       *services.WizardService
	Orchestrator *services.OrchestratorService
	DraftStore   services.DraftStoreService
	Documents    services.DraftCollectionService

	dbClose func() error
}

func NewApp(cfg config.Config, log *zap.Logger) *App {
	return &App{cfg: cfg, log: log}
}

// startup opens the local database, wires services, and restores any
// in-progress onboarding draft.
func (a *App) startup(ctx context.Context) error {
	a.ctx = ctx

	db, err := database.Init(database.Config{
		Path:     a.cfg.DBPath,
		LogLevel: gormlogger.Warn,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	// Capture DB close for graceful shutdown
	if sqlDB, err := db.DB(); err != nil {
		a.log.Error("failed to get sql.DB", zap.Error(err))
	} else {
		a.dbClose = sqlDB.Close
	}

	a.Keys = services.NewKeyringService()
	a.API = api.NewClient(a.cfg.APIBaseURL, a.cfg.APITimeout, a.Keys, a.log)

	svc := services.NewServices(db, a.API, a.log)
	a.DraftStore = svc.DraftStore
	a.Documents = svc.Documents

	correlator := services.NewIdentityCorrelator()
	a.Wizard = services.NewWizardService(a.DraftStore, a.API, correlator, a.log)
	a.Orchestrator = services.NewOrchestratorService(a.API, correlator, a.Wizard, a.log)

	if err := a.Wizard.Startup(ctx); err != nil {
		return err
	}
	if err := a.Documents.Startup(ctx); err != nil {
		return err
	}
	return nil
}

// shutdown closes the database connection pool.
func (a *App) shutdown(ctx context.Context) {
	if a.dbClose != nil {
		if err := a.dbClose(); err != nil {
			a.log.Error("failed to close database", zap.Error(err))
		}
		a.dbClose = nil
	}
}

// Login stores a manually entered API key in the key slot.
func (a *App) Login(apiKey string) error {
	return a.Keys.StoreAPIKey(apiKey)
}

// DemoLogin fetches a demo key from the platform and stores it.
func (a *App) DemoLogin(ctx context.Context) error {
	key, err := a.API.DemoKey(ctx)
	if err != nil {
		return err
	}
	return a.Keys.StoreAPIKey(key)
}

// Logout clears the API-key slot.
func (a *App) Logout() error {
	return a.Keys.DeleteAPIKey()
}

// Generate runs the document-generation fan-out for the current session.
func (a *App) Generate(ctx context.Context) (*models.GenerationReport, error) {
	session := a.Wizard.Session()
	return a.Orchestrator.Run(ctx, &session)
}
