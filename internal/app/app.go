// Package app wires configuration, storage, clients, and services into a
// single application core shared by entry points and tests.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dkmcgowan/maplebook/internal/clients/gemini"
	"github.com/dkmcgowan/maplebook/internal/clients/snaptrade"
	"github.com/dkmcgowan/maplebook/internal/common"
	"github.com/dkmcgowan/maplebook/internal/interfaces"
	"github.com/dkmcgowan/maplebook/internal/services/acb"
	"github.com/dkmcgowan/maplebook/internal/services/memo"
	"github.com/dkmcgowan/maplebook/internal/services/report"
	syncsvc "github.com/dkmcgowan/maplebook/internal/services/sync"
	"github.com/dkmcgowan/maplebook/internal/services/tax"
	"github.com/dkmcgowan/maplebook/internal/services/whatif"
	"github.com/dkmcgowan/maplebook/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config  *common.Config
	Logger  *common.Logger
	Storage interfaces.StorageManager

	BrokerageClient interfaces.BrokerageClient
	MemoClient      interfaces.MemoClient

	ACBService    interfaces.ACBService
	TaxService    interfaces.TaxService
	WhatIfService interfaces.WhatIfService
	SyncService   interfaces.SyncService
	MemoService   interfaces.MemoService
	ReportService interfaces.ReportService

	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services from configuration.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	// Check provided path, MAPLEBOOK_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("MAPLEBOOK_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "maplebook.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/maplebook.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := &App{
		Config:      config,
		Logger:      logger,
		Storage:     storageManager,
		StartupTime: time.Now(),
	}

	// Core tax engine; no external dependencies
	a.ACBService = acb.NewService(storageManager, logger)
	a.TaxService = tax.NewService(storageManager, logger)
	a.WhatIfService = whatif.NewService(storageManager, a.ACBService, logger)
	a.ReportService = report.NewService(a.TaxService, a.ACBService, logger)

	// Brokerage sync, only when a key is configured
	if key := config.Clients.SnapTrade.APIKey; key != "" {
		client := snaptrade.NewClient(key,
			snaptrade.WithLogger(logger),
			snaptrade.WithBaseURL(config.Clients.SnapTrade.BaseURL),
			snaptrade.WithRateLimit(config.Clients.SnapTrade.RateLimit),
			snaptrade.WithTimeout(config.Clients.SnapTrade.GetTimeout()),
		)
		a.BrokerageClient = client
		a.SyncService = syncsvc.NewService(storageManager, client, logger)
	} else {
		logger.Warn().Msg("SnapTrade API key not configured - portfolio sync will be unavailable")
	}

	// Memo generation, only when a key is configured
	if key := config.Clients.Gemini.APIKey; key != "" {
		client, err := gemini.NewClient(context.Background(), key,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		a.MemoClient = client
		a.MemoService = memo.NewService(a.TaxService, client, logger)
	} else {
		logger.Warn().Msg("Gemini API key not configured - tax memos will be unavailable")
	}

	logger.Info().
		Str("environment", config.Environment).
		Str("province", config.Tax.Province).
		Msg("Application initialized")

	return a, nil
}

// Close releases application resources.
func (a *App) Close() {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close storage")
		}
	}
}
