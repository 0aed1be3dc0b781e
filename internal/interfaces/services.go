// Package interfaces defines service contracts for MapleBook
package interfaces

import (
	"context"
	"time"

	"github.com/dkmcgowan/maplebook/internal/models"
)

// ACBService replays activity history into cost-basis ledgers.
type ACBService interface {
	// GetACBHistory computes ACB ledgers for a symbol, one per account
	// (or only the given account when accountID is non-empty).
	GetACBHistory(ctx context.Context, symbol, accountID string) ([]*models.ACBResult, error)

	// ACBPerUnit returns the current average cost per unit for a
	// (symbol, account) pair, 0 when there is no open quantity.
	ACBPerUnit(ctx context.Context, symbol, accountID string) (float64, error)
}

// TaxService classifies gains and detects tax-loss-harvesting candidates.
// Methods taking now use it as the injected clock for day arithmetic.
type TaxService interface {
	// GetRealizedGains returns the tax consequence of every sell in the year.
	GetRealizedGains(ctx context.Context, year int) ([]models.RealizedGain, error)

	// GetUnrealizedGains returns one row per open position.
	GetUnrealizedGains(ctx context.Context, now time.Time) ([]models.UnrealizedGain, error)

	// GetCapitalGainsSummary aggregates the taxable subset for the year.
	GetCapitalGainsSummary(ctx context.Context, year int) (*models.CapitalGainsSummary, error)

	// GetCapitalGainsSplit separates the summary into personal and corporate.
	GetCapitalGainsSplit(ctx context.Context, year int) (*models.CapitalGainsSplit, error)

	// GetTaxLossCandidates returns harvestable losses, largest first.
	GetTaxLossCandidates(ctx context.Context, now time.Time) ([]models.TaxLossCandidate, error)

	// GetTaxImplications returns per-account tax treatment for a symbol.
	GetTaxImplications(ctx context.Context, symbol string) ([]models.TaxImplication, error)
}

// WhatIfService simulates disposal tax cascades.
type WhatIfService interface {
	// Simulate runs the cascade for a scenario, resolving ACB per unit and
	// tax context from storage.
	Simulate(ctx context.Context, scenario models.WhatIfScenario, accountID string) (*models.WhatIfResult, error)
}

// SyncService ingests brokerage data into storage.
type SyncService interface {
	// Sync refreshes accounts, positions, and activities from the brokerage.
	// When force is false, a recent sync short-circuits.
	Sync(ctx context.Context, force bool) (*SyncStats, error)
}

// SyncStats summarises one sync run.
type SyncStats struct {
	Accounts   int       `json:"accounts"`
	Positions  int       `json:"positions"`
	Activities int       `json:"activities"`
	SyncedAt   time.Time `json:"synced_at"`
}

// MemoService generates year-end tax memos.
type MemoService interface {
	// GenerateMemo writes a tax memo for the year from the current gains
	// picture and TLH candidates.
	GenerateMemo(ctx context.Context, year int, now time.Time) (string, error)
}

// ReportService renders exports for the dashboard.
type ReportService interface {
	// RealizedGainsCSV renders the year's realized gains as CSV.
	RealizedGainsCSV(ctx context.Context, year int) ([]byte, error)

	// ACBChartPNG renders a symbol's running ACB audit trail as a PNG chart.
	ACBChartPNG(ctx context.Context, symbol, accountID string) ([]byte, error)
}
