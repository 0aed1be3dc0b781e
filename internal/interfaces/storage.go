// Package interfaces defines service contracts for MapleBook
package interfaces

import (
	"context"
	"time"

	"github.com/dkmcgowan/maplebook/internal/models"
)

// StorageManager coordinates all storage areas.
type StorageManager interface {
	ActivityStore() ActivityStore
	AccountStore() AccountStore
	PositionStore() PositionStore
	TaxStateStore() TaxStateStore

	// Lifecycle
	Close() error
}

// ActivityStore is the append-only brokerage activity ledger.
// Records are never mutated after insertion.
type ActivityStore interface {
	SaveActivity(ctx context.Context, activity *models.ActivityRecord) error

	// GetActivities returns all activities for a symbol, optionally scoped
	// to one account, sorted ascending by occurrence time.
	GetActivities(ctx context.Context, symbol, accountID string) ([]models.ActivityRecord, error)

	// GetActivitiesByType returns activities of one type in [from, to),
	// sorted ascending by occurrence time. Zero bounds are unbounded.
	GetActivitiesByType(ctx context.Context, activityType models.ActivityType, from, to time.Time) ([]models.ActivityRecord, error)

	// GetBuysSince returns buy activities for a symbol on or after cutoff,
	// across all accounts, most recent first.
	GetBuysSince(ctx context.Context, symbol string, cutoff time.Time) ([]models.ActivityRecord, error)

	// FirstBuy returns the earliest buy for a symbol in an account, or nil.
	FirstBuy(ctx context.Context, symbol, accountID string) (*models.ActivityRecord, error)
}

// AccountStore manages brokerage account metadata.
type AccountStore interface {
	SaveAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
}

// PositionStore manages current open-position snapshots.
type PositionStore interface {
	SavePosition(ctx context.Context, position *models.Position) error
	GetPositionsBySymbol(ctx context.Context, symbol string) ([]models.Position, error)
	ListPositions(ctx context.Context) ([]models.Position, error)
}

// TaxStateStore holds the user's tax settings and the externally tracked
// corporate balances (CDA/RDTOH/AAII). The tax core reads balances; only
// the external trackers write them.
type TaxStateStore interface {
	GetTaxSettings(ctx context.Context) (*models.TaxSettings, error)
	SaveTaxSettings(ctx context.Context, settings *models.TaxSettings) error

	GetCorporateBalances(ctx context.Context) (*models.CorporateBalances, error)
	SaveCorporateBalances(ctx context.Context, balances *models.CorporateBalances) error

	// LastSyncedAt returns the completion time of the most recent sync,
	// zero time when never synced.
	LastSyncedAt(ctx context.Context) (time.Time, error)
	SetLastSyncedAt(ctx context.Context, t time.Time) error
}
