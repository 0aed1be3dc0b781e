// Package sync ingests brokerage data into local storage.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dkmcgowan/maplebook/internal/common"
	"github.com/dkmcgowan/maplebook/internal/interfaces"
)

// DefaultFreshness is how recently a sync must have completed before a
// non-forced sync short-circuits.
const DefaultFreshness = 1 * time.Hour

// Service pulls accounts, positions, and activities from the brokerage and
// upserts them into storage.
type Service struct {
	storage   interfaces.StorageManager
	client    interfaces.BrokerageClient
	logger    *common.Logger
	freshness time.Duration
	now       func() time.Time
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithFreshness sets the freshness window for non-forced syncs
func WithFreshness(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.freshness = d
	}
}

// WithClock sets the time source, used by tests
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new sync service
func NewService(storage interfaces.StorageManager, client interfaces.BrokerageClient, logger *common.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		storage:   storage,
		client:    client,
		logger:    logger,
		freshness: DefaultFreshness,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Sync refreshes accounts, positions, and activities from the brokerage.
// When force is false and the last sync completed within the freshness
// window, nothing is fetched and the returned stats are zero.
func (s *Service) Sync(ctx context.Context, force bool) (*interfaces.SyncStats, error) {
	now := s.now()

	if !force {
		lastSynced, err := s.storage.TaxStateStore().LastSyncedAt(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to check last sync time: %w", err)
		}
		if !lastSynced.IsZero() && now.Sub(lastSynced) < s.freshness {
			s.logger.Debug().Time("last_synced", lastSynced).Msg("Sync skipped, data is fresh")
			return &interfaces.SyncStats{SyncedAt: lastSynced}, nil
		}
	}

	accounts, err := s.client.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	stats := &interfaces.SyncStats{SyncedAt: now}

	for _, account := range accounts {
		if err := s.storage.AccountStore().SaveAccount(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to save account '%s': %w", account.ID, err)
		}
		stats.Accounts++

		positions, err := s.client.GetPositions(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch positions for '%s': %w", account.ID, err)
		}
		for _, position := range positions {
			if err := s.storage.PositionStore().SavePosition(ctx, position); err != nil {
				return nil, fmt.Errorf("failed to save position '%s': %w", position.ID, err)
			}
			stats.Positions++
		}

		activities, err := s.client.GetActivities(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch activities for '%s': %w", account.ID, err)
		}
		for _, activity := range activities {
			// Some brokerages omit activity IDs; storage needs a stable key.
			if activity.ID == "" {
				activity.ID = uuid.NewString()
			}
			if err := s.storage.ActivityStore().SaveActivity(ctx, activity); err != nil {
				return nil, fmt.Errorf("failed to save activity '%s': %w", activity.ID, err)
			}
			stats.Activities++
		}

		s.logger.Debug().
			Str("account", account.ID).
			Int("positions", len(positions)).
			Int("activities", len(activities)).
			Msg("Account synced")
	}

	if err := s.storage.TaxStateStore().SetLastSyncedAt(ctx, now); err != nil {
		return nil, fmt.Errorf("failed to record sync time: %w", err)
	}

	s.logger.Info().
		Int("accounts", stats.Accounts).
		Int("positions", stats.Positions).
		Int("activities", stats.Activities).
		Msg("Portfolio sync complete")

	return stats, nil
}

// Ensure Service implements SyncService
var _ interfaces.SyncService = (*Service)(nil)
