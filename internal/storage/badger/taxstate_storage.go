package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/dkmcgowan/maplebook/internal/common"
	"github.com/dkmcgowan/maplebook/internal/models"
)

const (
	taxSettingsKey       = "default"
	corporateBalancesKey = "default"
	lastSyncedKey        = "last_synced_at"
)

// syncMarker records sync completion times as a simple KV entry.
type syncMarker struct {
	Key      string `badgerhold:"key"`
	SyncedAt time.Time
}

type taxStateStorage struct {
	store    *Store
	logger   *common.Logger
	defaults models.TaxSettings
}

// NewTaxStateStorage creates a new TaxStateStore backed by BadgerHold.
// defaults are returned when no settings have been saved yet.
func NewTaxStateStorage(store *Store, logger *common.Logger, defaults models.TaxSettings) *taxStateStorage {
	return &taxStateStorage{store: store, logger: logger, defaults: defaults}
}

func (s *taxStateStorage) GetTaxSettings(_ context.Context) (*models.TaxSettings, error) {
	var settings models.TaxSettings
	err := s.store.db.Get(taxSettingsKey, &settings)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			defaults := s.defaults
			defaults.ID = taxSettingsKey
			return &defaults, nil
		}
		return nil, fmt.Errorf("failed to get tax settings: %w", err)
	}
	return &settings, nil
}

func (s *taxStateStorage) SaveTaxSettings(_ context.Context, settings *models.TaxSettings) error {
	settings.ID = taxSettingsKey
	if err := s.store.db.Upsert(settings.ID, settings); err != nil {
		return fmt.Errorf("failed to save tax settings: %w", err)
	}
	s.logger.Debug().Str("province", settings.Province).Msg("Tax settings saved")
	return nil
}

func (s *taxStateStorage) GetCorporateBalances(_ context.Context) (*models.CorporateBalances, error) {
	var balances models.CorporateBalances
	err := s.store.db.Get(corporateBalancesKey, &balances)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return &models.CorporateBalances{ID: corporateBalancesKey}, nil
		}
		return nil, fmt.Errorf("failed to get corporate balances: %w", err)
	}
	return &balances, nil
}

func (s *taxStateStorage) SaveCorporateBalances(_ context.Context, balances *models.CorporateBalances) error {
	balances.ID = corporateBalancesKey
	balances.UpdatedAt = time.Now()
	if err := s.store.db.Upsert(balances.ID, balances); err != nil {
		return fmt.Errorf("failed to save corporate balances: %w", err)
	}
	return nil
}

func (s *taxStateStorage) LastSyncedAt(_ context.Context) (time.Time, error) {
	var marker syncMarker
	err := s.store.db.Get(lastSyncedKey, &marker)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to get last sync time: %w", err)
	}
	return marker.SyncedAt, nil
}

func (s *taxStateStorage) SetLastSyncedAt(_ context.Context, t time.Time) error {
	marker := syncMarker{Key: lastSyncedKey, SyncedAt: t}
	if err := s.store.db.Upsert(marker.Key, &marker); err != nil {
		return fmt.Errorf("failed to set last sync time: %w", err)
	}
	return nil
}
