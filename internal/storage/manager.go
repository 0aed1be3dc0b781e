// Package storage coordinates MapleBook's storage backends.
package storage

import (
	"fmt"

	"github.com/dkmcgowan/maplebook/internal/common"
	"github.com/dkmcgowan/maplebook/internal/interfaces"
	"github.com/dkmcgowan/maplebook/internal/models"
	"github.com/dkmcgowan/maplebook/internal/storage/badger"
)

// Manager implements interfaces.StorageManager over a single BadgerHold store.
type Manager struct {
	store *badger.Store

	activities interfaces.ActivityStore
	accounts   interfaces.AccountStore
	positions  interfaces.PositionStore
	taxState   interfaces.TaxStateStore

	logger *common.Logger
}

// NewManager opens the store and wires up all storage areas.
func NewManager(config *common.Config, logger *common.Logger) (*Manager, error) {
	store, err := badger.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage at %s: %w", config.Storage.Path, err)
	}

	defaults := models.TaxSettings{
		Province:             config.Tax.Province,
		PersonalMarginalRate: config.Tax.PersonalMarginalRate,
	}

	return &Manager{
		store:      store,
		activities: badger.NewActivityStorage(store, logger),
		accounts:   badger.NewAccountStorage(store, logger),
		positions:  badger.NewPositionStorage(store, logger),
		taxState:   badger.NewTaxStateStorage(store, logger, defaults),
		logger:     logger,
	}, nil
}

func (m *Manager) ActivityStore() interfaces.ActivityStore { return m.activities }
func (m *Manager) AccountStore() interfaces.AccountStore   { return m.accounts }
func (m *Manager) PositionStore() interfaces.PositionStore { return m.positions }
func (m *Manager) TaxStateStore() interfaces.TaxStateStore { return m.taxState }

// Close closes the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}
