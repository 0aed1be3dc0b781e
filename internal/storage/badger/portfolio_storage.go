package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/dkmcgowan/maplebook/internal/common"
	"github.com/dkmcgowan/maplebook/internal/models"
)

type accountStorage struct {
	store  *Store
	logger *common.Logger
}

// NewAccountStorage creates a new AccountStore backed by BadgerHold.
func NewAccountStorage(store *Store, logger *common.Logger) *accountStorage {
	return &accountStorage{store: store, logger: logger}
}

func (s *accountStorage) SaveAccount(_ context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now()
	if err := s.store.db.Upsert(account.ID, account); err != nil {
		return fmt.Errorf("failed to save account '%s': %w", account.ID, err)
	}
	s.logger.Debug().Str("account", account.ID).Msg("Account saved")
	return nil
}

func (s *accountStorage) GetAccount(_ context.Context, id string) (*models.Account, error) {
	var account models.Account
	err := s.store.db.Get(id, &account)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("account '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get account '%s': %w", id, err)
	}
	return &account, nil
}

func (s *accountStorage) ListAccounts(_ context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := s.store.db.Find(&accounts, nil); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

type positionStorage struct {
	store  *Store
	logger *common.Logger
}

// NewPositionStorage creates a new PositionStore backed by BadgerHold.
func NewPositionStorage(store *Store, logger *common.Logger) *positionStorage {
	return &positionStorage{store: store, logger: logger}
}

func (s *positionStorage) SavePosition(_ context.Context, position *models.Position) error {
	if position.ID == "" {
		position.ID = models.PositionKey(position.AccountID, position.Symbol)
	}
	position.UpdatedAt = time.Now()
	if err := s.store.db.Upsert(position.ID, position); err != nil {
		return fmt.Errorf("failed to save position '%s': %w", position.ID, err)
	}
	return nil
}

func (s *positionStorage) GetPositionsBySymbol(_ context.Context, symbol string) ([]models.Position, error) {
	var positions []models.Position
	query := badgerhold.Where("Symbol").Eq(symbol).Index("Symbol")
	if err := s.store.db.Find(&positions, query); err != nil {
		return nil, fmt.Errorf("failed to query positions for '%s': %w", symbol, err)
	}
	return positions, nil
}

func (s *positionStorage) ListPositions(_ context.Context) ([]models.Position, error) {
	var positions []models.Position
	if err := s.store.db.Find(&positions, nil); err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	return positions, nil
}
