package acb

import (
	"context"
	"fmt"

	"github.com/dkmcgowan/maplebook/internal/common"
	"github.com/dkmcgowan/maplebook/internal/interfaces"
	"github.com/dkmcgowan/maplebook/internal/models"
)

// Service implements ACBService on top of the activity store.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new ACB service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// GetACBHistory computes ACB ledgers for a symbol, one per account with
// activity. When accountID is non-empty only that account is computed.
func (s *Service) GetACBHistory(ctx context.Context, symbol, accountID string) ([]*models.ACBResult, error) {
	activities, err := s.storage.ActivityStore().GetActivities(ctx, symbol, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities for %s: %w", symbol, err)
	}

	// Group by account, preserving ledger order within each
	byAccount := make(map[string][]models.ActivityRecord)
	var order []string
	for _, act := range activities {
		if !models.AffectsCostBasis(act.Type) {
			continue
		}
		if _, seen := byAccount[act.AccountID]; !seen {
			order = append(order, act.AccountID)
		}
		byAccount[act.AccountID] = append(byAccount[act.AccountID], act)
	}

	var results []*models.ACBResult
	for _, acctID := range order {
		result := ComputeACB(byAccount[acctID], symbol, acctID)
		if len(result.Entries) == 0 {
			continue
		}
		results = append(results, result)
	}

	s.logger.Debug().
		Str("symbol", symbol).
		Int("accounts", len(results)).
		Msg("ACB history computed")

	return results, nil
}

// ACBPerUnit returns the current average cost per unit for a (symbol, account)
// pair, 0 when nothing is held.
func (s *Service) ACBPerUnit(ctx context.Context, symbol, accountID string) (float64, error) {
	activities, err := s.storage.ActivityStore().GetActivities(ctx, symbol, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to load activities for %s: %w", symbol, err)
	}
	return ComputeACB(activities, symbol, accountID).ACBPerUnit, nil
}
