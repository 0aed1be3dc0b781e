package whatif

import (
	"context"
	"fmt"

	"github.com/dkmcgowan/maplebook/internal/common"
	"github.com/dkmcgowan/maplebook/internal/interfaces"
	"github.com/dkmcgowan/maplebook/internal/models"
)

// Service implements WhatIfService. It resolves the ACB per unit and tax
// context from storage and delegates to SimulateScenario.
type Service struct {
	storage interfaces.StorageManager
	acb     interfaces.ACBService
	logger  *common.Logger
}

// NewService creates a new what-if service
func NewService(storage interfaces.StorageManager, acbService interfaces.ACBService, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		acb:     acbService,
		logger:  logger,
	}
}

// Simulate runs the cascade for a scenario against the account's current
// cost basis and the stored tax settings and corporate balances.
func (s *Service) Simulate(ctx context.Context, scenario models.WhatIfScenario, accountID string) (*models.WhatIfResult, error) {
	acbPerUnit, err := s.acb.ACBPerUnit(ctx, scenario.Symbol, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ACB for %s: %w", scenario.Symbol, err)
	}

	settings, err := s.storage.TaxStateStore().GetTaxSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tax settings: %w", err)
	}

	balances, err := s.storage.TaxStateStore().GetCorporateBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load corporate balances: %w", err)
	}

	taxCtx := models.TaxContext{
		Province:             settings.Province,
		PersonalMarginalRate: settings.PersonalMarginalRate,
		CurrentCDA:           balances.CurrentCDA,
		CurrentRDTOH:         balances.CurrentRDTOH,
		CurrentAAII:          balances.CurrentAAII,
	}

	result, err := SimulateScenario(scenario, acbPerUnit, taxCtx)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("symbol", scenario.Symbol).
		Str("account_type", scenario.AccountType).
		Float64("proceeds", result.Proceeds).
		Float64("tax", result.EstimatedTax).
		Msg("Scenario simulated")

	return result, nil
}
