// Package tax classifies realized and unrealized gains by account tax
// treatment and detects tax-loss-harvesting candidates.
package tax

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dkmcgowan/maplebook/internal/common"
	"github.com/dkmcgowan/maplebook/internal/interfaces"
	"github.com/dkmcgowan/maplebook/internal/models"
	"github.com/dkmcgowan/maplebook/internal/services/acb"
)

// Service implements TaxService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new tax service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// GetRealizedGains returns the tax consequence of every sell activity in the
// target year. Cost basis comes from the ACB ledger replayed up to each
// sell, so the weighted-average ledger is the single source of cost basis.
func (s *Service) GetRealizedGains(ctx context.Context, year int) ([]models.RealizedGain, error) {
	startOfYear := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	endOfYear := startOfYear.AddDate(1, 0, 0)

	sells, err := s.storage.ActivityStore().GetActivitiesByType(ctx, models.ActivitySell, startOfYear, endOfYear)
	if err != nil {
		return nil, fmt.Errorf("failed to load sell activities for %d: %w", year, err)
	}

	accountTypes, err := s.accountTypes(ctx)
	if err != nil {
		return nil, err
	}

	// One ledger replay per (symbol, account) covers all its sells.
	type ledgerKey struct{ symbol, accountID string }
	ledgers := make(map[ledgerKey]*models.ACBResult)

	gains := make([]models.RealizedGain, 0, len(sells))
	for _, sell := range sells {
		if sell.Symbol == "" {
			continue
		}

		key := ledgerKey{sell.Symbol, sell.AccountID}
		ledger, ok := ledgers[key]
		if !ok {
			activities, err := s.storage.ActivityStore().GetActivities(ctx, sell.Symbol, sell.AccountID)
			if err != nil {
				return nil, fmt.Errorf("failed to load activities for %s: %w", sell.Symbol, err)
			}
			ledger = acb.ComputeACB(activities, sell.Symbol, sell.AccountID)
			ledgers[key] = ledger
		}

		sellQty := math.Abs(sell.Qty())
		proceeds := sellQty * sell.UnitPrice()
		costBasis := ledgerCostOfSale(ledger, sell.OccurredAt, sellQty)

		accountType := accountTypes[sell.AccountID]
		gains = append(gains, models.RealizedGain{
			Symbol:      sell.Symbol,
			SellDate:    sell.OccurredAt.Format("2006-01-02"),
			AccountID:   sell.AccountID,
			AccountType: accountType,
			Proceeds:    proceeds,
			CostBasis:   costBasis,
			GainLoss:    proceeds - costBasis,
			IsTaxable:   models.IsTaxableAccount(accountType),
		})
	}

	return gains, nil
}

// ledgerCostOfSale finds the audit-trail entry for a sell and returns the
// cost the ledger removed for it. Falls back to 0 when the sell never
// produced an entry (zero quantity, unmatched data).
func ledgerCostOfSale(ledger *models.ACBResult, at time.Time, qty float64) float64 {
	for _, e := range ledger.Entries {
		if e.Type == models.ACBEntrySell && e.Date.Equal(at) && e.Quantity == qty {
			return e.TotalCost
		}
	}
	return 0
}

// GetUnrealizedGains returns one row per open position. DaysHeld is measured
// from the account's earliest buy of the symbol against the injected clock.
func (s *Service) GetUnrealizedGains(ctx context.Context, now time.Time) ([]models.UnrealizedGain, error) {
	positions, err := s.storage.PositionStore().ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	accountTypes, err := s.accountTypes(ctx)
	if err != nil {
		return nil, err
	}

	gains := make([]models.UnrealizedGain, 0, len(positions))
	for _, pos := range positions {
		daysHeld := 0
		firstBuy, err := s.storage.ActivityStore().FirstBuy(ctx, pos.Symbol, pos.AccountID)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", pos.Symbol).Msg("Failed to find first buy")
		} else if firstBuy != nil {
			daysHeld = int(now.Sub(firstBuy.OccurredAt).Hours() / 24)
		}

		gains = append(gains, models.UnrealizedGain{
			Symbol:             pos.Symbol,
			Name:               pos.Name,
			AccountID:          pos.AccountID,
			AccountType:        accountTypes[pos.AccountID],
			BookValue:          pos.BookValue,
			MarketValue:        pos.MarketValue,
			UnrealizedGainLoss: pos.MarketValue - pos.BookValue,
			DaysHeld:           daysHeld,
		})
	}

	return gains, nil
}

// GetCapitalGainsSummary aggregates only the taxable subset of the year's
// realized gains. A net loss never produces a negative taxable amount; loss
// carry-forward is not modeled.
func (s *Service) GetCapitalGainsSummary(ctx context.Context, year int) (*models.CapitalGainsSummary, error) {
	gains, err := s.GetRealizedGains(ctx, year)
	if err != nil {
		return nil, err
	}

	summary := &models.CapitalGainsSummary{}
	for _, g := range gains {
		if !g.IsTaxable {
			continue
		}
		if g.GainLoss > 0 {
			summary.RealizedGains += g.GainLoss
		} else {
			summary.RealizedLosses += math.Abs(g.GainLoss)
		}
	}

	summary.NetCapitalGains = summary.RealizedGains - summary.RealizedLosses
	if summary.NetCapitalGains > 0 {
		summary.TaxableAmount = summary.NetCapitalGains * models.CapitalGainsInclusionRate
	}

	return summary, nil
}

// GetCapitalGainsSplit separates the year's taxable gains into personal and
// corporate buckets and computes the corporate side's aggregate SBD impact.
func (s *Service) GetCapitalGainsSplit(ctx context.Context, year int) (*models.CapitalGainsSplit, error) {
	gains, err := s.GetRealizedGains(ctx, year)
	if err != nil {
		return nil, err
	}

	split := &models.CapitalGainsSplit{}
	for _, g := range gains {
		if !g.IsTaxable {
			continue
		}
		side := &split.Personal
		if models.IsCorporateAccount(g.AccountType) {
			side = &split.Corporate
		}
		if g.GainLoss > 0 {
			side.Gains += g.GainLoss
		} else {
			side.Losses += math.Abs(g.GainLoss)
		}
	}

	for _, side := range []*models.CapitalGainsSide{&split.Personal, &split.Corporate} {
		side.Net = side.Gains - side.Losses
		if side.Net > 0 {
			side.Taxable = side.Net * models.CapitalGainsInclusionRate
		}
	}

	// Aggregate SBD reduction from corporate passive income.
	passiveIncome := split.Corporate.Net * models.CapitalGainsInclusionRate
	if passiveIncome > models.SBDClawbackThreshold {
		split.Corporate.SBDReduction = math.Min(models.SBDLimit,
			(passiveIncome-models.SBDClawbackThreshold)*models.SBDReductionMultiplier)
	}

	return split, nil
}

// GetTaxImplications returns the per-account tax treatment of a symbol's
// unrealized gain.
func (s *Service) GetTaxImplications(ctx context.Context, symbol string) ([]models.TaxImplication, error) {
	positions, err := s.storage.PositionStore().GetPositionsBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions for %s: %w", symbol, err)
	}

	settings, err := s.storage.TaxStateStore().GetTaxSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tax settings: %w", err)
	}

	rates, err := models.RatesForProvince(settings.Province)
	if err != nil {
		return nil, err
	}

	accounts := make(map[string]models.Account)
	all, err := s.storage.AccountStore().ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	for _, a := range all {
		accounts[a.ID] = a
	}

	implications := make([]models.TaxImplication, 0, len(positions))
	for _, pos := range positions {
		account := accounts[pos.AccountID]
		unrealized := pos.MarketValue - pos.BookValue
		isSheltered := models.IsShelteredAccount(account.Type)
		isCorporate := models.IsCorporateAccount(account.Type)

		var taxRate float64
		var treatment string
		switch {
		case isSheltered:
			treatment = "Tax-free (sheltered)"
		case isCorporate:
			taxRate = rates.PassiveIncomeRate * models.CapitalGainsInclusionRate
			treatment = "Corporate passive rate (50% inclusion)"
		default:
			taxRate = settings.PersonalMarginalRate * models.CapitalGainsInclusionRate
			treatment = fmt.Sprintf("Personal marginal (%.1f%% × 50%% inclusion)", settings.PersonalMarginalRate*100)
		}

		estimatedTax := 0.0
		if unrealized > 0 {
			estimatedTax = unrealized * taxRate
		}

		implications = append(implications, models.TaxImplication{
			AccountID:      pos.AccountID,
			AccountName:    account.DisplayName(),
			AccountType:    account.Type,
			Quantity:       pos.Quantity,
			BookValue:      pos.BookValue,
			MarketValue:    pos.MarketValue,
			UnrealizedGain: unrealized,
			TaxRate:        taxRate,
			TaxTreatment:   treatment,
			EstimatedTax:   estimatedTax,
			IsSheltered:    isSheltered,
			IsCorporate:    isCorporate,
		})
	}

	return implications, nil
}

// accountTypes maps account IDs to their type codes.
func (s *Service) accountTypes(ctx context.Context) (map[string]string, error) {
	accounts, err := s.storage.AccountStore().ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	types := make(map[string]string, len(accounts))
	for _, a := range accounts {
		types[a.ID] = a.Type
	}
	return types, nil
}
