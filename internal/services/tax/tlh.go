package tax

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dkmcgowan/maplebook/internal/models"
)

// GetTaxLossCandidates aggregates positions by symbol across accounts and
// returns those carrying a net unrealized loss, largest loss first (the
// harvesting priority order). The superficial-loss check looks back
// SuperficialLossWindowDays from now; a repurchase after the sale cannot be
// observed at detection time, so a false flag remains possible.
func (s *Service) GetTaxLossCandidates(ctx context.Context, now time.Time) ([]models.TaxLossCandidate, error) {
	positions, err := s.storage.PositionStore().ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	accounts := make(map[string]models.Account)
	all, err := s.storage.AccountStore().ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	for _, a := range all {
		accounts[a.ID] = a
	}

	type aggregate struct {
		name        string
		bookValue   float64
		marketValue float64
		accounts    []string
		seen        map[string]bool
	}

	bySymbol := make(map[string]*aggregate)
	var symbols []string
	for _, pos := range positions {
		agg, ok := bySymbol[pos.Symbol]
		if !ok {
			agg = &aggregate{name: pos.Name, seen: make(map[string]bool)}
			bySymbol[pos.Symbol] = agg
			symbols = append(symbols, pos.Symbol)
		}
		agg.bookValue += pos.BookValue
		agg.marketValue += pos.MarketValue

		acct := accounts[pos.AccountID]
		label := acct.DisplayName()
		if label == "" {
			label = pos.AccountID
		}
		if !agg.seen[label] {
			agg.seen[label] = true
			agg.accounts = append(agg.accounts, label)
		}
	}

	cutoff := now.AddDate(0, 0, -models.SuperficialLossWindowDays)

	var candidates []models.TaxLossCandidate
	for _, symbol := range symbols {
		agg := bySymbol[symbol]
		net := agg.marketValue - agg.bookValue
		if net >= 0 {
			continue
		}

		candidate := models.TaxLossCandidate{
			Symbol:         symbol,
			Name:           agg.name,
			UnrealizedLoss: math.Abs(net),
			Accounts:       agg.accounts,
			HarvestStatus:  models.HarvestSafe,
		}
		if agg.bookValue > 0 {
			candidate.LossPct = net / agg.bookValue * 100
		}

		recentBuys, err := s.storage.ActivityStore().GetBuysSince(ctx, symbol, cutoff)
		if err != nil {
			return nil, fmt.Errorf("failed to check recent buys for %s: %w", symbol, err)
		}

		if len(recentBuys) > 0 {
			candidate.SuperficialLossRisk = true

			lastBuy := recentBuys[0].OccurredAt
			daysSince := int(now.Sub(lastBuy).Hours() / 24)
			daysUntilSafe := models.SuperficialLossWindowDays - daysSince
			if daysUntilSafe < 0 {
				daysUntilSafe = 0
			}

			candidate.LastBuyDate = &lastBuy
			candidate.DaysSinceLastBuy = &daysSince
			candidate.DaysUntilSafe = &daysUntilSafe

			switch {
			case daysSince < 20:
				candidate.HarvestStatus = models.HarvestRisky
			case daysSince < models.SuperficialLossWindowDays:
				candidate.HarvestStatus = models.HarvestApproaching
			default:
				candidate.HarvestStatus = models.HarvestSafe
			}
		}

		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].UnrealizedLoss > candidates[j].UnrealizedLoss
	})

	s.logger.Debug().Int("candidates", len(candidates)).Msg("TLH candidates computed")

	return candidates, nil
}
