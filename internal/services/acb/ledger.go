// Package acb reconstructs adjusted-cost-base ledgers from activity history
// using the Canadian weighted-average method.
package acb

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dkmcgowan/maplebook/internal/models"
)

// ComputeACB replays an activity stream into a running cost-basis ledger for
// one (symbol, account) pair. It is a pure function of its input: activities
// are filtered to the symbol (and account, when given), re-sorted ascending
// by occurrence time, and applied in order.
//
//	Buy / transfer-in: runningACB += qty × price
//	Sell:              cost removed = qty × ACB-per-unit before the sell
//
// Running quantity and ACB are clamped at zero rather than going negative;
// a sell exceeding the recorded position (missing historical buys) degrades
// to an empty ledger instead of failing. Unknown activity types, dividends,
// and priceless transfers are skipped. ComputeACB never returns an error.
func ComputeACB(activities []models.ActivityRecord, symbol, accountID string) *models.ACBResult {
	sorted := make([]models.ActivityRecord, 0, len(activities))
	for _, a := range activities {
		if a.Symbol != symbol {
			continue
		}
		if accountID != "" && a.AccountID != accountID {
			continue
		}
		sorted = append(sorted, a)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
	})

	runningQty := decimal.Zero
	runningACB := decimal.Zero
	var entries []models.ACBEntry

	perUnit := func() decimal.Decimal {
		if runningQty.IsPositive() {
			return runningACB.Div(runningQty)
		}
		return decimal.Zero
	}

	for _, act := range sorted {
		qty := decimal.NewFromFloat(act.Qty()).Abs()
		price := decimal.NewFromFloat(act.UnitPrice())

		if qty.IsZero() && act.Type != models.ActivityDividend {
			continue
		}

		switch act.Type {
		case models.ActivityBuy:
			totalCost := qty.Mul(price)
			runningACB = runningACB.Add(totalCost)
			runningQty = runningQty.Add(qty)

			entries = append(entries, models.ACBEntry{
				Date:            act.OccurredAt,
				Type:            models.ACBEntryBuy,
				Quantity:        qty.InexactFloat64(),
				PricePerUnit:    price.InexactFloat64(),
				TotalCost:       totalCost.InexactFloat64(),
				RunningQuantity: runningQty.InexactFloat64(),
				RunningACB:      runningACB.InexactFloat64(),
				ACBPerUnit:      perUnit().InexactFloat64(),
			})

		case models.ActivitySell:
			costOfSold := qty.Mul(perUnit())
			runningACB = decimal.Max(decimal.Zero, runningACB.Sub(costOfSold))
			runningQty = decimal.Max(decimal.Zero, runningQty.Sub(qty))

			entries = append(entries, models.ACBEntry{
				Date:            act.OccurredAt,
				Type:            models.ACBEntrySell,
				Quantity:        qty.InexactFloat64(),
				PricePerUnit:    price.InexactFloat64(),
				TotalCost:       costOfSold.InexactFloat64(),
				RunningQuantity: runningQty.InexactFloat64(),
				RunningACB:      runningACB.InexactFloat64(),
				ACBPerUnit:      perUnit().InexactFloat64(),
			})

		case models.ActivityTransfer:
			// A priced inbound transfer books in like a buy. Transfers
			// without a price carry no cost information and are dropped.
			if !qty.IsPositive() || !price.IsPositive() {
				continue
			}
			totalCost := qty.Mul(price)
			runningACB = runningACB.Add(totalCost)
			runningQty = runningQty.Add(qty)

			entries = append(entries, models.ACBEntry{
				Date:            act.OccurredAt,
				Type:            models.ACBEntryTransferIn,
				Quantity:        qty.InexactFloat64(),
				PricePerUnit:    price.InexactFloat64(),
				TotalCost:       totalCost.InexactFloat64(),
				RunningQuantity: runningQty.InexactFloat64(),
				RunningACB:      runningACB.InexactFloat64(),
				ACBPerUnit:      perUnit().InexactFloat64(),
			})

		default:
			// Dividends, fees, and cash movements never touch cost basis.
		}
	}

	return &models.ACBResult{
		Symbol:          symbol,
		AccountID:       accountID,
		CurrentQuantity: runningQty.InexactFloat64(),
		TotalACB:        runningACB.InexactFloat64(),
		ACBPerUnit:      perUnit().InexactFloat64(),
		Entries:         entries,
	}
}
