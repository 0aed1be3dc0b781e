package acb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkmcgowan/maplebook/internal/models"
)

func ptr(v float64) *float64 { return &v }

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func activity(t models.ActivityType, symbol string, qty, price float64, at time.Time) models.ActivityRecord {
	return models.ActivityRecord{
		Type:       t,
		Symbol:     symbol,
		Quantity:   ptr(qty),
		Price:      ptr(price),
		Amount:     qty * price,
		OccurredAt: at,
		AccountID:  "acct-1",
	}
}

func TestComputeACB_BuySellRoundTrip(t *testing.T) {
	activities := []models.ActivityRecord{
		activity(models.ActivityBuy, "VEQT", 100, 10, day(0)),
		activity(models.ActivitySell, "VEQT", 40, 12, day(5)),
	}

	result := ComputeACB(activities, "VEQT", "acct-1")

	assert.Equal(t, 60.0, result.CurrentQuantity)
	assert.Equal(t, 600.0, result.TotalACB)
	assert.Equal(t, 10.0, result.ACBPerUnit)
	require.Len(t, result.Entries, 2)

	sell := result.Entries[1]
	assert.Equal(t, models.ACBEntrySell, sell.Type)
	assert.Equal(t, 400.0, sell.TotalCost) // 40 units at $10 ACB before the sell
}

func TestComputeACB_WeightedAverage(t *testing.T) {
	activities := []models.ActivityRecord{
		activity(models.ActivityBuy, "XEQT", 100, 10, day(0)),
		activity(models.ActivityBuy, "XEQT", 100, 20, day(1)),
	}

	result := ComputeACB(activities, "XEQT", "acct-1")

	assert.Equal(t, 200.0, result.CurrentQuantity)
	assert.Equal(t, 3000.0, result.TotalACB)
	assert.Equal(t, 15.0, result.ACBPerUnit)
}

func TestComputeACB_ResortsUnorderedInput(t *testing.T) {
	ordered := []models.ActivityRecord{
		activity(models.ActivityBuy, "BN", 10, 50, day(0)),
		activity(models.ActivityBuy, "BN", 10, 70, day(3)),
		activity(models.ActivitySell, "BN", 5, 80, day(6)),
	}
	shuffled := []models.ActivityRecord{ordered[2], ordered[0], ordered[1]}

	a := ComputeACB(ordered, "BN", "acct-1")
	b := ComputeACB(shuffled, "BN", "acct-1")

	assert.Equal(t, a.CurrentQuantity, b.CurrentQuantity)
	assert.Equal(t, a.TotalACB, b.TotalACB)
	assert.Equal(t, a.ACBPerUnit, b.ACBPerUnit)
	require.Equal(t, len(a.Entries), len(b.Entries))
	for i := range a.Entries {
		assert.Equal(t, a.Entries[i], b.Entries[i])
	}
}

func TestComputeACB_ClampsOversell(t *testing.T) {
	// Sell more than recorded holdings (missing historical buys): quantity
	// and ACB clamp to zero, never negative.
	activities := []models.ActivityRecord{
		activity(models.ActivityBuy, "SHOP", 10, 100, day(0)),
		activity(models.ActivitySell, "SHOP", 25, 90, day(1)),
	}

	result := ComputeACB(activities, "SHOP", "acct-1")

	assert.Equal(t, 0.0, result.CurrentQuantity)
	assert.Equal(t, 0.0, result.TotalACB)
	assert.Equal(t, 0.0, result.ACBPerUnit)
}

func TestComputeACB_Invariants(t *testing.T) {
	activities := []models.ActivityRecord{
		activity(models.ActivityBuy, "TD", 100, 80, day(0)),
		activity(models.ActivitySell, "TD", 30, 85, day(2)),
		activity(models.ActivityBuy, "TD", 50, 90, day(4)),
		activity(models.ActivitySell, "TD", 200, 95, day(6)), // oversell
		activity(models.ActivityBuy, "TD", 10, 70, day(8)),
	}

	result := ComputeACB(activities, "TD", "acct-1")

	var prev time.Time
	for _, e := range result.Entries {
		assert.GreaterOrEqual(t, e.RunningQuantity, 0.0)
		assert.GreaterOrEqual(t, e.RunningACB, 0.0)
		if e.RunningQuantity > 0 {
			assert.InDelta(t, e.RunningACB/e.RunningQuantity, e.ACBPerUnit, 1e-9)
		} else {
			assert.Equal(t, 0.0, e.ACBPerUnit)
		}
		assert.False(t, e.Date.Before(prev), "entries must be non-decreasing in date")
		prev = e.Date
	}
}

func TestComputeACB_TransferInTreatedAsBuy(t *testing.T) {
	activities := []models.ActivityRecord{
		activity(models.ActivityTransfer, "ENB", 50, 40, day(0)),
		activity(models.ActivityBuy, "ENB", 50, 60, day(1)),
	}

	result := ComputeACB(activities, "ENB", "acct-1")

	assert.Equal(t, 100.0, result.CurrentQuantity)
	assert.Equal(t, 5000.0, result.TotalACB)
	assert.Equal(t, 50.0, result.ACBPerUnit)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, models.ACBEntryTransferIn, result.Entries[0].Type)
}

func TestComputeACB_PricelessTransferDropped(t *testing.T) {
	transfer := models.ActivityRecord{
		Type:       models.ActivityTransfer,
		Symbol:     "ENB",
		Quantity:   ptr(50.0),
		OccurredAt: day(0),
		AccountID:  "acct-1",
	}
	buy := activity(models.ActivityBuy, "ENB", 10, 40, day(1))

	result := ComputeACB([]models.ActivityRecord{transfer, buy}, "ENB", "acct-1")

	require.Len(t, result.Entries, 1)
	assert.Equal(t, 10.0, result.CurrentQuantity)
}

func TestComputeACB_IgnoresNonBasisActivity(t *testing.T) {
	dividend := models.ActivityRecord{
		Type:       models.ActivityDividend,
		Symbol:     "RY",
		Amount:     135.50,
		OccurredAt: day(1),
		AccountID:  "acct-1",
	}
	fee := models.ActivityRecord{
		Type:       models.ActivityFee,
		Symbol:     "RY",
		Quantity:   ptr(1.0),
		Amount:     -9.99,
		OccurredAt: day(2),
		AccountID:  "acct-1",
	}
	unknown := models.ActivityRecord{
		Type:       "interest",
		Symbol:     "RY",
		Quantity:   ptr(1.0),
		Amount:     3.21,
		OccurredAt: day(3),
		AccountID:  "acct-1",
	}

	activities := []models.ActivityRecord{
		activity(models.ActivityBuy, "RY", 20, 130, day(0)),
		dividend, fee, unknown,
	}

	result := ComputeACB(activities, "RY", "acct-1")

	require.Len(t, result.Entries, 1)
	assert.Equal(t, 20.0, result.CurrentQuantity)
	assert.Equal(t, 2600.0, result.TotalACB)
}

func TestComputeACB_FiltersOtherSymbolsAndAccounts(t *testing.T) {
	other := activity(models.ActivityBuy, "XIU", 10, 30, day(0))
	elsewhere := activity(models.ActivityBuy, "VEQT", 10, 30, day(0))
	elsewhere.AccountID = "acct-2"

	activities := []models.ActivityRecord{
		other,
		elsewhere,
		activity(models.ActivityBuy, "VEQT", 5, 30, day(1)),
	}

	result := ComputeACB(activities, "VEQT", "acct-1")

	assert.Equal(t, 5.0, result.CurrentQuantity)
	require.Len(t, result.Entries, 1)
}

func TestComputeACB_EmptyInput(t *testing.T) {
	result := ComputeACB(nil, "VEQT", "acct-1")

	assert.Equal(t, 0.0, result.CurrentQuantity)
	assert.Equal(t, 0.0, result.TotalACB)
	assert.Equal(t, 0.0, result.ACBPerUnit)
	assert.Empty(t, result.Entries)
}
