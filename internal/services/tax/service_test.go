package tax

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkmcgowan/maplebook/internal/common"
	"github.com/dkmcgowan/maplebook/internal/models"
)

func TestGetRealizedGains_LedgerCostBasis(t *testing.T) {
	storage := newStubStorage()
	storage.accounts = []models.Account{{ID: "nr-1", Type: models.AccountNonReg}}

	jan := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	storage.activities = []models.ActivityRecord{
		tradeAt(models.ActivityBuy, "VEQT", "nr-1", 100, 10, jan),
		tradeAt(models.ActivityBuy, "VEQT", "nr-1", 100, 20, jan.AddDate(0, 1, 0)),
		// Sold in the target year at $18 against a $15 weighted-average ACB
		tradeAt(models.ActivitySell, "VEQT", "nr-1", 50, 18, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)),
	}

	svc := NewService(storage, common.NewSilentLogger())
	gains, err := svc.GetRealizedGains(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, gains, 1)

	g := gains[0]
	assert.Equal(t, "VEQT", g.Symbol)
	assert.Equal(t, "2024-03-15", g.SellDate)
	assert.Equal(t, models.AccountNonReg, g.AccountType)
	assert.InDelta(t, 900.0, g.Proceeds, 1e-9)  // 50 × $18
	assert.InDelta(t, 750.0, g.CostBasis, 1e-9) // 50 × $15 ACB
	assert.InDelta(t, 150.0, g.GainLoss, 1e-9)
	assert.True(t, g.IsTaxable)
}

func TestGetRealizedGains_ShelteredNotTaxable(t *testing.T) {
	storage := newStubStorage()
	storage.accounts = []models.Account{{ID: "tfsa-1", Type: models.AccountTFSA}}
	storage.activities = []models.ActivityRecord{
		tradeAt(models.ActivityBuy, "XEQT", "tfsa-1", 10, 20, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)),
		tradeAt(models.ActivitySell, "XEQT", "tfsa-1", 10, 30, time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)),
	}

	svc := NewService(storage, common.NewSilentLogger())
	gains, err := svc.GetRealizedGains(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, gains, 1)
	assert.False(t, gains[0].IsTaxable)
	assert.InDelta(t, 100.0, gains[0].GainLoss, 1e-9)
}

func TestGetRealizedGains_ExcludesOtherYears(t *testing.T) {
	storage := newStubStorage()
	storage.accounts = []models.Account{{ID: "nr-1", Type: models.AccountNonReg}}
	storage.activities = []models.ActivityRecord{
		tradeAt(models.ActivityBuy, "TD", "nr-1", 10, 80, time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC)),
		tradeAt(models.ActivitySell, "TD", "nr-1", 5, 90, time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)),
		tradeAt(models.ActivitySell, "TD", "nr-1", 5, 95, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
	}

	svc := NewService(storage, common.NewSilentLogger())
	gains, err := svc.GetRealizedGains(context.Background(), 2023)
	require.NoError(t, err)
	require.Len(t, gains, 1)
	assert.Equal(t, "2023-08-01", gains[0].SellDate)
}

func TestGetUnrealizedGains(t *testing.T) {
	storage := newStubStorage()
	storage.accounts = []models.Account{{ID: "nr-1", Type: models.AccountNonReg}}
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	storage.activities = []models.ActivityRecord{
		tradeAt(models.ActivityBuy, "ENB", "nr-1", 100, 45, now.AddDate(0, 0, -90)),
	}
	storage.positions = []models.Position{
		{Symbol: "ENB", Name: "Enbridge", AccountID: "nr-1", Quantity: 100, BookValue: 4500, MarketValue: 5100},
	}

	svc := NewService(storage, common.NewSilentLogger())
	gains, err := svc.GetUnrealizedGains(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, gains, 1)

	g := gains[0]
	assert.InDelta(t, 600.0, g.UnrealizedGainLoss, 1e-9)
	assert.Equal(t, 90, g.DaysHeld)
	assert.Equal(t, models.AccountNonReg, g.AccountType)
}

func TestGetUnrealizedGains_NoBuyHistory(t *testing.T) {
	storage := newStubStorage()
	storage.accounts = []models.Account{{ID: "nr-1", Type: models.AccountNonReg}}
	storage.positions = []models.Position{
		{Symbol: "BN", AccountID: "nr-1", BookValue: 1000, MarketValue: 900},
	}

	svc := NewService(storage, common.NewSilentLogger())
	gains, err := svc.GetUnrealizedGains(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, gains, 1)
	assert.Equal(t, 0, gains[0].DaysHeld)
}

func TestGetCapitalGainsSummary(t *testing.T) {
	storage := newStubStorage()
	storage.accounts = []models.Account{
		{ID: "nr-1", Type: models.AccountNonReg},
		{ID: "tfsa-1", Type: models.AccountTFSA},
	}
	buyDate := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	storage.activities = []models.ActivityRecord{
		// Taxable gain: buy 100@10, sell 100@14 → +400
		tradeAt(models.ActivityBuy, "AAA", "nr-1", 100, 10, buyDate),
		tradeAt(models.ActivitySell, "AAA", "nr-1", 100, 14, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		// Taxable loss: buy 50@20, sell 50@17 → -150
		tradeAt(models.ActivityBuy, "BBB", "nr-1", 50, 20, buyDate),
		tradeAt(models.ActivitySell, "BBB", "nr-1", 50, 17, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)),
		// Sheltered gain: excluded from the taxable subset entirely
		tradeAt(models.ActivityBuy, "CCC", "tfsa-1", 10, 100, buyDate),
		tradeAt(models.ActivitySell, "CCC", "tfsa-1", 10, 150, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
	}

	svc := NewService(storage, common.NewSilentLogger())
	summary, err := svc.GetCapitalGainsSummary(context.Background(), 2024)
	require.NoError(t, err)

	assert.InDelta(t, 400.0, summary.RealizedGains, 1e-9)
	assert.InDelta(t, 150.0, summary.RealizedLosses, 1e-9)
	assert.InDelta(t, 250.0, summary.NetCapitalGains, 1e-9)
	assert.InDelta(t, 125.0, summary.TaxableAmount, 1e-9) // 250 × 0.5
}

func TestGetCapitalGainsSummary_NetLossNeverNegativeTaxable(t *testing.T) {
	storage := newStubStorage()
	storage.accounts = []models.Account{{ID: "nr-1", Type: models.AccountNonReg}}
	storage.activities = []models.ActivityRecord{
		tradeAt(models.ActivityBuy, "AAA", "nr-1", 100, 50, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
		tradeAt(models.ActivitySell, "AAA", "nr-1", 100, 30, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
	}

	svc := NewService(storage, common.NewSilentLogger())
	summary, err := svc.GetCapitalGainsSummary(context.Background(), 2024)
	require.NoError(t, err)

	assert.InDelta(t, -2000.0, summary.NetCapitalGains, 1e-9)
	assert.Equal(t, 0.0, summary.TaxableAmount)
}

func TestGetCapitalGainsSplit(t *testing.T) {
	storage := newStubStorage()
	storage.accounts = []models.Account{
		{ID: "nr-1", Type: models.AccountNonReg},
		{ID: "corp-1", Type: models.AccountCorporate},
	}
	buyDate := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	storage.activities = []models.ActivityRecord{
		tradeAt(models.ActivityBuy, "AAA", "nr-1", 100, 10, buyDate),
		tradeAt(models.ActivitySell, "AAA", "nr-1", 100, 15, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), // +500 personal
		tradeAt(models.ActivityBuy, "BBB", "corp-1", 100, 10, buyDate),
		tradeAt(models.ActivitySell, "BBB", "corp-1", 100, 18, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)), // +800 corporate
	}

	svc := NewService(storage, common.NewSilentLogger())
	split, err := svc.GetCapitalGainsSplit(context.Background(), 2024)
	require.NoError(t, err)

	assert.InDelta(t, 500.0, split.Personal.Net, 1e-9)
	assert.InDelta(t, 250.0, split.Personal.Taxable, 1e-9)
	assert.InDelta(t, 800.0, split.Corporate.Net, 1e-9)
	assert.InDelta(t, 400.0, split.Corporate.Taxable, 1e-9)
	assert.Equal(t, 0.0, split.Corporate.SBDReduction) // under threshold
}

func TestGetTaxImplications(t *testing.T) {
	storage := newStubStorage()
	storage.accounts = []models.Account{
		{ID: "tfsa-1", Type: models.AccountTFSA},
		{ID: "corp-1", Type: models.AccountCorporate, Nickname: "Holdco"},
		{ID: "nr-1", Type: models.AccountNonReg},
	}
	storage.positions = []models.Position{
		{Symbol: "BN", AccountID: "tfsa-1", BookValue: 1000, MarketValue: 1400},
		{Symbol: "BN", AccountID: "corp-1", BookValue: 2000, MarketValue: 2600},
		{Symbol: "BN", AccountID: "nr-1", BookValue: 3000, MarketValue: 2800},
	}

	svc := NewService(storage, common.NewSilentLogger())
	implications, err := svc.GetTaxImplications(context.Background(), "BN")
	require.NoError(t, err)
	require.Len(t, implications, 3)

	byAccount := make(map[string]models.TaxImplication)
	for _, imp := range implications {
		byAccount[imp.AccountID] = imp
	}

	sheltered := byAccount["tfsa-1"]
	assert.True(t, sheltered.IsSheltered)
	assert.Equal(t, 0.0, sheltered.TaxRate)
	assert.Equal(t, 0.0, sheltered.EstimatedTax)

	corp := byAccount["corp-1"]
	assert.True(t, corp.IsCorporate)
	assert.Equal(t, "Holdco", corp.AccountName)
	assert.InDelta(t, 0.5017*0.5, corp.TaxRate, 1e-9)
	assert.InDelta(t, 600*0.5017*0.5, corp.EstimatedTax, 1e-9)

	personal := byAccount["nr-1"]
	assert.InDelta(t, 0.5353*0.5, personal.TaxRate, 1e-9)
	assert.Equal(t, 0.0, personal.EstimatedTax) // unrealized loss: no tax estimated
}
