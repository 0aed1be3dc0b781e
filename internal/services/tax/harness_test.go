package tax

import (
	"context"
	"sort"
	"time"

	"github.com/dkmcgowan/maplebook/internal/interfaces"
	"github.com/dkmcgowan/maplebook/internal/models"
)

// stubStorageManager is an in-memory StorageManager for tests.
type stubStorageManager struct {
	activities []models.ActivityRecord
	accounts   []models.Account
	positions  []models.Position
	settings   models.TaxSettings
	balances   models.CorporateBalances
}

func newStubStorage() *stubStorageManager {
	return &stubStorageManager{
		settings: models.TaxSettings{ID: "default", Province: "ON", PersonalMarginalRate: 0.5353},
		balances: models.CorporateBalances{ID: "default"},
	}
}

func (m *stubStorageManager) ActivityStore() interfaces.ActivityStore { return (*stubActivities)(m) }
func (m *stubStorageManager) AccountStore() interfaces.AccountStore   { return (*stubAccounts)(m) }
func (m *stubStorageManager) PositionStore() interfaces.PositionStore { return (*stubPositions)(m) }
func (m *stubStorageManager) TaxStateStore() interfaces.TaxStateStore { return (*stubTaxState)(m) }
func (m *stubStorageManager) Close() error                            { return nil }

type stubActivities stubStorageManager

func (s *stubActivities) SaveActivity(_ context.Context, activity *models.ActivityRecord) error {
	s.activities = append(s.activities, *activity)
	return nil
}

func (s *stubActivities) GetActivities(_ context.Context, symbol, accountID string) ([]models.ActivityRecord, error) {
	var out []models.ActivityRecord
	for _, a := range s.activities {
		if a.Symbol != symbol {
			continue
		}
		if accountID != "" && a.AccountID != accountID {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (s *stubActivities) GetActivitiesByType(_ context.Context, activityType models.ActivityType, from, to time.Time) ([]models.ActivityRecord, error) {
	var out []models.ActivityRecord
	for _, a := range s.activities {
		if a.Type != activityType {
			continue
		}
		if !from.IsZero() && a.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && !a.OccurredAt.Before(to) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (s *stubActivities) GetBuysSince(_ context.Context, symbol string, cutoff time.Time) ([]models.ActivityRecord, error) {
	var out []models.ActivityRecord
	for _, a := range s.activities {
		if a.Type == models.ActivityBuy && a.Symbol == symbol && !a.OccurredAt.Before(cutoff) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	return out, nil
}

func (s *stubActivities) FirstBuy(_ context.Context, symbol, accountID string) (*models.ActivityRecord, error) {
	var first *models.ActivityRecord
	for i, a := range s.activities {
		if a.Type != models.ActivityBuy || a.Symbol != symbol || a.AccountID != accountID {
			continue
		}
		if first == nil || a.OccurredAt.Before(first.OccurredAt) {
			first = &s.activities[i]
		}
	}
	return first, nil
}

type stubAccounts stubStorageManager

func (s *stubAccounts) SaveAccount(_ context.Context, account *models.Account) error {
	s.accounts = append(s.accounts, *account)
	return nil
}

func (s *stubAccounts) GetAccount(_ context.Context, id string) (*models.Account, error) {
	for i, a := range s.accounts {
		if a.ID == id {
			return &s.accounts[i], nil
		}
	}
	return nil, nil
}

func (s *stubAccounts) ListAccounts(_ context.Context) ([]models.Account, error) {
	return s.accounts, nil
}

type stubPositions stubStorageManager

func (s *stubPositions) SavePosition(_ context.Context, position *models.Position) error {
	s.positions = append(s.positions, *position)
	return nil
}

func (s *stubPositions) GetPositionsBySymbol(_ context.Context, symbol string) ([]models.Position, error) {
	var out []models.Position
	for _, p := range s.positions {
		if p.Symbol == symbol {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubPositions) ListPositions(_ context.Context) ([]models.Position, error) {
	return s.positions, nil
}

type stubTaxState stubStorageManager

func (s *stubTaxState) GetTaxSettings(_ context.Context) (*models.TaxSettings, error) {
	return &s.settings, nil
}

func (s *stubTaxState) SaveTaxSettings(_ context.Context, settings *models.TaxSettings) error {
	s.settings = *settings
	return nil
}

func (s *stubTaxState) GetCorporateBalances(_ context.Context) (*models.CorporateBalances, error) {
	return &s.balances, nil
}

func (s *stubTaxState) SaveCorporateBalances(_ context.Context, balances *models.CorporateBalances) error {
	s.balances = *balances
	return nil
}

func (s *stubTaxState) LastSyncedAt(_ context.Context) (time.Time, error) { return time.Time{}, nil }
func (s *stubTaxState) SetLastSyncedAt(_ context.Context, _ time.Time) error {
	return nil
}

// --- test data helpers ---

func ptr(v float64) *float64 { return &v }

func tradeAt(t models.ActivityType, symbol, accountID string, qty, price float64, at time.Time) models.ActivityRecord {
	return models.ActivityRecord{
		Type:       t,
		Symbol:     symbol,
		Quantity:   ptr(qty),
		Price:      ptr(price),
		Amount:     qty * price,
		OccurredAt: at,
		AccountID:  accountID,
	}
}
