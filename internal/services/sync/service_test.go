package sync

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkmcgowan/maplebook/internal/common"
	"github.com/dkmcgowan/maplebook/internal/interfaces"
	"github.com/dkmcgowan/maplebook/internal/models"
)

// memStorage is an in-memory StorageManager recording what the sync wrote.
type memStorage struct {
	activities []models.ActivityRecord
	accounts   []models.Account
	positions  []models.Position
	lastSynced time.Time
}

func (m *memStorage) ActivityStore() interfaces.ActivityStore { return (*memActivities)(m) }
func (m *memStorage) AccountStore() interfaces.AccountStore   { return (*memAccounts)(m) }
func (m *memStorage) PositionStore() interfaces.PositionStore { return (*memPositions)(m) }
func (m *memStorage) TaxStateStore() interfaces.TaxStateStore { return (*memTaxState)(m) }
func (m *memStorage) Close() error                            { return nil }

type memActivities memStorage

func (s *memActivities) SaveActivity(_ context.Context, a *models.ActivityRecord) error {
	s.activities = append(s.activities, *a)
	return nil
}

func (s *memActivities) GetActivities(_ context.Context, symbol, accountID string) ([]models.ActivityRecord, error) {
	var out []models.ActivityRecord
	for _, a := range s.activities {
		if a.Symbol == symbol && (accountID == "" || a.AccountID == accountID) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (s *memActivities) GetActivitiesByType(_ context.Context, _ models.ActivityType, _, _ time.Time) ([]models.ActivityRecord, error) {
	return nil, nil
}

func (s *memActivities) GetBuysSince(_ context.Context, _ string, _ time.Time) ([]models.ActivityRecord, error) {
	return nil, nil
}

func (s *memActivities) FirstBuy(_ context.Context, _, _ string) (*models.ActivityRecord, error) {
	return nil, nil
}

type memAccounts memStorage

func (s *memAccounts) SaveAccount(_ context.Context, a *models.Account) error {
	s.accounts = append(s.accounts, *a)
	return nil
}
func (s *memAccounts) GetAccount(_ context.Context, _ string) (*models.Account, error) {
	return nil, nil
}
func (s *memAccounts) ListAccounts(_ context.Context) ([]models.Account, error) {
	return s.accounts, nil
}

type memPositions memStorage

func (s *memPositions) SavePosition(_ context.Context, p *models.Position) error {
	s.positions = append(s.positions, *p)
	return nil
}
func (s *memPositions) GetPositionsBySymbol(_ context.Context, _ string) ([]models.Position, error) {
	return nil, nil
}
func (s *memPositions) ListPositions(_ context.Context) ([]models.Position, error) {
	return s.positions, nil
}

type memTaxState memStorage

func (s *memTaxState) GetTaxSettings(_ context.Context) (*models.TaxSettings, error) {
	return &models.TaxSettings{}, nil
}
func (s *memTaxState) SaveTaxSettings(_ context.Context, _ *models.TaxSettings) error { return nil }
func (s *memTaxState) GetCorporateBalances(_ context.Context) (*models.CorporateBalances, error) {
	return &models.CorporateBalances{}, nil
}
func (s *memTaxState) SaveCorporateBalances(_ context.Context, _ *models.CorporateBalances) error {
	return nil
}
func (s *memTaxState) LastSyncedAt(_ context.Context) (time.Time, error) { return s.lastSynced, nil }
func (s *memTaxState) SetLastSyncedAt(_ context.Context, t time.Time) error {
	s.lastSynced = t
	return nil
}

// stubBrokerage serves canned data and counts calls.
type stubBrokerage struct {
	accounts   []*models.Account
	positions  map[string][]*models.Position
	activities map[string][]*models.ActivityRecord
	calls      int
}

func (c *stubBrokerage) GetAccounts(_ context.Context) ([]*models.Account, error) {
	c.calls++
	return c.accounts, nil
}

func (c *stubBrokerage) GetPositions(_ context.Context, accountID string) ([]*models.Position, error) {
	return c.positions[accountID], nil
}

func (c *stubBrokerage) GetActivities(_ context.Context, accountID string) ([]*models.ActivityRecord, error) {
	return c.activities[accountID], nil
}

func ptr(v float64) *float64 { return &v }

func newStubBrokerage() *stubBrokerage {
	return &stubBrokerage{
		accounts: []*models.Account{
			{ID: "tfsa-1", Type: models.AccountTFSA, Currency: "CAD"},
			{ID: "nr-1", Type: models.AccountNonReg, Currency: "CAD"},
		},
		positions: map[string][]*models.Position{
			"nr-1": {{ID: "nr-1:VEQT", Symbol: "VEQT", AccountID: "nr-1", Quantity: 100}},
		},
		activities: map[string][]*models.ActivityRecord{
			"nr-1": {
				{ID: "t1", Type: models.ActivityBuy, Symbol: "VEQT", Quantity: ptr(100), Price: ptr(30), OccurredAt: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), AccountID: "nr-1"},
				{Type: models.ActivityDividend, Symbol: "VEQT", Amount: 45.20, OccurredAt: time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC), AccountID: "nr-1"},
			},
		},
	}
}

func TestSync_IngestsAllAreas(t *testing.T) {
	storage := &memStorage{}
	client := newStubBrokerage()
	now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

	svc := NewService(storage, client, common.NewSilentLogger(), WithClock(func() time.Time { return now }))
	stats, err := svc.Sync(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Accounts)
	assert.Equal(t, 1, stats.Positions)
	assert.Equal(t, 2, stats.Activities)
	assert.Equal(t, now, stats.SyncedAt)
	assert.Equal(t, now, storage.lastSynced)
}

func TestSync_AssignsMissingActivityIDs(t *testing.T) {
	storage := &memStorage{}
	client := newStubBrokerage()

	svc := NewService(storage, client, common.NewSilentLogger())
	_, err := svc.Sync(context.Background(), false)
	require.NoError(t, err)

	require.Len(t, storage.activities, 2)
	assert.Equal(t, "t1", storage.activities[0].ID)
	assert.NotEmpty(t, storage.activities[1].ID, "dividend without an ID should get one assigned")
}

func TestSync_FreshDataShortCircuits(t *testing.T) {
	now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	storage := &memStorage{lastSynced: now.Add(-10 * time.Minute)}
	client := newStubBrokerage()

	svc := NewService(storage, client, common.NewSilentLogger(), WithClock(func() time.Time { return now }))
	stats, err := svc.Sync(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 0, client.calls, "fresh data should not hit the brokerage")
	assert.Equal(t, 0, stats.Accounts)
	assert.Equal(t, storage.lastSynced, stats.SyncedAt)
}

func TestSync_ForceBypassesFreshness(t *testing.T) {
	now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	storage := &memStorage{lastSynced: now.Add(-10 * time.Minute)}
	client := newStubBrokerage()

	svc := NewService(storage, client, common.NewSilentLogger(), WithClock(func() time.Time { return now }))
	stats, err := svc.Sync(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls)
	assert.Equal(t, 2, stats.Accounts)
	assert.Equal(t, now, storage.lastSynced)
}

func TestSync_StaleDataResyncs(t *testing.T) {
	now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	storage := &memStorage{lastSynced: now.Add(-2 * time.Hour)}
	client := newStubBrokerage()

	svc := NewService(storage, client, common.NewSilentLogger(), WithClock(func() time.Time { return now }))
	stats, err := svc.Sync(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls)
	assert.Equal(t, 2, stats.Accounts)
}
