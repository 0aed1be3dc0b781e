package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/dkmcgowan/maplebook/internal/common"
	"github.com/dkmcgowan/maplebook/internal/models"
)

type activityStorage struct {
	store  *Store
	logger *common.Logger
}

// NewActivityStorage creates a new ActivityStore backed by BadgerHold.
func NewActivityStorage(store *Store, logger *common.Logger) *activityStorage {
	return &activityStorage{store: store, logger: logger}
}

func (s *activityStorage) SaveActivity(_ context.Context, activity *models.ActivityRecord) error {
	if activity.ID == "" {
		return fmt.Errorf("activity record requires an ID")
	}
	if err := s.store.db.Upsert(activity.ID, activity); err != nil {
		return fmt.Errorf("failed to save activity '%s': %w", activity.ID, err)
	}
	return nil
}

func (s *activityStorage) GetActivities(_ context.Context, symbol, accountID string) ([]models.ActivityRecord, error) {
	query := badgerhold.Where("Symbol").Eq(symbol).Index("Symbol")
	if accountID != "" {
		query = query.And("AccountID").Eq(accountID)
	}

	var activities []models.ActivityRecord
	if err := s.store.db.Find(&activities, query); err != nil {
		return nil, fmt.Errorf("failed to query activities for '%s': %w", symbol, err)
	}

	sortByOccurrence(activities)
	return activities, nil
}

func (s *activityStorage) GetActivitiesByType(_ context.Context, activityType models.ActivityType, from, to time.Time) ([]models.ActivityRecord, error) {
	var activities []models.ActivityRecord
	query := badgerhold.Where("Type").Eq(activityType).Index("Type")
	if err := s.store.db.Find(&activities, query); err != nil {
		return nil, fmt.Errorf("failed to query %s activities: %w", activityType, err)
	}

	filtered := activities[:0]
	for _, a := range activities {
		if !from.IsZero() && a.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && !a.OccurredAt.Before(to) {
			continue
		}
		filtered = append(filtered, a)
	}

	sortByOccurrence(filtered)
	return filtered, nil
}

func (s *activityStorage) GetBuysSince(_ context.Context, symbol string, cutoff time.Time) ([]models.ActivityRecord, error) {
	query := badgerhold.Where("Symbol").Eq(symbol).Index("Symbol").
		And("Type").Eq(models.ActivityBuy).
		And("OccurredAt").Ge(cutoff)

	var buys []models.ActivityRecord
	if err := s.store.db.Find(&buys, query); err != nil {
		return nil, fmt.Errorf("failed to query recent buys for '%s': %w", symbol, err)
	}

	// Most recent first: callers want the latest buy for window arithmetic.
	sort.SliceStable(buys, func(i, j int) bool {
		return buys[i].OccurredAt.After(buys[j].OccurredAt)
	})
	return buys, nil
}

func (s *activityStorage) FirstBuy(_ context.Context, symbol, accountID string) (*models.ActivityRecord, error) {
	query := badgerhold.Where("Symbol").Eq(symbol).Index("Symbol").
		And("AccountID").Eq(accountID).
		And("Type").Eq(models.ActivityBuy)

	var buys []models.ActivityRecord
	if err := s.store.db.Find(&buys, query); err != nil {
		return nil, fmt.Errorf("failed to query buys for '%s': %w", symbol, err)
	}
	if len(buys) == 0 {
		return nil, nil
	}

	sortByOccurrence(buys)
	return &buys[0], nil
}

func sortByOccurrence(activities []models.ActivityRecord) {
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].OccurredAt.Before(activities[j].OccurredAt)
	})
}
