// Package models defines data structures for MapleBook
package models

import "time"

// ActivityType identifies a brokerage ledger entry type
type ActivityType string

const (
	ActivityBuy        ActivityType = "buy"
	ActivitySell       ActivityType = "sell"
	ActivityTransfer   ActivityType = "transfer"
	ActivityDividend   ActivityType = "dividend"
	ActivityFee        ActivityType = "fee"
	ActivityDeposit    ActivityType = "deposit"
	ActivityWithdrawal ActivityType = "withdrawal"
)

// ValidActivityType reports whether t is a known activity type
func ValidActivityType(t ActivityType) bool {
	switch t {
	case ActivityBuy, ActivitySell, ActivityTransfer, ActivityDividend,
		ActivityFee, ActivityDeposit, ActivityWithdrawal:
		return true
	}
	return false
}

// AffectsCostBasis reports whether the activity type can change a position's
// adjusted cost base. Dividends, fees, and cash movements never do.
func AffectsCostBasis(t ActivityType) bool {
	switch t {
	case ActivityBuy, ActivitySell, ActivityTransfer:
		return true
	}
	return false
}

// ActivityRecord is one immutable entry in the brokerage activity ledger.
// The engine only reads these; they are never mutated after ingestion.
// Quantity and Price are pointers because cash-only activities (deposits,
// fees) carry neither.
type ActivityRecord struct {
	ID         string       `json:"id" badgerhold:"key"`
	Type       ActivityType `json:"type" badgerhold:"index"`
	Symbol     string       `json:"symbol,omitempty" badgerhold:"index"`
	Quantity   *float64     `json:"quantity,omitempty"`
	Price      *float64     `json:"price,omitempty"`
	Amount     float64      `json:"amount"`
	OccurredAt time.Time    `json:"occurred_at"`
	AccountID  string       `json:"account_id" badgerhold:"index"`
}

// Qty returns the activity quantity, or 0 when absent.
func (a *ActivityRecord) Qty() float64 {
	if a.Quantity == nil {
		return 0
	}
	return *a.Quantity
}

// UnitPrice returns the activity price, or 0 when absent.
func (a *ActivityRecord) UnitPrice() float64 {
	if a.Price == nil {
		return 0
	}
	return *a.Price
}
