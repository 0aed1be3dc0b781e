// Package interfaces defines service contracts for MapleBook
package interfaces

import (
	"context"

	"github.com/dkmcgowan/maplebook/internal/models"
)

// BrokerageClient fetches portfolio data from the brokerage API.
// Implementations are constructed explicitly and injected; there is no
// shared module-level client.
type BrokerageClient interface {
	// GetAccounts lists the user's linked brokerage accounts.
	GetAccounts(ctx context.Context) ([]*models.Account, error)

	// GetPositions returns current holdings for an account.
	GetPositions(ctx context.Context, accountID string) ([]*models.Position, error)

	// GetActivities returns the account's activity ledger, oldest first.
	GetActivities(ctx context.Context, accountID string) ([]*models.ActivityRecord, error)
}

// MemoClient generates prose from a prompt (Gemini).
type MemoClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}
