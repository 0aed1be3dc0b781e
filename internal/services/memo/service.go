// Package memo generates year-end tax memos using Gemini.
package memo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dkmcgowan/maplebook/internal/common"
	"github.com/dkmcgowan/maplebook/internal/interfaces"
	"github.com/dkmcgowan/maplebook/internal/models"
)

// Service builds a prompt from the year's gains picture and asks the memo
// client for prose.
type Service struct {
	tax    interfaces.TaxService
	client interfaces.MemoClient
	logger *common.Logger
}

// NewService creates a new memo service
func NewService(tax interfaces.TaxService, client interfaces.MemoClient, logger *common.Logger) *Service {
	return &Service{
		tax:    tax,
		client: client,
		logger: logger,
	}
}

// GenerateMemo writes a tax memo for the year from the capital gains split
// and current harvest candidates.
func (s *Service) GenerateMemo(ctx context.Context, year int, now time.Time) (string, error) {
	split, err := s.tax.GetCapitalGainsSplit(ctx, year)
	if err != nil {
		return "", fmt.Errorf("failed to compute capital gains split: %w", err)
	}

	candidates, err := s.tax.GetTaxLossCandidates(ctx, now)
	if err != nil {
		return "", fmt.Errorf("failed to detect harvest candidates: %w", err)
	}

	prompt := buildMemoPrompt(year, split, candidates)

	s.logger.Debug().Int("year", year).Int("candidates", len(candidates)).Msg("Generating tax memo")

	memo, err := s.client.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate memo: %w", err)
	}

	return memo, nil
}

// buildMemoPrompt creates the prompt for the year-end memo
func buildMemoPrompt(year int, split *models.CapitalGainsSplit, candidates []models.TaxLossCandidate) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `Write a concise year-end tax planning memo for a Canadian investor for tax year %d.
Cover the realized capital gains position, the corporate (CCPC) impact if any, and
tax-loss harvesting opportunities. Flag superficial loss timing where relevant.
Do not give personalized legal or tax advice; frame suggestions as items to
discuss with an accountant.

`, year)

	fmt.Fprintf(&sb, `Personal accounts:
- Realized gains: $%.2f
- Realized losses: $%.2f
- Net: $%.2f
- Taxable amount (50%% inclusion): $%.2f

`, split.Personal.Gains, split.Personal.Losses, split.Personal.Net, split.Personal.Taxable)

	if split.Corporate.Gains != 0 || split.Corporate.Losses != 0 {
		fmt.Fprintf(&sb, `Corporate (CCPC) accounts:
- Realized gains: $%.2f
- Realized losses: $%.2f
- Net: $%.2f
- Taxable amount: $%.2f
- Small business deduction limit reduction from this year's passive income: $%.2f

`, split.Corporate.Gains, split.Corporate.Losses, split.Corporate.Net, split.Corporate.Taxable, split.Corporate.SBDReduction)
	}

	if len(candidates) > 0 {
		sb.WriteString("Tax-loss harvesting candidates (aggregate unrealized losses):\n")
		for _, c := range candidates {
			fmt.Fprintf(&sb, "- %s: loss $%.2f (%.1f%%), harvest status: %s", c.Symbol, c.UnrealizedLoss, c.LossPct, c.HarvestStatus)
			if c.DaysUntilSafe != nil {
				fmt.Fprintf(&sb, ", safe to harvest in %d days", *c.DaysUntilSafe)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No tax-loss harvesting candidates at this time.\n\n")
	}

	sb.WriteString("Keep the memo under 500 words, in plain language, with a short actionable checklist at the end.")

	return sb.String()
}

// Ensure Service implements MemoService
var _ interfaces.MemoService = (*Service)(nil)
