// Package report renders CSV and chart exports for the dashboard.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/dkmcgowan/maplebook/internal/common"
	"github.com/dkmcgowan/maplebook/internal/interfaces"
)

// Service renders exports from the tax and ACB services.
type Service struct {
	tax    interfaces.TaxService
	acb    interfaces.ACBService
	logger *common.Logger
}

// NewService creates a new report service
func NewService(tax interfaces.TaxService, acb interfaces.ACBService, logger *common.Logger) *Service {
	return &Service{
		tax:    tax,
		acb:    acb,
		logger: logger,
	}
}

// RealizedGainsCSV renders the year's realized gains as CSV, one row per
// sell, ordered as the tax service returns them.
func (s *Service) RealizedGainsCSV(ctx context.Context, year int) ([]byte, error) {
	gains, err := s.tax.GetRealizedGains(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load realized gains: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"symbol", "sell_date", "account_id", "account_type", "proceeds", "cost_basis", "gain_loss", "taxable"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, g := range gains {
		row := []string{
			g.Symbol,
			g.SellDate,
			g.AccountID,
			g.AccountType,
			formatAmount(g.Proceeds),
			formatAmount(g.CostBasis),
			formatAmount(g.GainLoss),
			strconv.FormatBool(g.IsTaxable),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	s.logger.Debug().Int("year", year).Int("rows", len(gains)).Msg("Realized gains CSV rendered")

	return buf.Bytes(), nil
}

// ACBChartPNG renders a symbol's running ACB audit trail as a PNG chart.
// accountID must identify one account; the chart covers a single ledger.
func (s *Service) ACBChartPNG(ctx context.Context, symbol, accountID string) ([]byte, error) {
	results, err := s.acb.GetACBHistory(ctx, symbol, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute ACB history: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no activity found for '%s'", symbol)
	}

	return RenderACBChart(results[0])
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Ensure Service implements ReportService
var _ interfaces.ReportService = (*Service)(nil)
