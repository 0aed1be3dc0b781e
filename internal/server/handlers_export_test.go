package server

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/dkmcgowan/maplebook/internal/app"
)

// mockReportService implements interfaces.ReportService for testing.
type mockReportService struct {
	realizedGainsCSV func(ctx context.Context, year int) ([]byte, error)
	acbChartPNG      func(ctx context.Context, symbol, accountID string) ([]byte, error)
}

func (m *mockReportService) RealizedGainsCSV(ctx context.Context, year int) ([]byte, error) {
	if m.realizedGainsCSV != nil {
		return m.realizedGainsCSV(ctx, year)
	}
	return nil, nil
}

func (m *mockReportService) ACBChartPNG(ctx context.Context, symbol, accountID string) ([]byte, error) {
	if m.acbChartPNG != nil {
		return m.acbChartPNG(ctx, symbol, accountID)
	}
	return nil, nil
}

func TestHandleExportRealizedCSV(t *testing.T) {
	srv := newTestServer(func(a *app.App) {
		a.ReportService = &mockReportService{
			realizedGainsCSV: func(ctx context.Context, year int) ([]byte, error) {
				if year != 2024 {
					t.Errorf("expected year 2024, got %d", year)
				}
				return []byte("symbol,sell_date\nVEQT,2024-04-15\n"), nil
			},
		}
	})

	rec := do(srv, http.MethodGet, "/api/export/realized.csv?year=2024", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/csv" {
		t.Errorf("expected text/csv, got %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "realized-gains-2024.csv") {
		t.Errorf("unexpected content disposition %q", got)
	}
	if !strings.HasPrefix(rec.Body.String(), "symbol,sell_date") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestHandleExportACBChart(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	srv := newTestServer(func(a *app.App) {
		a.ReportService = &mockReportService{
			acbChartPNG: func(ctx context.Context, symbol, accountID string) ([]byte, error) {
				if symbol != "VEQT" || accountID != "nr-1" {
					t.Errorf("unexpected args %q %q", symbol, accountID)
				}
				return png, nil
			},
		}
	})

	rec := do(srv, http.MethodGet, "/api/export/acb/veqt.png?account=nr-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("expected image/png, got %q", got)
	}
	if rec.Body.String() != string(png) {
		t.Error("body should be the raw PNG bytes")
	}
}

func TestHandleExportACBChart_MissingSymbol(t *testing.T) {
	srv := newTestServer(func(a *app.App) {
		a.ReportService = &mockReportService{}
	})

	rec := do(srv, http.MethodGet, "/api/export/acb/", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}
