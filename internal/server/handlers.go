package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dkmcgowan/maplebook/internal/common"
	"github.com/dkmcgowan/maplebook/internal/models"
)

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
	})
}

// --- Sync handler ---

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if s.app.SyncService == nil {
		WriteError(w, http.StatusServiceUnavailable, "Brokerage sync is not configured")
		return
	}

	force := r.URL.Query().Get("force") == "true"
	stats, err := s.app.SyncService.Sync(r.Context(), force)
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Sync failed: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}

// --- Tax engine handlers ---

func (s *Server) handleACBHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := symbolFromPath(r.URL.Path, "/api/tax/acb/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	accountID := r.URL.Query().Get("account")
	results, err := s.app.ACBService.GetACBHistory(r.Context(), symbol, accountID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error computing ACB: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"ledgers": results,
	})
}

func (s *Server) handleRealizedGains(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	gains, err := s.app.TaxService.GetRealizedGains(r.Context(), year)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error computing realized gains: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"year":  year,
		"gains": gains,
	})
}

func (s *Server) handleUnrealizedGains(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	gains, err := s.app.TaxService.GetUnrealizedGains(r.Context(), time.Now())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error computing unrealized gains: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"gains": gains,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	summary, err := s.app.TaxService.GetCapitalGainsSummary(r.Context(), year)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error computing summary: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSummarySplit(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	split, err := s.app.TaxService.GetCapitalGainsSplit(r.Context(), year)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error computing split summary: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, split)
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	candidates, err := s.app.TaxService.GetTaxLossCandidates(r.Context(), time.Now())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error detecting candidates: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": candidates,
	})
}

func (s *Server) handleImplications(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := symbolFromPath(r.URL.Path, "/api/tax/implications/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	implications, err := s.app.TaxService.GetTaxImplications(r.Context(), symbol)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error computing implications: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":       symbol,
		"implications": implications,
	})
}

func (s *Server) handleWhatIf(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		models.WhatIfScenario
		AccountID string `json:"account_id"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Symbol == "" || req.Quantity <= 0 {
		WriteError(w, http.StatusBadRequest, "symbol and a positive quantity are required")
		return
	}

	result, err := s.app.WhatIfService.Simulate(r.Context(), req.WhatIfScenario, req.AccountID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Simulation failed: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleMemo(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if s.app.MemoService == nil {
		WriteError(w, http.StatusServiceUnavailable, "Memo generation is not configured")
		return
	}

	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	memo, err := s.app.MemoService.GenerateMemo(r.Context(), year, time.Now())
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Memo generation failed: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"year": year,
		"memo": memo,
	})
}

// --- Settings handlers ---

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := s.app.Storage.TaxStateStore().GetTaxSettings(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading settings: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, settings)

	case http.MethodPut:
		var settings models.TaxSettings
		if !DecodeJSON(w, r, &settings) {
			return
		}
		if _, err := models.RatesForProvince(settings.Province); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if settings.PersonalMarginalRate < 0 || settings.PersonalMarginalRate > 1 {
			WriteError(w, http.StatusBadRequest, "personal_marginal_rate must be between 0 and 1")
			return
		}
		if err := s.app.Storage.TaxStateStore().SaveTaxSettings(r.Context(), &settings); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error saving settings: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, settings)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		balances, err := s.app.Storage.TaxStateStore().GetCorporateBalances(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading balances: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, balances)

	case http.MethodPut:
		var balances models.CorporateBalances
		if !DecodeJSON(w, r, &balances) {
			return
		}
		if balances.CurrentAAII < 0 || balances.CurrentCDA < 0 || balances.CurrentRDTOH < 0 {
			WriteError(w, http.StatusBadRequest, "balances must not be negative")
			return
		}
		if err := s.app.Storage.TaxStateStore().SaveCorporateBalances(r.Context(), &balances); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error saving balances: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, balances)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}

// --- Export handlers ---

func (s *Server) handleExportRealizedCSV(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	data, err := s.app.ReportService.RealizedGainsCSV(r.Context(), year)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Export failed: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="realized-gains-%d.csv"`, year))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleExportACBChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := symbolFromPath(r.URL.Path, "/api/export/acb/", ".png")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	accountID := r.URL.Query().Get("account")
	png, err := s.app.ReportService.ACBChartPNG(r.Context(), symbol, accountID)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Chart unavailable: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// yearParam reads the year query parameter, defaulting to the current year.
// Writes a 400 and returns false on a malformed value.
func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return time.Now().Year(), true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1990 || year > 2100 {
		WriteError(w, http.StatusBadRequest, "year must be a four-digit year")
		return 0, false
	}
	return year, true
}
