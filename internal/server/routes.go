package server

import (
	"net/http"
	"strings"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Brokerage sync
	mux.HandleFunc("/api/sync", s.handleSync)

	// Tax engine
	mux.HandleFunc("/api/tax/acb/", s.handleACBHistory)
	mux.HandleFunc("/api/tax/realized", s.handleRealizedGains)
	mux.HandleFunc("/api/tax/unrealized", s.handleUnrealizedGains)
	mux.HandleFunc("/api/tax/summary/split", s.handleSummarySplit)
	mux.HandleFunc("/api/tax/summary", s.handleSummary)
	mux.HandleFunc("/api/tax/candidates", s.handleCandidates)
	mux.HandleFunc("/api/tax/implications/", s.handleImplications)
	mux.HandleFunc("/api/tax/whatif", s.handleWhatIf)
	mux.HandleFunc("/api/tax/memo", s.handleMemo)

	// Settings and externally tracked corporate balances
	mux.HandleFunc("/api/tax/settings", s.handleSettings)
	mux.HandleFunc("/api/tax/balances", s.handleBalances)

	// Exports
	mux.HandleFunc("/api/export/realized.csv", s.handleExportRealizedCSV)
	mux.HandleFunc("/api/export/acb/", s.handleExportACBChart)
}

// symbolFromPath extracts the {symbol} segment after prefix, stripping an
// optional suffix like ".png". Symbols are uppercased for consistent queries.
func symbolFromPath(path, prefix, suffix string) string {
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	symbol := path[len(prefix):]
	if suffix != "" {
		symbol = strings.TrimSuffix(symbol, suffix)
	}
	if strings.Contains(symbol, "/") {
		return ""
	}
	return strings.ToUpper(symbol)
}
