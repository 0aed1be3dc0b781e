package models

import "time"

// ACBEntryType identifies what kind of event an audit-trail entry records.
type ACBEntryType string

const (
	ACBEntryBuy        ACBEntryType = "buy"
	ACBEntrySell       ACBEntryType = "sell"
	ACBEntryTransferIn ACBEntryType = "transfer_in"
)

// ACBEntry is one row of the cost-basis audit trail. Running values reflect
// the ledger state immediately after this event was applied.
type ACBEntry struct {
	Date            time.Time    `json:"date"`
	Type            ACBEntryType `json:"type"`
	Quantity        float64      `json:"quantity"`
	PricePerUnit    float64      `json:"price_per_unit"`
	TotalCost       float64      `json:"total_cost"`
	RunningQuantity float64      `json:"running_quantity"`
	RunningACB      float64      `json:"running_acb"`
	ACBPerUnit      float64      `json:"acb_per_unit"`
}

// ACBResult is the replayed cost-basis state for one (symbol, account) pair.
// It is recomputed from the activity ledger on demand and never persisted.
type ACBResult struct {
	Symbol          string     `json:"symbol"`
	AccountID       string     `json:"account_id"`
	CurrentQuantity float64    `json:"current_quantity"`
	TotalACB        float64    `json:"total_acb"`
	ACBPerUnit      float64    `json:"acb_per_unit"`
	Entries         []ACBEntry `json:"entries"`
}

// RealizedGain is the tax consequence of one sell activity.
type RealizedGain struct {
	Symbol      string  `json:"symbol"`
	SellDate    string  `json:"sell_date"` // YYYY-MM-DD
	AccountID   string  `json:"account_id"`
	AccountType string  `json:"account_type"`
	Proceeds    float64 `json:"proceeds"`
	CostBasis   float64 `json:"cost_basis"`
	GainLoss    float64 `json:"gain_loss"`
	IsTaxable   bool    `json:"is_taxable"`
}

// UnrealizedGain is the paper gain/loss on one open position.
type UnrealizedGain struct {
	Symbol             string  `json:"symbol"`
	Name               string  `json:"name,omitempty"`
	AccountID          string  `json:"account_id"`
	AccountType        string  `json:"account_type"`
	BookValue          float64 `json:"book_value"`
	MarketValue        float64 `json:"market_value"`
	UnrealizedGainLoss float64 `json:"unrealized_gain_loss"`
	DaysHeld           int     `json:"days_held"`
}

// CapitalGainsSummary aggregates the taxable subset of a year's realized
// gains. TaxableAmount never goes negative; loss carry-forward is not modeled.
type CapitalGainsSummary struct {
	RealizedGains   float64 `json:"realized_gains"`
	RealizedLosses  float64 `json:"realized_losses"`
	NetCapitalGains float64 `json:"net_capital_gains"`
	TaxableAmount   float64 `json:"taxable_amount"`
}

// CapitalGainsSide is one side (personal or corporate) of the split summary.
type CapitalGainsSide struct {
	Gains        float64 `json:"gains"`
	Losses       float64 `json:"losses"`
	Net          float64 `json:"net"`
	Taxable      float64 `json:"taxable"`
	SBDReduction float64 `json:"sbd_reduction,omitempty"` // corporate side only
}

// CapitalGainsSplit separates a year's taxable gains into personal and
// corporate buckets, with the corporate side's aggregate SBD impact.
type CapitalGainsSplit struct {
	Personal  CapitalGainsSide `json:"personal"`
	Corporate CapitalGainsSide `json:"corporate"`
}

// HarvestStatus is the timing tri-state for a tax-loss-harvest candidate.
type HarvestStatus string

const (
	HarvestSafe        HarvestStatus = "safe"
	HarvestApproaching HarvestStatus = "approaching"
	HarvestRisky       HarvestStatus = "risky"
)

// TaxLossCandidate is a symbol carrying an aggregate unrealized loss across
// accounts. SuperficialLossRisk reflects buys within the past 30 days only;
// CRA's actual rule also covers the 30 days after a sale, which cannot be
// observed at detection time.
type TaxLossCandidate struct {
	Symbol              string        `json:"symbol"`
	Name                string        `json:"name,omitempty"`
	UnrealizedLoss      float64       `json:"unrealized_loss"` // positive number
	LossPct             float64       `json:"loss_pct"`
	Accounts            []string      `json:"accounts"`
	SuperficialLossRisk bool          `json:"superficial_loss_risk"`
	LastBuyDate         *time.Time    `json:"last_buy_date,omitempty"`
	DaysSinceLastBuy    *int          `json:"days_since_last_buy,omitempty"`
	DaysUntilSafe       *int          `json:"days_until_safe,omitempty"`
	HarvestStatus       HarvestStatus `json:"harvest_status"`
}

// TaxImplication is the per-account tax treatment of a symbol's unrealized gain.
type TaxImplication struct {
	AccountID      string  `json:"account_id"`
	AccountName    string  `json:"account_name"`
	AccountType    string  `json:"account_type"`
	Quantity       float64 `json:"quantity"`
	BookValue      float64 `json:"book_value"`
	MarketValue    float64 `json:"market_value"`
	UnrealizedGain float64 `json:"unrealized_gain"`
	TaxRate        float64 `json:"tax_rate"`
	TaxTreatment   string  `json:"tax_treatment"`
	EstimatedTax   float64 `json:"estimated_tax"`
	IsSheltered    bool    `json:"is_sheltered"`
	IsCorporate    bool    `json:"is_corporate"`
}

// WhatIfScenario describes a hypothetical disposal to simulate.
type WhatIfScenario struct {
	Symbol            string  `json:"symbol"`
	AccountType       string  `json:"account_type"`
	Quantity          float64 `json:"quantity"`
	EstimatedProceeds float64 `json:"estimated_proceeds"`
}

// AlternativeOutcome is the counterfactual side of a what-if comparison:
// the same disposal in a personal account (when simulating corporate) or a
// corporate account (when simulating personal). Difference is corporate net
// minus personal net; positive means the corporate outcome is better.
type AlternativeOutcome struct {
	EstimatedTax  float64 `json:"estimated_tax"`
	NetAfterTax   float64 `json:"net_after_tax"`
	EffectiveRate float64 `json:"effective_rate"`
	Difference    float64 `json:"difference"`
}

// WhatIfResult is the full tax cascade of a simulated disposal.
type WhatIfResult struct {
	Proceeds      float64            `json:"proceeds"`
	CostBasis     float64            `json:"cost_basis"`
	CapitalGain   float64            `json:"capital_gain"` // signed: gain - loss
	TaxableGain   float64            `json:"taxable_gain"`
	EstimatedTax  float64            `json:"estimated_tax"`
	CDAImpact     float64            `json:"cda_impact"`
	AAIIImpact    float64            `json:"aaii_impact"`
	RDTOHImpact   float64            `json:"rdtoh_impact"`
	SBDImpact     float64            `json:"sbd_impact"`
	NetAfterTax   float64            `json:"net_after_tax"`
	EffectiveRate float64            `json:"effective_rate"` // tax / proceeds * 100
	Alternative   AlternativeOutcome `json:"alternative"`
}

// TaxSettings holds the user's filing parameters.
type TaxSettings struct {
	ID                   string  `json:"id" badgerhold:"key"` // always "default"
	Province             string  `json:"province"`
	PersonalMarginalRate float64 `json:"personal_marginal_rate"`
}

// CorporateBalances are the CCPC running balances owned by external trackers.
// The tax core reads them as inputs; it never updates them.
type CorporateBalances struct {
	ID           string    `json:"id" badgerhold:"key"` // always "default"
	CurrentCDA   float64   `json:"current_cda"`
	CurrentRDTOH float64   `json:"current_rdtoh"`
	CurrentAAII  float64   `json:"current_aaii"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TaxContext bundles everything the cascade simulator needs beyond the
// scenario itself.
type TaxContext struct {
	Province             string  `json:"province"`
	PersonalMarginalRate float64 `json:"personal_marginal_rate"`
	CurrentCDA           float64 `json:"current_cda"`
	CurrentRDTOH         float64 `json:"current_rdtoh"`
	CurrentAAII          float64 `json:"current_aaii"`
}
