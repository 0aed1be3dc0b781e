package models

import "fmt"

// CapitalGainsInclusionRate is the fraction of a capital gain included in
// taxable income.
const CapitalGainsInclusionRate = 0.5

// SuperficialLossWindowDays is the repurchase window that taints a harvested
// loss under the superficial loss rule.
const SuperficialLossWindowDays = 30

// Federal CCPC constants for the small business deduction clawback.
// AAII above the threshold reduces the SBD limit by the multiplier.
const (
	SBDClawbackThreshold   = 50000.0
	SBDLimit               = 500000.0
	SBDReductionMultiplier = 5.0
)

// ProvinceRates holds the combined federal+provincial CCPC rates for one
// province. PassiveIncomeRate applies to investment income inside the corp;
// RDTOHRefundRate is the refundable portion accrued on that income.
type ProvinceRates struct {
	PassiveIncomeRate         float64 `json:"passive_income_rate"`
	RDTOHRefundRate           float64 `json:"rdtoh_refund_rate"`
	EligibleDividendGrossUp   float64 `json:"eligible_dividend_gross_up"`
	EligibleDividendCreditPct float64 `json:"eligible_dividend_credit_pct"`
}

// provinceTaxRates is the static rate table for the supported provinces.
var provinceTaxRates = map[string]ProvinceRates{
	"ON": {
		PassiveIncomeRate:         0.5017,
		RDTOHRefundRate:           0.3067,
		EligibleDividendGrossUp:   0.38,
		EligibleDividendCreditPct: 0.2508,
	},
	"BC": {
		PassiveIncomeRate:         0.5067,
		RDTOHRefundRate:           0.3067,
		EligibleDividendGrossUp:   0.38,
		EligibleDividendCreditPct: 0.2702,
	},
	"AB": {
		PassiveIncomeRate:         0.4667,
		RDTOHRefundRate:           0.3067,
		EligibleDividendGrossUp:   0.38,
		EligibleDividendCreditPct: 0.2319,
	},
	"QC": {
		PassiveIncomeRate:         0.5017,
		RDTOHRefundRate:           0.3067,
		EligibleDividendGrossUp:   0.38,
		EligibleDividendCreditPct: 0.2694,
	},
}

// RatesForProvince returns the rate table for a province code, or an error
// for provinces the engine has no table for. Unknown provinces are a
// boundary error: continuing would silently produce wrong tax figures.
func RatesForProvince(province string) (ProvinceRates, error) {
	rates, ok := provinceTaxRates[province]
	if !ok {
		return ProvinceRates{}, fmt.Errorf("no tax rate table for province %q", province)
	}
	return rates, nil
}
