// Package whatif simulates the full tax cascade of a hypothetical disposal
// across personal, corporate (CCPC), and sheltered account structures.
package whatif

import (
	"fmt"
	"math"

	"github.com/dkmcgowan/maplebook/internal/models"
)

// SimulateScenario computes the tax consequence of selling scenario.Quantity
// units for scenario.EstimatedProceeds against the given ACB per unit. It is
// a pure function: no I/O, no validation of quantity against actual holdings
// (the caller's responsibility). Negative or zero proceeds degenerate to zero
// tax and a zero effective rate rather than erroring.
func SimulateScenario(scenario models.WhatIfScenario, acbPerUnit float64, ctx models.TaxContext) (*models.WhatIfResult, error) {
	rates, err := models.RatesForProvince(ctx.Province)
	if err != nil {
		return nil, fmt.Errorf("cannot simulate scenario: %w", err)
	}

	proceeds := scenario.EstimatedProceeds
	costBasis := scenario.Quantity * acbPerUnit
	capitalGain := math.Max(0, proceeds-costBasis)
	capitalLoss := math.Max(0, costBasis-proceeds)
	taxableGain := capitalGain * models.CapitalGainsInclusionRate

	if models.IsShelteredAccount(scenario.AccountType) {
		// No tax inside registered accounts; the comparison degenerates.
		return &models.WhatIfResult{
			Proceeds:    proceeds,
			CostBasis:   costBasis,
			CapitalGain: capitalGain - capitalLoss,
			NetAfterTax: proceeds,
			Alternative: models.AlternativeOutcome{NetAfterTax: proceeds},
		}, nil
	}

	if models.IsCorporateAccount(scenario.AccountType) {
		corpTax := taxableGain * rates.PassiveIncomeRate

		// Non-taxable half of the gain flows to the Capital Dividend
		// Account, extractable tax-free later.
		cdaImpact := capitalGain * (1 - models.CapitalGainsInclusionRate)

		// Refundable tax pool growth.
		rdtohImpact := taxableGain * rates.RDTOHRefundRate

		// Taxable portion counts toward Adjusted Aggregate Investment Income.
		aaiiImpact := taxableGain

		// SBD clawback on the marginal excess over the federal threshold:
		// only the excess this disposal causes is attributed to it, not any
		// pre-existing excess.
		newAAII := ctx.CurrentAAII + aaiiImpact
		sbdImpact := 0.0
		if newAAII > models.SBDClawbackThreshold {
			excessBefore := math.Max(0, ctx.CurrentAAII-models.SBDClawbackThreshold)
			excessAfter := newAAII - models.SBDClawbackThreshold
			sbdImpact = math.Min(models.SBDLimit, (excessAfter-excessBefore)*models.SBDReductionMultiplier)
		}

		netAfterTax := proceeds - corpTax

		personalTax := taxableGain * ctx.PersonalMarginalRate
		personalNet := proceeds - personalTax

		return &models.WhatIfResult{
			Proceeds:      proceeds,
			CostBasis:     costBasis,
			CapitalGain:   capitalGain - capitalLoss,
			TaxableGain:   taxableGain,
			EstimatedTax:  corpTax,
			CDAImpact:     cdaImpact,
			AAIIImpact:    aaiiImpact,
			RDTOHImpact:   rdtohImpact,
			SBDImpact:     sbdImpact,
			NetAfterTax:   netAfterTax,
			EffectiveRate: effectiveRate(corpTax, proceeds),
			Alternative: models.AlternativeOutcome{
				EstimatedTax:  personalTax,
				NetAfterTax:   personalNet,
				EffectiveRate: effectiveRate(personalTax, proceeds),
				Difference:    netAfterTax - personalNet,
			},
		}, nil
	}

	// Personal non-registered account.
	personalTax := taxableGain * ctx.PersonalMarginalRate
	netAfterTax := proceeds - personalTax

	// Hypothetical corporate alternative for comparison.
	corpTax := taxableGain * rates.PassiveIncomeRate
	corpNet := proceeds - corpTax

	return &models.WhatIfResult{
		Proceeds:      proceeds,
		CostBasis:     costBasis,
		CapitalGain:   capitalGain - capitalLoss,
		TaxableGain:   taxableGain,
		EstimatedTax:  personalTax,
		NetAfterTax:   netAfterTax,
		EffectiveRate: effectiveRate(personalTax, proceeds),
		Alternative: models.AlternativeOutcome{
			EstimatedTax:  corpTax,
			NetAfterTax:   corpNet,
			EffectiveRate: effectiveRate(corpTax, proceeds),
			Difference:    corpNet - netAfterTax,
		},
	}, nil
}

// effectiveRate is tax as a percentage of proceeds, 0 when proceeds are 0.
func effectiveRate(tax, proceeds float64) float64 {
	if proceeds <= 0 {
		return 0
	}
	return tax / proceeds * 100
}
