package tax

import (
	"math"

	"github.com/areumfire/retirement-mc/internal/config"
)

// TaxableSocialSecurity applies the IRS provisional-income formula to
// determine how much of a household's Social Security benefit is included
// in taxable income (spec.md §4.6 step 9, grounded in the teacher's
// CalculateTaxableSocialSecurity). otherIncome excludes the SS benefit
// itself and already includes tax-exempt interest.
func TaxableSocialSecurity(yc YearConfig, filing config.FilingStatus, otherIncome, benefits float64) float64 {
	if benefits <= 0 {
		return 0
	}
	t1 := yc.SSProvisionalThreshold1[filing]
	t2 := yc.SSProvisionalThreshold2[filing]
	half := benefits * 0.5
	provisional := otherIncome + half

	switch {
	case provisional <= t1:
		return 0
	case provisional <= t2:
		excess := provisional - t1
		return math.Min(excess*0.5, half)
	default:
		excess := provisional - t2
		firstTier := math.Min((t2-t1)*0.5, half)
		total := firstTier + excess*0.85
		return math.Min(total, benefits*0.85)
	}
}

// ClaimingAgeAdjustment returns the multiplier applied to a claimant's
// Primary Insurance Amount for claiming at the given age instead of full
// retirement age (spec.md §10 supplemented feature, grounded in the
// teacher's wasm/social_security_calculator.go and CalculateSocialSecurityBenefit).
// fra is the full retirement age in years (67 for anyone born 1960+).
func ClaimingAgeAdjustment(claimAge, fra float64) float64 {
	if claimAge == fra {
		return 1.0
	}
	if claimAge < fra {
		monthsEarly := (fra - claimAge) * 12
		var reduction float64
		if monthsEarly <= 36 {
			reduction = monthsEarly * (5.0 / 9.0) / 100.0
		} else {
			first36 := 36.0 * (5.0 / 9.0) / 100.0
			reduction = first36 + (monthsEarly-36)*(5.0/12.0)/100.0
		}
		return 1.0 - reduction
	}
	effective := claimAge
	if effective > 70 {
		effective = 70
	}
	monthsDelayed := (effective - fra) * 12
	return 1.0 + monthsDelayed*(2.0/3.0)/100.0
}

// SurvivorBenefit returns the surviving spouse's Social Security benefit
// after the first death: the larger of the survivor's own benefit or the
// decedent's benefit, per SSA survivor rules (spec.md §10).
func SurvivorBenefit(survivorOwnBenefit, decedentBenefit float64) float64 {
	return math.Max(survivorOwnBenefit, decedentBenefit)
}
