package tax

import (
	"math"

	"github.com/areumfire/retirement-mc/internal/config"
)

// FICAResult breaks down Social Security, Medicare, and Additional Medicare
// withholding on wage or self-employment income (spec.md §4.6 step 7).
type FICAResult struct {
	SocialSecurity     float64
	Medicare           float64
	AdditionalMedicare float64
	Total              float64
}

// FICA computes FICA taxes on employment income, capping the Social
// Security portion at the year's wage base (grounded in the teacher's
// CalculateFICATaxes).
func FICA(yc YearConfig, filing config.FilingStatus, employmentIncome float64) FICAResult {
	ssIncome := math.Min(employmentIncome, yc.SocialSecurityWageBase)
	ss := ssIncome * ficaSocialSecurityRate
	medicare := employmentIncome * ficaMedicareRate

	threshold := yc.AdditionalMedicareThreshold[filing]
	additional := 0.0
	if employmentIncome > threshold {
		additional = (employmentIncome - threshold) * additionalMedicareRate
	}
	return FICAResult{
		SocialSecurity:     ss,
		Medicare:           medicare,
		AdditionalMedicare: additional,
		Total:              ss + medicare + additional,
	}
}

// NetInvestmentIncomeTax applies the 3.8% NIIT on the lesser of net
// investment income or the excess of MAGI over the filing status threshold
// (spec.md §4.6 step 10).
func NetInvestmentIncomeTax(filing config.FilingStatus, magi, netInvestmentIncome float64) float64 {
	if netInvestmentIncome <= 0 {
		return 0
	}
	threshold := niitThresholdSingle
	if filing == config.FilingMarried {
		threshold = niitThresholdMarried
	}
	excess := math.Max(0, magi-float64(threshold))
	base := math.Min(netInvestmentIncome, excess)
	return base * niitRate
}
