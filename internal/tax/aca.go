package tax

import (
	"math"

	"github.com/areumfire/retirement-mc/internal/config"
)

// fplBasePerson and fplAdditionalPerson are the 2024 HHS
// 48-contiguous-states poverty guideline
// used to size the ACA subsidy sliding scale (spec.md §4.6 step 12).
const (
	fplBasePerson       = 15060
	fplAdditionalPerson = 5380
)

// FederalPovertyLevel returns the poverty line for a household of the given
// size (spec.md §4.6 step 12: "compute FPL for household size").
func FederalPovertyLevel(householdSize int) float64 {
	if householdSize < 1 {
		householdSize = 1
	}
	return fplBasePerson + fplAdditionalPerson*float64(householdSize-1)
}

// ptcRepaymentCap returns the filing-status-specific cap on PTC repayment
// for a household's income as a percentage of FPL (spec.md §4.6 step 12);
// above 400% FPL the ACA imposes no cap.
func ptcRepaymentCap(fplRatio float64, filing config.FilingStatus) float64 {
	single := filing != config.FilingMarried
	switch {
	case fplRatio < 2.0:
		if single {
			return 375
		}
		return 750
	case fplRatio < 3.0:
		if single {
			return 950
		}
		return 1900
	case fplRatio < 4.0:
		if single {
			return 1575
		}
		return 3150
	default:
		return math.Inf(1)
	}
}

// applicablePercentTable is the ACA's contribution-percentage schedule by
// income as a multiple of the federal poverty level (FPL), post-Inflation
// Reduction Act (spec.md §10 supplemented feature). Household contribution
// percentage rises linearly between anchor points; above 400% FPL there is
// no subsidy cliff under the IRA extension, capped at 8.5%.
var applicablePercentTable = []struct {
	fplRatio float64
	percent  float64
}{
	{1.50, 0.00}, {2.00, 0.02}, {2.50, 0.04}, {3.00, 0.06},
	{4.00, 0.085}, {999, 0.085},
}

// ApplicablePercent returns the household's expected contribution as a
// fraction of income for ACA premium tax credit purposes, given income as a
// ratio of the federal poverty level.
func ApplicablePercent(fplRatio float64) float64 {
	if fplRatio <= 1.50 {
		return 0.00
	}
	for i := 1; i < len(applicablePercentTable); i++ {
		lo, hi := applicablePercentTable[i-1], applicablePercentTable[i]
		if fplRatio <= hi.fplRatio {
			if hi.fplRatio == lo.fplRatio {
				return hi.percent
			}
			frac := (fplRatio - lo.fplRatio) / (hi.fplRatio - lo.fplRatio)
			return lo.percent + frac*(hi.percent-lo.percent)
		}
	}
	return 0.085
}

// PTCReconciliation is the result of reconciling advance premium tax credit
// payments against the household's actual MAGI at filing time (spec.md §4.6
// step 12).
type PTCReconciliation struct {
	ActualPTC       float64
	AdvancePTC      float64
	RepaymentOwed   float64 // positive means household owes money back
	AdditionalCredit float64 // positive means household receives more credit
}

// ReconcilePTC computes the actual premium tax credit the household was
// entitled to versus the advance payments already applied to premiums,
// capping any repayment at the filing-status-specific ACA cap (spec.md
// §4.6 step 12).
func ReconcilePTC(magi, fpl, benchmarkAnnualPremium, advancePTC float64, filing config.FilingStatus) PTCReconciliation {
	if fpl <= 0 {
		return PTCReconciliation{}
	}
	ratio := magi / fpl
	expectedContribution := magi * ApplicablePercent(ratio)
	actualPTC := math.Max(0, benchmarkAnnualPremium-expectedContribution)

	diff := actualPTC - advancePTC
	result := PTCReconciliation{ActualPTC: actualPTC, AdvancePTC: advancePTC}
	if diff < 0 {
		repayment := -diff
		if cap := ptcRepaymentCap(ratio, filing); repayment > cap {
			repayment = cap
		}
		result.RepaymentOwed = repayment
	} else {
		result.AdditionalCredit = diff
	}
	return result
}
