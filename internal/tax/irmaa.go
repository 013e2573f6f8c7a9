package tax

import "github.com/areumfire/retirement-mc/internal/config"

// IRMAABracket is one Medicare Part B/D income-related surcharge tier.
type IRMAABracket struct {
	MAGIThreshold  float64
	PartBSurcharge float64
	PartDSurcharge float64
}

func defaultIRMAABrackets() map[config.FilingStatus][]IRMAABracket {
	single := []IRMAABracket{
		{0, 0, 0},
		{103000, 69.90, 13.70},
		{129000, 174.70, 35.30},
		{161000, 279.50, 57.00},
		{193000, 384.30, 78.60},
		{500000, 419.30, 85.80},
	}
	married := []IRMAABracket{
		{0, 0, 0},
		{206000, 69.90, 13.70},
		{258000, 174.70, 35.30},
		{322000, 279.50, 57.00},
		{386000, 384.30, 78.60},
		{750000, 419.30, 85.80},
	}
	return map[config.FilingStatus][]IRMAABracket{
		config.FilingSingle:          single,
		config.FilingHeadOfHousehold: single,
		config.FilingMarried:         married,
	}
}

// IRMAAResult is the combined monthly Medicare premium after the two-year
// MAGI lookback surcharge is applied (spec.md §4.6 step 11).
type IRMAAResult struct {
	MonthlyPartB float64
	MonthlyPartD float64
	MonthlyTotal float64
	AnnualTotal  float64
	Bracket      int // index into the filing status's bracket table that applied
}

// ApplyIRMAA computes the Medicare Part B/D premium for a Medicare-eligible
// household member, using MAGI from two tax years prior (spec.md §4.6 step
// 11, grounded in the teacher's CalculateIRMAAEnhanced). Callers under 65
// should not call this; there is no premium to compute.
func ApplyIRMAA(yc YearConfig, lookbackMAGI float64, filing config.FilingStatus) IRMAAResult {
	brackets := yc.IRMAABrackets[filing]
	partBSurcharge, partDSurcharge := 0.0, 0.0
	idx := 0
	for i := len(brackets) - 1; i >= 0; i-- {
		if lookbackMAGI >= brackets[i].MAGIThreshold {
			partBSurcharge = brackets[i].PartBSurcharge
			partDSurcharge = brackets[i].PartDSurcharge
			idx = i
			break
		}
	}
	monthlyB := yc.BasePartBPremium + partBSurcharge
	monthlyD := yc.BasePartDPremium + partDSurcharge
	return IRMAAResult{
		MonthlyPartB: monthlyB,
		MonthlyPartD: monthlyD,
		MonthlyTotal: monthlyB + monthlyD,
		AnnualTotal:  (monthlyB + monthlyD) * 12,
		Bracket:      idx,
	}
}
