package config

import "fmt"

// ValidationReport separates fatal parameter errors (which abort the batch
// before any simulation runs) from advisory warnings that are recorded but
// do not block execution — matching spec.md §7's error taxonomy.
type ValidationReport struct {
	Fatal    []string `json:"fatal,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r *ValidationReport) addFatal(format string, args ...interface{}) {
	r.Fatal = append(r.Fatal, fmt.Sprintf(format, args...))
}

func (r *ValidationReport) addWarning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// OK reports whether the report contains no fatal errors.
func (r ValidationReport) OK() bool { return len(r.Fatal) == 0 }

// Validate checks SimulationParams against the structural invariants listed
// in spec.md §3. It never mutates p; call ApplyDefaults first if you want
// defaults filled in before validation.
func Validate(p SimulationParams) ValidationReport {
	var report ValidationReport

	d := p.Demographics
	if d.CurrentAge < 0 || d.CurrentAge > 120 {
		report.addFatal("currentAge %.1f out of range [0,120]", d.CurrentAge)
	}
	if d.RetirementAge < d.CurrentAge {
		report.addFatal("retirementAge (%.1f) must be >= currentAge (%.1f)", d.RetirementAge, d.CurrentAge)
	}
	if d.LifeExpectancy < d.RetirementAge {
		report.addFatal("lifeExpectancy (%.1f) must be >= retirementAge (%.1f)", d.LifeExpectancy, d.RetirementAge)
	}
	if !d.FilingStatus.Valid() {
		report.addFatal("invalid filingStatus %q", d.FilingStatus)
	}
	if d.FilingStatus == FilingMarried && !d.HasSpouse {
		report.addFatal("filingStatus married requires hasSpouse=true")
	}
	if d.HasSpouse && d.FilingStatus != FilingMarried {
		report.addWarning("hasSpouse=true with non-married filingStatus %q", d.FilingStatus)
	}
	if !d.MortalityMode.Valid() {
		report.addFatal("mortalityMode must be explicitly set to %q or %q (no default)", MortalityStochastic, MortalityFixed93)
	}
	if d.BirthYear != 0 && d.SpouseBirthYear != 0 && d.HasSpouse {
		// birth years should be broadly consistent with stated ages; this is
		// advisory only since the caller may be modelling a specific year
		if d.SpouseBirthYear > d.BirthYear+60 || d.SpouseBirthYear < d.BirthYear-60 {
			report.addWarning("birthYear/spouseBirthYear gap (%d) is unusually large", abs(d.SpouseBirthYear-d.BirthYear))
		}
	}

	a := p.Assets
	if a.TaxDeferred < 0 || a.TaxFree < 0 || a.CapitalGains < 0 || a.CashEquivalents < 0 {
		report.addFatal("asset bucket components must be >= 0")
	}
	if !a.Consistent(1.0) {
		report.addFatal("totalAssets (%.2f) does not match sum of buckets (%.2f)", a.TotalAssets, a.Sum())
	}

	allocSum := p.Market.Allocation.Sum()
	if allocSum < 0.98 || allocSum > 1.02 {
		report.addFatal("asset allocation must sum to ~1, got %.4f", allocSum)
	}
	for name, v := range map[string]float64{
		"stocks": p.Market.Allocation.Stocks, "intlStocks": p.Market.Allocation.IntlStocks,
		"bonds": p.Market.Allocation.Bonds, "reits": p.Market.Allocation.REITs, "cash": p.Market.Allocation.Cash,
	} {
		if v < 0 || v > 1 {
			report.addFatal("allocation.%s (%.4f) must be in [0,1]", name, v)
		}
	}

	if p.Market.Volatility < 0 {
		report.addFatal("market volatility must be >= 0")
	}
	if !p.Market.Distribution.Valid() {
		report.addFatal("invalid distribution family %q", p.Market.Distribution)
	}

	if p.Strategy.WithdrawalRate < 0 || p.Strategy.WithdrawalRate > 0.25 {
		report.addFatal("withdrawalRate %.4f out of range [0, 0.25]", p.Strategy.WithdrawalRate)
	}
	if !p.Strategy.WithdrawalTiming.Valid() {
		report.addFatal("invalid withdrawalTiming %q", p.Strategy.WithdrawalTiming)
	}
	if p.Strategy.DiscretionaryShare < 0 || p.Strategy.DiscretionaryShare > 1 {
		report.addFatal("discretionaryShare %.4f out of range [0,1]", p.Strategy.DiscretionaryShare)
	}

	if p.RandomSeed == 0 {
		report.addWarning("randomSeed is 0; a fixed non-zero constant will be substituted")
	}

	return report
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
