// Package tax implements the federal and state tax kernel (spec.md §4.6):
// progressive ordinary-income brackets, preferential LTCG/qualified-dividend
// rates, FICA and Additional Medicare, NIIT, AMT, IRMAA with a two-year MAGI
// lookback, Social Security provisional-income taxation, ACA premium tax
// credit reconciliation, and a state overlay, stacked in the order spec.md
// §4.6 prescribes.
package tax

import (
	"math"

	"github.com/areumfire/retirement-mc/internal/config"
)

// Inputs is one year's gross-income picture fed into the tax kernel.
type Inputs struct {
	Filing               config.FilingStatus
	State                string
	Age                  float64
	SpouseAge            float64
	OrdinaryIncome       float64 // wages, pensions, taxable IRA/401k withdrawals, part-time income
	QualifiedDividends   float64
	LongTermCapitalGains float64
	ShortTermCapitalGains float64
	TaxExemptInterest    float64
	SocialSecurityBenefits float64
	NetInvestmentIncome  float64 // for NIIT; typically dividends + realized gains + interest
	LookbackMAGI         float64 // MAGI from two years prior, for IRMAA
	Itemized             config.ItemizationOptions
	AMTPreferences       float64
	ACA                  config.ACAEnrollment // pre-Medicare marketplace enrollment, for PTC reconciliation
}

// Result is the full stack of tax liabilities computed for one year
// (spec.md §4.6 output).
type Result struct {
	TaxableSocialSecurity float64
	AdjustedGrossIncome   float64
	TaxableIncome         float64
	FederalOrdinaryTax    float64
	FederalLTCGTax        float64
	AMT                   float64
	FICA                  FICAResult
	NIIT                  float64
	IRMAA                 IRMAAResult
	ACAReconciliation     PTCReconciliation
	StateTax              float64
	TotalTax              float64
	EffectiveRate         float64
	MarginalRate          float64
}

// Calculator evaluates Inputs into Result using a fixed YearConfig and state
// table (spec.md §4.6, §6 collaborators #4 and #5).
type Calculator struct {
	Year        YearConfig
	StateTables map[string]StateConfig
}

// NewCalculator builds a Calculator from the given year config and state
// table; pass DefaultYearConfig/DefaultStateConfigs when no external
// providers are wired in.
func NewCalculator(yc YearConfig, states map[string]StateConfig) *Calculator {
	return &Calculator{Year: yc, StateTables: states}
}

// Calculate runs the full stack in the order spec.md §4.6 prescribes:
// taxable SS -> AGI -> itemized/standard deduction -> federal ordinary tax
// -> LTCG/QDI stacked on top -> AMT floor -> FICA -> NIIT -> IRMAA -> state.
func (c *Calculator) Calculate(in Inputs) Result {
	itemizedTotal := in.Itemized.SaltPaid + in.Itemized.MortgageInterest +
		in.Itemized.CharitableGifts + in.Itemized.MedicalExpenses + in.Itemized.OtherItemized
	if in.Itemized.SaltPaid > 10000 {
		itemizedTotal -= in.Itemized.SaltPaid - 10000 // SALT cap
	}

	otherIncomeForSS := in.OrdinaryIncome + in.QualifiedDividends + in.LongTermCapitalGains +
		in.ShortTermCapitalGains + in.TaxExemptInterest
	taxableSS := TaxableSocialSecurity(c.Year, in.Filing, otherIncomeForSS, in.SocialSecurityBenefits)

	agi := in.OrdinaryIncome + in.QualifiedDividends + in.LongTermCapitalGains +
		in.ShortTermCapitalGains + taxableSS

	deduction := c.Year.StandardDeduction[in.Filing]
	if in.Itemized.ForceItemized || itemizedTotal > deduction {
		deduction = itemizedTotal
	}

	ordinaryTaxableIncome := math.Max(0, agi-in.QualifiedDividends-in.LongTermCapitalGains-deduction)
	federalOrdinary := Progressive(ordinaryTaxableIncome, c.Year.FederalBrackets[in.Filing])

	preferentialIncome := in.QualifiedDividends + in.LongTermCapitalGains
	ltcgBrackets := c.Year.LTCGBrackets[in.Filing]
	ltcgTax := 0.0
	remaining := preferentialIncome
	stackedFloor := ordinaryTaxableIncome
	for _, b := range ltcgBrackets {
		if remaining <= 0 {
			break
		}
		capacity := b.IncomeMax - math.Max(b.IncomeMin, stackedFloor)
		if capacity <= 0 {
			continue
		}
		taxableHere := math.Min(remaining, capacity)
		ltcgTax += taxableHere * b.Rate
		remaining -= taxableHere
		stackedFloor += taxableHere
	}

	amt := AlternativeMinimumTax(c.Year, in.Filing, ordinaryTaxableIncome+deduction, in.AMTPreferences)
	regularTax := federalOrdinary + ltcgTax
	if amt < regularTax {
		amt = 0
	} else {
		amt = amt - regularTax
	}

	fica := FICA(c.Year, in.Filing, in.OrdinaryIncome)
	niit := NetInvestmentIncomeTax(in.Filing, agi, in.NetInvestmentIncome)

	var irmaa IRMAAResult
	if in.Age >= 65 || in.SpouseAge >= 65 {
		irmaa = ApplyIRMAA(c.Year, in.LookbackMAGI, in.Filing)
	}

	stateCfg, ok := c.StateTables[in.State]
	if !ok {
		stateCfg = noTax(in.State)
	}
	stateTax := StateTax(stateCfg, in.Filing, ordinaryTaxableIncome, preferentialIncome)

	var ptc PTCReconciliation
	if in.ACA.Enrolled {
		fpl := FederalPovertyLevel(in.ACA.HouseholdSize)
		ptc = ReconcilePTC(agi, fpl, in.ACA.BenchmarkAnnual, in.ACA.AptcApplied, in.Filing)
	}

	totalTax := federalOrdinary + ltcgTax + amt + niit + stateTax + ptc.RepaymentOwed - ptc.AdditionalCredit
	taxableIncomeTotal := ordinaryTaxableIncome + preferentialIncome
	effectiveRate := 0.0
	if agi > 0 {
		effectiveRate = totalTax / agi
	}
	marginalRate := marginalRateFor(ordinaryTaxableIncome, c.Year.FederalBrackets[in.Filing])

	return Result{
		TaxableSocialSecurity: taxableSS,
		AdjustedGrossIncome:   agi,
		TaxableIncome:         taxableIncomeTotal,
		FederalOrdinaryTax:    federalOrdinary,
		FederalLTCGTax:        ltcgTax,
		AMT:                   amt,
		FICA:                  fica,
		NIIT:                  niit,
		IRMAA:                 irmaa,
		ACAReconciliation:     ptc,
		StateTax:              stateTax,
		TotalTax:              totalTax,
		EffectiveRate:         effectiveRate,
		MarginalRate:          marginalRate,
	}
}

func marginalRateFor(income float64, brackets []Bracket) float64 {
	for _, b := range brackets {
		if income >= b.IncomeMin && (income < b.IncomeMax || math.IsInf(b.IncomeMax, 1)) {
			return b.Rate
		}
	}
	if len(brackets) > 0 {
		return brackets[len(brackets)-1].Rate
	}
	return 0
}
