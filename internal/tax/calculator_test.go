package tax

import (
	"math"
	"testing"

	"github.com/areumfire/retirement-mc/internal/config"
)

func TestProgressiveZeroIncome(t *testing.T) {
	yc := DefaultYearConfig(2024)
	if got := Progressive(0, yc.FederalBrackets[config.FilingSingle]); got != 0 {
		t.Errorf("Progressive(0, ...) = %v, want 0", got)
	}
}

func TestProgressiveStacksTwoBrackets(t *testing.T) {
	brackets := []Bracket{{0, 10000, 0.10}, {10000, math.Inf(1), 0.20}}
	got := Progressive(15000, brackets)
	want := 10000*0.10 + 5000*0.20
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Progressive(15000, ...) = %v, want %v", got, want)
	}
}

func TestTaxableSocialSecurityBelowFirstThreshold(t *testing.T) {
	yc := DefaultYearConfig(2024)
	got := TaxableSocialSecurity(yc, config.FilingSingle, 10000, 20000)
	if got != 0 {
		t.Errorf("expected 0 taxable SS below first threshold, got %v", got)
	}
}

func TestTaxableSocialSecurityAboveSecondThreshold(t *testing.T) {
	yc := DefaultYearConfig(2024)
	got := TaxableSocialSecurity(yc, config.FilingSingle, 60000, 30000)
	maxTaxable := 30000 * 0.85
	if got <= 0 || got > maxTaxable {
		t.Errorf("taxable SS %v out of expected range (0, %v]", got, maxTaxable)
	}
}

func TestClaimingAgeAdjustmentAtFRA(t *testing.T) {
	if got := ClaimingAgeAdjustment(67, 67); got != 1.0 {
		t.Errorf("ClaimingAgeAdjustment(67,67) = %v, want 1.0", got)
	}
}

func TestClaimingAgeAdjustmentEarly62(t *testing.T) {
	got := ClaimingAgeAdjustment(62, 67)
	if got <= 0.65 || got >= 0.75 {
		t.Errorf("ClaimingAgeAdjustment(62,67) = %v, want in (0.65, 0.75)", got)
	}
}

func TestClaimingAgeAdjustmentDelayedTo70(t *testing.T) {
	got := ClaimingAgeAdjustment(70, 67)
	want := 1.0 + 36.0*(2.0/3.0)/100.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("ClaimingAgeAdjustment(70,67) = %v, want %v", got, want)
	}
}

func TestClaimingAgeAdjustmentClampsAt70(t *testing.T) {
	at70 := ClaimingAgeAdjustment(70, 67)
	at72 := ClaimingAgeAdjustment(72, 67)
	if at70 != at72 {
		t.Errorf("delayed credits should stop accruing past 70: at70=%v at72=%v", at70, at72)
	}
}

func TestIRMAANoSurchargeBelowThreshold(t *testing.T) {
	yc := DefaultYearConfig(2024)
	res := ApplyIRMAA(yc, 50000, config.FilingSingle)
	if res.MonthlyTotal != yc.BasePartBPremium+yc.BasePartDPremium {
		t.Errorf("expected base premium only, got %v", res.MonthlyTotal)
	}
}

func TestIRMAASurchargeAboveThreshold(t *testing.T) {
	yc := DefaultYearConfig(2024)
	res := ApplyIRMAA(yc, 600000, config.FilingSingle)
	if res.MonthlyTotal <= yc.BasePartBPremium+yc.BasePartDPremium {
		t.Errorf("expected surcharge above base premium, got %v", res.MonthlyTotal)
	}
}

func TestFICACapsSocialSecurityAtWageBase(t *testing.T) {
	yc := DefaultYearConfig(2024)
	res := FICA(yc, config.FilingSingle, yc.SocialSecurityWageBase*2)
	wantSS := yc.SocialSecurityWageBase * ficaSocialSecurityRate
	if math.Abs(res.SocialSecurity-wantSS) > 1e-6 {
		t.Errorf("SocialSecurity = %v, want %v", res.SocialSecurity, wantSS)
	}
}

func TestFICAAdditionalMedicareAboveThreshold(t *testing.T) {
	yc := DefaultYearConfig(2024)
	threshold := yc.AdditionalMedicareThreshold[config.FilingSingle]
	res := FICA(yc, config.FilingSingle, threshold+50000)
	want := 50000 * additionalMedicareRate
	if math.Abs(res.AdditionalMedicare-want) > 1e-6 {
		t.Errorf("AdditionalMedicare = %v, want %v", res.AdditionalMedicare, want)
	}
}

func TestStateTaxNoIncomeTaxState(t *testing.T) {
	states := DefaultStateConfigs()
	got := StateTax(states["TX"], config.FilingSingle, 200000, 50000)
	if got != 0 {
		t.Errorf("TX state tax = %v, want 0", got)
	}
}

func TestStateTaxCaliforniaProgressive(t *testing.T) {
	states := DefaultStateConfigs()
	got := StateTax(states["CA"], config.FilingSingle, 100000, 0)
	if got <= 0 {
		t.Errorf("CA state tax on $100k should be positive, got %v", got)
	}
}

func TestCalculatorEndToEndRetireeNY(t *testing.T) {
	yc := DefaultYearConfig(2024)
	states := DefaultStateConfigs()
	c := NewCalculator(yc, states)

	result := c.Calculate(Inputs{
		Filing:                 config.FilingSingle,
		State:                  "NY",
		Age:                    70,
		OrdinaryIncome:         40000,
		LongTermCapitalGains:   20000,
		SocialSecurityBenefits: 28000,
		NetInvestmentIncome:    20000,
		LookbackMAGI:           90000,
	})

	if result.TotalTax <= 0 {
		t.Errorf("expected positive total tax, got %v", result.TotalTax)
	}
	if result.TaxableSocialSecurity <= 0 {
		t.Errorf("expected some SS benefits taxable at this income level")
	}
	if result.IRMAA.MonthlyTotal <= 0 {
		t.Errorf("expected IRMAA premium to be computed for a 70-year-old")
	}
	if result.StateTax <= 0 {
		t.Errorf("expected positive NY state tax")
	}
}

func TestReconcilePTCRepayment(t *testing.T) {
	res := ReconcilePTC(60000, 20000, 12000, 10000, config.FilingSingle)
	if res.RepaymentOwed <= 0 {
		t.Errorf("advance credit (%v) exceeded actual entitlement (%v), expected repayment owed, got %v",
			res.AdvancePTC, res.ActualPTC, res.RepaymentOwed)
	}
	if res.AdditionalCredit != 0 {
		t.Errorf("expected no additional credit alongside repayment, got %v", res.AdditionalCredit)
	}
}

func TestReconcilePTCRepaymentCappedAbove400PercentFPLIsUncapped(t *testing.T) {
	// Well above 400% FPL, repayment is uncapped under current ACA rules.
	res := ReconcilePTC(200000, 20000, 12000, 12000, config.FilingSingle)
	if res.RepaymentOwed != 12000 {
		t.Errorf("expected full uncapped repayment of the advance credit, got %v", res.RepaymentOwed)
	}
}

func TestCalculatePTCReconciliationFeedsIntoTotalTax(t *testing.T) {
	calc := NewCalculator(DefaultYearConfig(2024), DefaultStateConfigs())
	withACA := calc.Calculate(Inputs{
		Filing: config.FilingSingle, State: "NONE", Age: 60, OrdinaryIncome: 40000,
		ACA: config.ACAEnrollment{Enrolled: true, HouseholdSize: 1, BenchmarkAnnual: 12000, AptcApplied: 12000},
	})
	without := calc.Calculate(Inputs{Filing: config.FilingSingle, State: "NONE", Age: 60, OrdinaryIncome: 40000})
	if withACA.TotalTax == without.TotalTax {
		t.Errorf("expected ACA reconciliation to change total tax, got %v both times", withACA.TotalTax)
	}
}

func TestApplicablePercentMonotonic(t *testing.T) {
	prev := 0.0
	for _, ratio := range []float64{1.0, 1.5, 2.0, 2.5, 3.0, 4.0, 5.0} {
		p := ApplicablePercent(ratio)
		if p < prev {
			t.Errorf("applicable percent should be non-decreasing in FPL ratio, got %v after %v", p, prev)
		}
		prev = p
	}
}
