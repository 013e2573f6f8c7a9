package withdrawal

import "testing"

func TestRMDZeroBeforeStartAge(t *testing.T) {
	if got := RMD(72, 0, false, 500000, 1955); got != 0 {
		t.Errorf("RMD at 72 for a 1955 birth year (start age 73) = %v, want 0", got)
	}
}

func TestRMDAtStartAge(t *testing.T) {
	got := RMD(73, 0, false, 500000, 1955)
	want := 500000 / 26.5
	if diff := got - want; diff > 0.01 || diff < -0.01 {
		t.Errorf("RMD(73, ..., 500000) = %v, want %v", got, want)
	}
}

func TestRMDAbove120ClampsDivisor(t *testing.T) {
	got := RMD(125, 0, false, 100000, 1955)
	want := 50000.0
	if got != want {
		t.Errorf("RMD(125) = %v, want %v", got, want)
	}
}

func TestDivisorJointLifeSubstitutionForYoungSpouse(t *testing.T) {
	standard := Divisor(75, 60, false, 1955)
	joint := Divisor(75, 60, true, 1955)
	if joint <= standard {
		t.Errorf("joint-life divisor (%v) should exceed standard (%v) for a spouse >10 years younger", joint, standard)
	}
}

func TestDivisorJointLifeNoAdjustmentForSmallGap(t *testing.T) {
	standard := Divisor(75, 70, false, 1955)
	joint := Divisor(75, 70, true, 1955)
	if joint != standard {
		t.Errorf("gap <=10 years should not trigger joint-life substitution: standard=%v joint=%v", standard, joint)
	}
}

func TestRMDStartAgeBirthYearTiers(t *testing.T) {
	cases := []struct {
		birthYear int
		want      int
	}{
		{1949, 72},
		{1950, 72},
		{1951, 73},
		{1959, 73},
		{1960, 75},
		{1970, 75},
		{0, 73},
	}
	for _, c := range cases {
		if got := RMDStartAge(c.birthYear); got != c.want {
			t.Errorf("RMDStartAge(%d) = %d, want %d", c.birthYear, got, c.want)
		}
	}
}

func TestRMDUsesBirthYearStartAgeNotFlat73(t *testing.T) {
	// A 1962 birth year does not owe an RMD at 73; the start age is 75.
	if got := RMD(73, 0, false, 500000, 1962); got != 0 {
		t.Errorf("RMD at 73 for a 1960+ birth year should be 0 until age 75, got %v", got)
	}
	if got := RMD(75, 0, false, 500000, 1962); got <= 0 {
		t.Errorf("RMD at 75 for a 1960+ birth year should be mandatory, got %v", got)
	}
	// A 1948 birth year owes an RMD starting at 72, not 73.
	if got := RMD(72, 0, false, 500000, 1948); got <= 0 {
		t.Errorf("RMD at 72 for a pre-1951 birth year should be mandatory, got %v", got)
	}
}

func TestApplyQCDFullySatisfiesSmallRMD(t *testing.T) {
	res := ApplyQCD(5000, 5000)
	if res.TaxableRMD != 0 {
		t.Errorf("QCD covering the entire RMD should leave 0 taxable, got %v", res.TaxableRMD)
	}
}

func TestApplyQCDCapsAtLimit(t *testing.T) {
	res := ApplyQCD(200000, 200000)
	if res.QCDAmount != qcdAnnualLimit {
		t.Errorf("QCD should cap at the annual limit %v, got %v", qcdAnnualLimit, res.QCDAmount)
	}
}

func noTax(fromTaxDeferred, fromCapitalGains float64) float64 { return 0 }

func flatRateTax(rate float64) TaxOnWithdrawal {
	return func(fromTaxDeferred, fromCapitalGains float64) float64 {
		return (fromTaxDeferred + fromCapitalGains) * rate
	}
}

func TestExecuteDrawsCashFirst(t *testing.T) {
	buckets := &Buckets{CashEquivalents: 50000, CapitalGains: 100000, TaxDeferred: 100000, TaxFree: 100000}
	result := Execute(Request{NetSpendingNeed: 20000, OwnerAge: 65}, buckets, SequenceTaxEfficient, noTax)
	if result.FromCash != 20000 {
		t.Errorf("expected cash-first draw of 20000, got %v", result.FromCash)
	}
	if result.FromCapitalGains != 0 || result.FromTaxDeferred != 0 {
		t.Errorf("should not touch other buckets while cash covers the need")
	}
}

func TestExecuteGrossesUpForTax(t *testing.T) {
	buckets := &Buckets{CashEquivalents: 0, CapitalGains: 0, TaxDeferred: 200000, TaxFree: 0}
	result := Execute(Request{NetSpendingNeed: 40000, OwnerAge: 65}, buckets, SequenceTaxEfficient, flatRateTax(0.20))
	if !result.Converged {
		t.Errorf("expected gross-up to converge")
	}
	net := result.GrossWithdrawn - result.TaxOwed
	if diff := net - 40000; diff > 1.5 || diff < -1.5 {
		t.Errorf("net proceeds = %v, want ~40000 (gross=%v tax=%v)", net, result.GrossWithdrawn, result.TaxOwed)
	}
}

func TestExecuteRMDForcedEvenWithoutSpendingNeed(t *testing.T) {
	buckets := &Buckets{TaxDeferred: 500000}
	result := Execute(Request{NetSpendingNeed: 0, OwnerAge: 75}, buckets, SequenceTaxEfficient, noTax)
	if result.RMDAmount <= 0 {
		t.Errorf("expected a mandatory RMD at age 75 regardless of spending need")
	}
	if result.FromTaxDeferred < result.RMDAmount {
		t.Errorf("RMD amount should always be withdrawn from tax-deferred")
	}
}

func TestExecuteQCDExcludesRMDFromTaxableIncome(t *testing.T) {
	buckets := &Buckets{TaxDeferred: 500000}
	result := Execute(Request{NetSpendingNeed: 0, OwnerAge: 75, QCDRequested: 1000000}, buckets, SequenceTaxEfficient, flatRateTax(0.20))
	if result.QCDAmount != result.RMDAmount {
		t.Errorf("a QCD request exceeding the RMD should cap at the RMD (%v), got %v", result.RMDAmount, result.QCDAmount)
	}
	if result.TaxOwed != 0 {
		t.Errorf("a fully-QCD'd RMD with no other withdrawal should owe no tax, got %v", result.TaxOwed)
	}
}

func TestExecuteShortfallWhenBucketsExhausted(t *testing.T) {
	buckets := &Buckets{CashEquivalents: 1000}
	result := Execute(Request{NetSpendingNeed: 50000, OwnerAge: 65}, buckets, SequenceTaxEfficient, noTax)
	if result.RemainingShortfall <= 0 {
		t.Errorf("expected a shortfall when all buckets are exhausted, got withdrawn=%v", result.GrossWithdrawn)
	}
}
