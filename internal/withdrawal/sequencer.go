package withdrawal

import "math"

// Buckets mirrors config.AssetBuckets without importing config, so this
// package stays a leaf dependency usable by both scenario and batch.
type Buckets struct {
	TaxDeferred     float64
	TaxFree         float64
	CapitalGains    float64
	CashEquivalents float64
}

// Sequence selects the order in which buckets are drawn down once the RMD
// (mandatory) and requested QCD are satisfied (spec.md §4.7 step 3,
// grounded in the teacher's WithdrawalSequence / ExecuteWithdrawal).
type Sequence int

const (
	SequenceTaxEfficient Sequence = iota // cash -> capital gains -> tax-deferred -> tax-free
	SequenceTaxDeferredFirst
)

// Request is one year's withdrawal need.
type Request struct {
	NetSpendingNeed float64 // after-tax amount the household must have in hand
	OwnerAge        int
	SpouseAge       float64
	SoleSpouseBeneficiary bool
	BirthYear       int     // determines the RMD start age (spec.md §4.7 step 1)
	QCDRequested    float64 // qualified charitable distribution to net against the RMD (spec.md §4.7 step 2)
	MaxIterations   int
	Damping         float64 // 0 < d <= 1; see Execute
}

// Result is the outcome of one year's withdrawal: how much came from each
// bucket, the RMD forced out of tax-deferred, the QCD amount excluded from
// taxable income, and the gross pre-tax amount that had to be withdrawn to
// net the requested spending amount.
type Result struct {
	RMDAmount          float64
	QCDAmount          float64
	FromCash           float64
	FromCapitalGains   float64
	FromTaxDeferred    float64
	FromTaxFree        float64
	GrossWithdrawn     float64
	TaxOwed            float64
	Iterations         int
	Converged          bool
	RemainingShortfall float64 // unmet need if buckets ran dry
}

// TaxOnWithdrawal estimates the incremental tax owed on a withdrawal of the
// given composition; batch/scenario callers pass a closure wired to
// internal/tax.Calculator so this package never imports internal/tax
// (avoids a dependency cycle, since tax inputs are themselves derived from
// per-year scenario state).
type TaxOnWithdrawal func(fromTaxDeferred, fromCapitalGains float64) float64

// Execute withdraws from buckets in sequence order to satisfy rmd first,
// then draws down buckets to cover NetSpendingNeed, iteratively grossing up
// for the incremental tax owed on taxable withdrawals until the post-tax
// proceeds converge on the requested net need (spec.md §4.7 step 4). The
// fixed point is damped to avoid oscillation when marginal rates jump
// across a bracket boundary near the target withdrawal size.
func Execute(req Request, buckets *Buckets, seq Sequence, taxFn TaxOnWithdrawal) Result {
	rmd := RMD(req.OwnerAge, req.SpouseAge, req.SoleSpouseBeneficiary, buckets.TaxDeferred, req.BirthYear)
	var result Result
	result.RMDAmount = rmd

	qcd := ApplyQCD(rmd, req.QCDRequested)
	result.QCDAmount = qcd.QCDAmount
	if qcd.QCDAmount > 0 {
		draw := math.Min(qcd.QCDAmount, buckets.TaxDeferred)
		buckets.TaxDeferred -= draw
	}

	taxableRMD := qcd.TaxableRMD
	if taxableRMD > 0 {
		draw := math.Min(taxableRMD, buckets.TaxDeferred)
		buckets.TaxDeferred -= draw
		result.FromTaxDeferred += draw
		result.GrossWithdrawn += draw
	}

	maxIter := req.MaxIterations
	if maxIter <= 0 {
		maxIter = 20
	}
	damping := req.Damping
	if damping <= 0 || damping > 1 {
		damping = 0.6
	}

	// The QCD amount never lands as household cash or taxable income; only
	// the taxable remainder of the RMD offsets the spending need.
	netFromRMD := taxableRMD - taxFn(taxableRMD, 0)
	remainingNeed := req.NetSpendingNeed - math.Max(0, netFromRMD)

	grossEstimate := remainingNeed
	var converged bool
	var iter int
	for iter = 0; iter < maxIter; iter++ {
		composition := allocate(grossEstimate, buckets, seq)
		tax := taxFn(composition.fromTaxDeferred, composition.fromCapitalGains)
		net := grossEstimate - tax
		diff := remainingNeed - net
		if math.Abs(diff) < 1.0 {
			converged = true
			break
		}
		grossEstimate += diff * damping
		if grossEstimate < 0 {
			grossEstimate = 0
		}
	}

	final := allocate(grossEstimate, buckets, seq)
	buckets.CashEquivalents -= final.fromCash
	buckets.CapitalGains -= final.fromCapitalGains
	buckets.TaxDeferred -= final.fromTaxDeferred
	buckets.TaxFree -= final.fromTaxFree

	result.FromCash += final.fromCash
	result.FromCapitalGains += final.fromCapitalGains
	result.FromTaxDeferred += final.fromTaxDeferred
	result.FromTaxFree += final.fromTaxFree
	result.GrossWithdrawn += final.fromCash + final.fromCapitalGains + final.fromTaxDeferred + final.fromTaxFree
	result.TaxOwed = taxFn(result.FromTaxDeferred, result.FromCapitalGains)
	result.Iterations = iter
	result.Converged = converged

	supplied := final.fromCash + final.fromCapitalGains + final.fromTaxDeferred + final.fromTaxFree
	if supplied+1e-6 < grossEstimate {
		result.RemainingShortfall = grossEstimate - supplied
	}
	return result
}

type allocation struct {
	fromCash, fromCapitalGains, fromTaxDeferred, fromTaxFree float64
}

// allocate draws `need` from a read-only snapshot of buckets in sequence
// order without mutating buckets; the caller applies the result once the
// gross-up loop has converged.
func allocate(need float64, buckets *Buckets, seq Sequence) allocation {
	if need <= 0 {
		return allocation{}
	}
	var order []*float64
	snapshot := *buckets
	switch seq {
	case SequenceTaxDeferredFirst:
		order = []*float64{&snapshot.CashEquivalents, &snapshot.TaxDeferred, &snapshot.CapitalGains, &snapshot.TaxFree}
	default:
		order = []*float64{&snapshot.CashEquivalents, &snapshot.CapitalGains, &snapshot.TaxDeferred, &snapshot.TaxFree}
	}

	var alloc allocation
	remaining := need
	for _, bucket := range order {
		if remaining <= 0 {
			break
		}
		draw := math.Min(remaining, math.Max(0, *bucket))
		*bucket -= draw
		remaining -= draw
		switch bucket {
		case &snapshot.CashEquivalents:
			alloc.fromCash += draw
		case &snapshot.CapitalGains:
			alloc.fromCapitalGains += draw
		case &snapshot.TaxDeferred:
			alloc.fromTaxDeferred += draw
		case &snapshot.TaxFree:
			alloc.fromTaxFree += draw
		}
	}
	return alloc
}
