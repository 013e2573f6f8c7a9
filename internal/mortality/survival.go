// Package mortality implements the stochastic and fixed-horizon death-age
// samplers, couple survivorship correlation, and long-term-care episode
// modeling (spec.md §4.4-4.5).
package mortality

import (
	"math"

	"github.com/areumfire/retirement-mc/internal/config"
	"github.com/areumfire/retirement-mc/internal/rng"
)

// baseAnnualMortality is an SSA-style simplified period life table: the
// probability of death within a year at a given age, before the health
// multiplier is applied (spec.md §4.4 step 1, grounded in the teacher's
// actuarial constants scattered across long_term_care_calculator.go and
// domain_types.go mortality notes).
var baseAnnualMortality = map[int]float64{
	60: 0.0090, 65: 0.0130, 70: 0.0190, 75: 0.0300, 80: 0.0490,
	85: 0.0820, 90: 0.1400, 95: 0.2200, 100: 0.3300, 105: 0.4500, 110: 0.6000,
}

// coupleCorrelation is the "broken heart" correlation between spouses'
// mortality draws: surviving spouses face elevated mortality risk in the
// period after a first death, and shared-environment/lifestyle factors
// correlate joint survival generally (spec.md §4.4 step 4, Open Question
// resolved in favor of a fixed correlation coefficient).
const coupleCorrelation = 0.4

func annualMortalityRate(age int, health config.HealthStatus) float64 {
	rate := interpolateRate(age)
	mult, err := config.HealthMortalityMultiplier(health)
	if err != nil {
		mult = 1.0
	}
	rate *= mult
	if rate > 0.95 {
		rate = 0.95
	}
	return rate
}

func interpolateRate(age int) float64 {
	if age <= 60 {
		return baseAnnualMortality[60]
	}
	if age >= 110 {
		return baseAnnualMortality[110]
	}
	lo := (age / 5) * 5
	hi := lo + 5
	rLo, okLo := baseAnnualMortality[lo]
	rHi, okHi := baseAnnualMortality[hi]
	if !okLo || !okHi {
		return baseAnnualMortality[lo]
	}
	frac := float64(age-lo) / 5.0
	return rLo + frac*(rHi-rLo)
}

// SampleDeathAge draws a single death age via sequential annual Bernoulli
// mortality trials starting from currentAge, capped at 115 (spec.md §4.4
// step 1). r should be a sub-stream derived with a per-person label so the
// two spouses' draws can be correlated deliberately rather than by accident.
func SampleDeathAge(r rng.RNG, currentAge int, health config.HealthStatus) int {
	const maxAge = 115
	for age := currentAge; age < maxAge; age++ {
		if r.Next() < annualMortalityRate(age, health) {
			return age
		}
	}
	return maxAge
}

// SampleCoupleDeathAges draws both spouses' death ages with the fixed
// couple correlation applied via a shared systemic shock blended with each
// spouse's idiosyncratic draw (spec.md §4.4 step 4). Correlation is induced
// by mixing a shared uniform stream into both trials' thresholds: higher
// correlation makes the pair's relative longevity more alike without
// collapsing them to the same draw.
func SampleCoupleDeathAges(r rng.RNG, ageA, ageB int, healthA, healthB config.HealthStatus) (deathAgeA, deathAgeB int) {
	shared := r.Derive("couple-shared", 0)
	idioA := r.Derive("couple-idio-a", 0)
	idioB := r.Derive("couple-idio-b", 0)

	const maxAge = 115
	deathAgeA = maxAge
	for age := ageA; age < maxAge; age++ {
		u := coupleCorrelation*shared.Next() + (1-coupleCorrelation)*idioA.Next()
		if u < annualMortalityRate(age, healthA) {
			deathAgeA = age
			break
		}
	}
	deathAgeB = maxAge
	for age := ageB; age < maxAge; age++ {
		u := coupleCorrelation*shared.Next() + (1-coupleCorrelation)*idioB.Next()
		if u < annualMortalityRate(age, healthB) {
			deathAgeB = age
			break
		}
	}
	return deathAgeA, deathAgeB
}

// Three-bucket offsets (years) applied to a base life expectancy (spec.md
// §4.4 step 2): 25% of draws land early, 50% cluster near the base, 25% run
// long. Distinct from annualMortalityRate's year-by-year hazard trials —
// this samples a single realized horizon once per scenario rather than
// walking a Bernoulli process age by age.
const (
	earlyOffsetLow, earlyOffsetHigh = -8, -3
	medianOffsetLow, medianOffsetHigh = -2, 2
	longOffsetLow, longOffsetHigh = 3, 7
)

// sampleBucketOffset maps a bucket-selection uniform and an independent
// within-bucket uniform to a signed year offset from the base life
// expectancy.
func sampleBucketOffset(bucketU, offsetU float64) float64 {
	switch {
	case bucketU < 0.25:
		return earlyOffsetLow + offsetU*(earlyOffsetHigh-earlyOffsetLow)
	case bucketU < 0.75:
		return medianOffsetLow + offsetU*(medianOffsetHigh-medianOffsetLow)
	default:
		return longOffsetLow + offsetU*(longOffsetHigh-longOffsetLow)
	}
}

// clampLifeExpectancy enforces the [max(currentAge+1, 70), 105] bound
// (spec.md §4.4 step 2).
func clampLifeExpectancy(le float64, currentAge int) float64 {
	min := math.Max(float64(currentAge+1), 70)
	if le < min {
		le = min
	}
	if le > 105 {
		le = 105
	}
	return le
}

// SampleLifeExpectancyBucketed draws a single realized life expectancy from
// the three-bucket model around baseLifeExpectancy (spec.md §4.4 step 2).
// This determines the scenario's stochastic horizon; it is independent of
// SampleDeathAge's annual hazard trials, which determine the death event
// itself.
func SampleLifeExpectancyBucketed(r rng.RNG, baseLifeExpectancy float64, currentAge int) float64 {
	offset := sampleBucketOffset(r.Next(), r.Next())
	return clampLifeExpectancy(baseLifeExpectancy+offset, currentAge)
}

// SampleCoupleLifeExpectancyBucketed draws both spouses' realized life
// expectancies with the bucket selection correlated at coupleCorrelation
// (spec.md §4.4 step 2: "generate two correlated uniforms with correlation
// 0.4 and map each to a life expectancy"). The within-bucket offset draw
// stays idiosyncratic per spouse.
func SampleCoupleLifeExpectancyBucketed(r rng.RNG, baseA, baseB float64, currentAgeA, currentAgeB int) (leA, leB float64) {
	shared := r.Derive("life-expectancy-shared", 0)
	idioA := r.Derive("life-expectancy-idio-a", 0)
	idioB := r.Derive("life-expectancy-idio-b", 0)

	sharedU := shared.Next()
	uA := coupleCorrelation*sharedU + (1-coupleCorrelation)*idioA.Next()
	uB := coupleCorrelation*sharedU + (1-coupleCorrelation)*idioB.Next()

	leA = clampLifeExpectancy(baseA+sampleBucketOffset(uA, idioA.Next()), currentAgeA)
	leB = clampLifeExpectancy(baseB+sampleBucketOffset(uB, idioB.Next()), currentAgeB)
	return leA, leB
}

// FixedHorizonAge is the deterministic override used when
// MortalityMode is fixed_93 (spec.md §4.4, Open Question #1): every
// scenario runs to exactly this age regardless of health status, isolating
// sequence-of-returns risk from longevity risk.
const FixedHorizonAge = 93

// ResolveDeathAge dispatches on MortalityMode: stochastic draws a death age
// from the survival table, fixed_93 always returns FixedHorizonAge. Callers
// must pass an explicit mode; config.Validate rejects an empty one.
func ResolveDeathAge(r rng.RNG, mode config.MortalityMode, currentAge int, health config.HealthStatus) int {
	if mode == config.MortalityFixed93 {
		return FixedHorizonAge
	}
	return SampleDeathAge(r, currentAge, health)
}

// SurvivorExpenseAdjustment scales household spending after the first
// spouse's death: essential expenses drop less than proportionally (shared
// housing costs persist) while discretionary expenses scale down more
// (spec.md §4.4 step 5).
func SurvivorExpenseAdjustment(essential, discretionary float64) (newEssential, newDiscretionary float64) {
	return essential * 0.75, discretionary * 0.60
}

// SurvivorIncomeFloor clamps a surviving spouse's income at zero, guarding
// against negative results from upstream rounding. It does not apply the
// Social Security larger-of-the-two-benefits survivor rule; that rule is
// internal/tax's SurvivorBenefit.
func SurvivorIncomeFloor(income float64) float64 {
	return math.Max(0, income)
}
