package mortality

import (
	"math"

	"github.com/areumfire/retirement-mc/internal/config"
	"github.com/areumfire/retirement-mc/internal/rng"
)

// needCareProbability is the cumulative-by-age probability of ever needing
// long-term care, sampled as an annual incidence curve below (spec.md §4.5
// step 1, grounded in the teacher's long_term_care_calculator.go
// initializeProbabilities).
var needCareProbability = map[int]float64{
	65: 0.35, 70: 0.45, 75: 0.55, 80: 0.70, 85: 0.85, 90: 0.95,
}

// annualCostByLevel is the 2024-basis national-average annual cost for
// each LTC care setting (grounded in the teacher's LongTermCareCosts
// header comment).
var annualCostByLevel = map[config.CareType]float64{
	config.CareHome:     75504,
	config.CareAssisted:  64200,
	config.CareNursing:  116800,
	config.CareMemory:   105000,
}

// healthcareInflation is the LTC-specific cost escalation rate, distinct
// from general CPI inflation (spec.md §4.5 step 3).
const healthcareInflation = 0.05

func incidenceProbability(age int) float64 {
	if age < 65 {
		return 0
	}
	if age >= 90 {
		return needCareProbability[90]
	}
	lo := (age / 5) * 5
	hi := lo + 5
	pLo, okLo := needCareProbability[lo]
	pHi, okHi := needCareProbability[hi]
	if !okLo {
		pLo = 0
	}
	if !okHi {
		pHi = pLo
	}
	frac := float64(age-lo) / 5.0
	return pLo + frac*(pHi-pLo)
}

// annualIncidenceRate converts the cumulative-by-age probability curve into
// a per-year hazard rate so episode onset can be sampled year over year
// instead of once at age 65 (spec.md §4.5 step 1).
func annualIncidenceRate(age int) float64 {
	const observationWindow = 25.0 // ages 65-90
	p := incidenceProbability(age)
	if p <= 0 {
		return 0
	}
	return 1 - math.Pow(1-p, 1.0/observationWindow)
}

// Episode is one sampled long-term-care need.
type Episode struct {
	Occurred     bool
	OnsetAge     int
	CareType     config.CareType
	DurationYears float64
	AnnualCostAtOnset float64
}

// careTypeWeights are relative likelihoods among care settings once an
// episode occurs; nursing/memory care is rarer but far more costly than
// home care (spec.md §4.5 step 2).
var careTypeOrder = []config.CareType{config.CareHome, config.CareAssisted, config.CareNursing, config.CareMemory}
var careTypeWeights = []float64{0.45, 0.25, 0.20, 0.10}

// SampleEpisode draws whether, and what kind of, an LTC episode begins in
// one year of the scenario, given the household member's current age
// (spec.md §4.5 step 1). r should be a sub-stream derived with a per-person
// "ltc" label.
func SampleEpisode(r rng.RNG, age int, costOfLivingFactor float64) Episode {
	rate := annualIncidenceRate(age)
	if r.Next() >= rate {
		return Episode{}
	}

	u := r.Next()
	cum := 0.0
	careType := careTypeOrder[len(careTypeOrder)-1]
	for i, w := range careTypeWeights {
		cum += w
		if u < cum {
			careType = careTypeOrder[i]
			break
		}
	}

	duration := sampleDuration(r, careType)
	annualCost := annualCostByLevel[careType] * costOfLivingFactor

	return Episode{
		Occurred:      true,
		OnsetAge:      age,
		CareType:      careType,
		DurationYears: duration,
		AnnualCostAtOnset: annualCost,
	}
}

// sampleDuration draws an episode length around the care type's typical
// duration using an exponential-like tail (spec.md §4.5 step 2, grounded
// in the teacher's EstimateCareNeedDuration base-duration constants).
func sampleDuration(r rng.RNG, careType config.CareType) float64 {
	base := 3.0
	switch careType {
	case config.CareNursing, config.CareMemory:
		base = 2.5
	case config.CareHome:
		base = 2.0
	}
	u := math.Max(1e-6, r.Next())
	duration := -base * math.Log(u)
	if duration < 0.25 {
		duration = 0.25
	}
	if duration > 10 {
		duration = 10
	}
	return duration
}

// ProjectedAnnualCost projects an episode's annual cost forward from onset
// using LTC-specific cost inflation (spec.md §4.5 step 3).
func ProjectedAnnualCost(episode Episode, yearsSinceOnset int) float64 {
	return episode.AnnualCostAtOnset * math.Pow(1+healthcareInflation, float64(yearsSinceOnset))
}

// InsuranceNet nets an LTC policy's daily benefit against the episode's
// actual annual cost, after the elimination period has been satisfied
// (spec.md §4.5 step 4).
func InsuranceNet(policy config.LTCPolicy, annualCost float64, daysIntoEpisode int) (outOfPocket, insurancePaid float64) {
	if !policy.Enabled || daysIntoEpisode < policy.EliminationDays {
		return annualCost, 0
	}
	dailyBenefit := policy.DailyBenefit
	annualBenefit := dailyBenefit * 365
	insurancePaid = math.Min(annualCost, annualBenefit)
	outOfPocket = annualCost - insurancePaid
	return outOfPocket, insurancePaid
}
