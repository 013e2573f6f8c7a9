package mortality

import (
	"testing"

	"github.com/areumfire/retirement-mc/internal/config"
	"github.com/areumfire/retirement-mc/internal/rng"
)

func TestSampleDeathAgeWithinBounds(t *testing.T) {
	r := rng.NewStream(1)
	age := SampleDeathAge(r, 65, config.HealthGood)
	if age < 65 || age > 115 {
		t.Errorf("death age %d out of expected range [65,115]", age)
	}
}

func TestSampleDeathAgePoorHealthDiesEarlierOnAverage(t *testing.T) {
	const trials = 300
	var goodSum, poorSum int
	for i := 0; i < trials; i++ {
		goodSum += SampleDeathAge(rng.NewStream(int64(i)), 65, config.HealthExcellent)
		poorSum += SampleDeathAge(rng.NewStream(int64(i)+100000), 65, config.HealthPoor)
	}
	if poorSum >= goodSum {
		t.Errorf("expected poor-health average death age (%v) below excellent-health average (%v)",
			float64(poorSum)/trials, float64(goodSum)/trials)
	}
}

func TestResolveDeathAgeFixed93(t *testing.T) {
	r := rng.NewStream(1)
	if age := ResolveDeathAge(r, config.MortalityFixed93, 65, config.HealthGood); age != FixedHorizonAge {
		t.Errorf("ResolveDeathAge(fixed_93) = %d, want %d", age, FixedHorizonAge)
	}
}

func TestSampleCoupleDeathAgesDeterministic(t *testing.T) {
	r1 := rng.NewStream(5)
	r2 := rng.NewStream(5)
	a1, b1 := SampleCoupleDeathAges(r1, 65, 63, config.HealthGood, config.HealthGood)
	a2, b2 := SampleCoupleDeathAges(r2, 65, 63, config.HealthGood, config.HealthGood)
	if a1 != a2 || b1 != b2 {
		t.Errorf("same seed produced different couple death ages: (%d,%d) vs (%d,%d)", a1, b1, a2, b2)
	}
}

func TestSurvivorExpenseAdjustmentReducesSpending(t *testing.T) {
	essential, discretionary := SurvivorExpenseAdjustment(40000, 20000)
	if essential >= 40000 || discretionary >= 20000 {
		t.Errorf("expected survivor expenses to drop: essential=%v discretionary=%v", essential, discretionary)
	}
	essentialRatio := essential / 40000
	discretionaryRatio := discretionary / 20000
	if essentialRatio <= discretionaryRatio {
		t.Errorf("expected essential expenses to shrink proportionally less than discretionary: essentialRatio=%v discretionaryRatio=%v", essentialRatio, discretionaryRatio)
	}
}

func TestSampleEpisodeNoneBeforeEligibleAge(t *testing.T) {
	r := rng.NewStream(1)
	ep := SampleEpisode(r, 50, 1.0)
	if ep.Occurred {
		t.Errorf("expected no LTC episode to be possible at age 50")
	}
}

func TestSampleEpisodeEventuallyOccursAtAdvancedAge(t *testing.T) {
	occurred := false
	for i := 0; i < 200; i++ {
		r := rng.NewStream(int64(i))
		if SampleEpisode(r, 88, 1.0).Occurred {
			occurred = true
			break
		}
	}
	if !occurred {
		t.Errorf("expected at least one LTC episode across 200 draws at age 88")
	}
}

func TestInsuranceNetBeforeElimination(t *testing.T) {
	policy := config.LTCPolicy{Enabled: true, DailyBenefit: 200, EliminationDays: 90}
	oop, paid := InsuranceNet(policy, 100000, 30)
	if paid != 0 || oop != 100000 {
		t.Errorf("expected full out-of-pocket before elimination period, got oop=%v paid=%v", oop, paid)
	}
}

func TestInsuranceNetAfterElimination(t *testing.T) {
	policy := config.LTCPolicy{Enabled: true, DailyBenefit: 200, EliminationDays: 90}
	oop, paid := InsuranceNet(policy, 50000, 200)
	if paid <= 0 {
		t.Errorf("expected insurance to pay something after elimination period")
	}
	if oop+paid != 50000 {
		t.Errorf("oop+paid should equal annual cost: got %v", oop+paid)
	}
}

func TestProjectedAnnualCostGrowsWithInflation(t *testing.T) {
	ep := Episode{AnnualCostAtOnset: 100000}
	if ProjectedAnnualCost(ep, 3) <= 100000 {
		t.Errorf("expected LTC cost to grow over time with healthcare inflation")
	}
}

func TestSampleLifeExpectancyBucketedWithinBounds(t *testing.T) {
	for i := 0; i < 200; i++ {
		r := rng.NewStream(int64(i))
		le := SampleLifeExpectancyBucketed(r, 85, 60)
		if le < 70 || le > 105 {
			t.Errorf("bucketed life expectancy %v out of [70,105]", le)
		}
	}
}

func TestSampleLifeExpectancyBucketedClampsToCurrentAgePlusOne(t *testing.T) {
	// A base life expectancy far below the clamp floor should still respect
	// max(currentAge+1, 70).
	r := rng.NewStream(1)
	le := SampleLifeExpectancyBucketed(r, 50, 95)
	if le < 96 {
		t.Errorf("expected life expectancy >= currentAge+1 (96), got %v", le)
	}
}

func TestSampleLifeExpectancyBucketedSpreadsAroundBase(t *testing.T) {
	const trials = 400
	var sum float64
	for i := 0; i < trials; i++ {
		sum += SampleLifeExpectancyBucketed(rng.NewStream(int64(i)), 85, 60)
	}
	mean := sum / trials
	if mean < 82 || mean > 88 {
		t.Errorf("expected bucketed mean near base life expectancy 85, got %v", mean)
	}
}

func TestSampleCoupleLifeExpectancyBucketedWithinBounds(t *testing.T) {
	// The correlated couple draw must keep each spouse's life expectancy
	// inside the bucketed bounds.
	r := rng.NewStream(7)
	leA, leB := SampleCoupleLifeExpectancyBucketed(r, 85, 82, 60, 58)
	if leA < 70 || leA > 105 || leB < 70 || leB > 105 {
		t.Errorf("couple bucketed life expectancies out of bounds: %v, %v", leA, leB)
	}
}
