package distassets

import (
	"math"
	"testing"

	"github.com/areumfire/retirement-mc/internal/config"
	"github.com/areumfire/retirement-mc/internal/rng"
)

func TestSampleYearNormalDeterministic(t *testing.T) {
	cma := config.DefaultCMA()
	r1 := rng.NewStream(42)
	r2 := rng.NewStream(42)

	s1, err := SampleYear(r1, cma, config.RegimeNormal, config.DistributionNormal, 5, 0.03, nil)
	if err != nil {
		t.Fatalf("SampleYear: %v", err)
	}
	s2, err := SampleYear(r2, cma, config.RegimeNormal, config.DistributionNormal, 5, 0.03, nil)
	if err != nil {
		t.Fatalf("SampleYear: %v", err)
	}
	if s1 != s2 {
		t.Errorf("same seed produced different samples: %+v vs %+v", s1, s2)
	}
}

func TestSampleYearReturnsClampedAtDrawdownFloor(t *testing.T) {
	cma := config.DefaultCMA()
	cma.Stocks.Volatility = 50.0 // absurd volatility to force the floor
	r := rng.NewStream(7)
	s, err := SampleYear(r, cma, config.RegimeCrisis, config.DistributionStudentT, 3, 0.03, nil)
	if err != nil {
		t.Fatalf("SampleYear: %v", err)
	}
	if s.Returns.Stocks < drawdownFloor {
		t.Errorf("stocks return %v below floor %v", s.Returns.Stocks, drawdownFloor)
	}
}

func TestSampleYearCrisisRegimeLowersMeanReturn(t *testing.T) {
	cma := config.DefaultCMA()
	normalAvg, crisisAvg := 0.0, 0.0
	const trials = 500
	for i := 0; i < trials; i++ {
		rn := rng.NewStream(int64(1000 + i))
		sn, _ := SampleYear(rn, cma, config.RegimeNormal, config.DistributionNormal, 5, 0.03, nil)
		normalAvg += sn.Returns.Stocks

		rc := rng.NewStream(int64(1000 + i))
		sc, _ := SampleYear(rc, cma, config.RegimeCrisis, config.DistributionNormal, 5, 0.03, nil)
		crisisAvg += sc.Returns.Stocks
	}
	normalAvg /= trials
	crisisAvg /= trials
	if crisisAvg >= normalAvg {
		t.Errorf("expected crisis-regime mean stock return (%v) below normal-regime mean (%v)", crisisAvg, normalAvg)
	}
}

func TestPortfolioReturnWeightedSum(t *testing.T) {
	returns := AssetReturns{Stocks: 0.10, IntlStocks: 0.08, Bonds: 0.03, REITs: 0.05, Cash: 0.02}
	alloc := config.Allocation{Stocks: 0.5, IntlStocks: 0.1, Bonds: 0.3, REITs: 0.05, Cash: 0.05}
	got := PortfolioReturn(returns, alloc)
	want := 0.10*0.5 + 0.08*0.1 + 0.03*0.3 + 0.05*0.05 + 0.02*0.05
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("PortfolioReturn = %v, want %v", got, want)
	}
}

func TestSampleYearFromBlockCyclesThroughSuppliedBlocks(t *testing.T) {
	blocks := []HistoricalBlock{
		{Returns: AssetReturns{Stocks: 0.10}, Inflation: 0.02},
		{Returns: AssetReturns{Stocks: -0.05}, Inflation: 0.04},
	}
	r := rng.NewStream(1)
	seen := map[float64]bool{}
	for i := 0; i < 50; i++ {
		s, err := SampleYearFromBlock(r, blocks)
		if err != nil {
			t.Fatalf("SampleYearFromBlock: %v", err)
		}
		seen[s.Returns.Stocks] = true
	}
	if len(seen) != 2 {
		t.Errorf("expected both blocks to be sampled over 50 draws, saw %d distinct", len(seen))
	}
}

func TestSampleYearFromBlockEmptyErrors(t *testing.T) {
	r := rng.NewStream(1)
	if _, err := SampleYearFromBlock(r, nil); err == nil {
		t.Errorf("expected an error sampling from an empty block set")
	}
}

func TestFactorizeCholeskyClampsNegativeDiagonal(t *testing.T) {
	// A non-positive-definite correlation block (0.9 / 0.9 / -0.9 across the
	// first three assets cannot all hold at once) drives the third diagonal
	// entry's radicand negative (1 - 0.81 - ~15.4); the single entry should
	// clamp to 0 rather than the whole factorization failing or perturbing
	// unrelated entries (spec.md §4.2 step 3).
	corr := [5][5]float64{
		{1.0, 0.9, -0.9, 0, 0},
		{0.9, 1.0, 0.9, 0, 0},
		{-0.9, 0.9, 1.0, 0, 0},
		{0, 0, 0, 1.0, 0},
		{0, 0, 0, 0, 1.0},
	}
	l := factorizeCholesky(corr)
	for i := 0; i < 5; i++ {
		if math.IsNaN(l[i][i]) {
			t.Fatalf("factorizeCholesky produced NaN at diagonal %d instead of clamping", i)
		}
	}
	// Rows/columns unrelated to the degenerate block are untouched.
	if l[3][3] != 1.0 || l[4][4] != 1.0 {
		t.Errorf("expected unrelated diagonal entries to stay at 1.0, got %v, %v", l[3][3], l[4][4])
	}
}

func TestMeanRevertingThreadsStateForward(t *testing.T) {
	cma := config.DefaultCMA()
	r := rng.NewStream(99)
	var state MeanRevertState
	for i := 0; i < 5; i++ {
		if _, err := SampleYear(r, cma, config.RegimeNormal, config.DistributionMeanReverting, 5, 0.03, &state); err != nil {
			t.Fatalf("SampleYear: %v", err)
		}
	}
	allZero := true
	for _, d := range state.Deviation {
		if d != 0 {
			allZero = false
		}
	}
	if allZero {
		t.Errorf("expected mean-reversion state to accumulate non-zero deviations")
	}
}
