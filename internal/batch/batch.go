// Package batch orchestrates many scenario iterations into a BatchResult:
// validation, variance-reduction overlays, deterministic seeding, a bounded
// worker pool, and the aggregation of percentiles and risk metrics
// (spec.md §4.10/§5, grounded in rpgo's montecarlo.go WaitGroup+semaphore
// pattern and the teacher's percentile-indexed aggregation in
// internal/simulation/engine.go).
package batch

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/areumfire/retirement-mc/internal/config"
	"github.com/areumfire/retirement-mc/internal/guardrail"
	"github.com/areumfire/retirement-mc/internal/obslog"
	"github.com/areumfire/retirement-mc/internal/rng"
	"github.com/areumfire/retirement-mc/internal/scenario"
)

// seedStride is the deterministic per-row seed offset (spec.md §4.10 step 3,
// §5 partitioning rule).
const seedStride = 100007

// Config carries the batch orchestrator's run parameters, separate from
// the household's SimulationParams (spec.md §4.10 contract
// `runBatch(params, iterations, config)`).
type Config struct {
	Iterations    int
	WorkerCount   int           // 0 = min(runtime.NumCPU(), 8)
	TaskTimeout   time.Duration // 0 = 30s default (§5)
	GuardrailCfg  guardrail.Config
}

// Percentiles reports the standard five-point summary.
type Percentiles struct {
	P10, P25, P50, P75, P90 float64
}

// LTCBreakdown summarizes long-term-care incidence across the batch
// (spec.md §4.10 step 5).
type LTCBreakdown struct {
	Probability        float64
	AvgCost            float64
	AvgDurationYears   float64
	SuccessDeltaWithLTC float64
}

// ShortfallMetrics tallies years in which the withdrawal solver could not
// fully meet the spending need (spec.md §4.9 step 8).
type ShortfallMetrics struct {
	TotalShortfall      float64
	Count               int
	MaxConsecutiveYears int
}

// RiskMetrics groups the advanced risk statistics (spec.md §4.10 step 5).
type RiskMetrics struct {
	CVaR95                     float64
	CVaR99                     float64
	MaxDrawdownMedian          float64
	UlcerIndexMedian           float64
	UtilityAdjustedSuccess     float64
	SequenceRiskScore          float64
	RetirementFlexibilityScore float64
}

// Result is the full output of a batch run (spec.md §3 BatchResult).
type Result struct {
	RunID                          string
	Iterations                     int
	SuccessProbabilityNoDepletion  float64
	SuccessProbabilityLegacy       float64
	EndingBalancePercentiles       Percentiles
	MeanYearsToDepletionOnFailure  float64
	RegimeYearCounts               map[config.MarketRegime]int
	LTC                            LTCBreakdown
	Shortfall                      ShortfallMetrics
	Risk                           RiskMetrics
	RepresentativeTraces           map[string]scenario.Outcome
	Warnings                       []string
}

type rowOutcome struct {
	outcome scenario.Outcome
}

// Run executes the full batch: validates params, optionally pre-generates
// Latin-Hypercube stratified normals, partitions rows across a bounded
// worker pool with deterministic per-row seeding, and aggregates the
// resulting scenario outcomes (spec.md §4.10, §5).
func Run(ctx context.Context, params config.SimulationParams, cma config.CapitalMarketAssumptions, taxYear scenario.TaxYearFunc, cfg Config) (Result, error) {
	params.ApplyDefaults()
	report := config.Validate(params)
	if !report.OK() {
		return Result{}, fmt.Errorf("invalid parameters: %s", strings.Join(report.Fatal, "; "))
	}

	iterations := cfg.Iterations
	if iterations <= 0 {
		iterations = 1000
	}
	guardrailCfg := cfg.GuardrailCfg
	if guardrailCfg == (guardrail.Config{}) {
		guardrailCfg = guardrail.DefaultConfig()
	}

	antithetic := params.VarianceReduction.UseAntitheticVariates
	totalRows := iterations
	if antithetic {
		totalRows = (iterations + 1) / 2
	}

	var lhs [][]float64 // lhs[dimension][row]
	if params.VarianceReduction.UseStratifiedSampling {
		lhs = buildLatinHypercubeNormals(totalRows, params.VarianceReduction.StratifiedDimensions, params.RandomSeed)
	}

	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
		if workerCount > 8 {
			workerCount = 8
		}
	}
	if workerCount < 1 {
		workerCount = 1
	}
	taskTimeout := cfg.TaskTimeout
	if taskTimeout <= 0 {
		taskTimeout = 30 * time.Second
	}

	rowsPerWorker := (totalRows + workerCount - 1) / workerCount
	if rowsPerWorker < 1 {
		rowsPerWorker = 1
	}

	outcomes := make([]scenario.Outcome, 0, iterations)
	var mu sync.Mutex
	var warnings []string
	var wg sync.WaitGroup

	runRow := func(globalRow int) []scenario.Outcome {
		seed := params.RandomSeed + int64(globalRow)*seedStride
		base := rng.NewStream(seed)
		var r rng.RNG = base
		if lhs != nil {
			values := make([]float64, len(lhs))
			for d := range lhs {
				values[d] = lhs[d][globalRow]
			}
			r = rng.NewInjection(base, values)
		}

		var result []scenario.Outcome
		if antithetic {
			tape := &rng.Tape{}
			recorded := rng.NewRecording(r, tape)
			o1 := scenario.Run(params, cma, taxYear, guardrailCfg, recorded)
			replay := rng.NewReplay(recorded.Tape(), true)
			o2 := scenario.Run(params, cma, taxYear, guardrailCfg, replay)
			result = []scenario.Outcome{o1, o2}
		} else {
			result = []scenario.Outcome{scenario.Run(params, cma, taxYear, guardrailCfg, r)}
		}
		return result
	}

	for w := 0; w < workerCount; w++ {
		start := w * rowsPerWorker
		end := start + rowsPerWorker
		if end > totalRows {
			end = totalRows
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(workerID, start, end int) {
			defer wg.Done()
			taskCtx, cancel := context.WithTimeout(ctx, taskTimeout)
			defer cancel()

			var local []scenario.Outcome
			for row := start; row < end; row++ {
				select {
				case <-taskCtx.Done():
					// Worker-fault recovery: fall back to running the
					// remainder of this worker's range inline (§5, §7).
					for inline := row; inline < end; inline++ {
						local = append(local, runRow(inline)...)
					}
					mu.Lock()
					warnings = append(warnings, fmt.Sprintf("worker %d timed out, fell back to inline execution from row %d", workerID, row))
					mu.Unlock()
					row = end
				default:
					local = append(local, runRow(row)...)
				}
			}
			mu.Lock()
			outcomes = append(outcomes, local...)
			mu.Unlock()
		}(w, start, end)
	}
	wg.Wait()

	obslog.Batch("batch completed: %d outcomes from %d requested iterations", len(outcomes), iterations)

	result := aggregate(outcomes, params)
	result.RunID = uuid.NewString()
	result.Warnings = warnings

	if params.VarianceReduction.UseControlVariates {
		applyControlVariateAdjustment(&result, params, cma)
	}

	return result, nil
}

func aggregate(outcomes []scenario.Outcome, params config.SimulationParams) Result {
	n := len(outcomes)
	result := Result{Iterations: n, RegimeYearCounts: map[config.MarketRegime]int{}}
	if n == 0 {
		return result
	}

	endingBalances := make([]float64, n)
	successNoDepletion, successLegacy := 0, 0
	var yearsToDepletionSum float64
	failureCount := 0
	var ltcScenarios, ltcCostSum, ltcYearsSum float64
	var ltcSuccessDeltaSamples, ltcSuccessWith, ltcSuccessWithout int
	var shortfall ShortfallMetrics
	var sequenceRiskFailures int

	for i, o := range outcomes {
		endingBalances[i] = o.FinalPortfolioValue
		if o.SuccessNoDepletion {
			successNoDepletion++
		} else {
			failureCount++
			yearsToDepletionSum += o.DepletionAge - params.Demographics.RetirementAge
		}
		if o.SuccessLegacyMet {
			successLegacy++
		}

		scenarioLTCYears := 0.0
		consecutiveShortfall := 0
		for _, y := range o.Years {
			result.RegimeYearCounts[y.MarketRegime]++
			if y.Depleted {
				shortfall.Count++
				shortfall.TotalShortfall += y.EssentialSpending + y.DiscretionarySpending - y.GuaranteedIncome - y.GrossWithdrawal
				consecutiveShortfall++
				if consecutiveShortfall > shortfall.MaxConsecutiveYears {
					shortfall.MaxConsecutiveYears = consecutiveShortfall
				}
			} else {
				consecutiveShortfall = 0
			}
			if y.LTCOutOfPocket > 0 || y.LTCInsurancePaid > 0 {
				ltcCostSum += y.LTCOutOfPocket + y.LTCInsurancePaid
				scenarioLTCYears++
			}
		}
		if scenarioLTCYears > 0 {
			ltcScenarios++
			ltcYearsSum += scenarioLTCYears
		}

		negativeEarlyYears := 0
		for i, y := range o.Years {
			if i >= 10 {
				break
			}
			if y.PortfolioReturn-y.Inflation < 0 {
				negativeEarlyYears++
			}
		}
		if negativeEarlyYears >= 2 {
			sequenceRiskFailures++
		}

		if o.TotalLTCOutOfPocket > 0 {
			ltcSuccessDeltaSamples++
			if o.SuccessNoDepletion {
				ltcSuccessWith++
			}
		} else {
			if o.SuccessNoDepletion {
				ltcSuccessWithout++
			}
		}
	}

	sorted := append([]float64(nil), endingBalances...)
	sort.Float64s(sorted)

	result.SuccessProbabilityNoDepletion = float64(successNoDepletion) / float64(n)
	result.SuccessProbabilityLegacy = float64(successLegacy) / float64(n)
	result.EndingBalancePercentiles = exactPercentiles(sorted)
	if failureCount > 0 {
		result.MeanYearsToDepletionOnFailure = yearsToDepletionSum / float64(failureCount)
	}
	result.Shortfall = shortfall

	if ltcScenarios > 0 {
		result.LTC.Probability = ltcScenarios / float64(n)
		result.LTC.AvgCost = ltcCostSum / ltcYearsSum
		result.LTC.AvgDurationYears = ltcYearsSum / ltcScenarios
	}
	if ltcSuccessDeltaSamples > 0 && n-ltcSuccessDeltaSamples > 0 {
		withRate := float64(ltcSuccessWith) / float64(ltcSuccessDeltaSamples)
		withoutRate := float64(ltcSuccessWithout) / float64(n-ltcSuccessDeltaSamples)
		result.LTC.SuccessDeltaWithLTC = withRate - withoutRate
	}

	result.Risk = computeRiskMetrics(sorted, outcomes, float64(sequenceRiskFailures)/float64(n), result.SuccessProbabilityNoDepletion)
	result.RepresentativeTraces = selectRepresentativeTraces(outcomes)

	return result
}

// exactPercentiles reads percentiles off a pre-sorted slice; this is the
// source of truth the spec requires, as distinct from any streaming
// estimator (spec.md §4.10 step 3).
func exactPercentiles(sorted []float64) Percentiles {
	n := len(sorted)
	if n == 0 {
		return Percentiles{}
	}
	at := func(p float64) float64 {
		idx := int(p * float64(n-1))
		return sorted[idx]
	}
	return Percentiles{
		P10: at(0.10), P25: at(0.25), P50: at(0.50), P75: at(0.75), P90: at(0.90),
	}
}

// computeRiskMetrics derives CVaR, drawdown/ulcer from the median scenario,
// utility-adjusted success, sequence-risk, and a retirement-flexibility
// score (spec.md §4.10 step 5).
func computeRiskMetrics(sortedBalances []float64, outcomes []scenario.Outcome, sequenceRiskScore, successProb float64) RiskMetrics {
	n := len(sortedBalances)
	if n == 0 {
		return RiskMetrics{}
	}
	cvar := func(tailFraction float64) float64 {
		k := int(tailFraction * float64(n))
		if k < 1 {
			k = 1
		}
		sum := 0.0
		for i := 0; i < k; i++ {
			sum += sortedBalances[i]
		}
		return sum / float64(k)
	}

	medianIdx := n / 2
	medianTarget := sortedBalances[medianIdx]
	var medianOutcome scenario.Outcome
	bestDiff := math.Inf(1)
	for _, o := range outcomes {
		diff := math.Abs(o.FinalPortfolioValue - medianTarget)
		if diff < bestDiff {
			bestDiff = diff
			medianOutcome = o
		}
	}
	maxDrawdown, ulcer := drawdownAndUlcer(medianOutcome)

	utility := successProb * (1 - 0.5*sequenceRiskScore)

	flexibility := 0.0
	flexCount := 0
	for _, o := range outcomes {
		if len(o.Years) == 0 {
			continue
		}
		last := o.Years[len(o.Years)-1]
		if last.PortfolioStart > 0 {
			flexibility += math.Min(1, last.DiscretionarySpending/math.Max(1, last.EssentialSpending))
			flexCount++
		}
	}
	if flexCount > 0 {
		flexibility /= float64(flexCount)
	}

	return RiskMetrics{
		CVaR95:                     cvar(0.05),
		CVaR99:                     cvar(0.01),
		MaxDrawdownMedian:          maxDrawdown,
		UlcerIndexMedian:           ulcer,
		UtilityAdjustedSuccess:     utility,
		SequenceRiskScore:          sequenceRiskScore,
		RetirementFlexibilityScore: flexibility,
	}
}

func drawdownAndUlcer(o scenario.Outcome) (maxDrawdown, ulcerIndex float64) {
	if len(o.Years) == 0 {
		return 0, 0
	}
	peak := o.Years[0].PortfolioStart
	var sumSquaredDrawdown float64
	for _, y := range o.Years {
		if y.PortfolioEnd > peak {
			peak = y.PortfolioEnd
		}
		if peak <= 0 {
			continue
		}
		drawdown := (peak - y.PortfolioEnd) / peak
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
		sumSquaredDrawdown += drawdown * drawdown
	}
	ulcerIndex = math.Sqrt(sumSquaredDrawdown / float64(len(o.Years)))
	return maxDrawdown, ulcerIndex
}

// selectRepresentativeTraces sorts outcomes by ending balance and returns
// the traces nearest the 10th/50th/90th percentile ranks (spec.md §4.10
// step 6).
func selectRepresentativeTraces(outcomes []scenario.Outcome) map[string]scenario.Outcome {
	if len(outcomes) == 0 {
		return map[string]scenario.Outcome{}
	}
	sorted := append([]scenario.Outcome(nil), outcomes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FinalPortfolioValue < sorted[j].FinalPortfolioValue })
	n := len(sorted)
	rank := func(p float64) scenario.Outcome {
		idx := int(p * float64(n-1))
		return sorted[idx]
	}
	return map[string]scenario.Outcome{
		"p10": rank(0.10),
		"p50": rank(0.50),
		"p90": rank(0.90),
	}
}

// buildLatinHypercubeNormals pre-generates stratified normals for the first
// `dimensions` early-retirement shock dimensions: for each dimension, draw
// `rows` stratified uniforms (k+U)/rows, shuffle, and invert through the
// normal CDF (spec.md §4.10 step 2).
func buildLatinHypercubeNormals(rows, dimensions int, seed int64) [][]float64 {
	if dimensions <= 0 || rows <= 0 {
		return nil
	}
	shuffler := rng.NewStream(seed ^ 0x5A17E5)
	normal := distuv.Normal{Mu: 0, Sigma: 1}

	out := make([][]float64, dimensions)
	for d := 0; d < dimensions; d++ {
		strata := make([]float64, rows)
		for k := 0; k < rows; k++ {
			u := (float64(k) + shuffler.Next()) / float64(rows)
			strata[k] = normal.Quantile(clamp01(u))
		}
		for k := rows - 1; k > 0; k-- {
			j := int(shuffler.Next() * float64(k+1))
			strata[k], strata[j] = strata[j], strata[k]
		}
		out[d] = strata
	}
	return out
}

func clamp01(u float64) float64 {
	const eps = 1e-9
	if u < eps {
		return eps
	}
	if u > 1-eps {
		return 1 - eps
	}
	return u
}

// applyControlVariateAdjustment adjusts the empirical success probability
// toward an analytical lognormal approximation, damped and capped per
// spec.md §4.10 step 4.
func applyControlVariateAdjustment(result *Result, params config.SimulationParams, cma config.CapitalMarketAssumptions) {
	control := analyticalSuccessApproximation(params, cma)
	empirical := result.SuccessProbabilityNoDepletion
	const betaCap = 1.0
	const damping = 0.5
	beta := betaCap * damping
	adjusted := empirical + beta*(control-empirical)
	if adjusted < 0 {
		adjusted = 0
	}
	if adjusted > 1 {
		adjusted = 1
	}
	result.SuccessProbabilityNoDepletion = adjusted
}

// analyticalSuccessApproximation estimates success probability under a
// lognormal model: the withdrawal rate is treated as a constant drag on the
// allocation's mean log return over the retirement horizon, and the result
// is the probability that the log terminal portfolio value is positive. It
// is used only as a control variate input (spec.md §4.10 step 4).
func analyticalSuccessApproximation(params config.SimulationParams, cma config.CapitalMarketAssumptions) float64 {
	horizon := params.Demographics.LifeExpectancy - params.Demographics.RetirementAge
	if horizon <= 0 {
		return 1
	}
	mu := cma.Stocks.ExpectedReturnCAGR*params.Market.Allocation.Stocks +
		cma.Bonds.ExpectedReturnCAGR*params.Market.Allocation.Bonds +
		cma.Cash.ExpectedReturnCAGR*params.Market.Allocation.Cash
	sigma := math.Sqrt(params.Market.Allocation.Stocks*params.Market.Allocation.Stocks*cma.Stocks.Volatility*cma.Stocks.Volatility +
		params.Market.Allocation.Bonds*params.Market.Allocation.Bonds*cma.Bonds.Volatility*cma.Bonds.Volatility)
	withdrawalRate := params.Strategy.WithdrawalRate
	if withdrawalRate == 0 {
		withdrawalRate = 0.04
	}
	logTerminal := math.Log(math.Max(params.Assets.TotalAssets, 1)) + (mu-withdrawalRate-0.5*sigma*sigma)*horizon
	z := logTerminal / math.Max(sigma*math.Sqrt(horizon), 1e-9)
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	return normal.CDF(z)
}
