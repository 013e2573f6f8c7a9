package distassets

import (
	"errors"
	"math"

	"github.com/areumfire/retirement-mc/internal/config"
	"github.com/areumfire/retirement-mc/internal/regime"
	"github.com/areumfire/retirement-mc/internal/rng"
)

var errEmptyBlockSet = errors.New("distassets: no historical blocks supplied for block-bootstrap sampling")

// AssetReturns holds one year's drawn return for each of the five asset
// classes, keyed by config.AssetClassOrder.
type AssetReturns struct {
	Stocks, IntlStocks, Bonds, REITs, Cash float64
}

func assetReturnsFromArray(v [5]float64) AssetReturns {
	return AssetReturns{Stocks: v[0], IntlStocks: v[1], Bonds: v[2], REITs: v[3], Cash: v[4]}
}

// MeanRevertState carries the prior year's deviation-from-mean for the
// mean-reverting distribution family; the scenario walk threads this
// forward year over year (spec.md §4.2 step 4).
type MeanRevertState struct {
	Deviation [5]float64
}

// Sample is one year's drawn asset-class and inflation returns. SampleYear
// has no allocation and leaves PortfolioReturn at zero; the blended return
// for a household's allocation comes from PortfolioReturn.
type Sample struct {
	Returns         AssetReturns
	PortfolioReturn float64
	Inflation       float64
}

// drawdownFloor bounds any single asset class's annual return from below;
// no real asset class becomes worth less than 5 cents on the dollar in one
// year, and without this floor a pathological student-t or jump-diffusion
// tail draw can drive a bucket negative (spec.md §4.2 edge case).
const drawdownFloor = -0.95

// aagrFromCAGR converts a geometric mean return to an arithmetic mean given
// volatility, via AAGR = CAGR + sigma^2/2 (spec.md §4.2 step 6, Glossary).
func aagrFromCAGR(cagr, vol float64) float64 {
	return cagr + vol*vol/2
}

// blendedMeanVol applies the active regime's per-asset multiplier to the
// base CMA mean/vol, then converts to an arithmetic mean for sampling
// (spec.md §4.2 steps 1, 3, 6).
func blendedMeanVol(base config.AssetClassCMA, adj regime.AssetAdjustment) (mean, vol float64) {
	cagr := base.ExpectedReturnCAGR * adj.ReturnMultiplier
	vol = base.Volatility * adj.VolMultiplier
	mean = aagrFromCAGR(cagr, vol)
	return mean, vol
}

func assetAdjustments(params regime.Parameters) [4]regime.AssetAdjustment {
	return [4]regime.AssetAdjustment{
		params.AssetAdjustments["stocks"],
		params.AssetAdjustments["intlStocks"],
		params.AssetAdjustments["bonds"],
		params.AssetAdjustments["reits"],
	}
}

// SampleYear draws one year of correlated asset-class and inflation
// returns for the active regime and chosen distribution family (spec.md
// §4.2). r should already be a sub-stream derived with label "market" so
// market draws are independent of mortality/regime draws. mrState is
// mutated in place for DistributionMeanReverting and ignored otherwise.
func SampleYear(
	r rng.RNG,
	cma config.CapitalMarketAssumptions,
	activeRegime config.MarketRegime,
	dist config.DistributionFamily,
	studentTDF float64,
	baseInflation float64,
	mrState *MeanRevertState,
) (Sample, error) {
	params := regime.Get(activeRegime)
	adj := assetAdjustments(params)

	bases := [5]config.AssetClassCMA{cma.Stocks, cma.IntlStocks, cma.Bonds, cma.REITs, cma.Cash}
	var means, vols [5]float64
	for i := 0; i < 4; i++ {
		means[i], vols[i] = blendedMeanVol(bases[i], adj[i])
	}
	// cash carries no regime adjustment; it is not equity/bond-like.
	means[4], vols[4] = aagrFromCAGR(bases[4].ExpectedReturnCAGR, bases[4].Volatility), bases[4].Volatility

	l := factorizeCholesky(cma.Correlation)

	var independent, shocks [5]float64
	switch dist {
	case config.DistributionStudentT:
		for i := range independent {
			independent[i] = r.StudentT(studentTDF)
		}
		shocks = applyCholesky(l, independent)
	case config.DistributionJumpDiffusion:
		for i := range independent {
			independent[i] = r.Normal()
		}
		shocks = applyCholesky(l, independent)
		jumpProb := 0.05
		if r.Next() < jumpProb {
			jumpSize := -0.15 + r.Normal()*0.10 // negative-skewed jump, grounded in spec.md §4.2 jump-diffusion overlay
			for i := range shocks {
				shocks[i] += jumpSize
			}
		}
	case config.DistributionMeanReverting:
		const reversionSpeed = 0.35
		for i := range independent {
			independent[i] = r.Normal()
		}
		rawShocks := applyCholesky(l, independent)
		for i := range shocks {
			prev := 0.0
			if mrState != nil {
				prev = mrState.Deviation[i]
			}
			deviation := prev*(1-reversionSpeed) + rawShocks[i]*vols[i]
			shocks[i] = deviation / maxFloat(vols[i], 1e-9)
			if mrState != nil {
				mrState.Deviation[i] = deviation
			}
		}
	case config.DistributionBlockBootstrap:
		// Without a wired HistoricalReturnsLoader the engine falls back to
		// normal shocks; block-bootstrap proper is exercised when a caller
		// supplies historical blocks through SampleYearFromBlock instead.
		for i := range independent {
			independent[i] = r.Normal()
		}
		shocks = applyCholesky(l, independent)
	default:
		for i := range independent {
			independent[i] = r.Normal()
		}
		shocks = applyCholesky(l, independent)
	}

	var returns [5]float64
	for i := range returns {
		raw := means[i] + vols[i]*shocks[i]
		returns[i] = math.Max(drawdownFloor, raw)
	}

	inflCorr := config.InflationCorrelation(activeRegime)
	inflShock := r.Normal()
	infl := baseInflation
	for i, c := range inflCorr {
		infl += c * vols[i] * shocks[i] * 0.3
	}
	infl += inflShock * 0.01
	infl = math.Max(-0.05, infl)

	return Sample{Returns: assetReturnsFromArray(returns), Inflation: infl}, nil
}

// PortfolioReturn blends per-asset returns by the household's allocation
// weights (spec.md §4.2 step 7).
func PortfolioReturn(returns AssetReturns, alloc config.Allocation) float64 {
	return returns.Stocks*alloc.Stocks + returns.IntlStocks*alloc.IntlStocks +
		returns.Bonds*alloc.Bonds + returns.REITs*alloc.REITs + returns.Cash*alloc.Cash
}

// HistoricalBlock is one sampled window of a loaded historical-returns
// series, keyed by config.AssetClassOrder (spec.md §6 collaborator #3).
type HistoricalBlock struct {
	Returns   AssetReturns
	Inflation float64
}

// HistoricalReturnsLoader is the historical-returns collaborator (spec.md §6
// item 3): it maps an asset-class name to an ordered sequence of historical
// blocks. Required only when the block-bootstrap distribution is selected;
// the engine never reads the underlying file or database itself, it only
// resamples from blocks the caller already loaded.
type HistoricalReturnsLoader interface {
	LoadHistoricalBlocks(assetClass string) ([]HistoricalBlock, error)
}

// SampleYearFromBlock implements the block-bootstrap family proper: it
// draws a uniformly random historical block supplied by the caller's
// HistoricalReturnsLoader collaborator (spec.md §4.2 step 5, §6 item 3).
// The engine itself never loads the underlying historical series; it only
// resamples from blocks the caller already loaded.
func SampleYearFromBlock(r rng.RNG, blocks []HistoricalBlock) (Sample, error) {
	if len(blocks) == 0 {
		return Sample{}, errEmptyBlockSet
	}
	idx := int(r.Next() * float64(len(blocks)))
	if idx >= len(blocks) {
		idx = len(blocks) - 1
	}
	b := blocks[idx]
	return Sample{Returns: b.Returns, Inflation: b.Inflation}, nil
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
