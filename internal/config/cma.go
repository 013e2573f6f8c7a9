package config

// AssetClassCMA holds one asset class's capital-market assumption: an
// expected return tagged CAGR, and its volatility (spec.md §6 collaborator
// #2 contract).
type AssetClassCMA struct {
	ExpectedReturnCAGR float64
	Volatility         float64
}

// CapitalMarketAssumptions is the engine's internal snapshot of the CMA
// loader's output: one entry per asset class, plus the base 5x5 correlation
// matrix ordered {stocks, intlStocks, bonds, reits, cash}. It is immutable
// process-wide data (spec.md §3 Lifecycle, §9 design note).
type CapitalMarketAssumptions struct {
	Stocks      AssetClassCMA
	IntlStocks  AssetClassCMA
	Bonds       AssetClassCMA
	REITs       AssetClassCMA
	Cash        AssetClassCMA
	Correlation [5][5]float64
}

// AssetClassOrder is the canonical order for the 5x5 correlation matrix and
// for any other stochastic pipeline code that must avoid iterating over a
// map (determinism-critical, mirroring the teacher's AssetClassOrder).
var AssetClassOrder = [5]string{"stocks", "intlStocks", "bonds", "reits", "cash"}

// DefaultCMA is the engine's built-in fallback CMA table, used when no
// external CMA loader collaborator is supplied (spec.md §6 item 2). Values
// are broadly in line with long-run historical asset-class assumptions used
// across the retrieved retirement-planning examples.
func DefaultCMA() CapitalMarketAssumptions {
	return CapitalMarketAssumptions{
		Stocks:     AssetClassCMA{ExpectedReturnCAGR: 0.07, Volatility: 0.16},
		IntlStocks: AssetClassCMA{ExpectedReturnCAGR: 0.06, Volatility: 0.20},
		Bonds:      AssetClassCMA{ExpectedReturnCAGR: 0.03, Volatility: 0.05},
		REITs:      AssetClassCMA{ExpectedReturnCAGR: 0.065, Volatility: 0.19},
		Cash:       AssetClassCMA{ExpectedReturnCAGR: 0.02, Volatility: 0.01},
		// order: stocks, intlStocks, bonds, reits, cash
		Correlation: [5][5]float64{
			{1.00, 0.85, -0.20, 0.55, 0.00},
			{0.85, 1.00, -0.15, 0.50, 0.00},
			{-0.20, -0.15, 1.00, 0.05, 0.10},
			{0.55, 0.50, 0.05, 1.00, 0.00},
			{0.00, 0.00, 0.10, 0.00, 1.00},
		},
	}
}

// InflationCorrelation gives the regime-dependent correlation between
// general inflation and each asset class, used when the distribution
// sampler appends an inflation pseudo-asset (spec.md §4.2 step 2). Equities
// and REITs carry a positive correlation with inflation shocks, larger in
// stressed regimes, while bonds correlate negatively (duration risk).
func InflationCorrelation(regime MarketRegime) [5]float64 {
	// order: stocks, intlStocks, bonds, reits, cash
	switch regime {
	case RegimeCrisis:
		return [5]float64{0.30, 0.25, -0.45, 0.35, 0.05}
	case RegimeBear:
		return [5]float64{0.20, 0.18, -0.35, 0.25, 0.05}
	case RegimeBull:
		return [5]float64{0.05, 0.05, -0.20, 0.15, 0.00}
	default:
		return [5]float64{0.10, 0.10, -0.25, 0.20, 0.00}
	}
}
