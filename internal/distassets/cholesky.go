// Package distassets samples correlated multi-asset-class returns for one
// simulation year: it combines the CMA table, the active market regime, a
// chosen distribution family, and the correlation matrix into a single
// vector of asset returns plus an inflation draw (spec.md §4.2).
package distassets

import "math"

// factorizeCholesky performs a hand-rolled Cholesky-Banachiewicz
// decomposition of a symmetric correlation matrix (spec.md §4.2 step 3,
// grounded in the teacher's wasm/math.go CholeskyDecomposition but reworked
// to satisfy the degrade-don't-fail requirement literally: round-off can
// make a single diagonal entry go slightly negative under the square root,
// and spec.md requires clamping that one entry to 0 rather than perturbing
// the whole matrix with a uniform regularization term). The result is
// always a valid (possibly degenerate) lower-triangular factor, so this
// never fails the draw.
func factorizeCholesky(corr [5][5]float64) [5][5]float64 {
	const n = 5
	var l [5][5]float64
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := corr[i][j]
			for k := 0; k < j; k++ {
				sum -= l[i][k] * l[j][k]
			}
			if i == j {
				if sum < 0 {
					sum = 0 // round-off clamp (spec.md §4.2 step 3)
				}
				l[i][j] = math.Sqrt(sum)
				continue
			}
			if l[j][j] == 0 {
				// zero diagonal produces zero off-diagonal contribution
				// (spec.md §4.2 edge cases)
				l[i][j] = 0
				continue
			}
			l[i][j] = sum / l[j][j]
		}
	}
	return l
}

// applyCholesky transforms a vector of independent shocks into correlated
// shocks via L*z (grounded in the teacher's GenerateCorrelatedTShocks).
func applyCholesky(l [5][5]float64, independent [5]float64) [5]float64 {
	n := 5
	var correlated [5]float64
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j <= i; j++ {
			sum += l[i][j] * independent[j]
		}
		correlated[i] = sum
	}
	return correlated
}
