package rng

import "math"

// RNG is the interface every generator and overlay implements. Consumers
// (distribution sampler, mortality sampler, withdrawal solver) always take
// an RNG as an explicit parameter — never a package-level global — so
// mortality draws can never perturb market-return draws (see Derive).
type RNG interface {
	// Next returns a uniform draw in [0, 1).
	Next() float64
	// Uniform returns a uniform draw in [lo, hi).
	Uniform(lo, hi float64) float64
	// Normal returns a standard-normal draw via Box-Muller.
	Normal() float64
	// StudentT returns a draw from a Student-t distribution with df degrees
	// of freedom: normal / sqrt(chi2/df).
	StudentT(df float64) float64
	// Derive returns an independent sub-stream seeded from this stream's
	// origin plus a stable hash of label|salt.
	Derive(label string, salt uint32) RNG
}

// uniformFrom and studentTFrom are shared across every RNG implementation
// (base stream and every overlay). They are written against the RNG
// interface rather than a concrete type so that, when called from an
// overlay's own Uniform/StudentT method with the overlay as the receiver
// passed in, calls to r.Next()/r.Normal() dispatch back through the
// overlay's overridden methods instead of skipping them.

func uniformFrom(r RNG, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Next()
}

func studentTFrom(r RNG, df float64) float64 {
	if df <= 0 {
		return r.Normal()
	}
	z := r.Normal()
	chi2 := chiSquaredFrom(r, df)
	if chi2 <= 0 {
		return z
	}
	return z / math.Sqrt(chi2/df)
}

func chiSquaredFrom(r RNG, df float64) float64 {
	whole := math.Floor(df)
	sum := 0.0
	for i := 0.0; i < whole; i++ {
		n := r.Normal()
		sum += n * n
	}
	frac := df - whole
	if frac > 1e-9 {
		sum += gammaSampleFrom(r, frac/2, 2)
	}
	return sum
}

// gammaSampleFrom implements Marsaglia & Tsang's method for shape >= 0,
// drawing its normal/uniform inputs through the RNG interface.
func gammaSampleFrom(r RNG, shape, scale float64) float64 {
	if shape <= 0 {
		return 0
	}
	if shape < 1 {
		u := clampLow(r.Next())
		return gammaSampleFrom(r, shape+1, scale) * math.Pow(u, 1.0/shape)
	}
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for i := 0; i < 1000; i++ {
		var x, v float64
		for {
			x = r.Normal()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := clampLow(r.Next())
		if u < 1-0.0331*x*x*x*x {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v * scale
		}
	}
	return shape * scale
}

func clampLow(u float64) float64 {
	if u < 1e-12 {
		return 1e-12
	}
	return u
}

// Stream is the base deterministic generator: a PCG32 uniform source plus
// the derived normal/Student-t draws and sub-stream derivation. All
// overlays wrap a Stream (or another overlay) rather than reimplementing it.
type Stream struct {
	gen  *pcg32
	seed int64
}

// NewStream creates a base RNG stream from an integer seed. A zero seed is
// replaced by a fixed non-zero constant inside the PCG32 core.
func NewStream(seed int64) *Stream {
	return &Stream{gen: newPCG32(seed), seed: seed}
}

func (s *Stream) Next() float64 { return s.gen.float64() }

func (s *Stream) Uniform(lo, hi float64) float64 { return uniformFrom(s, lo, hi) }

// Normal draws two uniforms (each clamped to at least 1e-12 to avoid log(0))
// and applies the Box-Muller transform. This returns one normal per call and
// recomputes on the next call rather than caching the Box-Muller pair's
// spare value, so the call sequence stays a pure function of Next() calls.
func (s *Stream) Normal() float64 {
	u1 := clampLow(s.Next())
	u2 := clampLow(s.Next())
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func (s *Stream) StudentT(df float64) float64 { return studentTFrom(s, df) }

// Derive mixes this stream's origin seed with a stable djb2 hash of
// label|salt to produce an independent sub-stream RNG.
func (s *Stream) Derive(label string, salt uint32) RNG {
	return NewStream(mixSeed(s.seed, label, salt))
}

// DeriveLabel creates a brand-new base stream seeded purely from a label
// (no parent stream), for callers that want a named stream without an
// existing base — e.g. a process-wide mortality table warm-up stream.
func DeriveLabel(label string, salt uint32) RNG {
	return NewStream(mixSeed(0, label, salt))
}
