// Package rng implements the deterministic random-number pipeline used by
// the scenario engine: a PCG32 uniform generator, derived Box-Muller normal
// and Student-t draws, label-derived independent sub-streams, and a set of
// composable variance-reduction overlays (recording/replay, antithetic,
// value-injection).
//
// The core generator is PCG32 (https://www.pcg-random.org/), the same
// algorithm the teacher engine uses for reproducible simulation: fast,
// small, and fixed forever so that a seed produces the same sequence across
// Go versions and platforms.
package rng

// pcg32 is the bare PCG-XSH-RR generator. All arithmetic is explicit 32/64-bit
// unsigned with wrap-around, so sequences are identical across platforms.
type pcg32 struct {
	state uint64
	inc   uint64
}

func newPCG32(seed int64) *pcg32 {
	p := &pcg32{}
	p.seed(seed)
	return p
}

func (p *pcg32) seed(seed int64) {
	if seed == 0 {
		seed = -0x61C8864680B583EB // a zero seed is replaced by a fixed non-zero constant (bit pattern 0x9E3779B97F4A7C15)
	}
	p.state = 0
	p.inc = (uint64(seed) << 1) | 1
	p.uint32()
	p.state += uint64(seed)
	p.uint32()
}

func (p *pcg32) uint32() uint32 {
	oldstate := p.state
	p.state = oldstate*6364136223846793005 + p.inc
	xorshifted := uint32(((oldstate >> 18) ^ oldstate) >> 27)
	rot := uint32(oldstate >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

func (p *pcg32) uint64() uint64 {
	return (uint64(p.uint32()) << 32) | uint64(p.uint32())
}

// float64 returns a uniform draw in [0,1) using 53 bits of precision.
func (p *pcg32) float64() float64 {
	return float64(p.uint64()>>11) / (1 << 53)
}

// djb2 hashes a string into a stable 32-bit value, used to derive independent
// sub-streams from a label (and optional salt) without perturbing the base
// stream's own call sequence.
func djb2(s string) uint32 {
	var h uint32 = 5381
	for i := 0; i < len(s); i++ {
		h = h*33 + uint32(s[i])
	}
	return h
}

// mixSeed combines a base seed with a label hash so derived streams are
// independent of each other and of the parent, but fully determined by
// (baseSeed, label, salt).
func mixSeed(baseSeed int64, label string, salt uint32) int64 {
	h := djb2(label) ^ salt
	// multiplicative mix, kept in 32-bit domain before widening so the
	// result is stable regardless of host int size
	mixed := (h ^ uint32(baseSeed)) * 2654435761
	return int64(mixed) ^ (baseSeed << 1)
}
