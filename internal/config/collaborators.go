package config

import "sync"

// ProfileProvider is the financial-profile collaborator (spec.md §6 item 1):
// it returns the strongly typed fields that populate SimulationParams. No
// package in this module calls a ProfileProvider: batch.Run takes a
// SimulationParams value directly.
//
// Persistence and profile CRUD are explicit Non-goals, so this module ships
// no non-trivial implementation: callers that already have a SimulationParams
// value (the CLI decodes one from a JSON file) never need a ProfileProvider
// at all. The interface exists so an embedding application can plug its own
// profile store in without the engine importing it.
type ProfileProvider interface {
	LoadProfile(profileID string) (SimulationParams, error)
}

// CMALoader is the capital-market-assumption collaborator (spec.md §6 item
// 2). No package in this module calls a CMALoader: batch.Run takes a
// resolved CapitalMarketAssumptions value and the CLI passes DefaultCMA, so
// there is no engine-side fallback when a loader returns an error.
type CMALoader interface {
	LoadCMA(versionTag string) (CapitalMarketAssumptions, error)
}

// HistoricalReturnsLoader (spec.md §6 item 3) is defined in internal/distassets
// rather than here, since its return type (distassets.HistoricalBlock) is
// owned by the package that consumes it (SampleYearFromBlock) — defining it
// in config would require config to import distassets, which already imports
// config for Allocation/AssetClassCMA and would cycle.

// defaultCMALoader always returns DefaultCMA, whatever version tag it is
// given.
type defaultCMALoader struct{}

func (defaultCMALoader) LoadCMA(string) (CapitalMarketAssumptions, error) {
	return DefaultCMA(), nil
}

// DefaultCMALoader is a ready-made CMALoader backed by DefaultCMA; batch.Run
// does not consult it.
var DefaultCMALoader CMALoader = defaultCMALoader{}

// EngineContext bundles a resolved CMA snapshot and a per-run memoization
// cache behind a pointer, rather than keeping them in package-level mutable
// state (spec.md §9 design note: "no global mutable state" so that
// concurrent batch runs with different parameters never interfere).
// batch.Run and scenario.Run do not take an EngineContext; they receive the
// CMA value directly. The
// cache is for collaborator lookups that are expensive but invariant for the
// lifetime of one batch call (e.g. a resolved tax-bracket table); scenario
// and batch math itself never needs memoization since every draw is a pure
// function of its RNG stream.
type EngineContext struct {
	CMA   CapitalMarketAssumptions
	cache sync.Map
}

// NewEngineContext snapshots a CMA and returns a ready-to-use EngineContext.
func NewEngineContext(cma CapitalMarketAssumptions) *EngineContext {
	return &EngineContext{CMA: cma}
}

// CacheGet and CacheSet expose the per-run memoization cache to collaborator
// adapters (e.g. a CMALoader or tax provider wrapping a slow remote call).
func (c *EngineContext) CacheGet(key string) (any, bool) {
	return c.cache.Load(key)
}

func (c *EngineContext) CacheSet(key string, value any) {
	c.cache.Store(key, value)
}
