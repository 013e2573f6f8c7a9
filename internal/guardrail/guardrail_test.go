package guardrail

import "testing"

func TestCapitalPreservationFlatCutAboveBand3(t *testing.T) {
	cfg := DefaultConfig()
	state := State{Essential: 40000, Discretionary: 20000, InitialWithdrawalRate: 0.04}
	// withdrawal rate 60000/800000 = 0.075, ratio 1.875 > 1.3
	decision := Evaluate(cfg, state, 800000, 0.03, 0.05, 25)
	if decision.RuleApplied != "capital-preservation" {
		t.Fatalf("expected capital-preservation rule, got %q", decision.RuleApplied)
	}
	want := state.Discretionary * 0.60
	if diff := decision.NewDiscretionary - want; diff > 1 || diff < -1 {
		t.Errorf("expected a flat 40%% cut to %v, got %v", want, decision.NewDiscretionary)
	}
	if decision.NewEssential != state.Essential {
		t.Errorf("essential spending should never be cut by the capital-preservation rule")
	}
}

func TestCapitalPreservationGraduatedWithinBand(t *testing.T) {
	cfg := DefaultConfig()
	// ratio exactly 1.2 -> a 20% cut, continuous with the 1.2-1.3 band's floor.
	state := State{Essential: 0, Discretionary: 100000, InitialWithdrawalRate: 0.05}
	// currentRate must be 0.06 so that ratio = 0.06/0.05 = 1.2 exactly.
	decision := Evaluate(cfg, state, 100000/0.06, 0.02, 0.05, 25)
	want := state.Discretionary * 0.80 // 20% cut
	if diff := decision.NewDiscretionary - want; diff > 50 || diff < -50 {
		t.Errorf("expected a ~20%% cut at ratio 1.2, got %v want ~%v", decision.NewDiscretionary, want)
	}
}

func TestProsperityFlatRaiseBelowBand2(t *testing.T) {
	cfg := DefaultConfig()
	state := State{Essential: 40000, Discretionary: 20000, InitialWithdrawalRate: 0.06}
	// withdrawal rate 60000/2000000 = 0.03, ratio 0.5 < 0.7
	decision := Evaluate(cfg, state, 2000000, 0.03, 0.05, 25)
	if decision.RuleApplied != "prosperity" {
		t.Fatalf("expected prosperity rule, got %q", decision.RuleApplied)
	}
	want := state.Discretionary * 1.30
	if diff := decision.NewDiscretionary - want; diff > 1 || diff < -1 {
		t.Errorf("expected a flat 30%% raise to %v, got %v", want, decision.NewDiscretionary)
	}
}

func TestHorizonGateSuppressesBandRulesNearEndOfPlan(t *testing.T) {
	cfg := DefaultConfig()
	state := State{Essential: 40000, Discretionary: 20000, InitialWithdrawalRate: 0.04}
	// Same extreme over-withdrawal as the flat-cut test, but with <= 15 years
	// left: the band rules must not fire.
	decision := Evaluate(cfg, state, 800000, 0.03, 0.05, 10)
	if decision.RuleApplied == "capital-preservation" {
		t.Errorf("expected the capital-preservation band to be gated off within 15 years of the horizon")
	}
}

func TestPortfolioManagementSkipsInflationOnNegativeRealReturnAlone(t *testing.T) {
	cfg := DefaultConfig()
	state := State{Essential: 40000, Discretionary: 20000, InitialWithdrawalRate: 0.05}
	// Ratio stays near 1 (no band trigger) but the prior year's real return
	// was negative and inflation is low — the rule must still freeze
	// spending; it is not conditioned on inflation running hot.
	decision := Evaluate(cfg, state, 1200000, 0.01, -0.01, 25)
	if decision.RuleApplied != "portfolio-management" {
		t.Fatalf("expected portfolio-management rule, got %q", decision.RuleApplied)
	}
	if decision.NewEssential != state.Essential || decision.NewDiscretionary != state.Discretionary {
		t.Errorf("expected spending to be frozen exactly, got essential=%v discretionary=%v",
			decision.NewEssential, decision.NewDiscretionary)
	}
}

func TestInflationRuleAppliesFullAdjustment(t *testing.T) {
	cfg := DefaultConfig()
	state := State{Essential: 40000, Discretionary: 20000, InitialWithdrawalRate: 0.05}
	decision := Evaluate(cfg, state, 1200000, 0.03, 0.05, 25)
	if decision.RuleApplied != "inflation" {
		t.Fatalf("expected the inflation rule, got %q", decision.RuleApplied)
	}
	if decision.NewEssential <= state.Essential {
		t.Errorf("expected inflation-adjusted essential spending to rise")
	}
}

func TestPortfolioDepletedZeroesDiscretionary(t *testing.T) {
	cfg := DefaultConfig()
	state := State{Essential: 40000, Discretionary: 20000, InitialWithdrawalRate: 0.05}
	decision := Evaluate(cfg, state, 0, 0.03, -0.2, 25)
	if decision.NewDiscretionary != 0 {
		t.Errorf("expected discretionary spending to be zeroed when the portfolio is depleted, got %v", decision.NewDiscretionary)
	}
}

func TestFloorClampPreventsOverCutting(t *testing.T) {
	cfg := DefaultConfig()
	// Discretionary spending dwarfs essential, so a flat 40% discretionary
	// cut drives the total below the essential-share floor; the clamp
	// should pull the total back up to the floor.
	state := State{Essential: 1000, Discretionary: 100000, InitialWithdrawalRate: 0.04}
	decision := Evaluate(cfg, state, 800000, 0.03, 0.05, 25)
	previousTotal := state.Essential + state.Discretionary
	floor := cfg.EssentialShare * previousTotal
	total := decision.NewEssential + decision.NewDiscretionary
	if total < floor-1 {
		t.Errorf("total withdrawal %v fell below the floor %v", total, floor)
	}
}

func TestCeilingClampPreventsOverRaising(t *testing.T) {
	cfg := DefaultConfig()
	// Ratio sits mid-band (neither cut nor raise triggers) but a spike in
	// inflation alone would push the ordinary inflation adjustment above
	// the 1.5x ceiling.
	state := State{Essential: 40000, Discretionary: 20000, InitialWithdrawalRate: 0.05}
	decision := Evaluate(cfg, state, 1200000, 0.60, 0.05, 25)
	if decision.RuleApplied != "inflation" {
		t.Fatalf("expected the inflation rule, got %q", decision.RuleApplied)
	}
	previousTotal := state.Essential + state.Discretionary
	ceiling := cfg.CeilingFactor * previousTotal
	total := decision.NewEssential + decision.NewDiscretionary
	if total > ceiling+1 {
		t.Errorf("total withdrawal %v exceeded the ceiling %v", total, ceiling)
	}
}

func TestEvaluateIsPure(t *testing.T) {
	cfg := DefaultConfig()
	state := State{Essential: 40000, Discretionary: 20000, InitialWithdrawalRate: 0.04}
	d1 := Evaluate(cfg, state, 800000, 0.03, 0.05, 25)
	d2 := Evaluate(cfg, state, 800000, 0.03, 0.05, 25)
	if d1 != d2 {
		t.Errorf("Evaluate should be a pure function of its arguments: %+v vs %+v", d1, d2)
	}
}
