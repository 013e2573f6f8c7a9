// Package scenario runs a single Monte Carlo iteration's year-by-year
// retirement life cycle: accumulation, then decumulation through market
// returns, inflation, guaranteed income, guardrail-adjusted spending,
// long-term care episodes, taxes, and mortality, producing a full
// cash-flow trace (spec.md §4.9, grounded in the teacher's
// internal/simulation/engine.go year-stepped Monte Carlo loop).
package scenario

import (
	"math"

	"github.com/areumfire/retirement-mc/internal/config"
	"github.com/areumfire/retirement-mc/internal/distassets"
	"github.com/areumfire/retirement-mc/internal/guardrail"
	"github.com/areumfire/retirement-mc/internal/mortality"
	"github.com/areumfire/retirement-mc/internal/obslog"
	"github.com/areumfire/retirement-mc/internal/regime"
	"github.com/areumfire/retirement-mc/internal/rng"
	"github.com/areumfire/retirement-mc/internal/tax"
	"github.com/areumfire/retirement-mc/internal/withdrawal"
)

// TaxYearFunc resolves the tax-year configuration and calculator for a
// given calendar year, so the scenario walk can call into internal/tax
// without owning the tax provider's lifetime (spec.md §6 item 4).
type TaxYearFunc func(year int) *tax.Calculator

// YearlyCashFlow is one year's full financial snapshot (spec.md §3
// YearlyCashFlow / §8 cash-flow trace requirement).
type YearlyCashFlow struct {
	Year                   int
	Age                    float64
	SpouseAge              float64
	Phase                  string // "accumulation" or "decumulation"
	MarketRegime           config.MarketRegime
	PortfolioReturn        float64
	Inflation              float64
	PortfolioStart         float64
	GuaranteedIncome       float64
	EssentialSpending      float64
	DiscretionarySpending  float64
	LTCOutOfPocket         float64
	LTCInsurancePaid       float64
	GrossWithdrawal        float64
	RMDAmount              float64
	TaxOwed                float64
	GuardrailRule          string
	PortfolioEnd           float64
	OwnerDied              bool
	SpouseDied             bool
	Depleted               bool
}

// Outcome is the full result of one simulated lifetime (spec.md §3
// ScenarioOutcome).
type Outcome struct {
	Years                  []YearlyCashFlow
	DepletedBeforeHorizon  bool
	DepletionAge           float64
	FinalPortfolioValue    float64
	OwnerDeathAge          float64
	SpouseDeathAge         float64
	TotalLTCOutOfPocket    float64
	TotalDiscretionaryCut  float64
	SuccessNoDepletion     bool
	SuccessFullSpending    bool
	SuccessLegacyMet       bool
}

// Run simulates one full lifetime for the given parameters and random
// stream. r is expected to be the iteration's root stream; Run derives
// independently-labelled sub-streams for market, mortality, and LTC draws
// so that, e.g., replacing the mortality mode never perturbs the market
// path (spec.md §4.9, §8 cross-contamination invariant).
func Run(p config.SimulationParams, cma config.CapitalMarketAssumptions, taxYear TaxYearFunc, guardrailCfg guardrail.Config, r rng.RNG) Outcome {
	marketStream := r.Derive("market", 0)
	mortalityStream := r.Derive("mortality", 0)
	ltcStream := r.Derive("ltc", 0)

	buckets := withdrawal.Buckets{
		TaxDeferred:     p.Assets.TaxDeferred,
		TaxFree:         p.Assets.TaxFree,
		CapitalGains:    p.Assets.CapitalGains,
		CashEquivalents: p.Assets.CashEquivalents,
	}

	ownerDeathAge := float64(mortality.ResolveDeathAge(mortalityStream, p.Demographics.MortalityMode, int(p.Demographics.CurrentAge), p.Demographics.HealthStatus))
	spouseDeathAge := math.Inf(1)
	if p.Demographics.HasSpouse {
		if p.Demographics.MortalityMode == config.MortalityFixed93 {
			spouseDeathAge = float64(mortality.FixedHorizonAge)
		} else {
			a, b := mortality.SampleCoupleDeathAges(mortalityStream, int(p.Demographics.CurrentAge), int(p.Demographics.SpouseAge),
				p.Demographics.HealthStatus, p.Demographics.SpouseHealthStatus)
			ownerDeathAge, spouseDeathAge = float64(a), float64(b)
		}
	}

	// horizonAge is a ceiling on the simulation independent of the sampled
	// death age above: in stochastic mode it is itself sampled from the
	// three-bucket life-expectancy model (spec.md §4.4 step 2) rather than
	// passed through deterministically, since the annual-survival-table
	// draws above only resolve the death event, not the planning horizon.
	horizonAge := p.Demographics.LifeExpectancy
	if p.Demographics.HasSpouse && p.Demographics.SpouseLifeExpectancy > horizonAge {
		horizonAge = p.Demographics.SpouseLifeExpectancy
	}
	if p.Demographics.MortalityMode == config.MortalityStochastic {
		lifeExpStream := mortalityStream.Derive("life-expectancy", 0)
		if p.Demographics.HasSpouse {
			a, b := mortality.SampleCoupleLifeExpectancyBucketed(lifeExpStream,
				p.Demographics.LifeExpectancy, p.Demographics.SpouseLifeExpectancy,
				int(p.Demographics.CurrentAge), int(p.Demographics.SpouseAge))
			horizonAge = math.Max(a, b)
		} else {
			horizonAge = mortality.SampleLifeExpectancyBucketed(lifeExpStream,
				p.Demographics.LifeExpectancy, int(p.Demographics.CurrentAge))
		}
	}

	currentRegime := regime.SampleInitial(marketStream.Derive("regime", 0))

	var mrState distassets.MeanRevertState
	var gState guardrail.State
	gState.Essential = p.CashFlows.AnnualRetirementExpenses * (1 - p.Strategy.DiscretionaryShare)
	gState.Discretionary = p.CashFlows.AnnualRetirementExpenses * p.Strategy.DiscretionaryShare
	gState.InitialWithdrawalRate = p.Strategy.WithdrawalRate
	if gState.InitialWithdrawalRate == 0 && p.Assets.TotalAssets > 0 {
		gState.InitialWithdrawalRate = p.CashFlows.AnnualRetirementExpenses / p.Assets.TotalAssets
	}

	inflation := p.Market.InflationRate
	priorRealReturn := 0.0

	outcome := Outcome{}
	age := p.Demographics.CurrentAge
	spouseAge := p.Demographics.SpouseAge
	year := 0
	calendarYear := 2024

	essential, discretionary := gState.Essential, gState.Discretionary

	// magiHistory is indexed by the loop's year counter and seeded with
	// accumulation-phase zeros, so the IRMAA 2-year lookback naturally
	// resolves to 0 until two years of decumulation MAGI exist (spec.md §3
	// MAGI history, §4.6 step 11).
	var magiHistory []float64

	var ltcEpisode mortality.Episode
	var ltcEpisodeDaysElapsed int
	survivorAdjusted := false

	for age <= horizonAge && age <= ownerDeathAge && !outcome.DepletedBeforeHorizon {
		phase := "decumulation"
		if age < p.Demographics.RetirementAge {
			phase = "accumulation"
		}

		sample, err := distassets.SampleYear(marketStream, cma, currentRegime, p.Market.Distribution, p.Market.StudentTDF, inflation, &mrState)
		if err != nil {
			break
		}
		inflation = sample.Inflation
		portfolioReturn := distassets.PortfolioReturn(sample.Returns, p.Market.Allocation)

		portfolioStart := buckets.TaxDeferred + buckets.TaxFree + buckets.CapitalGains + buckets.CashEquivalents

		cf := YearlyCashFlow{
			Year:            year,
			Age:             age,
			SpouseAge:       spouseAge,
			Phase:           phase,
			MarketRegime:    currentRegime,
			PortfolioReturn: portfolioReturn,
			Inflation:       inflation,
			PortfolioStart:  portfolioStart,
		}

		ownerDied := age >= ownerDeathAge
		spouseDied := p.Demographics.HasSpouse && spouseAge >= spouseDeathAge
		cf.OwnerDied = ownerDied
		cf.SpouseDied = spouseDied

		if phase == "accumulation" {
			growPortfolio(&buckets, portfolioReturn, p.Strategy.WithdrawalTiming)
			buckets.CashEquivalents += p.CashFlows.AnnualSavings + p.CashFlows.SpouseAnnualSavings
			cf.PortfolioEnd = buckets.TaxDeferred + buckets.TaxFree + buckets.CapitalGains + buckets.CashEquivalents
			outcome.Years = append(outcome.Years, cf)
			obslog.Year("accumulation year %d age %.0f portfolio %.0f", year, age, cf.PortfolioEnd)
			magiHistory = append(magiHistory, 0)
			age++
			if p.Demographics.HasSpouse {
				spouseAge++
			}
			year++
			calendarYear++
			continue
		}

		guaranteedIncome := guaranteedIncomeFor(p, age, spouseAge, ownerDied, spouseDied, inflation, year)
		cf.GuaranteedIncome = guaranteedIncome

		// An episode is sampled only while none has occurred yet this
		// scenario (at most one primary episode per person, spec.md §4.5);
		// once one occurs its cost and active/resolved state are carried
		// forward year over year rather than resampled, and the elimination
		// period is satisfied by a genuinely incrementing day counter rather
		// than the policy's own elimination window.
		if !ltcEpisode.Occurred {
			ltcEpisode = mortality.SampleEpisode(ltcStream, int(age), 1.0)
			ltcEpisodeDaysElapsed = 0
		}
		ltcOOP, ltcPaid := 0.0, 0.0
		if ltcEpisode.Occurred {
			yearsSinceOnset := int(age) - ltcEpisode.OnsetAge
			if float64(yearsSinceOnset) < ltcEpisode.DurationYears {
				annualCost := mortality.ProjectedAnnualCost(ltcEpisode, yearsSinceOnset)
				ltcOOP, ltcPaid = mortality.InsuranceNet(p.Strategy.LTC, annualCost, ltcEpisodeDaysElapsed)
				ltcEpisodeDaysElapsed += 365
			}
		}
		cf.LTCOutOfPocket = ltcOOP
		cf.LTCInsurancePaid = ltcPaid

		// essential/discretionary advance every decumulation year: under
		// guardrails the band decision replaces them outright, otherwise
		// they simply inflate (spec.md §4.8, §8 guardrails-off invariant
		// that the series equals initial * prod(1+inflation_t)).
		essentialThisYear, discretionaryThisYear := essential, discretionary
		if p.Strategy.UseGuardrails {
			remainingHorizonYears := int(math.Min(horizonAge, ownerDeathAge) - age)
			preDecisionDiscretionary := gState.Discretionary
			decision := guardrail.Evaluate(guardrailCfg, gState, portfolioStart, inflation, priorRealReturn, remainingHorizonYears)
			essentialThisYear, discretionaryThisYear = decision.NewEssential, decision.NewDiscretionary
			cf.GuardrailRule = decision.RuleApplied
			if cut := preDecisionDiscretionary - decision.NewDiscretionary; cut > 0 {
				outcome.TotalDiscretionaryCut += cut
			}
		} else {
			essentialThisYear, discretionaryThisYear = essential*(1+inflation), discretionary*(1+inflation)
		}
		if (spouseDied || ownerDied) && !survivorAdjusted {
			survivorAdjusted = true
			preSurvivorDiscretionary := discretionaryThisYear
			essentialThisYear, discretionaryThisYear = mortality.SurvivorExpenseAdjustment(essentialThisYear, discretionaryThisYear)
			if cut := preSurvivorDiscretionary - discretionaryThisYear; cut > 0 {
				outcome.TotalDiscretionaryCut += cut
			}
		}
		// The post-survivor-adjustment values become next year's baseline, so
		// a spouse's death permanently lowers the level inflation compounds
		// from.
		essential, discretionary = essentialThisYear, discretionaryThisYear
		gState.Essential, gState.Discretionary = essentialThisYear, discretionaryThisYear
		cf.EssentialSpending = essentialThisYear
		cf.DiscretionarySpending = discretionaryThisYear

		netNeed := math.Max(0, essentialThisYear+discretionaryThisYear+ltcOOP-guaranteedIncome)

		calc := taxYear(calendarYear)
		lookbackMAGI := 0.0
		if year-2 >= 0 && year-2 < len(magiHistory) {
			lookbackMAGI = magiHistory[year-2]
		}
		taxFn := makeTaxFn(calc, p, age, spouseAge, lookbackMAGI)

		wRes := withdrawal.Execute(withdrawal.Request{
			NetSpendingNeed:       netNeed,
			OwnerAge:              int(age),
			SpouseAge:             spouseAge,
			SoleSpouseBeneficiary: p.Demographics.HasSpouse,
			BirthYear:             p.Demographics.BirthYear,
			QCDRequested:          p.Strategy.AnnualQCDRequest,
		}, &buckets, withdrawal.SequenceTaxEfficient, taxFn)

		cf.GrossWithdrawal = wRes.GrossWithdrawn
		cf.RMDAmount = wRes.RMDAmount
		cf.TaxOwed = wRes.TaxOwed
		outcome.TotalLTCOutOfPocket += ltcOOP

		yearResult := calc.Calculate(tax.Inputs{
			Filing:                 p.Demographics.FilingStatus,
			State:                  p.State,
			Age:                    age,
			SpouseAge:              spouseAge,
			OrdinaryIncome:         wRes.FromTaxDeferred,
			LongTermCapitalGains:   wRes.FromCapitalGains,
			SocialSecurityBenefits: p.CashFlows.SocialSecurity.AnnualAmount,
			LookbackMAGI:           lookbackMAGI,
			ACA:                    p.Strategy.ACA,
		})
		magiHistory = append(magiHistory, yearResult.AdjustedGrossIncome)

		growPortfolio(&buckets, portfolioReturn, p.Strategy.WithdrawalTiming)
		portfolioEnd := buckets.TaxDeferred + buckets.TaxFree + buckets.CapitalGains + buckets.CashEquivalents
		cf.PortfolioEnd = portfolioEnd

		if portfolioEnd <= 0 || wRes.RemainingShortfall > 0 {
			cf.Depleted = true
			outcome.DepletedBeforeHorizon = true
			outcome.DepletionAge = age
		}

		outcome.Years = append(outcome.Years, cf)
		obslog.Year("decumulation year %d age %.0f portfolio %.0f withdrawal %.0f", year, age, portfolioEnd, wRes.GrossWithdrawn)

		priorRealReturn = portfolioReturn - inflation
		currentRegime = regime.Transition(marketStream.Derive("regime", uint32(year)), currentRegime)

		age++
		if p.Demographics.HasSpouse {
			spouseAge++
		}
		year++
		calendarYear++
	}

	outcome.FinalPortfolioValue = buckets.TaxDeferred + buckets.TaxFree + buckets.CapitalGains + buckets.CashEquivalents
	outcome.OwnerDeathAge = ownerDeathAge
	outcome.SpouseDeathAge = spouseDeathAge
	outcome.SuccessNoDepletion = !outcome.DepletedBeforeHorizon
	outcome.SuccessFullSpending = !outcome.DepletedBeforeHorizon && outcome.TotalDiscretionaryCut == 0
	outcome.SuccessLegacyMet = !outcome.DepletedBeforeHorizon && outcome.FinalPortfolioValue >= p.CashFlows.LegacyGoal
	return outcome
}

// growPortfolio applies one year's portfolio return to every bucket,
// honoring the withdrawal-timing convention: start-of-year withdrawals
// have already been taken out of the balance subject to growth by the time
// this is called in the decumulation branch, since Execute runs before
// growPortfolio for "end" timing. spec.md §4.9 step 1 Open Question
// resolves in favor of applying growth strictly after withdrawals
// (end-of-year convention) unless the caller configured start/mid timing,
// in which case growth is pro-rated.
func growPortfolio(b *withdrawal.Buckets, portfolioReturn float64, timing config.WithdrawalTiming) {
	factor := 1 + portfolioReturn
	switch timing {
	case config.TimingStart:
		factor = 1 + portfolioReturn
	case config.TimingMid:
		factor = 1 + portfolioReturn*0.5
	}
	b.TaxDeferred *= factor
	b.TaxFree *= factor
	b.CapitalGains *= factor
	b.CashEquivalents *= factor
}

// guaranteedIncomeFor sums the household's active, inflation-adjusted
// income streams for the year, scaling a deceased spouse's streams by their
// SurvivorPercent (spec.md §4.9 step 2). Stream amounts are used as given;
// no claiming-age adjustment is applied here.
func guaranteedIncomeFor(p config.SimulationParams, age, spouseAge float64, ownerDied, spouseDied bool, inflation float64, yearsElapsed int) float64 {
	total := 0.0
	grow := func(amount float64, colaAdjusted bool) float64 {
		if !colaAdjusted {
			return amount
		}
		return amount * math.Pow(1+inflation, float64(yearsElapsed))
	}

	streams := []config.IncomeStream{
		p.CashFlows.SocialSecurity, p.CashFlows.Pension, p.CashFlows.PartTimeIncome, p.CashFlows.Annuity,
	}
	if !ownerDied {
		for _, s := range streams {
			if active(s, age) {
				total += grow(s.AnnualAmount, s.COLAAdjusted)
			}
		}
	} else if p.Demographics.HasSpouse {
		for _, s := range streams {
			if active(s, age) {
				total += grow(s.AnnualAmount, s.COLAAdjusted) * s.SurvivorPercent
			}
		}
	}

	if p.Demographics.HasSpouse {
		spouseStreams := []config.IncomeStream{p.CashFlows.SpouseSocialSecurity, p.CashFlows.SpousePension, p.CashFlows.SpousePartTimeIncome}
		if !spouseDied {
			for _, s := range spouseStreams {
				if active(s, spouseAge) {
					total += grow(s.AnnualAmount, s.COLAAdjusted)
				}
			}
		} else if !ownerDied {
			for _, s := range spouseStreams {
				if active(s, spouseAge) {
					total += grow(s.AnnualAmount, s.COLAAdjusted) * s.SurvivorPercent
				}
			}
		}
	}
	return total
}

func active(s config.IncomeStream, age float64) bool {
	if s.AnnualAmount <= 0 {
		return false
	}
	if age < s.StartAge {
		return false
	}
	if s.EndAge > 0 && age > s.EndAge {
		return false
	}
	return true
}

// makeTaxFn closes over the year's tax calculator and the household's
// static inputs to produce the withdrawal sequencer's TaxOnWithdrawal
// callback; it approximates the incremental tax of a withdrawal as the
// marginal tax on that withdrawal layered on top of the owner's Social
// Security benefit, the only other income the baseline passes to the
// calculator (spec.md §4.7 step 4 / §4.6 stacking order).
func makeTaxFn(calc *tax.Calculator, p config.SimulationParams, age, spouseAge, lookbackMAGI float64) withdrawal.TaxOnWithdrawal {
	return func(fromTaxDeferred, fromCapitalGains float64) float64 {
		baseline := calc.Calculate(tax.Inputs{
			Filing:                 p.Demographics.FilingStatus,
			State:                  p.State,
			Age:                    age,
			SpouseAge:              spouseAge,
			SocialSecurityBenefits: p.CashFlows.SocialSecurity.AnnualAmount,
			LookbackMAGI:           lookbackMAGI,
			ACA:                    p.Strategy.ACA,
		})
		withDraw := calc.Calculate(tax.Inputs{
			Filing:                 p.Demographics.FilingStatus,
			State:                  p.State,
			Age:                    age,
			SpouseAge:              spouseAge,
			OrdinaryIncome:         fromTaxDeferred,
			LongTermCapitalGains:   fromCapitalGains,
			SocialSecurityBenefits: p.CashFlows.SocialSecurity.AnnualAmount,
			LookbackMAGI:           lookbackMAGI,
			ACA:                    p.Strategy.ACA,
		})
		return math.Max(0, withDraw.TotalTax-baseline.TotalTax)
	}
}
