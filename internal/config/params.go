package config

// Demographics groups the household's age, health, and filing-status inputs
// (spec.md §3 SimulationParams / Demographics).
type Demographics struct {
	CurrentAge        float64      `json:"currentAge"`
	SpouseAge         float64      `json:"spouseAge,omitempty"`
	RetirementAge     float64      `json:"retirementAge"`
	SpouseRetirementAge float64    `json:"spouseRetirementAge,omitempty"`
	LifeExpectancy    float64      `json:"lifeExpectancy"`
	SpouseLifeExpectancy float64   `json:"spouseLifeExpectancy,omitempty"`
	HasSpouse         bool         `json:"hasSpouse"`
	HealthStatus      HealthStatus `json:"healthStatus"`
	SpouseHealthStatus HealthStatus `json:"spouseHealthStatus,omitempty"`
	FilingStatus      FilingStatus `json:"filingStatus"`
	BirthYear         int          `json:"birthYear"`
	SpouseBirthYear   int          `json:"spouseBirthYear,omitempty"`
	MortalityMode     MortalityMode `json:"mortalityMode"`
}

// AssetBuckets is the bucketed decomposition of retirement assets
// (spec.md §3). TotalAssets must equal the sum of the other four on every
// mutation; callers should use Normalize to enforce this rather than
// setting TotalAssets directly.
type AssetBuckets struct {
	TaxDeferred     float64 `json:"taxDeferred"`
	TaxFree         float64 `json:"taxFree"`
	CapitalGains    float64 `json:"capitalGains"`
	CashEquivalents float64 `json:"cashEquivalents"`
	TotalAssets     float64 `json:"totalAssets"`
}

// Sum returns the sum of the four component buckets.
func (b AssetBuckets) Sum() float64 {
	return b.TaxDeferred + b.TaxFree + b.CapitalGains + b.CashEquivalents
}

// Normalize recomputes TotalAssets from the components, keeping the
// invariant `totalAssets == taxDeferred + taxFree + capitalGains +
// cashEquivalents` true after any mutation.
func (b *AssetBuckets) Normalize() {
	b.TotalAssets = b.Sum()
}

// Consistent reports whether TotalAssets matches the component sum within
// the given tolerance.
func (b AssetBuckets) Consistent(tolerance float64) bool {
	diff := b.TotalAssets - b.Sum()
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

// Allocation is the household's asset-class mix, which must sum to ~1
// (spec.md §3 Market assumptions).
type Allocation struct {
	Stocks      float64 `json:"stocks"`
	IntlStocks  float64 `json:"intlStocks"`
	Bonds       float64 `json:"bonds"`
	REITs       float64 `json:"reits"`
	Cash        float64 `json:"cash"`
}

// Sum returns the total allocation weight.
func (a Allocation) Sum() float64 {
	return a.Stocks + a.IntlStocks + a.Bonds + a.REITs + a.Cash
}

// IncomeStream is a guaranteed or semi-guaranteed income source for one
// household member (Social Security, pension, part-time work, annuity).
type IncomeStream struct {
	AnnualAmount     float64 `json:"annualAmount"`
	StartAge         float64 `json:"startAge"`
	EndAge           float64 `json:"endAge,omitempty"` // 0 = continues for life
	SurvivorPercent  float64 `json:"survivorPercent,omitempty"`
	COLAAdjusted     bool    `json:"colaAdjusted"`
}

// CashFlows groups spending, savings, and income inputs.
type CashFlows struct {
	AnnualRetirementExpenses float64      `json:"annualRetirementExpenses"`
	HealthcareCostBaseline   float64      `json:"healthcareCostBaseline"`
	AnnualSavings            float64      `json:"annualSavings"`
	SpouseAnnualSavings      float64      `json:"spouseAnnualSavings,omitempty"`
	SocialSecurity           IncomeStream `json:"socialSecurity"`
	SpouseSocialSecurity     IncomeStream `json:"spouseSocialSecurity,omitempty"`
	Pension                  IncomeStream `json:"pension,omitempty"`
	SpousePension             IncomeStream `json:"spousePension,omitempty"`
	PartTimeIncome            IncomeStream `json:"partTimeIncome,omitempty"`
	SpousePartTimeIncome      IncomeStream `json:"spousePartTimeIncome,omitempty"`
	Annuity                   IncomeStream `json:"annuity,omitempty"`
	LegacyGoal                float64      `json:"legacyGoal,omitempty"`
}

// LTCPolicy is an optional long-term-care insurance policy (§4.5).
type LTCPolicy struct {
	Enabled            bool    `json:"enabled"`
	DailyBenefit       float64 `json:"dailyBenefit"`
	EliminationDays    int     `json:"eliminationDays"`
	InflationRider     bool    `json:"inflationRider"`
	AnnualPremium      float64 `json:"annualPremium"`
}

// ItemizationOptions controls whether itemized deductions are computed and
// supplies the inputs the tax kernel needs (§4.6 step 4).
type ItemizationOptions struct {
	ForceItemized     bool    `json:"forceItemized"`
	SaltPaid          float64 `json:"saltPaid"`
	MortgageInterest  float64 `json:"mortgageInterest"`
	CharitableGifts   float64 `json:"charitableGifts"`
	MedicalExpenses   float64 `json:"medicalExpenses"`
	OtherItemized     float64 `json:"otherItemized"`
	QBIIncome         float64 `json:"qbiIncome"`
}

// ACAEnrollment carries the household's ACA marketplace enrollment data for
// pre-Medicare health coverage and PTC reconciliation (§4.6 step 12).
type ACAEnrollment struct {
	Enrolled          bool    `json:"enrolled"`
	BenchmarkAnnual   float64 `json:"benchmarkAnnual"`
	AptcApplied       float64 `json:"aptcApplied"`
	HouseholdSize     int     `json:"householdSize"`
	EnrolleesUnder65  int     `json:"enrolleesUnder65"`
}

// Strategy groups withdrawal/guardrail/glidepath policy choices.
type Strategy struct {
	WithdrawalRate       float64           `json:"withdrawalRate"`
	UseGuardrails        bool              `json:"useGuardrails"`
	DiscretionaryShare   float64           `json:"discretionaryShare"`
	DiscretionaryMinimum float64           `json:"discretionaryMinimum"`
	WithdrawalTiming     WithdrawalTiming  `json:"withdrawalTiming"`
	Glidepath            GlidepathStrategy `json:"glidepath"`
	LTC                  LTCPolicy         `json:"ltc,omitempty"`
	Itemization          ItemizationOptions `json:"itemization,omitempty"`
	ACA                  ACAEnrollment      `json:"aca,omitempty"`
	BearOnlyDiscretionaryAdjustments bool  `json:"bearOnlyDiscretionaryAdjustments"`
	SpendingSmile        bool              `json:"spendingSmile"`
	RealDollarMode       bool              `json:"realDollarMode"`
	ContinueAfterSecondDeath bool          `json:"continueAfterSecondDeath"`
	AnnualQCDRequest     float64           `json:"annualQCDRequest"`
}

// VarianceReduction toggles the batch orchestrator's variance-reduction
// overlays (§4.10, §9).
type VarianceReduction struct {
	UseAntitheticVariates  bool `json:"useAntitheticVariates"`
	UseStratifiedSampling  bool `json:"useStratifiedSampling"`
	StratifiedDimensions   int  `json:"stratifiedDimensions"`
	UseControlVariates     bool `json:"useControlVariates"`
}

// MarketAssumptions groups the expected-return, volatility, inflation, and
// allocation inputs (§3 Market assumptions).
type MarketAssumptions struct {
	ExpectedReturn   float64            `json:"expectedReturn"`
	ReturnTag        ReturnTag          `json:"returnTag"`
	Volatility       float64            `json:"volatility"`
	InflationRate    float64            `json:"inflationRate"`
	Allocation       Allocation         `json:"allocation"`
	Distribution     DistributionFamily `json:"distribution"`
	StudentTDF       float64            `json:"studentTDegreesOfFreedom,omitempty"`
}

// SimulationParams is the full input to a batch call (spec.md §3).
type SimulationParams struct {
	Demographics Demographics      `json:"demographics"`
	Assets       AssetBuckets      `json:"assets"`
	CashFlows    CashFlows         `json:"cashFlows"`
	Market       MarketAssumptions `json:"market"`
	Strategy     Strategy          `json:"strategy"`
	State        string            `json:"state"`

	RandomSeed        int64             `json:"randomSeed"`
	VarianceReduction VarianceReduction `json:"varianceReduction"`
}

// ApplyDefaults fills in the non-zero defaults spec.md calls out (discretionary
// share default 1 - essentialShare with essentialShare 0.70, withdrawal
// timing, etc.) without overwriting fields the caller already set.
func (p *SimulationParams) ApplyDefaults() {
	if p.Strategy.DiscretionaryShare == 0 {
		p.Strategy.DiscretionaryShare = 0.30
	}
	if p.Strategy.WithdrawalTiming == "" {
		p.Strategy.WithdrawalTiming = TimingEnd
	}
	if p.Strategy.Glidepath == "" {
		p.Strategy.Glidepath = GlidepathTraditional
	}
	if p.Market.Distribution == "" {
		p.Market.Distribution = DistributionNormal
	}
	if p.Market.ReturnTag == "" {
		p.Market.ReturnTag = ReturnTag(ReturnCAGR)
	}
	if p.Market.StudentTDF == 0 {
		p.Market.StudentTDF = 5
	}
	if p.VarianceReduction.StratifiedDimensions == 0 {
		p.VarianceReduction.StratifiedDimensions = 30
	}
	if p.State == "" {
		p.State = "NONE"
	}
}
