package calculator

const (
	monthsPerYear = 12.0

	// pvYieldPerKWp is the average yearly yield in kWh of one installed kWp.
	pvYieldPerKWp = 950.0
)

// Inputs holds the user-entered calculator fields as raw text.
// Numeric fields are parsed with ParseAmount when results are computed.
type Inputs struct {
	ElectricityConsumption string `json:"electricity_consumption"`
	ElectricityPrice       string `json:"electricity_price"`
	ElectricityBaseFee     string `json:"electricity_base_fee"`

	HeatingFuel        FuelType `json:"heating_fuel"`
	HeatingConsumption string   `json:"heating_consumption"`
	HeatingPrice       string   `json:"heating_price"`
	HeatingBaseFee     string   `json:"heating_base_fee"`

	PVKWp string `json:"pv_kwp"`

	AutarkyPercent         string `json:"autarky_percent"`
	SelfConsumptionPercent string `json:"self_consumption_percent"`
	FeedInTariff           string `json:"feed_in_tariff"`
	PurchasePrice          string `json:"purchase_price"`

	FinancingRate               string `json:"financing_rate"`
	DurationYears               string `json:"duration_years"`
	WithFinancingCost           string `json:"with_financing_cost"`
	WithFinancingAcquisition    string `json:"with_financing_acquisition"`
	WithoutFinancingCost        string `json:"without_financing_cost"`
	WithoutFinancingAcquisition string `json:"without_financing_acquisition"`
}

// Cost is a yearly cost together with its monthly share.
type Cost struct {
	Yearly  float64 `json:"yearly"`
	Monthly float64 `json:"monthly"`
}

// HeatingResult extends the heating cost with its electrical-equivalent demand in kWh.
type HeatingResult struct {
	Cost
	Demand float64 `json:"demand"`
}

// PVResult holds the photovoltaic yield.
type PVResult struct {
	YearlyYield float64 `json:"yearly_yield"`
}

// ComparisonRow compares the actual cost of one position with its target cost.
type ComparisonRow struct {
	Actual float64 `json:"actual"`
	Target float64 `json:"target"`
}

// Savings returns the difference between actual and target cost.
func (r ComparisonRow) Savings() float64 {
	return r.Actual - r.Target
}

// ComparisonTotal is the summary row of a comparison table.
type ComparisonTotal struct {
	Actual  float64 `json:"actual"`
	Target  float64 `json:"target"`
	Savings float64 `json:"savings"`
}

// ComparisonTable is the comparison for one period.
type ComparisonTable struct {
	Electricity     ComparisonRow   `json:"electricity"`
	Heating         ComparisonRow   `json:"heating"`
	SelfConsumption ComparisonRow   `json:"self_consumption"`
	Total           ComparisonTotal `json:"total"`
}

// Comparison holds the monthly and yearly comparison tables.
type Comparison struct {
	Monthly ComparisonTable `json:"monthly"`
	Yearly  ComparisonTable `json:"yearly"`
}

// FinancingPeriod compares the current cost with the financing rate for one period.
type FinancingPeriod struct {
	Actual float64 `json:"actual"`
	Rate   float64 `json:"rate"`
	Result float64 `json:"result"`
}

// Financing holds the monthly and yearly financing comparison.
type Financing struct {
	Monthly FinancingPeriod `json:"monthly"`
	Yearly  FinancingPeriod `json:"yearly"`
}

// Scenario is the advantage of one financing scenario over the contract duration.
type Scenario struct {
	RemainingCost float64 `json:"remaining_cost"`
	Savings       float64 `json:"savings"`
}

// Advantage holds both financing scenarios.
type Advantage struct {
	WithFinancing    Scenario `json:"with_financing"`
	WithoutFinancing Scenario `json:"without_financing"`
}

// Results contains every value derived from Inputs.
type Results struct {
	Electricity Cost          `json:"electricity"`
	Heating     HeatingResult `json:"heating"`
	PV          PVResult      `json:"pv"`
	Comparison  Comparison    `json:"comparison"`
	Financing   Financing     `json:"financing"`
	Advantage   Advantage     `json:"advantage"`
}

// Compute derives all results from the given inputs. It never fails:
// fields that do not parse as numbers count as zero.
//
// The comparison, financing and advantage groups have no formulas yet and
// are returned with zero values; only their difference columns are derived.
func Compute(in Inputs) Results {
	electricityYearly := ParseAmount(in.ElectricityConsumption)*ParseAmount(in.ElectricityPrice) +
		ParseAmount(in.ElectricityBaseFee)

	heatingConsumption := ParseAmount(in.HeatingConsumption)
	heatingYearly := heatingConsumption*ParseAmount(in.HeatingPrice) + ParseAmount(in.HeatingBaseFee)

	return Results{
		Electricity: Cost{
			Yearly:  electricityYearly,
			Monthly: electricityYearly / monthsPerYear,
		},
		Heating: HeatingResult{
			Cost: Cost{
				Yearly:  heatingYearly,
				Monthly: heatingYearly / monthsPerYear,
			},
			Demand: heatingConsumption * in.HeatingFuel.DemandFactor(),
		},
		PV: PVResult{
			YearlyYield: ParseAmount(in.PVKWp) * pvYieldPerKWp,
		},
		Comparison: Comparison{
			Monthly: comparisonTable(ComparisonTotal{}),
			Yearly:  comparisonTable(ComparisonTotal{}),
		},
		Financing: Financing{
			Monthly: financingPeriod(0, 0),
			Yearly:  financingPeriod(0, 0),
		},
	}
}

// comparisonTable leaves the per-position rows at zero until target costs
// can be derived from the consumption shares.
func comparisonTable(total ComparisonTotal) ComparisonTable {
	total.Savings = total.Actual - total.Target
	return ComparisonTable{Total: total}
}

func financingPeriod(actual, rate float64) FinancingPeriod {
	return FinancingPeriod{Actual: actual, Rate: rate, Result: actual - rate}
}
