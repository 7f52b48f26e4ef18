package calculator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrUnknownField is returned when a field key is not part of Inputs.
	ErrUnknownField = errors.New("unknown input field")
	// ErrInvalidFuelType is returned for fuel types other than gas and oil.
	ErrInvalidFuelType = errors.New("invalid fuel type")
)

// FuelType is the heating fuel. The zero value is FuelGas.
type FuelType int

const (
	FuelGas FuelType = iota
	FuelOil
)

const (
	gasDemandFactor = 10.0
	oilDemandFactor = 10.5
)

// ParseFuelType accepts "gas", "oel" and "oil", ignoring case and surrounding spaces.
func ParseFuelType(raw string) (FuelType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gas":
		return FuelGas, nil
	case "oel", "oil":
		return FuelOil, nil
	default:
		return FuelGas, fmt.Errorf("%w: %q", ErrInvalidFuelType, raw)
	}
}

func (f FuelType) String() string {
	switch f {
	case FuelGas:
		return "gas"
	case FuelOil:
		return "oel"
	default:
		return fmt.Sprintf("FuelType(%d)", int(f))
	}
}

// DemandFactor converts fuel consumption into its electrical-equivalent
// demand. Every fuel other than gas uses the oil factor.
func (f FuelType) DemandFactor() float64 {
	if f == FuelGas {
		return gasDemandFactor
	}
	return oilDemandFactor
}

// MarshalText implements encoding.TextMarshaler.
func (f FuelType) MarshalText() ([]byte, error) {
	if f != FuelGas && f != FuelOil {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFuelType, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text means gas.
func (f *FuelType) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*f = FuelGas
		return nil
	}
	parsed, err := ParseFuelType(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseAmount parses a user-entered number. Empty, malformed and
// non-finite input yields zero.
func ParseAmount(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

// Field is the form key of one input.
type Field string

const (
	FieldElectricityConsumption      Field = "electricity_consumption"
	FieldElectricityPrice            Field = "electricity_price"
	FieldElectricityBaseFee          Field = "electricity_base_fee"
	FieldHeatingFuel                 Field = "heating_fuel"
	FieldHeatingConsumption          Field = "heating_consumption"
	FieldHeatingPrice                Field = "heating_price"
	FieldHeatingBaseFee              Field = "heating_base_fee"
	FieldPVKWp                       Field = "pv_kwp"
	FieldAutarkyPercent              Field = "autarky_percent"
	FieldSelfConsumptionPercent      Field = "self_consumption_percent"
	FieldFeedInTariff                Field = "feed_in_tariff"
	FieldPurchasePrice               Field = "purchase_price"
	FieldFinancingRate               Field = "financing_rate"
	FieldDurationYears               Field = "duration_years"
	FieldWithFinancingCost           Field = "with_financing_cost"
	FieldWithFinancingAcquisition    Field = "with_financing_acquisition"
	FieldWithoutFinancingCost        Field = "without_financing_cost"
	FieldWithoutFinancingAcquisition Field = "without_financing_acquisition"
)

// numericFields maps every text field to its location in Inputs.
var numericFields = map[Field]func(*Inputs) *string{
	FieldElectricityConsumption:      func(in *Inputs) *string { return &in.ElectricityConsumption },
	FieldElectricityPrice:            func(in *Inputs) *string { return &in.ElectricityPrice },
	FieldElectricityBaseFee:          func(in *Inputs) *string { return &in.ElectricityBaseFee },
	FieldHeatingConsumption:          func(in *Inputs) *string { return &in.HeatingConsumption },
	FieldHeatingPrice:                func(in *Inputs) *string { return &in.HeatingPrice },
	FieldHeatingBaseFee:              func(in *Inputs) *string { return &in.HeatingBaseFee },
	FieldPVKWp:                       func(in *Inputs) *string { return &in.PVKWp },
	FieldAutarkyPercent:              func(in *Inputs) *string { return &in.AutarkyPercent },
	FieldSelfConsumptionPercent:      func(in *Inputs) *string { return &in.SelfConsumptionPercent },
	FieldFeedInTariff:                func(in *Inputs) *string { return &in.FeedInTariff },
	FieldPurchasePrice:               func(in *Inputs) *string { return &in.PurchasePrice },
	FieldFinancingRate:               func(in *Inputs) *string { return &in.FinancingRate },
	FieldDurationYears:               func(in *Inputs) *string { return &in.DurationYears },
	FieldWithFinancingCost:           func(in *Inputs) *string { return &in.WithFinancingCost },
	FieldWithFinancingAcquisition:    func(in *Inputs) *string { return &in.WithFinancingAcquisition },
	FieldWithoutFinancingCost:        func(in *Inputs) *string { return &in.WithoutFinancingCost },
	FieldWithoutFinancingAcquisition: func(in *Inputs) *string { return &in.WithoutFinancingAcquisition },
}

// Fields returns all input fields in form order.
func Fields() []Field {
	return []Field{
		FieldElectricityConsumption,
		FieldElectricityPrice,
		FieldElectricityBaseFee,
		FieldHeatingFuel,
		FieldHeatingConsumption,
		FieldHeatingPrice,
		FieldHeatingBaseFee,
		FieldPVKWp,
		FieldAutarkyPercent,
		FieldSelfConsumptionPercent,
		FieldFeedInTariff,
		FieldPurchasePrice,
		FieldFinancingRate,
		FieldDurationYears,
		FieldWithFinancingCost,
		FieldWithFinancingAcquisition,
		FieldWithoutFinancingCost,
		FieldWithoutFinancingAcquisition,
	}
}

// ParseField validates a form key.
func ParseField(raw string) (Field, error) {
	f := Field(raw)
	if f == FieldHeatingFuel {
		return f, nil
	}
	if _, ok := numericFields[f]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, raw)
}

// Set updates exactly one field. Numeric fields keep the raw text; the
// fuel type must parse.
func (in *Inputs) Set(field Field, raw string) error {
	if field == FieldHeatingFuel {
		fuel, err := ParseFuelType(raw)
		if err != nil {
			return err
		}
		in.HeatingFuel = fuel
		return nil
	}

	ptr, ok := numericFields[field]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, string(field))
	}
	*ptr(in) = raw
	return nil
}

// Get returns the text of a field, or "" for unknown fields.
func (in Inputs) Get(field Field) string {
	if field == FieldHeatingFuel {
		return in.HeatingFuel.String()
	}
	ptr, ok := numericFields[field]
	if !ok {
		return ""
	}
	return *ptr(&in)
}
