package calculator

import (
	"math"
	"strconv"
)

// FormatMoney renders a currency amount with two decimals.
func FormatMoney(v float64) string {
	return formatFixed(v, 2)
}

// FormatEnergy renders an energy amount in whole kWh.
func FormatEnergy(v float64) string {
	return formatFixed(v, 0)
}

// formatFixed rounds exact halves away from zero, so 0.125 renders as
// "0.13" and 2.5 kWh as "3".
func formatFixed(v float64, decimals int) string {
	scale := math.Pow(10, float64(decimals))
	if scaled := v * scale; !math.IsInf(scaled, 0) {
		v = math.Round(scaled) / scale
	}
	if v == 0 {
		// Avoid "-0.00" for negative zero.
		v = 0
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

type displayEntry struct {
	key   string
	value func(Results) float64
	money bool
}

var displayEntries = buildDisplayEntries()

func buildDisplayEntries() []displayEntry {
	entries := []displayEntry{
		{key: "electricity.yearly", value: func(r Results) float64 { return r.Electricity.Yearly }, money: true},
		{key: "electricity.monthly", value: func(r Results) float64 { return r.Electricity.Monthly }, money: true},
		{key: "heating.yearly", value: func(r Results) float64 { return r.Heating.Yearly }, money: true},
		{key: "heating.monthly", value: func(r Results) float64 { return r.Heating.Monthly }, money: true},
		{key: "heating.demand", value: func(r Results) float64 { return r.Heating.Demand }},
		{key: "pv.yearly_yield", value: func(r Results) float64 { return r.PV.YearlyYield }},
	}

	periods := []struct {
		name  string
		table func(Results) ComparisonTable
	}{
		{"monthly", func(r Results) ComparisonTable { return r.Comparison.Monthly }},
		{"yearly", func(r Results) ComparisonTable { return r.Comparison.Yearly }},
	}
	rows := []struct {
		name string
		row  func(ComparisonTable) ComparisonRow
	}{
		{"electricity", func(t ComparisonTable) ComparisonRow { return t.Electricity }},
		{"heating", func(t ComparisonTable) ComparisonRow { return t.Heating }},
		{"self_consumption", func(t ComparisonTable) ComparisonRow { return t.SelfConsumption }},
	}
	for _, p := range periods {
		prefix := "comparison." + p.name + "."
		for _, row := range rows {
			entries = append(entries,
				displayEntry{key: prefix + row.name + ".actual", value: func(r Results) float64 { return row.row(p.table(r)).Actual }, money: true},
				displayEntry{key: prefix + row.name + ".target", value: func(r Results) float64 { return row.row(p.table(r)).Target }, money: true},
				displayEntry{key: prefix + row.name + ".savings", value: func(r Results) float64 { return row.row(p.table(r)).Savings() }, money: true},
			)
		}
		entries = append(entries,
			displayEntry{key: prefix + "total.actual", value: func(r Results) float64 { return p.table(r).Total.Actual }, money: true},
			displayEntry{key: prefix + "total.target", value: func(r Results) float64 { return p.table(r).Total.Target }, money: true},
			displayEntry{key: prefix + "total.savings", value: func(r Results) float64 { return p.table(r).Total.Savings }, money: true},
		)
	}

	financing := []struct {
		name   string
		period func(Results) FinancingPeriod
	}{
		{"monthly", func(r Results) FinancingPeriod { return r.Financing.Monthly }},
		{"yearly", func(r Results) FinancingPeriod { return r.Financing.Yearly }},
	}
	for _, f := range financing {
		prefix := "financing." + f.name + "."
		entries = append(entries,
			displayEntry{key: prefix + "actual", value: func(r Results) float64 { return f.period(r).Actual }, money: true},
			displayEntry{key: prefix + "rate", value: func(r Results) float64 { return f.period(r).Rate }, money: true},
			displayEntry{key: prefix + "result", value: func(r Results) float64 { return f.period(r).Result }, money: true},
		)
	}

	entries = append(entries,
		displayEntry{key: "advantage.with_financing.remaining_cost", value: func(r Results) float64 { return r.Advantage.WithFinancing.RemainingCost }, money: true},
		displayEntry{key: "advantage.with_financing.savings", value: func(r Results) float64 { return r.Advantage.WithFinancing.Savings }, money: true},
		displayEntry{key: "advantage.without_financing.remaining_cost", value: func(r Results) float64 { return r.Advantage.WithoutFinancing.RemainingCost }, money: true},
		displayEntry{key: "advantage.without_financing.savings", value: func(r Results) float64 { return r.Advantage.WithoutFinancing.Savings }, money: true},
	)

	return entries
}

// DisplayKeys lists the keys of Results.Display in presentation order.
func DisplayKeys() []string {
	keys := make([]string, 0, len(displayEntries))
	for _, e := range displayEntries {
		keys = append(keys, e.key)
	}
	return keys
}

// IsMoneyKey reports whether a display key holds a currency amount.
// All other keys are energy values in kWh.
func IsMoneyKey(key string) bool {
	for _, e := range displayEntries {
		if e.key == key {
			return e.money
		}
	}
	return false
}

// Display formats every result, keyed by its dotted path.
func (r Results) Display() map[string]string {
	out := make(map[string]string, len(displayEntries))
	for _, e := range displayEntries {
		v := e.value(r)
		if e.money {
			out[e.key] = FormatMoney(v)
		} else {
			out[e.key] = FormatEnergy(v)
		}
	}
	return out
}
