package config

import (
	"strings"

	"github.com/shopspring/decimal"
)

var defaultUnits = []string{"C-49", "B-37", "C-91", "2B-4"}

// Configured emission factors, frozen into records at entry time.
var defaultFactorValues = map[string]map[string]float64{
	"Fuel": {
		"Diesel": 2.54603,
		"Petrol": 2.296,
		"PNG":    2.02266,
		"LPG":    1.55537,
	},
	"Refrigerants": {
		"R-22":   1810,
		"R-410A": 2088,
	},
	"Electricity": {
		"Electricity": 0.6727,
	},
}

var defaultCategoryNames = map[string]string{
	"Fuel":         "Scope1",
	"Refrigerants": "Scope1",
	"Electricity":  "Scope2",
}

// FactorTable maps emission names to per-type factors and reporting scopes.
// Lookups are case-insensitive so key casing in config files does not
// matter.
type FactorTable struct {
	factors    map[string]map[string]decimal.Decimal
	categories map[string]string
	names      map[string]string
}

// NewFactorTable normalizes the raw factor and category maps into a lookup
// table.
func NewFactorTable(raw map[string]map[string]float64, categories map[string]string) FactorTable {
	table := FactorTable{
		factors:    make(map[string]map[string]decimal.Decimal, len(raw)),
		categories: make(map[string]string, len(categories)),
		names:      make(map[string]string, len(raw)),
	}
	for name, types := range raw {
		key := normalizeKey(name)
		table.names[key] = name
		byType := make(map[string]decimal.Decimal, len(types))
		for typ, factor := range types {
			byType[normalizeKey(typ)] = decimal.NewFromFloat(factor)
		}
		table.factors[key] = byType
	}
	for name, category := range categories {
		table.categories[normalizeKey(name)] = category
	}
	return table
}

// DefaultFactors returns the built-in factor table.
func DefaultFactors() FactorTable {
	return NewFactorTable(defaultFactorValues, defaultCategoryNames)
}

// Factor resolves the configured emission factor for a name/type pair.
func (t FactorTable) Factor(emissionName, emissionType string) (decimal.Decimal, bool) {
	byType, ok := t.factors[normalizeKey(emissionName)]
	if !ok {
		return decimal.Zero, false
	}
	factor, ok := byType[normalizeKey(emissionType)]
	return factor, ok
}

// Category resolves the reporting scope for an emission name.
func (t FactorTable) Category(emissionName string) (string, bool) {
	category, ok := t.categories[normalizeKey(emissionName)]
	return category, ok
}

// Names lists the configured emission names in their original casing.
func (t FactorTable) Names() []string {
	out := make([]string, 0, len(t.names))
	for _, name := range t.names {
		out = append(out, name)
	}
	return out
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
