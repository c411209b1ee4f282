package records

import "github.com/shopspring/decimal"

// GroupBy names the record field an aggregation groups on.
type GroupBy string

const (
	GroupByUnit     GroupBy = "unit"
	GroupByType     GroupBy = "type"
	GroupByName     GroupBy = "name"
	GroupByCategory GroupBy = "category"
	GroupByMonth    GroupBy = "month"
	GroupByYear     GroupBy = "year"
	GroupByReporter GroupBy = "reporter"
)

// Measure names the numeric field an aggregation sums.
type Measure string

const (
	MeasureValue Measure = "value"
	MeasureTotal Measure = "total"
)

func groupKey(rec EmissionRecord, group GroupBy) string {
	switch group {
	case GroupByUnit:
		return rec.Unit
	case GroupByType:
		return rec.EmissionType
	case GroupByName:
		return rec.EmissionName
	case GroupByCategory:
		return string(rec.Category)
	case GroupByMonth:
		return rec.Month
	case GroupByYear:
		return rec.Year
	case GroupByReporter:
		return rec.Reporter
	}
	return ""
}

func measureOf(rec EmissionRecord, measure Measure) decimal.Decimal {
	if measure == MeasureValue {
		return rec.Value
	}
	return rec.Total
}

// Aggregate sums the chosen measure per group key across the supplied
// records.
func Aggregate(recs []EmissionRecord, group GroupBy, measure Measure) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal, len(recs))
	for _, rec := range recs {
		key := groupKey(rec, group)
		sums[key] = sums[key].Add(measureOf(rec, measure))
	}
	return sums
}

// Sum totals the chosen measure across the supplied records.
func Sum(recs []EmissionRecord, measure Measure) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range recs {
		total = total.Add(measureOf(rec, measure))
	}
	return total
}

// TopGroup returns the group with the largest summed measure. Ties break in
// favor of the group whose first record appears earliest in the input, which
// keeps the result deterministic for a stable record order. The empty string
// is returned for an empty input.
func TopGroup(recs []EmissionRecord, group GroupBy, measure Measure) (string, decimal.Decimal) {
	sums := Aggregate(recs, group, measure)

	var (
		topKey string
		topSum decimal.Decimal
		seen   = make(map[string]bool, len(sums))
		found  bool
	)
	for _, rec := range recs {
		key := groupKey(rec, group)
		if seen[key] {
			continue
		}
		seen[key] = true
		if !found || sums[key].GreaterThan(topSum) {
			topKey = key
			topSum = sums[key]
			found = true
		}
	}
	return topKey, topSum
}

// PivotTable is a chart-ready two-dimensional aggregation: one row per row
// key, one column per column key, cells holding the summed measure. Rows and
// columns are listed in first-seen input order; missing cells are zero.
type PivotTable struct {
	Rows  []string
	Cols  []string
	Cells map[string]map[string]decimal.Decimal
}

// Pivot groups the records along two axes, summing the chosen measure.
func Pivot(recs []EmissionRecord, rows, cols GroupBy, measure Measure) PivotTable {
	table := PivotTable{Cells: make(map[string]map[string]decimal.Decimal)}
	seenRow := make(map[string]bool)
	seenCol := make(map[string]bool)
	for _, rec := range recs {
		rowKey := groupKey(rec, rows)
		colKey := groupKey(rec, cols)
		if !seenRow[rowKey] {
			seenRow[rowKey] = true
			table.Rows = append(table.Rows, rowKey)
		}
		if !seenCol[colKey] {
			seenCol[colKey] = true
			table.Cols = append(table.Cols, colKey)
		}
		if table.Cells[rowKey] == nil {
			table.Cells[rowKey] = make(map[string]decimal.Decimal)
		}
		table.Cells[rowKey][colKey] = table.Cells[rowKey][colKey].Add(measureOf(rec, measure))
	}
	return table
}

// Cell returns the summed measure for a row/column pair, zero when absent.
func (t PivotTable) Cell(row, col string) decimal.Decimal {
	if cells, ok := t.Cells[row]; ok {
		return cells[col]
	}
	return decimal.Zero
}
