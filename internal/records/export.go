package records

// ExportColumns is the fixed column order shared with the spreadsheet export
// collaborator. Changing it breaks downstream sheets.
var ExportColumns = []string{
	"Reporter",
	"Entry Date",
	"Month",
	"Year",
	"Unit",
	"Emission Category",
	"Emission Name",
	"Emission Type",
	"Factor",
	"Value",
	"Total",
	"Remarks",
	"Document Reference",
}

// ExportRow flattens a record into the ExportColumns order. Factor and value
// keep their entry precision; totals are fixed to two fractional digits.
func ExportRow(rec EmissionRecord) []string {
	return []string{
		rec.Reporter,
		rec.EntryDate,
		rec.Month,
		rec.Year,
		rec.Unit,
		string(rec.Category),
		rec.EmissionName,
		rec.EmissionType,
		rec.Factor.String(),
		rec.Value.String(),
		rec.Total.StringFixed(2),
		rec.Remarks,
		rec.DocumentRef,
	}
}

// ExportRows flattens records in order.
func ExportRows(recs []EmissionRecord) [][]string {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, ExportRow(rec))
	}
	return rows
}
