package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmx-joss/carbontrack/internal/records"
)

type topGroupPayload struct {
	Key   string `json:"key"`
	Total string `json:"total"`
}

type pivotPayload struct {
	Rows  []string                     `json:"rows"`
	Cols  []string                     `json:"cols"`
	Cells map[string]map[string]string `json:"cells"`
}

type dashboardPayload struct {
	TotalEmissions string          `json:"total_emissions"`
	Scope1         string          `json:"scope1"`
	Scope2         string          `json:"scope2"`
	Scope3         string          `json:"scope3"`
	TopUnit        topGroupPayload `json:"top_unit"`
	TopGas         topGroupPayload `json:"top_gas"`
	TopCategory    topGroupPayload `json:"top_category"`
	MonthlyByUnit  pivotPayload    `json:"monthly_by_unit"`
	YearlyByUnit   pivotPayload    `json:"yearly_by_unit"`
}

// handleDashboard computes the KPI set and chart pivots over the filtered
// collection. Filters mirror the record browser's.
func (h *httpHandler) handleDashboard(c *gin.Context) {
	filtered := h.cache.Filter(criteriaFromQuery(c))

	scopes := records.Aggregate(filtered, records.GroupByCategory, records.MeasureTotal)
	topUnit, topUnitTotal := records.TopGroup(filtered, records.GroupByUnit, records.MeasureTotal)
	topGas, topGasTotal := records.TopGroup(filtered, records.GroupByType, records.MeasureTotal)
	topCategory, topCategoryTotal := records.TopGroup(filtered, records.GroupByCategory, records.MeasureTotal)

	c.JSON(http.StatusOK, dashboardPayload{
		TotalEmissions: records.Sum(filtered, records.MeasureTotal).StringFixed(2),
		Scope1:         scopes[string(records.CategoryScope1)].StringFixed(2),
		Scope2:         scopes[string(records.CategoryScope2)].StringFixed(2),
		Scope3:         scopes[string(records.CategoryScope3)].StringFixed(2),
		TopUnit:        topGroupPayload{Key: topUnit, Total: topUnitTotal.StringFixed(2)},
		TopGas:         topGroupPayload{Key: topGas, Total: topGasTotal.StringFixed(2)},
		TopCategory:    topGroupPayload{Key: topCategory, Total: topCategoryTotal.StringFixed(2)},
		MonthlyByUnit:  pivotFor(filtered, records.GroupByMonth),
		YearlyByUnit:   pivotFor(filtered, records.GroupByYear),
	})
}

func pivotFor(recs []records.EmissionRecord, rows records.GroupBy) pivotPayload {
	table := records.Pivot(recs, rows, records.GroupByUnit, records.MeasureTotal)
	payload := pivotPayload{
		Rows:  table.Rows,
		Cols:  table.Cols,
		Cells: make(map[string]map[string]string, len(table.Rows)),
	}
	for _, row := range table.Rows {
		cells := make(map[string]string, len(table.Cols))
		for _, col := range table.Cols {
			cells[col] = table.Cell(row, col).StringFixed(2)
		}
		payload.Cells[row] = cells
	}
	return payload
}
