package server

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rmx-joss/carbontrack/internal/records"
)

type entryLinePayload struct {
	EmissionName string `json:"emission_name"`
	EmissionType string `json:"emission_type"`
	Value        string `json:"value"`
	DocumentRef  string `json:"document_reference"`
	Remarks      string `json:"remarks"`
}

type submitEntriesPayload struct {
	Unit      string             `json:"unit"`
	Month     string             `json:"month"`
	Year      string             `json:"year"`
	EntryDate string             `json:"entry_date"`
	Lines     []entryLinePayload `json:"lines"`
}

// handleSubmitEntries turns one form submission into a batch of emission
// records: one record per line with a non-empty value, factors resolved from
// configuration and frozen in, documents mandatory wherever a value is set.
// Validation failures block the whole batch.
func (h *httpHandler) handleSubmitEntries(c *gin.Context) {
	email, _ := h.sessionIdentity(c)

	var request submitEntriesPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if strings.TrimSpace(request.Unit) == "" || strings.TrimSpace(request.Month) == "" ||
		strings.TrimSpace(request.Year) == "" || strings.TrimSpace(request.EntryDate) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_mandatory_fields"})
		return
	}
	if !h.config.HasUnit(request.Unit) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_unit", "unit": request.Unit})
		return
	}

	drafts := make([]records.Draft, 0, len(request.Lines))
	for _, line := range request.Lines {
		value := strings.TrimSpace(line.Value)
		if value == "" {
			continue
		}
		if strings.TrimSpace(line.DocumentRef) == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":         "document_required",
				"emission_type": line.EmissionType,
			})
			return
		}
		parsedValue, err := decimal.NewFromString(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":         "invalid_value",
				"emission_type": line.EmissionType,
			})
			return
		}
		factor, ok := h.config.Factors.Factor(line.EmissionName, line.EmissionType)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":         "unknown_emission_type",
				"emission_name": line.EmissionName,
				"emission_type": line.EmissionType,
			})
			return
		}
		category, _ := h.config.Factors.Category(line.EmissionName)
		drafts = append(drafts, records.Draft{
			Unit:         request.Unit,
			Month:        request.Month,
			Year:         request.Year,
			Category:     records.Category(category),
			EmissionName: line.EmissionName,
			EmissionType: line.EmissionType,
			Factor:       factor,
			Value:        parsedValue,
			Remarks:      line.Remarks,
			DocumentRef:  line.DocumentRef,
		})
	}
	if len(drafts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no_values_entered"})
		return
	}

	ids, err := h.cache.Append(c.Request.Context(), email, request.EntryDate, drafts)
	if err != nil {
		if errors.Is(err, records.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "details": err.Error()})
			return
		}
		h.logger.Error("entry submission failed", zap.Error(err), zap.String("reporter", email))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submission_failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"record_ids": ids})
}

func criteriaFromQuery(c *gin.Context) records.Criteria {
	return records.Criteria{
		Unit:         c.Query("unit"),
		Month:        c.Query("month"),
		Year:         c.Query("year"),
		Category:     c.Query("category"),
		EmissionName: c.Query("emission_name"),
		EmissionType: c.Query("emission_type"),
	}
}

func (h *httpHandler) handleListRecords(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"records": h.cache.Filter(criteriaFromQuery(c))})
}

type updateRecordPayload struct {
	Month        *string `json:"month"`
	Year         *string `json:"year"`
	Unit         *string `json:"unit"`
	Category     *string `json:"category"`
	EmissionName *string `json:"emission_name"`
	EmissionType *string `json:"emission_type"`
	Value        *string `json:"value"`
	Remarks      *string `json:"remarks"`
	DocumentRef  *string `json:"document_reference"`
}

// handleUpdateRecord applies a partial edit. The factor stays frozen at its
// entry-time value, a changed value re-derives the total.
func (h *httpHandler) handleUpdateRecord(c *gin.Context) {
	recordID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_record_id"})
		return
	}

	var request updateRecordPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	changes := records.FieldChanges{
		Month:        request.Month,
		Year:         request.Year,
		Unit:         request.Unit,
		EmissionName: request.EmissionName,
		EmissionType: request.EmissionType,
		Remarks:      request.Remarks,
		DocumentRef:  request.DocumentRef,
	}
	if request.Category != nil {
		category := records.Category(*request.Category)
		changes.Category = &category
	}
	if request.Value != nil {
		parsedValue, err := decimal.NewFromString(*request.Value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_value"})
			return
		}
		changes.Value = &parsedValue
	}

	if err := h.cache.Update(c.Request.Context(), recordID, changes); err != nil {
		if errors.Is(err, records.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record_not_found"})
			return
		}
		h.logger.Error("record update failed", zap.Error(err), zap.Int64("record_id", recordID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"record_id": recordID})
}

func (h *httpHandler) handleDeleteRecord(c *gin.Context) {
	recordID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_record_id"})
		return
	}

	if err := h.cache.Delete(c.Request.Context(), recordID); err != nil {
		if errors.Is(err, records.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record_not_found"})
			return
		}
		h.logger.Error("record delete failed", zap.Error(err), zap.Int64("record_id", recordID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"record_id": recordID})
}

// handleExportRecords streams the filtered collection as CSV in the fixed
// spreadsheet column order.
func (h *httpHandler) handleExportRecords(c *gin.Context) {
	filtered := h.cache.Filter(criteriaFromQuery(c))

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="emission_records.csv"`)

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(records.ExportColumns); err != nil {
		h.logger.Error("csv export failed", zap.Error(err))
		return
	}
	for _, row := range records.ExportRows(filtered) {
		if err := writer.Write(row); err != nil {
			h.logger.Error("csv export failed", zap.Error(err))
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.logger.Error("csv export failed", zap.Error(err))
	}
}
