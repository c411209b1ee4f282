package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rmx-joss/carbontrack/internal/solar"
)

type solarEntryPayload struct {
	Unit           string `json:"unit"`
	Month          string `json:"month"`
	Year           string `json:"year"`
	EntryDate      string `json:"entry_date"`
	GenerationDate string `json:"generation_date"`
	Inverter1      string `json:"inverter1"`
	Inverter2      string `json:"inverter2"`
	Inverter3      string `json:"inverter3"`
	Inverter4      string `json:"inverter4"`
	OldTotal       string `json:"old_total"`
	NewInverter    string `json:"new_inverter"`
	UnitType       string `json:"unit_type"`
	Remark         string `json:"remark"`
	DocumentRef    string `json:"document_reference"`
}

func parseReading(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

func (h *httpHandler) handleCreateSolarEntry(c *gin.Context) {
	email, _ := h.sessionIdentity(c)

	var request solarEntryPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	entry := solar.Entry{
		Reporter:       email,
		EntryDate:      request.EntryDate,
		Month:          request.Month,
		Year:           request.Year,
		Unit:           request.Unit,
		GenerationDate: request.GenerationDate,
		UnitType:       request.UnitType,
		Remark:         request.Remark,
		DocumentRef:    request.DocumentRef,
	}

	readings := []struct {
		raw    string
		target *decimal.Decimal
	}{
		{request.Inverter1, &entry.Inverter1},
		{request.Inverter2, &entry.Inverter2},
		{request.Inverter3, &entry.Inverter3},
		{request.Inverter4, &entry.Inverter4},
		{request.OldTotal, &entry.OldTotal},
		{request.NewInverter, &entry.NewInverter},
	}
	for _, reading := range readings {
		value, err := parseReading(reading.raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_reading"})
			return
		}
		*reading.target = value
	}

	if err := h.solar.Create(c.Request.Context(), &entry); err != nil {
		if errors.Is(err, solar.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "details": err.Error()})
			return
		}
		h.logger.Error("solar entry failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submission_failed"})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *httpHandler) handleListSolarEntries(c *gin.Context) {
	entries, err := h.solar.List(c.Request.Context())
	if err != nil {
		h.logger.Error("solar query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *httpHandler) handleDeleteSolarEntry(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id"})
		return
	}

	if err := h.solar.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, solar.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry_not_found"})
			return
		}
		h.logger.Error("solar delete failed", zap.Error(err), zap.Int64("id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}
