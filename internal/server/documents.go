package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmx-joss/carbontrack/internal/documents"
)

// handleUploadDocument stores one evidence file under its deterministic
// location and returns the metadata whose stored path callers embed into
// records. The multipart body carries the file plus the business context.
func (h *httpHandler) handleUploadDocument(c *gin.Context) {
	email, role := h.sessionIdentity(c)

	unit := c.PostForm("unit")
	date := c.PostForm("date")
	emissionName := c.PostForm("emission_name")
	emissionType := c.PostForm("emission_type")
	if unit == "" || date == "" || emissionName == "" || emissionType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_mandatory_fields"})
		return
	}
	if !h.config.HasUnit(unit) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_unit", "unit": unit})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_file"})
		return
	}

	// The document store copies from a path, so the upload is staged to a
	// temp file carrying the original extension.
	staged := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, staged); err != nil {
		h.logger.Error("upload staging failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload_failed"})
		return
	}
	defer os.Remove(staged)

	metadata, err := h.documents.SaveDocument(c.Request.Context(), staged, unit, date, emissionName, emissionType, email, role)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrInvalidDateFormat):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_date"})
		case errors.Is(err, documents.ErrSourceNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "source_not_found"})
		default:
			h.logger.Error("document save failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage_unavailable"})
		}
		return
	}

	if h.logs != nil {
		if err := h.logs.Append(c.Request.Context(), metadata.LogRecord(uuid.NewString())); err != nil {
			h.logger.Warn("document log persistence failed", zap.Error(err),
				zap.String("unique_code", metadata.UniqueCode))
		}
	}

	c.JSON(http.StatusCreated, metadata)
}

// handleListDocuments serves the persisted audit trail when a log store is
// wired, otherwise the session's in-memory log.
func (h *httpHandler) handleListDocuments(c *gin.Context) {
	if h.logs != nil {
		entries, err := h.logs.List(c.Request.Context())
		if err != nil {
			h.logger.Error("document log query failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query_failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"documents": entries})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": h.documents.Log()})
}
