package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-records-api/internal/service"
	"github.com/noah-isme/student-records-api/pkg/response"
)

type rosterExporter interface {
	Roster(ctx context.Context, format service.ExportFormat) (*service.ExportResult, error)
}

// ExportHandler serves roster downloads.
type ExportHandler struct {
	exports rosterExporter
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports rosterExporter) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Roster godoc
// @Summary Export student roster
// @Tags Students
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} binary
// @Failure 400 {object} response.ErrorEnvelope
// @Router /students/export [get]
func (h *ExportHandler) Roster(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exports.Roster(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
