package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jacksonhblau/patent-detector/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AnalysisHandler handles analysis endpoints.
type AnalysisHandler struct {
	analysisService service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// GetByCompetitor handles GET /api/v1/competitors/:id/analysis
func (h *AnalysisHandler) GetByCompetitor(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	competitorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	analysis, err := h.analysisService.GetByCompetitor(c.Request.Context(), userID, competitorID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, analysis)
}

// ExportReport handles GET /api/v1/competitors/:id/analysis/export
// Streams the analysis workbook as an XLSX download.
func (h *AnalysisHandler) ExportReport(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	competitorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var buf bytes.Buffer
	filename, err := h.analysisService.ExportReport(c.Request.Context(), userID, competitorID, &buf)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
