package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jacksonhblau/patent-detector/internal/service"
)

// PatentHandler handles portfolio patent endpoints.
type PatentHandler struct {
	patentService service.PatentService
}

// NewPatentHandler creates a new PatentHandler.
func NewPatentHandler(patentService service.PatentService) *PatentHandler {
	return &PatentHandler{patentService: patentService}
}

// Upload handles POST /api/v1/companies/:id/patents
// Accepts a multipart form with a single "file" field holding the patent PDF.
func (h *PatentHandler) Upload(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	companyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	doc, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "READ_FAILED", "could not read uploaded file")
		return
	}

	result, err := h.patentService.Upload(c.Request.Context(), userID, companyID, header.Filename, doc)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, result)
}

// List handles GET /api/v1/companies/:id/patents
func (h *PatentHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	companyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	patents, total, err := h.patentService.List(c.Request.Context(), userID, companyID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, patents, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/companies/:id/patents/:patentId
func (h *PatentHandler) GetByID(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	companyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	patentID, ok := parseIDParam(c, "patentId")
	if !ok {
		return
	}

	result, err := h.patentService.Get(c.Request.Context(), userID, companyID, patentID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// Delete handles DELETE /api/v1/companies/:id/patents/:patentId
func (h *PatentHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	companyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	patentID, ok := parseIDParam(c, "patentId")
	if !ok {
		return
	}

	if err := h.patentService.Delete(c.Request.Context(), userID, companyID, patentID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "patent deleted"})
}
