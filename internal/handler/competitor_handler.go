package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jacksonhblau/patent-detector/internal/service"
)

// CompetitorHandler handles competitor endpoints.
type CompetitorHandler struct {
	competitorService service.CompetitorService
}

// NewCompetitorHandler creates a new CompetitorHandler.
func NewCompetitorHandler(competitorService service.CompetitorService) *CompetitorHandler {
	return &CompetitorHandler{competitorService: competitorService}
}

// Create handles POST /api/v1/companies/:id/competitors
func (h *CompetitorHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	companyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input service.CompetitorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	competitor, err := h.competitorService.Create(c.Request.Context(), userID, companyID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, competitor)
}

// List handles GET /api/v1/companies/:id/competitors
func (h *CompetitorHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	companyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	competitors, total, err := h.competitorService.List(c.Request.Context(), userID, companyID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, competitors, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/competitors/:id
func (h *CompetitorHandler) GetByID(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	competitorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	competitor, err := h.competitorService.Get(c.Request.Context(), userID, competitorID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, competitor)
}

// Update handles PUT /api/v1/competitors/:id
func (h *CompetitorHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	competitorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input service.CompetitorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	competitor, err := h.competitorService.Update(c.Request.Context(), userID, competitorID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, competitor)
}

// Delete handles DELETE /api/v1/competitors/:id
func (h *CompetitorHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	competitorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.competitorService.Delete(c.Request.Context(), userID, competitorID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "competitor deleted"})
}

// EnqueueResearch handles POST /api/v1/competitors/:id/research
func (h *CompetitorHandler) EnqueueResearch(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	competitorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	competitor, err := h.competitorService.EnqueueResearch(c.Request.Context(), userID, competitorID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, competitor)
}

// ListDocuments handles GET /api/v1/competitors/:id/documents
func (h *CompetitorHandler) ListDocuments(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	competitorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	docs, err := h.competitorService.ListDocuments(c.Request.Context(), userID, competitorID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, docs)
}
