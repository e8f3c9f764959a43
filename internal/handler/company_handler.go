package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jacksonhblau/patent-detector/internal/service"
)

// CompanyHandler handles portfolio company endpoints.
type CompanyHandler struct {
	companyService service.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// Create handles POST /api/v1/companies
func (h *CompanyHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var input service.CompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	company, err := h.companyService.Create(c.Request.Context(), userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, company)
}

// List handles GET /api/v1/companies
func (h *CompanyHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	companies, err := h.companyService.List(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, companies)
}

// GetByID handles GET /api/v1/companies/:id
func (h *CompanyHandler) GetByID(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	companyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	company, err := h.companyService.Get(c.Request.Context(), userID, companyID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, company)
}

// Update handles PUT /api/v1/companies/:id
func (h *CompanyHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	companyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input service.CompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	company, err := h.companyService.Update(c.Request.Context(), userID, companyID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, company)
}

// Delete handles DELETE /api/v1/companies/:id
func (h *CompanyHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	companyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.companyService.Delete(c.Request.Context(), userID, companyID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "company deleted"})
}
