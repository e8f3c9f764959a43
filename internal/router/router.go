package router

import (
	"github.com/gin-gonic/gin"

	"github.com/jacksonhblau/patent-detector/internal/handler"
	"github.com/jacksonhblau/patent-detector/internal/middleware"
	"github.com/jacksonhblau/patent-detector/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	allowedOrigins []string,
	authH *handler.AuthHandler,
	companyH *handler.CompanyHandler,
	patentH *handler.PatentHandler,
	competitorH *handler.CompetitorHandler,
	analysisH *handler.AnalysisHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// Portfolio companies
	companies := protected.Group("/companies")
	companies.POST("", companyH.Create)
	companies.GET("", companyH.List)
	companies.GET("/:id", companyH.GetByID)
	companies.PUT("/:id", companyH.Update)
	companies.DELETE("/:id", companyH.Delete)

	// Patents nested under a company
	companies.POST("/:id/patents", patentH.Upload)
	companies.GET("/:id/patents", patentH.List)
	companies.GET("/:id/patents/:patentId", patentH.GetByID)
	companies.DELETE("/:id/patents/:patentId", patentH.Delete)

	// Competitors nested under a company for create/list
	companies.POST("/:id/competitors", competitorH.Create)
	companies.GET("/:id/competitors", competitorH.List)

	// Competitor-rooted routes
	competitors := protected.Group("/competitors")
	competitors.GET("/:id", competitorH.GetByID)
	competitors.PUT("/:id", competitorH.Update)
	competitors.DELETE("/:id", competitorH.Delete)
	competitors.POST("/:id/research", competitorH.EnqueueResearch)
	competitors.GET("/:id/documents", competitorH.ListDocuments)
	competitors.GET("/:id/analysis", analysisH.GetByCompetitor)
	competitors.GET("/:id/analysis/export", analysisH.ExportReport)

	return r
}
