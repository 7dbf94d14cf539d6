package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-grading-service/internal/models"
	"github.com/SAP-F-2025/exam-grading-service/internal/services"
	"github.com/SAP-F-2025/exam-grading-service/internal/utils"
	"github.com/SAP-F-2025/exam-grading-service/internal/validator"
)

const serviceName = "exam-grading-service"

type HandlerManager struct {
	serviceManager services.ServiceManager
	gradingHandler *GradingHandler
	adminHandler   *AdminHandler
	authMiddleware *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	authMiddleware *CasdoorAuthMiddleware,
) *HandlerManager {
	return &HandlerManager{
		serviceManager: serviceManager,
		gradingHandler: NewGradingHandler(serviceManager.Grading(), validator, logger),
		adminHandler:   NewAdminHandler(serviceManager.Grading(), serviceManager.Export(), validator, logger),
		authMiddleware: authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Session routes - ownership is checked by the grading service
		sessions := v1.Group("/sessions")
		{
			sessions.PUT("/:id/answers", hm.gradingHandler.SaveAnswers)
			sessions.POST("/:id/submit", hm.gradingHandler.SubmitSession)
			sessions.GET("/:id/results", hm.gradingHandler.GetSessionResult)
			sessions.GET("/:id/summary", hm.gradingHandler.GetResultSummary)
		}

		// Authoring preview - Teachers and Admins only
		grading := v1.Group("/grading")
		grading.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin))
		{
			grading.POST("/preview", hm.gradingHandler.PreviewGrade)
		}

		// Admin routes - Teachers and Admins only
		admin := v1.Group("/admin")
		admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin))
		{
			admin.POST("/sessions/:id/regrade", hm.adminHandler.RegradeSession)
			admin.POST("/sessions/:id/answers/:questionId/grade", hm.adminHandler.GradeAnswer)
			admin.GET("/exams/:id/export", hm.adminHandler.ExportResults)
			admin.GET("/exams/:id/statistics", hm.adminHandler.GetExamStatistics)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
