package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

const healthCheckTimeout = 3 * time.Second

type HandlerManager struct {
	attemptHandler   *AttemptHandler
	catalogHandler   *CatalogHandler
	dashboardHandler *DashboardHandler
	studentHandler   *StudentHandler
	userHandler      *UserHandler
	authMiddleware   *AuthMiddleware
	serviceManager   services.ServiceManager
	logger           utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	resolver IdentityResolver,
) *HandlerManager {
	return &HandlerManager{
		attemptHandler:   NewAttemptHandler(serviceManager.Attempt(), validator, logger),
		catalogHandler:   NewCatalogHandler(serviceManager.Catalog(), validator, logger),
		dashboardHandler: NewDashboardHandler(serviceManager.Dashboard(), serviceManager.Export(), logger),
		studentHandler:   NewStudentHandler(serviceManager.Student(), logger),
		userHandler:      NewUserHandler(logger),
		authMiddleware:   NewAuthMiddleware(resolver, logger),
		serviceManager:   serviceManager,
		logger:           logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.health)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.Authenticate())
	{
		v1.GET("/me", hm.userHandler.GetProfile)
		v1.GET("/me/dashboard", hm.studentHandler.GetDashboard)
		v1.GET("/me/scores", hm.studentHandler.GetScores)
		v1.GET("/leaderboard", hm.studentHandler.GetLeaderboard)

		v1.GET("/subjects", hm.catalogHandler.ListSubjects)
		v1.GET("/chapters", hm.catalogHandler.ListChapters)
		v1.GET("/search", hm.catalogHandler.Search)

		quizzes := v1.Group("/quizzes")
		{
			quizzes.GET("", hm.catalogHandler.ListQuizzes)
			quizzes.GET("/:id", hm.catalogHandler.GetQuiz)
			quizzes.GET("/:id/attempt", hm.attemptHandler.StartAttempt)
			quizzes.POST("/:id/attempts", hm.attemptHandler.SubmitAttempt)
			quizzes.GET("/:id/result", hm.attemptHandler.GetResult)
		}

		// Admin only
		admin := v1.Group("/admin")
		admin.Use(hm.authMiddleware.RequireAdmin())
		{
			admin.GET("/dashboard", hm.dashboardHandler.GetAdminDashboard)
			admin.GET("/dashboard/export", hm.dashboardHandler.ExportAdminDashboard)
		}
	}
}

func (hm *HandlerManager) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		utils.GetLogger(c, hm.logger).Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "quiz-service",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quiz-service",
	})
}
