package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

type StudentHandler struct {
	BaseHandler
	service services.StudentService
}

func NewStudentHandler(service services.StudentService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== STUDENT ENDPOINTS =====

// GetDashboard returns the caller's summary and upcoming quizzes
// @Summary Get user dashboard
// @Description Attempt count, average score and upcoming quizzes of the current user
// @Tags students
// @Produce json
// @Success 200 {object} services.UserDashboard
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /me/dashboard [get]
func (h *StudentHandler) GetDashboard(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Getting user dashboard", "user_id", userID)

	dashboard, err := h.service.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetScores returns one row per attempt of the caller
// @Summary Get user scores
// @Tags students
// @Produce json
// @Success 200 {array} services.ScoreDetail
// @Router /me/scores [get]
func (h *StudentHandler) GetScores(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	scores, err := h.service.ListScoreDetails(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, scores)
}

// GetLeaderboard
// @Summary Get leaderboard
// @Description Users ranked by total score plus monthly and subject attempt distributions
// @Tags students
// @Produce json
// @Success 200 {object} services.LeaderboardReport
// @Router /leaderboard [get]
func (h *StudentHandler) GetLeaderboard(c *gin.Context) {
	h.LogRequest(c, "Getting leaderboard")

	report, err := h.service.GetLeaderboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
