package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

type CatalogHandler struct {
	BaseHandler
	service   services.CatalogService
	validator *validator.Validator
}

func NewCatalogHandler(service services.CatalogService, validator *validator.Validator, logger utils.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		validator:   validator,
	}
}

// ListSubjects
// @Summary List subjects
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Subject
// @Router /subjects [get]
func (h *CatalogHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.service.ListSubjects(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subjects)
}

// ListChapters
// @Summary List chapters
// @Tags catalog
// @Produce json
// @Param subject_id query uint false "Subject ID"
// @Success 200 {array} models.Chapter
// @Failure 400 {object} ErrorResponse
// @Router /chapters [get]
func (h *CatalogHandler) ListChapters(c *gin.Context) {
	var query validator.ChapterListQuery
	if !h.bindQuery(c, h.validator, &query) {
		return
	}

	chapters, err := h.service.ListChapters(c.Request.Context(), repositories.ChapterFilters{SubjectID: query.SubjectID})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, chapters)
}

// ListQuizzes lists quizzes by chapter, or by subject when no chapter is given
// @Summary List quizzes
// @Tags catalog
// @Produce json
// @Param subject_id query uint false "Subject ID"
// @Param chapter_id query uint false "Chapter ID, takes precedence over subject_id"
// @Success 200 {array} services.QuizSummary
// @Failure 400 {object} ErrorResponse
// @Router /quizzes [get]
func (h *CatalogHandler) ListQuizzes(c *gin.Context) {
	var query validator.QuizListQuery
	if !h.bindQuery(c, h.validator, &query) {
		return
	}

	quizzes, err := h.service.ListQuizzes(c.Request.Context(), repositories.QuizFilters{
		SubjectID: query.SubjectID,
		ChapterID: query.ChapterID,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quizzes)
}

// GetQuiz
// @Summary Get quiz
// @Tags catalog
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} services.QuizSummary
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [get]
func (h *CatalogHandler) GetQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	quiz, err := h.service.GetQuiz(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// Search matches subjects, quizzes and scores by name
// @Summary Search
// @Tags catalog
// @Produce json
// @Param q query string false "Case-insensitive text, empty matches everything"
// @Success 200 {object} services.SearchResults
// @Router /search [get]
func (h *CatalogHandler) Search(c *gin.Context) {
	var query validator.SearchQuery
	if !h.bindQuery(c, h.validator, &query) {
		return
	}

	h.LogRequest(c, "Searching catalog", "query", query.Query)

	results, err := h.service.Search(c.Request.Context(), query.Query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
