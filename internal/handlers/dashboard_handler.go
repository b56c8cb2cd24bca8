package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardHandler struct {
	BaseHandler
	service       services.DashboardService
	exportService services.ExportService
}

func NewDashboardHandler(service services.DashboardService, exportService services.ExportService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:   NewBaseHandler(logger),
		service:       service,
		exportService: exportService,
	}
}

// GetAdminDashboard returns the admin report
// @Summary Get admin dashboard
// @Description Totals, attempts per day, score ranges, subject and quiz performance, recent activity
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.AdminReport
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/dashboard [get]
func (h *DashboardHandler) GetAdminDashboard(c *gin.Context) {
	h.LogRequest(c, "Getting admin dashboard")

	report, err := h.service.GetAdminReport(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportAdminDashboard streams the admin report as an xlsx workbook
// @Summary Export admin dashboard
// @Tags dashboard
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /admin/dashboard/export [get]
func (h *DashboardHandler) ExportAdminDashboard(c *gin.Context) {
	h.LogRequest(c, "Exporting admin dashboard")

	// Buffer the workbook so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := h.exportService.WriteAdminReport(c.Request.Context(), &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("quiz-report-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
