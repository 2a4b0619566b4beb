package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smart-edu-api/internal/dto"
	"github.com/noah-isme/smart-edu-api/internal/service"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
	"github.com/noah-isme/smart-edu-api/pkg/response"
)

// ReportHandler exposes the dashboard and saved report settings.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Dashboard godoc
// @Summary Admin dashboard
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	summary, err := h.reports.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ListTemplates godoc
// @Summary List report templates
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/templates [get]
func (h *ReportHandler) ListTemplates(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.reports.ListTemplates(), nil)
}

// CreateTemplate godoc
// @Summary Save report template
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.CreateReportTemplateRequest true "Template"
// @Success 201 {object} response.Envelope
// @Router /reports/templates [post]
func (h *ReportHandler) CreateTemplate(c *gin.Context) {
	var req dto.CreateReportTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template payload"))
		return
	}
	template, err := h.reports.CreateTemplate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, template)
}

// DeleteTemplate godoc
// @Summary Delete report template
// @Tags Reports
// @Param id path string true "Template ID"
// @Success 204
// @Router /reports/templates/{id} [delete]
func (h *ReportHandler) DeleteTemplate(c *gin.Context) {
	if err := h.reports.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListSchedules godoc
// @Summary List scheduled reports
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/schedules [get]
func (h *ReportHandler) ListSchedules(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.reports.ListSchedules(), nil)
}

// Schedule godoc
// @Summary Schedule a report
// @Description Stored with status MOCKED. Nothing is executed.
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.CreateScheduledReportRequest true "Schedule"
// @Success 201 {object} response.Envelope
// @Router /reports/schedules [post]
func (h *ReportHandler) Schedule(c *gin.Context) {
	var req dto.CreateScheduledReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload"))
		return
	}
	scheduled, err := h.reports.Schedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, scheduled)
}
