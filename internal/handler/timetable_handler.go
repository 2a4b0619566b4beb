package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smart-edu-api/internal/dto"
	"github.com/noah-isme/smart-edu-api/internal/models"
	"github.com/noah-isme/smart-edu-api/internal/service"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
	"github.com/noah-isme/smart-edu-api/pkg/response"
)

// TimetableHandler exposes the published timetable.
type TimetableHandler struct {
	timetable *service.TimetableService
}

// NewTimetableHandler constructs TimetableHandler.
func NewTimetableHandler(timetable *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetable: timetable}
}

// List godoc
// @Summary List timetable entries
// @Tags Timetable
// @Produce json
// @Param day query string false "Day code or name"
// @Param class query string false "Class"
// @Param teacher query string false "Teacher"
// @Param room query string false "Room"
// @Param search query string false "Free text over subject, class and teacher"
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) List(c *gin.Context) {
	filter, err := timetableFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	entries := h.timetable.List(filter)
	response.JSON(c, http.StatusOK, entries, nil, map[string]interface{}{"total": h.timetable.Count()})
}

// Create godoc
// @Summary Add timetable entry
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body models.ScheduleEntry true "Entry"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/entries [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var entry models.ScheduleEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable entry"))
		return
	}
	created, err := h.timetable.Add(c.Request.Context(), entry)
	if err != nil {
		renderTimetableError(c, err)
		return
	}
	response.Created(c, created)
}

// Update godoc
// @Summary Replace timetable entry
// @Tags Timetable
// @Accept json
// @Produce json
// @Param index path int true "Entry index"
// @Param payload body models.ScheduleEntry true "Entry"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/entries/{index} [put]
func (h *TimetableHandler) Update(c *gin.Context) {
	index, err := pathIndex(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var entry models.ScheduleEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable entry"))
		return
	}
	updated, err := h.timetable.Update(c.Request.Context(), index, entry)
	if err != nil {
		renderTimetableError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// Delete godoc
// @Summary Delete timetable entry
// @Tags Timetable
// @Param index path int true "Entry index"
// @Param confirm query bool true "Must be true"
// @Success 204
// @Failure 412 {object} response.Envelope
// @Router /timetable/entries/{index} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	index, err := pathIndex(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.timetable.Delete(c.Request.Context(), index, confirmParam(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Check godoc
// @Summary Dry-run conflict check
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.TimetableCheckRequest true "Candidate entry"
// @Success 200 {object} response.Envelope
// @Router /timetable/check [post]
func (h *TimetableHandler) Check(c *gin.Context) {
	var req dto.TimetableCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid check request"))
		return
	}
	ignore := service.NoIgnore
	if req.IgnoreIndex != nil {
		ignore = *req.IgnoreIndex
	}
	result, err := h.timetable.Check(req.Entry, ignore)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Export timetable
// @Tags Timetable
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} file
// @Router /timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	filter, err := timetableFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.timetable.Export(format, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Payload)
}

func renderTimetableError(c *gin.Context, err error) {
	var conflictErr *models.ScheduleConflictError
	if errors.As(err, &conflictErr) {
		response.ErrorWithMeta(c, err, map[string]interface{}{"conflict": conflictErr.Conflict})
		return
	}
	response.Error(c, err)
}
