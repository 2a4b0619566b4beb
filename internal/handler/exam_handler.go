package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smart-edu-api/internal/models"
	"github.com/noah-isme/smart-edu-api/internal/service"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
	"github.com/noah-isme/smart-edu-api/pkg/response"
)

const defaultTopLimit = 3

// ExamHandler exposes exam results and their summaries.
type ExamHandler struct {
	exams *service.ExamResultService
}

// NewExamHandler constructs ExamHandler.
func NewExamHandler(exams *service.ExamResultService) *ExamHandler {
	return &ExamHandler{exams: exams}
}

// List godoc
// @Summary List exam results
// @Tags Exams
// @Produce json
// @Param class query string false "Class"
// @Param subject query string false "Subject"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param search query string false "Student name search"
// @Success 200 {object} response.Envelope
// @Router /exams/results [get]
func (h *ExamHandler) List(c *gin.Context) {
	filter, err := examFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	records := h.exams.List(filter)
	response.JSON(c, http.StatusOK, records, &models.Pagination{Page: 1, PageSize: len(records), TotalCount: len(records)})
}

// Get godoc
// @Summary Get exam result
// @Tags Exams
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} response.Envelope
// @Router /exams/results/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	record, err := h.exams.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Create godoc
// @Summary Record exam result
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body models.ScoredRecord true "Result"
// @Success 201 {object} response.Envelope
// @Router /exams/results [post]
func (h *ExamHandler) Create(c *gin.Context) {
	var record models.ScoredRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam result"))
		return
	}
	created, err := h.exams.Create(c.Request.Context(), record)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Update godoc
// @Summary Replace exam result
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Result ID"
// @Param payload body models.ScoredRecord true "Result"
// @Success 200 {object} response.Envelope
// @Router /exams/results/{id} [put]
func (h *ExamHandler) Update(c *gin.Context) {
	var record models.ScoredRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam result"))
		return
	}
	updated, err := h.exams.Update(c.Request.Context(), c.Param("id"), record)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// Delete godoc
// @Summary Delete exam result
// @Tags Exams
// @Param id path string true "Result ID"
// @Param confirm query bool true "Must be true"
// @Success 204
// @Router /exams/results/{id} [delete]
func (h *ExamHandler) Delete(c *gin.Context) {
	if err := h.exams.Delete(c.Request.Context(), c.Param("id"), confirmParam(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Summary godoc
// @Summary Grouped exam statistics
// @Tags Exams
// @Produce json
// @Param groupBy query string false "class or subject"
// @Param threshold query number false "Pass threshold"
// @Param normalize query bool false "Compare percentages instead of raw scores"
// @Success 200 {object} response.Envelope
// @Router /exams/summary [get]
func (h *ExamHandler) Summary(c *gin.Context) {
	opts, err := summaryOptions(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.exams.Summaries(opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Top godoc
// @Summary Top performers
// @Tags Exams
// @Produce json
// @Param limit query int false "Number of records (default 3)"
// @Success 200 {object} response.Envelope
// @Router /exams/top [get]
func (h *ExamHandler) Top(c *gin.Context) {
	limit := defaultTopLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}
	response.JSON(c, http.StatusOK, h.exams.TopPerformers(limit), nil)
}

// Export godoc
// @Summary Export exam results or summaries
// @Tags Exams
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv, pdf or xlsx"
// @Param view query string false "records (default) or summary"
// @Success 200 {file} file
// @Router /exams/export [get]
func (h *ExamHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var result *service.ExportResult
	switch c.DefaultQuery("view", "records") {
	case "records":
		filter, ferr := examFilter(c)
		if ferr != nil {
			response.Error(c, ferr)
			return
		}
		result, err = h.exams.Export(format, filter)
	case "summary":
		opts, oerr := summaryOptions(c)
		if oerr != nil {
			response.Error(c, oerr)
			return
		}
		result, err = h.exams.ExportSummaries(format, opts)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "view must be records or summary"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Payload)
}

func summaryOptions(c *gin.Context) (service.SummaryOptions, error) {
	filter, err := examFilter(c)
	if err != nil {
		return service.SummaryOptions{}, err
	}
	opts := service.SummaryOptions{GroupBy: c.Query("groupBy"), Filter: filter}
	if raw := c.Query("threshold"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil || threshold < 0 {
			return opts, appErrors.Clone(appErrors.ErrValidation, "threshold must be a non-negative number")
		}
		opts.Threshold = &threshold
	}
	if opts.Normalize, err = queryBool(c, "normalize"); err != nil {
		return opts, err
	}
	return opts, nil
}
