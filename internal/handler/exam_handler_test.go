package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smart-edu-api/internal/models"
	"github.com/noah-isme/smart-edu-api/internal/service"
)

func TestExamResultsListAndFilter(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodGet, "/api/v1/exams/results?subject=Physics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []models.ScoredRecord
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &records))
	assert.Len(t, records, 2)

	rec = api.do(http.MethodGet, "/api/v1/exams/results?from=05-09-2025", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExamResultsCreateUpdateDelete(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodPost, "/api/v1/exams/results", map[string]interface{}{
		"studentName": "Eve Adams", "class": "Math 101", "subject": "Mathematics", "faculty": "Prof. John",
		"score": 40, "maxScore": 100, "date": "2025-09-07",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.ScoredRecord
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &created))
	require.NotEmpty(t, created.ID)

	rec = api.do(http.MethodPut, "/api/v1/exams/results/"+created.ID, map[string]interface{}{
		"studentName": "Eve Adams", "class": "Math 101", "subject": "Mathematics", "faculty": "Prof. John",
		"score": 120, "maxScore": 100, "date": "2025-09-07",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodDelete, "/api/v1/exams/results/"+created.ID, nil)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	rec = api.do(http.MethodDelete, "/api/v1/exams/results/"+created.ID+"?confirm=true", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(http.MethodGet, "/api/v1/exams/results/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExamSummary(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodGet, "/api/v1/exams/summary?groupBy=subject&threshold=70", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report service.SummaryReport
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &report))
	assert.Equal(t, "subject", report.GroupBy)
	assert.Equal(t, 70.0, report.Threshold)
	require.Len(t, report.Groups, 2)
	assert.Equal(t, 4, report.Overall.Total)
	assert.Equal(t, 75.0, report.Overall.PassPercent)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/v1/exams/summary?groupBy=faculty", nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/v1/exams/summary?threshold=abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/v1/exams/summary?normalize=maybe", nil).Code)
}

func TestExamTopAndExport(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodGet, "/api/v1/exams/top?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var top []models.ScoredRecord
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &top))
	require.Len(t, top, 1)
	assert.Equal(t, "David Smith", top[0].StudentName)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/v1/exams/top?limit=-1", nil).Code)

	rec = api.do(http.MethodGet, "/api/v1/exams/export?format=csv&view=summary&groupBy=class", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Math 101")

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/v1/exams/export?view=chart", nil).Code)
}

func TestReportsDashboardAndTemplates(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodGet, "/api/v1/reports/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary models.DashboardSummary
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &summary))
	assert.Equal(t, 4, summary.TotalExams)
	assert.Len(t, summary.TopPerformers, 3)

	rec = api.do(http.MethodPost, "/api/v1/reports/templates", map[string]interface{}{
		"name": "Term", "settings": map[string]string{"orientation": "portrait"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var template models.ReportTemplate
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &template))
	assert.JSONEq(t, `{"orientation":"portrait"}`, string(template.Settings))

	rec = api.do(http.MethodPost, "/api/v1/reports/schedules", map[string]string{"name": "Weekly", "when": "monday"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), models.ScheduledReportStatus)

	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/v1/reports/templates/"+template.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/api/v1/reports/templates/"+template.ID, nil).Code)
}
