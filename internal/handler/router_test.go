package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smart-edu-api/internal/models"
	"github.com/noah-isme/smart-edu-api/internal/service"
)

type apiEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta map[string]interface{} `json:"meta"`
}

func seedResults() []models.ScoredRecord {
	return []models.ScoredRecord{
		{ID: "1", StudentName: "Alice Johnson", Class: "Math 101", Subject: "Mathematics", Faculty: "Prof. John", Score: 85, MaxScore: 100, Date: "2025-09-05"},
		{ID: "2", StudentName: "Bob Williams", Class: "Physics 201", Subject: "Physics", Faculty: "Prof. Smith", Score: 72, MaxScore: 100, Date: "2025-09-06"},
		{ID: "3", StudentName: "Charlie Brown", Class: "Math 101", Subject: "Mathematics", Faculty: "Prof. John", Score: 65, MaxScore: 100, Date: "2025-09-05"},
		{ID: "4", StudentName: "David Smith", Class: "Physics 201", Subject: "Physics", Faculty: "Prof. Smith", Score: 90, MaxScore: 100, Date: "2025-09-06"},
	}
}

func seedAssignments() []models.Assignment {
	return []models.Assignment{
		{ID: "a1", Title: "Math Algebra Basics", Subject: "Math", Teacher: "Mr. Smith", DueDate: "2025-09-15T23:59", MaxMarks: 20},
		{ID: "a2", Title: "Science Lab Report", Subject: "Science", Teacher: "Dr. Adams", DueDate: "2025-09-20T18:00", MaxMarks: 25},
	}
}

type testAPI struct {
	router   *gin.Engine
	messages *fakeMessageService
	notes    *fakeNotificationService
	students *fakeDirectoryService
}

func newTestAPI(t *testing.T, checks map[string]ReadinessCheck) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	metrics := service.NewMetricsService()
	exporter := service.NewExportService(service.ExportRenderers{}, metrics, nil)
	timetable, err := service.NewTimetableService(ctx, nil, exporter, metrics, nil)
	require.NoError(t, err)
	exams, err := service.NewExamResultService(ctx, nil, seedResults(), 50, exporter, metrics, nil)
	require.NoError(t, err)
	courses, err := service.NewCourseService(ctx, nil, metrics, nil)
	require.NoError(t, err)
	assignments, err := service.NewAssignmentService(ctx, nil, seedAssignments(), metrics, nil)
	require.NoError(t, err)
	reports, err := service.NewReportService(ctx, nil, service.DashboardSources{Exams: exams, Timetable: timetable}, metrics, nil)
	require.NoError(t, err)

	api := &testAPI{
		messages: &fakeMessageService{},
		notes:    &fakeNotificationService{},
		students: newFakeDirectoryService(),
	}
	api.router = NewRouter(RouterConfig{APIPrefix: "/api/v1"}, nil, metrics, Handlers{
		Timetable:   NewTimetableHandler(timetable),
		Exams:       NewExamHandler(exams),
		Courses:     NewCourseHandler(courses),
		Assignments: NewAssignmentHandler(assignments),
		Reports:     NewReportHandler(reports),
		Metrics:     NewMetricsHandler(metrics, checks),
		Directory:   map[string]RouteRegistrar{"students": NewDirectoryHandler[models.Student](api.students)},
		Messages:    NewMessageHandler(api.messages, api.notes),
	})
	return api
}

func (a *testAPI) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHealthAndReady(t *testing.T) {
	api := newTestAPI(t, map[string]ReadinessCheck{"postgres": func(context.Context) error { return nil }})
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/ready", nil).Code)

	failing := newTestAPI(t, map[string]ReadinessCheck{"redis": func(context.Context) error { return errors.New("connection refused") }})
	rec := failing.do(http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestMetricsEndpoints(t *testing.T) {
	api := newTestAPI(t, nil)
	api.do(http.MethodGet, "/api/v1/timetable", nil)

	rec := api.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")

	rec = api.do(http.MethodGet, "/api/v1/metrics/summary", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var summary models.SystemMetrics
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &summary))
	assert.GreaterOrEqual(t, summary.RequestsTotal, uint64(1))
}
