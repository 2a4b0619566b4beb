package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/smart-edu-api/internal/dto"
	"github.com/noah-isme/smart-edu-api/internal/models"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
)

const dashboardTopPerformers = 3

// RecordCounter is implemented by anything able to report how many records it stores.
type RecordCounter interface {
	Count(ctx context.Context) (int, error)
}

// DashboardSources lists the collaborators feeding the admin dashboard. Nil counters report zero.
type DashboardSources struct {
	Students  RecordCounter
	Teachers  RecordCounter
	Admins    RecordCounter
	Exams     *ExamResultService
	Timetable *TimetableService
}

type reportTemplatesSnapshot struct {
	Templates []models.ReportTemplate `json:"templates"`
}

type reportSchedulesSnapshot struct {
	Schedules []models.ScheduledReport `json:"schedules"`
}

// ReportService serves the dashboard and the saved report settings. Scheduled reports are stored
// with status MOCKED and never run.
type ReportService struct {
	mu        sync.Mutex
	sources   DashboardSources
	templates []models.ReportTemplate
	schedules []models.ScheduledReport
	snapshot  snapshotter
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportService restores saved templates and schedules.
func NewReportService(ctx context.Context, store SnapshotStore, sources DashboardSources, metrics *MetricsService, logger *zap.Logger) (*ReportService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ReportService{
		sources:   sources,
		templates: []models.ReportTemplate{},
		schedules: []models.ScheduledReport{},
		snapshot:  snapshotter{store: store, metrics: metrics, logger: logger},
		validator: validator.New(),
		logger:    logger,
		now:       time.Now,
	}

	var templates reportTemplatesSnapshot
	if _, err := svc.snapshot.load(ctx, SnapshotReportTemplates, &templates); err != nil {
		return nil, err
	}
	if templates.Templates != nil {
		svc.templates = templates.Templates
	}
	var schedules reportSchedulesSnapshot
	if _, err := svc.snapshot.load(ctx, SnapshotReportSchedules, &schedules); err != nil {
		return nil, err
	}
	if schedules.Schedules != nil {
		svc.schedules = schedules.Schedules
	}
	return svc, nil
}

// Dashboard assembles the admin overview.
func (s *ReportService) Dashboard(ctx context.Context) (*models.DashboardSummary, error) {
	summary := &models.DashboardSummary{TopPerformers: []models.ScoredRecord{}}

	counters := []struct {
		counter RecordCounter
		dest    *int
		label   string
	}{
		{s.sources.Students, &summary.Students, "students"},
		{s.sources.Teachers, &summary.Teachers, "teachers"},
		{s.sources.Admins, &summary.Admins, "admins"},
	}
	for _, c := range counters {
		if c.counter == nil {
			continue
		}
		count, err := c.counter.Count(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count "+c.label)
		}
		*c.dest = count
	}

	if s.sources.Exams != nil {
		report, err := s.sources.Exams.Summaries(SummaryOptions{GroupBy: GroupByClassKey})
		if err != nil {
			return nil, err
		}
		summary.TotalExams = report.Overall.Total
		summary.PassPercent = report.Overall.PassPercent
		summary.FailPercent = report.Overall.FailPercent
		summary.TopPerformers = s.sources.Exams.TopPerformers(dashboardTopPerformers)
	}
	if s.sources.Timetable != nil {
		summary.TimetableSize = s.sources.Timetable.Count()
	}
	return summary, nil
}

// ListTemplates returns saved templates, oldest first.
func (s *ReportService) ListTemplates() []models.ReportTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ReportTemplate, len(s.templates))
	copy(out, s.templates)
	return out
}

// CreateTemplate saves a named set of report settings.
func (s *ReportService) CreateTemplate(ctx context.Context, req dto.CreateReportTemplateRequest) (*models.ReportTemplate, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "template name is required")
	}
	settings := req.Settings
	if len(settings) == 0 {
		settings = types.JSONText("{}")
	}
	if err := settings.Unmarshal(new(interface{})); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "settings must be valid JSON")
	}
	template := models.ReportTemplate{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Settings:  settings,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(append([]models.ReportTemplate{}, s.templates...), template)
	if err := s.snapshot.save(ctx, SnapshotReportTemplates, reportTemplatesSnapshot{Templates: next}); err != nil {
		return nil, err
	}
	s.templates = next
	return &template, nil
}

// DeleteTemplate removes a template by id.
func (s *ReportService) DeleteTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]models.ReportTemplate, 0, len(s.templates))
	for _, template := range s.templates {
		if template.ID != id {
			next = append(next, template)
		}
	}
	if len(next) == len(s.templates) {
		return appErrors.Clone(appErrors.ErrNotFound, "report template not found")
	}
	if err := s.snapshot.save(ctx, SnapshotReportTemplates, reportTemplatesSnapshot{Templates: next}); err != nil {
		return err
	}
	s.templates = next
	return nil
}

// ListSchedules returns the recorded schedule requests.
func (s *ReportService) ListSchedules() []models.ScheduledReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ScheduledReport, len(s.schedules))
	copy(out, s.schedules)
	return out
}

// Schedule records a recurring report request.
func (s *ReportService) Schedule(ctx context.Context, req dto.CreateScheduledReportRequest) (*models.ScheduledReport, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.When = strings.TrimSpace(req.When)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name and when are required")
	}
	scheduled := models.ScheduledReport{
		ID:        uuid.NewString(),
		Name:      req.Name,
		When:      req.When,
		Status:    models.ScheduledReportStatus,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(append([]models.ScheduledReport{}, s.schedules...), scheduled)
	if err := s.snapshot.save(ctx, SnapshotReportSchedules, reportSchedulesSnapshot{Schedules: next}); err != nil {
		return nil, err
	}
	s.schedules = next
	s.logger.Info("report scheduled", zap.String("id", scheduled.ID), zap.String("when", scheduled.When))
	return &scheduled, nil
}
