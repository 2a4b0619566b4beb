package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/smart-edu-api/internal/models"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
)

// Summary groupings.
const (
	GroupByClassKey   = "class"
	GroupBySubjectKey = "subject"
)

type examSnapshot struct {
	Records []models.ScoredRecord `json:"records"`
}

// SummaryOptions tunes ExamResultService.Summaries.
type SummaryOptions struct {
	GroupBy string
	// Threshold is compared against raw scores, or against percentages when Normalize is set.
	// Nil selects the configured default.
	Threshold *float64
	Normalize bool
	Filter    models.ExamResultFilter
}

// SummaryReport is the result of a summary request.
type SummaryReport struct {
	GroupBy   string                `json:"groupBy"`
	Threshold float64               `json:"threshold"`
	Normalize bool                  `json:"normalized"`
	Groups    []models.GroupSummary `json:"groups"`
	Overall   models.PassRate       `json:"overall"`
}

// ExamResultService owns the published exam result book.
type ExamResultService struct {
	mu               sync.Mutex
	state            ExamResultsState
	snapshot         snapshotter
	exporter         *ExportService
	defaultThreshold float64
	logger           *zap.Logger
}

// NewExamResultService restores the saved result book, falling back to seed when none exists.
func NewExamResultService(ctx context.Context, store SnapshotStore, seed []models.ScoredRecord, passThreshold float64, exporter *ExportService, metrics *MetricsService, logger *zap.Logger) (*ExamResultService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ExamResultService{
		snapshot:         snapshotter{store: store, metrics: metrics, logger: logger},
		exporter:         exporter,
		defaultThreshold: passThreshold,
		logger:           logger,
	}
	var saved examSnapshot
	found, err := svc.snapshot.load(ctx, SnapshotExamResults, &saved)
	if err != nil {
		return nil, err
	}
	if found {
		svc.state = NewExamResultsState(saved.Records)
		logger.Info("exam results restored", zap.Int("records", len(saved.Records)))
		return svc, nil
	}

	state := NewExamResultsState(nil)
	for _, record := range seed {
		next, err := ReduceExamResults(state, AddResult{Record: record})
		if err != nil {
			return nil, fmt.Errorf("seed exam result %q: %w", record.StudentName, err)
		}
		state = next
	}
	svc.state = state
	logger.Info("exam results seeded", zap.Int("records", state.Records.Len()))
	return svc, nil
}

// DefaultThreshold returns the configured pass mark.
func (s *ExamResultService) DefaultThreshold() float64 {
	return s.defaultThreshold
}

// List returns the records passing filter in stored order.
func (s *ExamResultService) List(filter models.ExamResultFilter) []models.ScoredRecord {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	view, _ := ReduceExamResults(state, SetResultFilter{Filter: filter})
	return view.Visible()
}

// Get returns the record with id.
func (s *ExamResultService) Get(id string) (*models.ScoredRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.state.indexOf(id)
	if index < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "exam result not found")
	}
	record, _ := s.state.Records.At(index)
	return &record, nil
}

// Create appends a record.
func (s *ExamResultService) Create(ctx context.Context, record models.ScoredRecord) (*models.ScoredRecord, error) {
	next, err := s.dispatch(ctx, AddResult{Record: record})
	if err != nil {
		return nil, err
	}
	stored, _ := next.Records.At(next.Records.Len() - 1)
	return &stored, nil
}

// Update replaces the record with id.
func (s *ExamResultService) Update(ctx context.Context, id string, record models.ScoredRecord) (*models.ScoredRecord, error) {
	next, err := s.dispatch(ctx, UpdateResult{ID: id, Record: record})
	if err != nil {
		return nil, err
	}
	stored, _ := next.Records.At(next.indexOf(id))
	return &stored, nil
}

// Delete removes the record with id when confirm agrees.
func (s *ExamResultService) Delete(ctx context.Context, id string, confirm Confirmation) error {
	_, err := s.dispatch(ctx, DeleteResult{ID: id, Confirm: confirm})
	return err
}

// Summaries recomputes group statistics over the records passing opts.Filter.
func (s *ExamResultService) Summaries(opts SummaryOptions) (*SummaryReport, error) {
	key, groupBy, err := groupKeyFor(opts.GroupBy)
	if err != nil {
		return nil, err
	}
	threshold := s.defaultThreshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}
	records := s.List(opts.Filter)
	if opts.Normalize {
		records = NormalizeToPercent(records)
	}
	summaries := Summarize(records, key, threshold)
	return &SummaryReport{
		GroupBy:   groupBy,
		Threshold: threshold,
		Normalize: opts.Normalize,
		Groups:    SortedSummaries(summaries),
		Overall:   PassRate(summaries),
	}, nil
}

// TopPerformers returns the n best records.
func (s *ExamResultService) TopPerformers(n int) []models.ScoredRecord {
	return TopPerformers(s.List(models.ExamResultFilter{}), n)
}

// Export renders the records passing filter.
func (s *ExamResultService) Export(format ExportFormat, filter models.ExamResultFilter) (*ExportResult, error) {
	return s.exporter.ExamResults(format, s.List(filter))
}

// ExportSummaries renders the group summaries described by opts.
func (s *ExamResultService) ExportSummaries(format ExportFormat, opts SummaryOptions) (*ExportResult, error) {
	report, err := s.Summaries(opts)
	if err != nil {
		return nil, err
	}
	return s.exporter.ExamSummaries(format, report.GroupBy, report.Groups)
}

func (s *ExamResultService) dispatch(ctx context.Context, action ExamResultAction) (ExamResultsState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := ReduceExamResults(s.state, action)
	if err != nil {
		return s.state, err
	}
	if err := s.snapshot.save(ctx, SnapshotExamResults, examSnapshot{Records: next.Records.Items()}); err != nil {
		return s.state, err
	}
	s.state = next
	return next, nil
}

func groupKeyFor(raw string) (GroupKeyFunc, string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", GroupByClassKey:
		return GroupByClass, GroupByClassKey, nil
	case GroupBySubjectKey:
		return GroupBySubject, GroupBySubjectKey, nil
	}
	return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("groupBy must be %s or %s", GroupByClassKey, GroupBySubjectKey))
}
