package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/smart-edu-api/internal/models"
	applog "github.com/noah-isme/smart-edu-api/pkg/logger"
)

type conflictRecorder interface {
	RecordConflict(dimension string)
}

type timetableSnapshot struct {
	Entries []models.ScheduleEntry `json:"entries"`
}

// TimetableCheckResult is the outcome of a dry-run conflict check.
type TimetableCheckResult struct {
	Conflict bool                     `json:"conflict"`
	Message  string                   `json:"message,omitempty"`
	Detail   *models.ScheduleConflict `json:"detail,omitempty"`
}

// TimetableService owns the published timetable. Every call is one serialised turn: it reads
// the current state, reduces an action and, once the new state is saved, publishes it.
type TimetableService struct {
	mu       sync.Mutex
	state    TimetableState
	snapshot snapshotter
	exporter *ExportService
	metrics  conflictRecorder
	logger   *zap.Logger
}

// NewTimetableService restores the last saved timetable, starting empty when none exists.
func NewTimetableService(ctx context.Context, store SnapshotStore, exporter *ExportService, metrics *MetricsService, logger *zap.Logger) (*TimetableService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &TimetableService{
		state:    NewTimetableState(nil),
		snapshot: snapshotter{store: store, metrics: metrics, logger: logger},
		exporter: exporter,
		metrics:  metrics,
		logger:   logger,
	}
	var saved timetableSnapshot
	found, err := svc.snapshot.load(ctx, SnapshotTimetable, &saved)
	if err != nil {
		return nil, err
	}
	if found {
		svc.state = NewTimetableState(saved.Entries)
		logger.Info("timetable restored", zap.Int("entries", len(saved.Entries)))
	}
	return svc, nil
}

// List returns the entries passing filter with their indexes.
func (s *TimetableService) List(filter models.TimetableFilter) []models.IndexedEntry {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	view, _ := ReduceTimetable(state, SetFilter{Filter: filter})
	return view.Visible()
}

// Add validates entry against the timetable and appends it.
func (s *TimetableService) Add(ctx context.Context, entry models.ScheduleEntry) (*models.IndexedEntry, error) {
	next, err := s.dispatch(ctx, AddEntry{Entry: entry})
	if err != nil {
		return nil, err
	}
	index := next.Entries.Len() - 1
	stored, _ := next.Entries.At(index)
	return &models.IndexedEntry{Index: index, ScheduleEntry: stored}, nil
}

// Update replaces the entry at index. The entry may keep its own slot.
func (s *TimetableService) Update(ctx context.Context, index int, entry models.ScheduleEntry) (*models.IndexedEntry, error) {
	next, err := s.dispatch(ctx, UpdateEntry{Index: index, Entry: entry})
	if err != nil {
		return nil, err
	}
	stored, _ := next.Entries.At(index)
	return &models.IndexedEntry{Index: index, ScheduleEntry: stored}, nil
}

// Delete removes the entry at index when confirm agrees.
func (s *TimetableService) Delete(ctx context.Context, index int, confirm Confirmation) error {
	_, err := s.dispatch(ctx, DeleteEntry{Index: index, Confirm: confirm})
	return err
}

// Check reports whether entry could be saved without changing anything. Pass NoIgnore for a
// new entry or the entry's index when checking an edit.
func (s *TimetableService) Check(entry models.ScheduleEntry, ignoreIndex int) (*TimetableCheckResult, error) {
	entry, err := ValidateEntry(entry)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	entries := s.state.Entries.Items()
	s.mu.Unlock()

	conflict, found := FindConflict(entry, entries, ignoreIndex)
	if !found {
		return &TimetableCheckResult{}, nil
	}
	return &TimetableCheckResult{Conflict: true, Message: conflictMessage(entry, conflict), Detail: &conflict}, nil
}

// Export renders the entries passing filter.
func (s *TimetableService) Export(format ExportFormat, filter models.TimetableFilter) (*ExportResult, error) {
	return s.exporter.Timetable(format, s.List(filter))
}

// Count returns the number of entries.
func (s *TimetableService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Entries.Len()
}

func (s *TimetableService) dispatch(ctx context.Context, action TimetableAction) (TimetableState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := ReduceTimetable(s.state, action)
	if err != nil {
		s.recordConflict(ctx, err)
		return s.state, err
	}
	if err := s.snapshot.save(ctx, SnapshotTimetable, timetableSnapshot{Entries: next.Entries.Items()}); err != nil {
		return s.state, err
	}
	s.state = next
	return next, nil
}

func (s *TimetableService) recordConflict(ctx context.Context, err error) {
	var conflictErr *models.ScheduleConflictError
	if !errors.As(err, &conflictErr) {
		return
	}
	applog.ForRequest(ctx, s.logger).Info("timetable conflict rejected",
		zap.String("dimension", conflictErr.Conflict.Dimension),
		zap.Int("conflicting_index", conflictErr.Conflict.Index))
	if s.metrics != nil {
		s.metrics.RecordConflict(conflictErr.Conflict.Dimension)
	}
}
