package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/smart-edu-api/internal/models"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
)

type assignmentSnapshot struct {
	Assignments []models.Assignment `json:"assignments"`
}

// AssignmentService owns the published assignment board and its submissions.
type AssignmentService struct {
	mu       sync.Mutex
	state    AssignmentState
	snapshot snapshotter
	logger   *zap.Logger
	now      func() time.Time
}

// NewAssignmentService restores the saved board, falling back to seed when none exists.
func NewAssignmentService(ctx context.Context, store SnapshotStore, seed []models.Assignment, metrics *MetricsService, logger *zap.Logger) (*AssignmentService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AssignmentService{
		snapshot: snapshotter{store: store, metrics: metrics, logger: logger},
		logger:   logger,
		now:      time.Now,
	}
	var saved assignmentSnapshot
	found, err := svc.snapshot.load(ctx, SnapshotAssignments, &saved)
	if err != nil {
		return nil, err
	}
	if found {
		svc.state = NewAssignmentState(saved.Assignments)
		logger.Info("assignments restored", zap.Int("assignments", len(saved.Assignments)))
		return svc, nil
	}

	state := NewAssignmentState(nil)
	for _, assignment := range seed {
		next, err := ReduceAssignments(state, AddAssignment{Assignment: assignment})
		if err != nil {
			return nil, fmt.Errorf("seed assignment %q: %w", assignment.Title, err)
		}
		state = next
	}
	svc.state = state
	logger.Info("assignments seeded", zap.Int("assignments", state.Assignments.Len()))
	return svc, nil
}

// List returns the assignments passing filter in stored order.
func (s *AssignmentService) List(filter models.AssignmentFilter) []models.Assignment {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	view, _ := ReduceAssignments(state, SetAssignmentFilter{Filter: filter})
	return view.Visible()
}

// Get returns the assignment with id.
func (s *AssignmentService) Get(id string) (*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.state.indexOf(id)
	if index < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	assignment, _ := s.state.Assignments.At(index)
	return &assignment, nil
}

// Create appends an assignment with no submissions.
func (s *AssignmentService) Create(ctx context.Context, assignment models.Assignment) (*models.Assignment, error) {
	next, err := s.dispatch(ctx, AddAssignment{Assignment: assignment})
	if err != nil {
		return nil, err
	}
	stored, _ := next.Assignments.At(next.Assignments.Len() - 1)
	return &stored, nil
}

// Update replaces the assignment with id, keeping its submissions.
func (s *AssignmentService) Update(ctx context.Context, id string, assignment models.Assignment) (*models.Assignment, error) {
	next, err := s.dispatch(ctx, UpdateAssignment{ID: id, Assignment: assignment})
	if err != nil {
		return nil, err
	}
	stored, _ := next.Assignments.At(next.indexOf(id))
	return &stored, nil
}

// Delete removes the assignment with id when confirm agrees.
func (s *AssignmentService) Delete(ctx context.Context, id string, confirm Confirmation) error {
	_, err := s.dispatch(ctx, DeleteAssignment{ID: id, Confirm: confirm})
	return err
}

// Submit stamps submission with the current time and records it against the assignment with id.
func (s *AssignmentService) Submit(ctx context.Context, id string, submission models.Submission) (*models.Submission, error) {
	submission.SubmittedAt = s.now().UTC()
	next, err := s.dispatch(ctx, SubmitAssignment{ID: id, Submission: submission})
	if err != nil {
		return nil, err
	}
	stored, _ := next.Assignments.At(next.indexOf(id))
	latest := stored.Submissions[len(stored.Submissions)-1]
	return &latest, nil
}

// Submissions returns the hand-ins for the assignment with id.
func (s *AssignmentService) Submissions(id string) ([]models.Submission, error) {
	assignment, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	out := make([]models.Submission, len(assignment.Submissions))
	copy(out, assignment.Submissions)
	return out, nil
}

func (s *AssignmentService) dispatch(ctx context.Context, action AssignmentAction) (AssignmentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := ReduceAssignments(s.state, action)
	if err != nil {
		return s.state, err
	}
	if err := s.snapshot.save(ctx, SnapshotAssignments, assignmentSnapshot{Assignments: next.Assignments.Items()}); err != nil {
		return s.state, err
	}
	s.state = next
	return next, nil
}
