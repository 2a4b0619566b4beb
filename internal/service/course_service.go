package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/smart-edu-api/internal/models"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
)

// GroupByDepartmentKey groups the video summary by department. GroupBySubjectKey is also accepted.
const GroupByDepartmentKey = "department"

type courseSnapshot struct {
	Courses []models.Course `json:"courses"`
}

// CourseService owns the published course catalogue.
type CourseService struct {
	mu       sync.Mutex
	state    CourseState
	snapshot snapshotter
	logger   *zap.Logger
}

// NewCourseService restores the saved catalogue or starts empty.
func NewCourseService(ctx context.Context, store SnapshotStore, metrics *MetricsService, logger *zap.Logger) (*CourseService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &CourseService{
		snapshot: snapshotter{store: store, metrics: metrics, logger: logger},
		logger:   logger,
	}
	var saved courseSnapshot
	found, err := svc.snapshot.load(ctx, SnapshotCourses, &saved)
	if err != nil {
		return nil, err
	}
	svc.state = NewCourseState(saved.Courses)
	if found {
		logger.Info("courses restored", zap.Int("courses", len(saved.Courses)))
	}
	return svc, nil
}

// List returns the courses passing filter in stored order.
func (s *CourseService) List(filter models.CourseFilter) []models.Course {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	view, _ := ReduceCourses(state, SetCourseFilter{Filter: filter})
	return view.Visible()
}

// Get returns the course with id.
func (s *CourseService) Get(id string) (*models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.state.indexOf(id)
	if index < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	course, _ := s.state.Courses.At(index)
	return &course, nil
}

// Create appends a course.
func (s *CourseService) Create(ctx context.Context, course models.Course) (*models.Course, error) {
	next, err := s.dispatch(ctx, AddCourse{Course: course})
	if err != nil {
		return nil, err
	}
	stored, _ := next.Courses.At(next.Courses.Len() - 1)
	return &stored, nil
}

// Update replaces the course with id.
func (s *CourseService) Update(ctx context.Context, id string, course models.Course) (*models.Course, error) {
	next, err := s.dispatch(ctx, UpdateCourse{ID: id, Course: course})
	if err != nil {
		return nil, err
	}
	stored, _ := next.Courses.At(next.indexOf(id))
	return &stored, nil
}

// Delete removes the course with id when confirm agrees.
func (s *CourseService) Delete(ctx context.Context, id string, confirm Confirmation) error {
	_, err := s.dispatch(ctx, DeleteCourse{ID: id, Confirm: confirm})
	return err
}

// VideoSummary counts courses and videos per department or per subject over the courses passing
// filter. Groups are sorted by key.
func (s *CourseService) VideoSummary(groupBy string, filter models.CourseFilter) ([]models.VideoCount, error) {
	var key func(models.Course) string
	switch strings.ToLower(strings.TrimSpace(groupBy)) {
	case "", GroupByDepartmentKey:
		key = func(c models.Course) string { return c.Department }
	case GroupBySubjectKey:
		key = func(c models.Course) string { return c.Subject }
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("groupBy must be %s or %s", GroupByDepartmentKey, GroupBySubjectKey))
	}

	groups := map[string]*models.VideoCount{}
	for _, course := range s.List(filter) {
		k := key(course)
		group, ok := groups[k]
		if !ok {
			group = &models.VideoCount{GroupKey: k}
			groups[k] = group
		}
		group.Courses++
		group.Videos += len(course.Videos)
	}
	out := make([]models.VideoCount, 0, len(groups))
	for _, group := range groups {
		out = append(out, *group)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupKey < out[j].GroupKey })
	return out, nil
}

func (s *CourseService) dispatch(ctx context.Context, action CourseAction) (CourseState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := ReduceCourses(s.state, action)
	if err != nil {
		return s.state, err
	}
	if err := s.snapshot.save(ctx, SnapshotCourses, courseSnapshot{Courses: next.Courses.Items()}); err != nil {
		return s.state, err
	}
	s.state = next
	return next, nil
}
