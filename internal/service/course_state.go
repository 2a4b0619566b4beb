package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/noah-isme/smart-edu-api/internal/models"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
)

// CourseState is one version of the course catalogue.
type CourseState struct {
	Courses Collection[models.Course]
	Filter  models.CourseFilter
}

// NewCourseState builds a state holding courses with no filter.
func NewCourseState(courses []models.Course) CourseState {
	return CourseState{Courses: NewCollection(courses)}
}

// Visible returns the courses passing the current filter.
func (s CourseState) Visible() []models.Course {
	out := make([]models.Course, 0, s.Courses.Len())
	for _, course := range s.Courses.Items() {
		if s.Filter.Matches(course) {
			out = append(out, course)
		}
	}
	return out
}

// CourseAction is dispatched to ReduceCourses.
type CourseAction interface {
	courseAction()
}

// AddCourse appends a course, assigning an ID when it has none.
type AddCourse struct {
	Course models.Course
}

// UpdateCourse replaces the course with ID.
type UpdateCourse struct {
	ID     string
	Course models.Course
}

// DeleteCourse removes the course with ID when Confirm agrees.
type DeleteCourse struct {
	ID      string
	Confirm Confirmation
}

// SetCourseFilter replaces the course filter.
type SetCourseFilter struct {
	Filter models.CourseFilter
}

func (AddCourse) courseAction()       {}
func (UpdateCourse) courseAction()    {}
func (DeleteCourse) courseAction()    {}
func (SetCourseFilter) courseAction() {}

// ReduceCourses applies action to state. On error the returned state is the input state.
func ReduceCourses(state CourseState, action CourseAction) (CourseState, error) {
	switch a := action.(type) {
	case AddCourse:
		course, err := ValidateCourse(a.Course)
		if err != nil {
			return state, err
		}
		if course.ID == "" {
			course.ID = uuid.NewString()
		} else if state.indexOf(course.ID) >= 0 {
			return state, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("course %s already exists", course.ID))
		}
		state.Courses = state.Courses.Add(course)
		return state, nil
	case UpdateCourse:
		index := state.indexOf(a.ID)
		if index < 0 {
			return state, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		course, err := ValidateCourse(a.Course)
		if err != nil {
			return state, err
		}
		course.ID = a.ID
		next, err := state.Courses.Replace(index, course)
		if err != nil {
			return state, err
		}
		state.Courses = next
		return state, nil
	case DeleteCourse:
		index := state.indexOf(a.ID)
		if index < 0 {
			return state, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		next, err := state.Courses.Remove(index, a.Confirm)
		if err != nil {
			return state, err
		}
		state.Courses = next
		return state, nil
	case SetCourseFilter:
		state.Filter = a.Filter
		return state, nil
	default:
		return state, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported course action %T", action))
	}
}

// ValidateCourse normalizes course and checks its required fields.
func ValidateCourse(course models.Course) (models.Course, error) {
	course = course.Normalize()
	if err := stateValidator.Struct(course); err != nil {
		return course, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course")
	}
	return course, nil
}

func (s CourseState) indexOf(id string) int {
	return s.Courses.IndexOf(func(c models.Course) bool { return c.ID == id })
}
