package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/smart-edu-api/internal/models"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
)

// AssignmentState is one version of the assignment board.
type AssignmentState struct {
	Assignments Collection[models.Assignment]
	Filter      models.AssignmentFilter
}

// NewAssignmentState builds a state holding assignments with no filter.
func NewAssignmentState(assignments []models.Assignment) AssignmentState {
	return AssignmentState{Assignments: NewCollection(assignments)}
}

// Visible returns the assignments passing the current filter.
func (s AssignmentState) Visible() []models.Assignment {
	out := make([]models.Assignment, 0, s.Assignments.Len())
	for _, assignment := range s.Assignments.Items() {
		if s.Filter.Matches(assignment) {
			out = append(out, assignment)
		}
	}
	return out
}

// AssignmentAction is dispatched to ReduceAssignments.
type AssignmentAction interface {
	assignmentAction()
}

// AddAssignment appends an assignment, assigning an ID when it has none. Submissions on the
// incoming value are dropped.
type AddAssignment struct {
	Assignment models.Assignment
}

// UpdateAssignment replaces the assignment with ID. Stored submissions are kept.
type UpdateAssignment struct {
	ID         string
	Assignment models.Assignment
}

// DeleteAssignment removes the assignment with ID when Confirm agrees.
type DeleteAssignment struct {
	ID      string
	Confirm Confirmation
}

// SubmitAssignment records a hand-in. A student submitting again replaces the earlier submission.
// SubmittedAt must be set by the caller.
type SubmitAssignment struct {
	ID         string
	Submission models.Submission
}

// SetAssignmentFilter replaces the assignment filter.
type SetAssignmentFilter struct {
	Filter models.AssignmentFilter
}

func (AddAssignment) assignmentAction()       {}
func (UpdateAssignment) assignmentAction()    {}
func (DeleteAssignment) assignmentAction()    {}
func (SubmitAssignment) assignmentAction()    {}
func (SetAssignmentFilter) assignmentAction() {}

// ReduceAssignments applies action to state. On error the returned state is the input state.
func ReduceAssignments(state AssignmentState, action AssignmentAction) (AssignmentState, error) {
	switch a := action.(type) {
	case AddAssignment:
		assignment, err := ValidateAssignment(a.Assignment)
		if err != nil {
			return state, err
		}
		if assignment.ID == "" {
			assignment.ID = uuid.NewString()
		} else if state.indexOf(assignment.ID) >= 0 {
			return state, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("assignment %s already exists", assignment.ID))
		}
		assignment.Submissions = []models.Submission{}
		state.Assignments = state.Assignments.Add(assignment)
		return state, nil
	case UpdateAssignment:
		index := state.indexOf(a.ID)
		if index < 0 {
			return state, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		assignment, err := ValidateAssignment(a.Assignment)
		if err != nil {
			return state, err
		}
		current, _ := state.Assignments.At(index)
		assignment.ID = a.ID
		assignment.Submissions = current.Submissions
		next, err := state.Assignments.Replace(index, assignment)
		if err != nil {
			return state, err
		}
		state.Assignments = next
		return state, nil
	case DeleteAssignment:
		index := state.indexOf(a.ID)
		if index < 0 {
			return state, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		next, err := state.Assignments.Remove(index, a.Confirm)
		if err != nil {
			return state, err
		}
		state.Assignments = next
		return state, nil
	case SubmitAssignment:
		index := state.indexOf(a.ID)
		if index < 0 {
			return state, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		assignment, _ := state.Assignments.At(index)
		submission, err := validateSubmission(a.Submission)
		if err != nil {
			return state, err
		}
		if due, err := assignment.Due(); err == nil {
			submission.Late = submission.SubmittedAt.After(due)
		}

		submissions := make([]models.Submission, 0, len(assignment.Submissions)+1)
		for _, existing := range assignment.Submissions {
			if existing.Student != submission.Student {
				submissions = append(submissions, existing)
			}
		}
		assignment.Submissions = append(submissions, submission)
		next, err := state.Assignments.Replace(index, assignment)
		if err != nil {
			return state, err
		}
		state.Assignments = next
		return state, nil
	case SetAssignmentFilter:
		state.Filter = a.Filter
		return state, nil
	default:
		return state, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported assignment action %T", action))
	}
}

// ValidateAssignment normalizes assignment and checks its fields and due date.
func ValidateAssignment(assignment models.Assignment) (models.Assignment, error) {
	assignment = assignment.Normalize()
	if err := stateValidator.Struct(assignment); err != nil {
		return assignment, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment")
	}
	if _, err := assignment.Due(); err != nil {
		return assignment, appErrors.Clone(appErrors.ErrValidation, "dueDate must look like "+models.DueLayout)
	}
	return assignment, nil
}

func validateSubmission(submission models.Submission) (models.Submission, error) {
	submission.Student = strings.TrimSpace(submission.Student)
	submission.Description = strings.TrimSpace(submission.Description)
	files := make([]string, 0, len(submission.Files))
	for _, f := range submission.Files {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	submission.Files = files
	if err := stateValidator.Struct(submission); err != nil {
		return submission, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission")
	}
	if len(submission.Files) == 0 && submission.Description == "" {
		return submission, appErrors.Clone(appErrors.ErrValidation, "a submission needs files or a description")
	}
	if submission.SubmittedAt.IsZero() {
		return submission, appErrors.Clone(appErrors.ErrValidation, "submittedAt is required")
	}
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	return submission, nil
}

func (s AssignmentState) indexOf(id string) int {
	return s.Assignments.IndexOf(func(a models.Assignment) bool { return a.ID == id })
}
