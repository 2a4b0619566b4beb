package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/smart-edu-api/internal/models"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
)

// ExamResultsState is one version of the exam result book. The published state carries no
// filter; a request narrows a copy with SetResultFilter and reads Visible.
type ExamResultsState struct {
	Records Collection[models.ScoredRecord]
	Filter  models.ExamResultFilter
}

// NewExamResultsState builds a state holding records with no filter.
func NewExamResultsState(records []models.ScoredRecord) ExamResultsState {
	return ExamResultsState{Records: NewCollection(records)}
}

// Visible returns the records passing the current filter.
func (s ExamResultsState) Visible() []models.ScoredRecord {
	return filterRecords(s.Records.Items(), s.Filter)
}

// ExamResultAction is dispatched to ReduceExamResults.
type ExamResultAction interface {
	examResultAction()
}

// AddResult appends a record, assigning an ID when it has none.
type AddResult struct {
	Record models.ScoredRecord
}

// UpdateResult replaces the record with ID. The stored ID is kept.
type UpdateResult struct {
	ID     string
	Record models.ScoredRecord
}

// DeleteResult removes the record with ID when Confirm agrees.
type DeleteResult struct {
	ID      string
	Confirm Confirmation
}

// SetResultFilter replaces the result filter.
type SetResultFilter struct {
	Filter models.ExamResultFilter
}

func (AddResult) examResultAction()       {}
func (UpdateResult) examResultAction()    {}
func (DeleteResult) examResultAction()    {}
func (SetResultFilter) examResultAction() {}

// ReduceExamResults applies action to state. On error the returned state is the input state.
func ReduceExamResults(state ExamResultsState, action ExamResultAction) (ExamResultsState, error) {
	switch a := action.(type) {
	case AddResult:
		record, err := ValidateRecord(a.Record)
		if err != nil {
			return state, err
		}
		if record.ID == "" {
			record.ID = uuid.NewString()
		} else if state.indexOf(record.ID) >= 0 {
			return state, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("exam result %s already exists", record.ID))
		}
		state.Records = state.Records.Add(record)
		return state, nil
	case UpdateResult:
		index := state.indexOf(a.ID)
		if index < 0 {
			return state, appErrors.Clone(appErrors.ErrNotFound, "exam result not found")
		}
		record, err := ValidateRecord(a.Record)
		if err != nil {
			return state, err
		}
		record.ID = a.ID
		next, err := state.Records.Replace(index, record)
		if err != nil {
			return state, err
		}
		state.Records = next
		return state, nil
	case DeleteResult:
		index := state.indexOf(a.ID)
		if index < 0 {
			return state, appErrors.Clone(appErrors.ErrNotFound, "exam result not found")
		}
		next, err := state.Records.Remove(index, a.Confirm)
		if err != nil {
			return state, err
		}
		state.Records = next
		return state, nil
	case SetResultFilter:
		state.Filter = a.Filter
		return state, nil
	default:
		return state, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported exam result action %T", action))
	}
}

// ValidateRecord trims record and checks its fields and score range.
func ValidateRecord(record models.ScoredRecord) (models.ScoredRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.StudentName = strings.TrimSpace(record.StudentName)
	record.Class = strings.TrimSpace(record.Class)
	record.Subject = strings.TrimSpace(record.Subject)
	record.Faculty = strings.TrimSpace(record.Faculty)
	record.Date = strings.TrimSpace(record.Date)
	if err := stateValidator.Struct(record); err != nil {
		return record, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam result")
	}
	if record.Score > record.MaxScore {
		return record, appErrors.Clone(appErrors.ErrValidation, "score cannot exceed maxScore")
	}
	return record, nil
}

func (s ExamResultsState) indexOf(id string) int {
	return s.Records.IndexOf(func(r models.ScoredRecord) bool { return r.ID == id })
}

func filterRecords(records []models.ScoredRecord, filter models.ExamResultFilter) []models.ScoredRecord {
	out := make([]models.ScoredRecord, 0, len(records))
	for _, record := range records {
		if filter.Matches(record) {
			out = append(out, record)
		}
	}
	return out
}
