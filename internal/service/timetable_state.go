package service

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/smart-edu-api/internal/models"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
)

var stateValidator = validator.New()

// TimetableState is one version of the timetable. The published state carries no filter; a
// request narrows a copy with SetFilter and reads Visible.
type TimetableState struct {
	Entries Collection[models.ScheduleEntry]
	Filter  models.TimetableFilter
}

// NewTimetableState builds a state holding entries with no filter.
func NewTimetableState(entries []models.ScheduleEntry) TimetableState {
	return TimetableState{Entries: NewCollection(entries)}
}

// Visible returns the entries passing the current filter along with their indexes.
func (s TimetableState) Visible() []models.IndexedEntry {
	return filterEntries(s.Entries.Items(), s.Filter)
}

// TimetableAction is dispatched to ReduceTimetable.
type TimetableAction interface {
	timetableAction()
}

// AddEntry appends a new entry.
type AddEntry struct {
	Entry models.ScheduleEntry
}

// UpdateEntry replaces the entry at Index. The entry is not checked against itself.
type UpdateEntry struct {
	Index int
	Entry models.ScheduleEntry
}

// DeleteEntry removes the entry at Index when Confirm agrees.
type DeleteEntry struct {
	Index   int
	Confirm Confirmation
}

// SetFilter replaces the timetable filter.
type SetFilter struct {
	Filter models.TimetableFilter
}

func (AddEntry) timetableAction()    {}
func (UpdateEntry) timetableAction() {}
func (DeleteEntry) timetableAction() {}
func (SetFilter) timetableAction()   {}

// ReduceTimetable applies action to state. On error the returned state is the input state.
func ReduceTimetable(state TimetableState, action TimetableAction) (TimetableState, error) {
	switch a := action.(type) {
	case AddEntry:
		entry, err := prepareEntry(state.Entries.Items(), a.Entry, NoIgnore)
		if err != nil {
			return state, err
		}
		state.Entries = state.Entries.Add(entry)
		return state, nil
	case UpdateEntry:
		if _, err := state.Entries.At(a.Index); err != nil {
			return state, err
		}
		entry, err := prepareEntry(state.Entries.Items(), a.Entry, a.Index)
		if err != nil {
			return state, err
		}
		next, err := state.Entries.Replace(a.Index, entry)
		if err != nil {
			return state, err
		}
		state.Entries = next
		return state, nil
	case DeleteEntry:
		next, err := state.Entries.Remove(a.Index, a.Confirm)
		if err != nil {
			return state, err
		}
		state.Entries = next
		return state, nil
	case SetFilter:
		state.Filter = a.Filter
		return state, nil
	default:
		return state, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported timetable action %T", action))
	}
}

// ValidateEntry normalises entry and checks its required fields and time range.
func ValidateEntry(entry models.ScheduleEntry) (models.ScheduleEntry, error) {
	entry = entry.Normalize()
	if err := stateValidator.Struct(entry); err != nil {
		return entry, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "class, subject, teacher, day and room are required")
	}
	if !entry.Day.Valid() {
		return entry, appErrors.Clone(appErrors.ErrValidation, "day must be between Monday and Saturday")
	}
	if !entry.Start.Valid() || !entry.End.Valid() {
		return entry, appErrors.Clone(appErrors.ErrValidation, "start and end times are required")
	}
	if entry.Start >= entry.End {
		return entry, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}
	return entry, nil
}

func prepareEntry(existing []models.ScheduleEntry, entry models.ScheduleEntry, ignoreIndex int) (models.ScheduleEntry, error) {
	entry, err := ValidateEntry(entry)
	if err != nil {
		return entry, err
	}
	if conflict, found := FindConflict(entry, existing, ignoreIndex); found {
		return entry, conflictError(entry, conflict)
	}
	return entry, nil
}

func conflictError(candidate models.ScheduleEntry, conflict models.ScheduleConflict) error {
	message := conflictMessage(candidate, conflict)
	return appErrors.Wrap(&models.ScheduleConflictError{Message: message, Conflict: conflict},
		appErrors.ErrConflict.Code, http.StatusConflict, message)
}

func conflictMessage(candidate models.ScheduleEntry, conflict models.ScheduleConflict) string {
	var subject string
	switch conflict.Dimension {
	case models.ConflictClass:
		subject = "class " + candidate.Class
	case models.ConflictTeacher:
		subject = "teacher " + candidate.Teacher
	default:
		subject = "room " + candidate.Room
	}
	return fmt.Sprintf("%s is already booked on %s %s-%s (%s)", subject, conflict.Entry.Day.Name(),
		conflict.Entry.Start, conflict.Entry.End, conflict.Entry.Subject)
}

func filterEntries(entries []models.ScheduleEntry, filter models.TimetableFilter) []models.IndexedEntry {
	out := make([]models.IndexedEntry, 0, len(entries))
	for i, entry := range entries {
		if filter.Matches(entry) {
			out = append(out, models.IndexedEntry{Index: i, ScheduleEntry: entry})
		}
	}
	return out
}
