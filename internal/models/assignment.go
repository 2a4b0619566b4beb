package models

import (
	"strings"
	"time"
)

// DueLayout is the minute precision due date format, read as UTC.
const DueLayout = "2006-01-02T15:04"

// Submission is one student's hand-in for an assignment.
type Submission struct {
	ID          string    `json:"id"`
	Student     string    `json:"student" validate:"required"`
	Description string    `json:"description,omitempty"`
	Files       []string  `json:"files"`
	SubmittedAt time.Time `json:"submittedAt"`
	Late        bool      `json:"late"`
}

// Assignment is homework set by a teacher with a deadline and a mark ceiling.
type Assignment struct {
	ID          string       `json:"id"`
	Title       string       `json:"title" validate:"required"`
	Subject     string       `json:"subject" validate:"required"`
	Teacher     string       `json:"teacher"`
	Description string       `json:"description"`
	DueDate     string       `json:"dueDate" validate:"required"`
	MaxMarks    float64      `json:"maxMarks" validate:"gte=0"`
	Resources   []string     `json:"resources"`
	Submissions []Submission `json:"submissions"`
}

// Due parses DueDate. Both DueLayout and RFC 3339 are accepted.
func (a Assignment) Due() (time.Time, error) {
	if t, err := time.Parse(DueLayout, a.DueDate); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, a.DueDate)
}

// Normalize trims the text fields, drops blank resources and rewrites DueDate in DueLayout when
// it parses.
func (a Assignment) Normalize() Assignment {
	a.ID = strings.TrimSpace(a.ID)
	a.Title = strings.TrimSpace(a.Title)
	a.Subject = strings.TrimSpace(a.Subject)
	a.Teacher = strings.TrimSpace(a.Teacher)
	a.Description = strings.TrimSpace(a.Description)
	a.DueDate = strings.TrimSpace(a.DueDate)
	if due, err := a.Due(); err == nil {
		a.DueDate = due.UTC().Format(DueLayout)
	}
	a.Resources = compactStrings(a.Resources)
	return a
}

// AssignmentFilter narrows assignment listings. Zero values match everything.
type AssignmentFilter struct {
	Subject string `json:"subject,omitempty"`
	Teacher string `json:"teacher,omitempty"`
}

// Matches reports whether assignment passes the filter.
func (f AssignmentFilter) Matches(assignment Assignment) bool {
	if f.Subject != "" && assignment.Subject != f.Subject {
		return false
	}
	if f.Teacher != "" && assignment.Teacher != f.Teacher {
		return false
	}
	return true
}

func compactStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
