package models

import "time"

// DateLayout is the calendar date format used by exam records.
const DateLayout = "2006-01-02"

// ScoredRecord is one student's result in one exam.
type ScoredRecord struct {
	ID          string  `json:"id"`
	StudentName string  `json:"studentName" validate:"required"`
	Class       string  `json:"class" validate:"required"`
	Subject     string  `json:"subject" validate:"required"`
	Faculty     string  `json:"faculty"`
	Score       float64 `json:"score" validate:"gte=0"`
	MaxScore    float64 `json:"maxScore" validate:"gt=0"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
}

// Percent returns the score as a percentage of MaxScore.
func (r ScoredRecord) Percent() float64 {
	if r.MaxScore <= 0 {
		return 0
	}
	return r.Score / r.MaxScore * 100
}

// GroupSummary holds aggregate statistics for records sharing a grouping key.
type GroupSummary struct {
	GroupKey  string  `json:"groupKey"`
	Count     int     `json:"count"`
	Average   float64 `json:"average"`
	Highest   float64 `json:"highest"`
	Lowest    float64 `json:"lowest"`
	PassCount int     `json:"passCount"`
	FailCount int     `json:"failCount"`
}

// PassRate summarises pass/fail percentages across groups.
type PassRate struct {
	Total       int     `json:"total"`
	PassPercent float64 `json:"passPercent"`
	FailPercent float64 `json:"failPercent"`
}

// ExamResultFilter narrows exam result listings. Zero values match everything.
type ExamResultFilter struct {
	Class   string `json:"class,omitempty"`
	Subject string `json:"subject,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Search  string `json:"search,omitempty"`
}

// Matches reports whether record passes the filter. Dates compare lexically as YYYY-MM-DD.
func (f ExamResultFilter) Matches(record ScoredRecord) bool {
	if f.Class != "" && record.Class != f.Class {
		return false
	}
	if f.Subject != "" && record.Subject != f.Subject {
		return false
	}
	if f.From != "" && record.Date < f.From {
		return false
	}
	if f.To != "" && record.Date > f.To {
		return false
	}
	if f.Search != "" && !containsFold(record.StudentName, f.Search) {
		return false
	}
	return true
}

// ValidDate reports whether value parses as YYYY-MM-DD.
func ValidDate(value string) bool {
	_, err := time.Parse(DateLayout, value)
	return err == nil
}
