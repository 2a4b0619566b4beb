package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Weekday is a teaching day. Sunday is not a teaching day.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayCodes = [...]string{"", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

var weekdayNames = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Weekdays lists teaching days in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// ParseWeekday accepts a three letter code or a full day name in any case.
func ParseWeekday(raw string) (Weekday, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	for i := 1; i < len(weekdayCodes); i++ {
		if value == weekdayCodes[i] || value == strings.ToUpper(weekdayNames[i]) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("invalid day %q", raw)
}

// Valid reports whether d is one of Monday..Saturday.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Saturday
}

// String returns the three letter code.
func (d Weekday) String() string {
	if !d.Valid() {
		return ""
	}
	return weekdayCodes[d]
}

// Name returns the full English day name.
func (d Weekday) Name() string {
	if !d.Valid() {
		return ""
	}
	return weekdayNames[d]
}

// MarshalJSON encodes the day as its three letter code.
func (d Weekday) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a day code or name.
func (d *Weekday) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("day must be a string: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		*d = 0
		return nil
	}
	parsed, err := ParseWeekday(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ClockTime is a wall clock time of day stored as minutes since midnight. NoClockTime marks a
// time that was never given, so it cannot be mistaken for 00:00.
type ClockTime int

// NoClockTime is the value of a time field absent from the decoded JSON.
const NoClockTime ClockTime = -1

const minutesPerDay = 24 * 60

// ParseClockTime parses a 24h "HH:MM" value.
func ParseClockTime(raw string) (ClockTime, error) {
	value := strings.TrimSpace(raw)
	if len(value) != 5 || value[2] != ':' || !allDigits(value[:2]) || !allDigits(value[3:]) {
		return NoClockTime, fmt.Errorf("invalid time %q, expected HH:MM", raw)
	}
	hour, _ := strconv.Atoi(value[:2])
	minute, _ := strconv.Atoi(value[3:])
	if hour > 23 || minute > 59 {
		return NoClockTime, fmt.Errorf("time %q out of range", raw)
	}
	return ClockTime(hour*60 + minute), nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// MustClockTime parses raw and panics on failure. Intended for fixtures and tests.
func MustClockTime(raw string) ClockTime {
	t, err := ParseClockTime(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// Valid reports whether t is a time of day. NoClockTime is not.
func (t ClockTime) Valid() bool {
	return t >= 0 && t < minutesPerDay
}

// String renders the time as "HH:MM", or "" when it is not set.
func (t ClockTime) String() string {
	if !t.Valid() {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// MarshalJSON encodes the time as "HH:MM", or null when it is not set.
func (t ClockTime) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes "HH:MM". null and "" leave the time unset.
func (t *ClockTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = NoClockTime
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("time must be a string: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		*t = NoClockTime
		return nil
	}
	parsed, err := ParseClockTime(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ScheduleEntry is one timetable slot assignment.
type ScheduleEntry struct {
	Class   string    `json:"class" validate:"required"`
	Section string    `json:"section"`
	Subject string    `json:"subject" validate:"required"`
	Teacher string    `json:"teacher" validate:"required"`
	Day     Weekday   `json:"day" validate:"required"`
	Start   ClockTime `json:"start"`
	End     ClockTime `json:"end"`
	Room    string    `json:"room" validate:"required"`
}

// UnmarshalJSON decodes an entry, leaving Start and End as NoClockTime when they are absent.
func (e *ScheduleEntry) UnmarshalJSON(data []byte) error {
	type plain ScheduleEntry
	decoded := plain{Start: NoClockTime, End: NoClockTime}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*e = ScheduleEntry(decoded)
	return nil
}

// Normalize trims surrounding whitespace from the text fields.
func (e ScheduleEntry) Normalize() ScheduleEntry {
	e.Class = strings.TrimSpace(e.Class)
	e.Section = strings.TrimSpace(e.Section)
	e.Subject = strings.TrimSpace(e.Subject)
	e.Teacher = strings.TrimSpace(e.Teacher)
	e.Room = strings.TrimSpace(e.Room)
	return e
}

// TimetableFilter narrows the published timetable. Zero values match everything.
type TimetableFilter struct {
	Day     Weekday `json:"day,omitempty"`
	Class   string  `json:"class,omitempty"`
	Teacher string  `json:"teacher,omitempty"`
	Room    string  `json:"room,omitempty"`
	Search  string  `json:"search,omitempty"`
}

// Matches reports whether entry passes the filter.
func (f TimetableFilter) Matches(entry ScheduleEntry) bool {
	if f.Day != 0 && entry.Day != f.Day {
		return false
	}
	if f.Class != "" && entry.Class != f.Class {
		return false
	}
	if f.Teacher != "" && entry.Teacher != f.Teacher {
		return false
	}
	if f.Room != "" && entry.Room != f.Room {
		return false
	}
	if f.Search != "" {
		if !containsFold(entry.Subject+" "+entry.Class+" "+entry.Teacher, f.Search) {
			return false
		}
	}
	return true
}

// IndexedEntry pairs an entry with its position in the timetable, the handle used for edits.
type IndexedEntry struct {
	Index int `json:"index"`
	ScheduleEntry
}

// UnmarshalJSON decodes the index next to the embedded entry's fields.
func (e *IndexedEntry) UnmarshalJSON(data []byte) error {
	var head struct {
		Index int `json:"index"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	if err := e.ScheduleEntry.UnmarshalJSON(data); err != nil {
		return err
	}
	e.Index = head.Index
	return nil
}

// Conflict dimensions, in the order they are checked.
const (
	ConflictClass   = "CLASS"
	ConflictTeacher = "TEACHER"
	ConflictRoom    = "ROOM"
)

// ScheduleConflict describes an existing entry that collides with a candidate.
type ScheduleConflict struct {
	Index     int           `json:"index"`
	Entry     ScheduleEntry `json:"entry"`
	Dimension string        `json:"dimension"`
}

// ScheduleConflictError is returned when a candidate entry collides with an existing one.
type ScheduleConflictError struct {
	Message  string           `json:"message"`
	Conflict ScheduleConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
