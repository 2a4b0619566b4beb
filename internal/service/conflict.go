package service

import "github.com/noah-isme/smart-edu-api/internal/models"

// NoIgnore disables the self-exclusion in HasConflict and FindConflict.
const NoIgnore = -1

// HasConflict reports whether candidate collides with any entry in existing other than the
// one at ignoreIndex. Entries collide when they share a day, share the class, teacher or room,
// and their [start, end) intervals overlap.
func HasConflict(candidate models.ScheduleEntry, existing []models.ScheduleEntry, ignoreIndex int) bool {
	_, ok := FindConflict(candidate, existing, ignoreIndex)
	return ok
}

// FindConflict returns the first colliding entry together with the shared dimension.
func FindConflict(candidate models.ScheduleEntry, existing []models.ScheduleEntry, ignoreIndex int) (models.ScheduleConflict, bool) {
	for i, entry := range existing {
		if i == ignoreIndex || entry.Day != candidate.Day {
			continue
		}
		if !overlaps(candidate, entry) {
			continue
		}
		if dimension := sharedDimension(candidate, entry); dimension != "" {
			return models.ScheduleConflict{Index: i, Entry: entry, Dimension: dimension}, true
		}
	}
	return models.ScheduleConflict{}, false
}

func overlaps(a, b models.ScheduleEntry) bool {
	return a.Start < b.End && a.End > b.Start
}

func sharedDimension(a, b models.ScheduleEntry) string {
	switch {
	case a.Class == b.Class:
		return models.ConflictClass
	case a.Teacher == b.Teacher:
		return models.ConflictTeacher
	case a.Room == b.Room:
		return models.ConflictRoom
	}
	return ""
}
