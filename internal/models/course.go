package models

import "strings"

// CourseVideo is a recorded lesson linked from a course.
type CourseVideo struct {
	Title string `json:"title" validate:"required"`
	URL   string `json:"url" validate:"required,url"`
}

// CourseMaterial is a handout attached to a course.
type CourseMaterial struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url,omitempty" validate:"omitempty,url"`
}

// Course is a subject taught by a faculty member within a department.
type Course struct {
	ID         string           `json:"id"`
	Subject    string           `json:"subject" validate:"required"`
	Department string           `json:"department" validate:"required"`
	Faculty    string           `json:"faculty" validate:"required"`
	Videos     []CourseVideo    `json:"videos" validate:"dive"`
	Materials  []CourseMaterial `json:"materials" validate:"dive"`
}

// Normalize trims the text fields and drops video and material rows left completely blank.
func (c Course) Normalize() Course {
	c.ID = strings.TrimSpace(c.ID)
	c.Subject = strings.TrimSpace(c.Subject)
	c.Department = strings.TrimSpace(c.Department)
	c.Faculty = strings.TrimSpace(c.Faculty)

	videos := make([]CourseVideo, 0, len(c.Videos))
	for _, v := range c.Videos {
		v.Title, v.URL = strings.TrimSpace(v.Title), strings.TrimSpace(v.URL)
		if v.Title != "" || v.URL != "" {
			videos = append(videos, v)
		}
	}
	materials := make([]CourseMaterial, 0, len(c.Materials))
	for _, m := range c.Materials {
		m.Name, m.URL = strings.TrimSpace(m.Name), strings.TrimSpace(m.URL)
		if m.Name != "" || m.URL != "" {
			materials = append(materials, m)
		}
	}
	c.Videos, c.Materials = videos, materials
	return c
}

// CourseFilter narrows course listings. Zero values match everything.
type CourseFilter struct {
	Department string `json:"department,omitempty"`
	Subject    string `json:"subject,omitempty"`
	// Search matches subject, department or faculty, ignoring case.
	Search string `json:"search,omitempty"`
}

// Matches reports whether course passes the filter.
func (f CourseFilter) Matches(course Course) bool {
	if f.Department != "" && course.Department != f.Department {
		return false
	}
	if f.Subject != "" && course.Subject != f.Subject {
		return false
	}
	if f.Search != "" &&
		!containsFold(course.Subject, f.Search) &&
		!containsFold(course.Department, f.Search) &&
		!containsFold(course.Faculty, f.Search) {
		return false
	}
	return true
}

// VideoCount totals the videos of the courses sharing a department or subject.
type VideoCount struct {
	GroupKey string `json:"groupKey"`
	Courses  int    `json:"courses"`
	Videos   int    `json:"videos"`
}
