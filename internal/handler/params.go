package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smart-edu-api/internal/models"
	"github.com/noah-isme/smart-edu-api/internal/service"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
)

func pathIndex(c *gin.Context) (int, error) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "index must be an integer")
	}
	return index, nil
}

// confirmParam reads ?confirm=true. Deletes are refused unless the caller confirmed them.
func confirmParam(c *gin.Context) service.Confirmation {
	ok, _ := strconv.ParseBool(c.Query("confirm"))
	return service.Confirmed(ok)
}

func queryBool(c *gin.Context, key string) (bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, appErrors.Clone(appErrors.ErrValidation, key+" must be true or false")
	}
	return v, nil
}

func timetableFilter(c *gin.Context) (models.TimetableFilter, error) {
	filter := models.TimetableFilter{
		Class:   strings.TrimSpace(c.Query("class")),
		Teacher: strings.TrimSpace(c.Query("teacher")),
		Room:    strings.TrimSpace(c.Query("room")),
		Search:  strings.TrimSpace(c.Query("search")),
	}
	if day := strings.TrimSpace(c.Query("day")); day != "" {
		parsed, err := models.ParseWeekday(day)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		filter.Day = parsed
	}
	return filter, nil
}

func examFilter(c *gin.Context) (models.ExamResultFilter, error) {
	filter := models.ExamResultFilter{
		Class:   strings.TrimSpace(c.Query("class")),
		Subject: strings.TrimSpace(c.Query("subject")),
		From:    strings.TrimSpace(c.Query("from")),
		To:      strings.TrimSpace(c.Query("to")),
		Search:  strings.TrimSpace(c.Query("search")),
	}
	for _, date := range []string{filter.From, filter.To} {
		if date != "" && !models.ValidDate(date) {
			return filter, appErrors.Clone(appErrors.ErrValidation, "from and to must be YYYY-MM-DD dates")
		}
	}
	return filter, nil
}

func courseFilter(c *gin.Context) models.CourseFilter {
	return models.CourseFilter{
		Department: strings.TrimSpace(c.Query("department")),
		Subject:    strings.TrimSpace(c.Query("subject")),
		Search:     strings.TrimSpace(c.Query("search")),
	}
}

func assignmentFilter(c *gin.Context) models.AssignmentFilter {
	return models.AssignmentFilter{
		Subject: strings.TrimSpace(c.Query("subject")),
		Teacher: strings.TrimSpace(c.Query("teacher")),
	}
}
