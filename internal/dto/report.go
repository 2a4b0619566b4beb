package dto

import (
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/smart-edu-api/internal/models"
)

// CreateReportTemplateRequest captures POST /reports/templates.
type CreateReportTemplateRequest struct {
	Name     string         `json:"name" validate:"required"`
	Settings types.JSONText `json:"settings" swaggertype:"object"`
}

// CreateScheduledReportRequest captures POST /reports/schedules.
type CreateScheduledReportRequest struct {
	Name string `json:"name" validate:"required"`
	When string `json:"when" validate:"required"`
}

// TimetableCheckRequest captures POST /timetable/check. A nil IgnoreIndex checks a new entry.
type TimetableCheckRequest struct {
	Entry       models.ScheduleEntry `json:"entry"`
	IgnoreIndex *int                 `json:"ignoreIndex"`
}

