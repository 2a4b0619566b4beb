package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ScheduledReportStatus marks scheduled reports as stubs. Nothing is ever executed or emailed.
const ScheduledReportStatus = "MOCKED"

// ReportTemplate is a saved set of report page settings.
type ReportTemplate struct {
	ID        string         `json:"id"`
	Name      string         `json:"name" validate:"required"`
	Settings  types.JSONText `json:"settings" swaggertype:"object"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ScheduledReport records a requested recurring report.
type ScheduledReport struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required"`
	When      string    `json:"when" validate:"required"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// DashboardSummary is the admin overview.
type DashboardSummary struct {
	Students      int            `json:"students"`
	Teachers      int            `json:"teachers"`
	Admins        int            `json:"admins"`
	TotalExams    int            `json:"totalExams"`
	PassPercent   float64        `json:"passPercent"`
	FailPercent   float64        `json:"failPercent"`
	TopPerformers []ScoredRecord `json:"topPerformers"`
	TimetableSize int            `json:"timetableSize"`
}
