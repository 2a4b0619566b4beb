package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/smart-edu-api/internal/models"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
	"github.com/noah-isme/smart-edu-api/pkg/export"
)

// ExportFormat names a rendered document type.
type ExportFormat string

// Supported export formats.
const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
)

var exportContentTypes = map[ExportFormat]string{
	ExportFormatCSV:  "text/csv; charset=utf-8",
	ExportFormatPDF:  "application/pdf",
	ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ParseExportFormat accepts csv, pdf or xlsx in any case. An empty value selects csv.
func ParseExportFormat(raw string) (ExportFormat, error) {
	format := ExportFormat(strings.ToLower(strings.TrimSpace(raw)))
	if format == "" {
		return ExportFormatCSV, nil
	}
	if _, ok := exportContentTypes[format]; !ok {
		return "", appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", raw))
	}
	return format, nil
}

// ExportResult is a rendered document ready to be sent to the client.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, sheet string) ([]byte, error)
}

type exportRecorder interface {
	RecordExport(kind, format string)
}

// ExportRenderers bundles the document renderers. Nil members fall back to the defaults.
type ExportRenderers struct {
	CSV     csvRenderer
	PDF     pdfRenderer
	WidePDF pdfRenderer
	XLSX    xlsxRenderer
}

// ExportService turns timetable and exam views into CSV, PDF or XLSX documents.
type ExportService struct {
	csv     csvRenderer
	pdf     pdfRenderer
	widePDF pdfRenderer
	xlsx    xlsxRenderer
	metrics exportRecorder
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(renderers ExportRenderers, metrics exportRecorder, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderers.CSV == nil {
		renderers.CSV = export.NewCSVExporter(',')
	}
	if renderers.PDF == nil {
		renderers.PDF = export.NewPDFExporter()
	}
	if renderers.WidePDF == nil {
		renderers.WidePDF = export.NewPDFExporter().Landscape()
	}
	if renderers.XLSX == nil {
		renderers.XLSX = export.NewXLSXExporter()
	}
	return &ExportService{
		csv:     renderers.CSV,
		pdf:     renderers.PDF,
		widePDF: renderers.WidePDF,
		xlsx:    renderers.XLSX,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

var timetableHeaders = []string{"Class", "Section", "Subject", "Teacher", "Day", "Start", "End", "Room"}

// Timetable renders the given entries in input order.
func (s *ExportService) Timetable(format ExportFormat, entries []models.IndexedEntry) (*ExportResult, error) {
	dataset := export.Dataset{Headers: timetableHeaders, Rows: make([]map[string]string, 0, len(entries))}
	for _, entry := range entries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Class":   entry.Class,
			"Section": entry.Section,
			"Subject": entry.Subject,
			"Teacher": entry.Teacher,
			"Day":     entry.Day.Name(),
			"Start":   entry.Start.String(),
			"End":     entry.End.String(),
			"Room":    entry.Room,
		})
	}
	return s.render("timetable", format, dataset, "Class Timetable", true)
}

var examResultHeaders = []string{"Student", "Class", "Subject", "Faculty", "Score", "Max Score", "Date"}

// ExamResults renders the given records in input order.
func (s *ExportService) ExamResults(format ExportFormat, records []models.ScoredRecord) (*ExportResult, error) {
	dataset := export.Dataset{Headers: examResultHeaders, Rows: make([]map[string]string, 0, len(records))}
	for _, record := range records {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student":   record.StudentName,
			"Class":     record.Class,
			"Subject":   record.Subject,
			"Faculty":   record.Faculty,
			"Score":     formatScore(record.Score),
			"Max Score": formatScore(record.MaxScore),
			"Date":      record.Date,
		})
	}
	return s.render("exam_results", format, dataset, "Exam Results", false)
}

var examSummaryHeaders = []string{"Group", "Count", "Average", "Highest", "Lowest", "Passed", "Failed"}

// ExamSummaries renders group summaries in the order given.
func (s *ExportService) ExamSummaries(format ExportFormat, groupBy string, summaries []models.GroupSummary) (*ExportResult, error) {
	dataset := export.Dataset{Headers: examSummaryHeaders, Rows: make([]map[string]string, 0, len(summaries))}
	for _, summary := range summaries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Group":   summary.GroupKey,
			"Count":   strconv.Itoa(summary.Count),
			"Average": strconv.FormatFloat(summary.Average, 'f', 2, 64),
			"Highest": formatScore(summary.Highest),
			"Lowest":  formatScore(summary.Lowest),
			"Passed":  strconv.Itoa(summary.PassCount),
			"Failed":  strconv.Itoa(summary.FailCount),
		})
	}
	title := "Exam Summary"
	if groupBy != "" {
		title = fmt.Sprintf("Exam Summary by %s", groupBy)
	}
	return s.render("exam_summary", format, dataset, title, false)
}

func (s *ExportService) render(kind string, format ExportFormat, dataset export.Dataset, title string, wide bool) (*ExportResult, error) {
	var (
		payload []byte
		err     error
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		renderer := s.pdf
		if wide {
			renderer = s.widePDF
		}
		payload, err = renderer.Render(dataset, title)
	case ExportFormatXLSX:
		payload, err = s.xlsx.Render(dataset, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("export render failed", zap.String("kind", kind), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	if s.metrics != nil {
		s.metrics.RecordExport(kind, string(format))
	}
	return &ExportResult{
		Filename:    buildFilename(kind, format, s.now()),
		ContentType: exportContentTypes[format],
		Payload:     payload,
	}, nil
}

func buildFilename(kind string, format ExportFormat, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", sanitizeFilename(kind), at.UTC().Format("20060102_150405"), format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
