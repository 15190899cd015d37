package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/pkg/export"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

// ExportFormat names a roster rendering.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type rosterSource interface {
	List(ctx context.Context) ([]dto.StudentRecord, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportResult is a rendered roster ready to be served as an attachment.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the student roster as CSV or PDF.
type ExportService struct {
	students rosterSource
	csv      datasetRenderer
	pdf      datasetRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(students rosterSource, logger *zap.Logger, csv datasetRenderer, pdf datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{students: students, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// ParseExportFormat resolves a query value, defaulting to CSV.
func ParseExportFormat(value string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(value))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
}

// Roster renders every student in list order.
func (s *ExportService) Roster(ctx context.Context, format ExportFormat) (*ExportResult, error) {
	records, err := s.students.List(ctx)
	if err != nil {
		return nil, err
	}
	dataset := rosterDataset(records)

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if err != nil {
		s.logger.Error("roster render failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("students-%s.%s", s.now().UTC().Format("20060102-150405"), format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func rosterDataset(records []dto.StudentRecord) export.Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, map[string]string{
			"id":              r.ID,
			"first_name":      r.FirstName,
			"last_name":       r.LastName,
			"email":           r.Email,
			"major":           r.Major,
			"enrollment_date": r.EnrollmentDate,
			"status":          string(r.Status),
		})
	}
	return export.Dataset{
		Title: "Student Roster",
		Columns: []export.Column{
			{Key: "id", Title: "ID", Width: 2.4},
			{Key: "first_name", Title: "First Name", Width: 1.2},
			{Key: "last_name", Title: "Last Name", Width: 1.2},
			{Key: "email", Title: "Email", Width: 2},
			{Key: "major", Title: "Major", Width: 1.6},
			{Key: "enrollment_date", Title: "Enrollment Date", Width: 1},
			{Key: "status", Title: "Status", Width: 0.8},
		},
		Rows: rows,
	}
}
