package core

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"attendance.service/internal/core/worktime"
	"attendance.service/internal/ports/repository"
	"attendance.service/internal/report"
	"github.com/rs/zerolog/log"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	exportRowLimit = 100000
)

// Archiver keeps a copy of generated exports.
type Archiver interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
}

// Export is a rendered payroll file.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
	Period      worktime.Period
}

type ExportService struct {
	repo     repository.Repository
	archiver Archiver
}

// NewExportService creates the payroll exporter. archiver may be nil when no
// export bucket is configured.
func NewExportService(repo repository.Repository, archiver Archiver) *ExportService {
	return &ExportService{repo: repo, archiver: archiver}
}

// Payroll renders every stored day of the 16th-to-15th period starting in month.
func (s *ExportService) Payroll(ctx context.Context, month, format string) (*Export, error) {
	month = strings.TrimSpace(month)
	period, err := worktime.PayrollPeriod(month)
	if err != nil {
		return nil, err
	}

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return nil, fmt.Errorf("%w: format must be csv or xlsx", ErrInvalidInput)
	}

	rows, err := s.repo.ListExportRows(ctx, period.Start, period.End, exportRowLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load export rows: %w", err)
	}

	exp := &Export{Filename: report.PayrollFilename(month, format), Period: period}
	var buf bytes.Buffer
	switch format {
	case FormatXLSX:
		exp.ContentType = contentTypeXLSX
		err = report.WritePayrollXLSX(&buf, rows, period)
	default:
		exp.ContentType = contentTypeCSV
		err = report.WritePayrollCSV(&buf, rows, period)
	}
	if err != nil {
		return nil, err
	}
	exp.Data = buf.Bytes()

	log.Ctx(ctx).Info().Str("period", period.Label).Int("rows", len(rows)).Str("format", format).Msg("Payroll export generated")

	if s.archiver != nil {
		key := fmt.Sprintf("payroll/%s/%s", month, exp.Filename)
		if err := s.archiver.Put(ctx, key, exp.ContentType, exp.Data); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Failed to archive payroll export")
		}
	}
	return exp, nil
}
