package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/blogem/expenseflow/models"
	"github.com/blogem/expenseflow/policy"
	"github.com/blogem/expenseflow/repositories"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const exportSheet = "Expenses"

// Export is a rendered expense report ready to be sent as a download
type Export struct {
	FileName    string
	ContentType string
	Rows        int
	Data        []byte
}

// ReportService interface defines expense report generation
type ReportService interface {
	ExportExpenses(ctx context.Context, actor *models.User, status string, format string) (*Export, error)
}

type reportService struct {
	expenseRepo repositories.ExpenseRepository
	deps        Dependencies
}

// NewReportService creates a new report service
func NewReportService(expenseRepo repositories.ExpenseRepository, deps Dependencies) ReportService {
	return &reportService{
		expenseRepo: expenseRepo,
		deps:        deps.withDefaults(),
	}
}

// ExportExpenses renders every expense visible for export: all of them for
// an admin, the direct reports' for a manager. status is an optional filter.
func (s *reportService) ExportExpenses(ctx context.Context, actor *models.User, status string, format string) (*Export, error) {
	var scope repositories.Scope
	switch {
	case policy.CanExportAll(actor):
		scope = repositories.ScopeAll()
	case policy.CanExportTeam(actor):
		scope = repositories.ScopeTeam(actor.ID)
	default:
		return nil, fmt.Errorf("export expenses: %w", models.ErrForbidden)
	}

	var errs models.ValidationErrors
	var filter *models.Status
	if status = strings.ToLower(strings.TrimSpace(status)); status != "" {
		st := models.Status(status)
		if !st.Valid() {
			errs = errs.Add("status", "status must be one of: pending approved rejected")
		}
		filter = &st
	}

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		errs = errs.Add("format", "format must be one of: csv xlsx")
	}
	if errs.HasErrors() {
		return nil, errs
	}

	expenses, err := s.expenseRepo.ListForExport(ctx, scope, filter)
	if err != nil {
		return nil, err
	}

	rows := make([]models.ExportRow, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, models.ExportRow{
			ID:            e.ID,
			Amount:        e.Amount,
			Category:      e.Category,
			Description:   e.Description,
			Status:        e.Status,
			SubmittedBy:   e.OwnerName,
			SubmittedDate: models.FormatDate(e.CreatedAt.In(s.deps.Location)),
			UpdatedDate:   models.FormatDate(e.UpdatedAt.In(s.deps.Location)),
		})
	}

	export := &Export{
		FileName: s.fileName(filter, actor.Role == models.RoleManager, format),
		Rows:     len(rows),
	}
	switch format {
	case FormatXLSX:
		export.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		export.Data, err = writeXLSX(rows)
	default:
		export.ContentType = "text/csv; charset=utf-8"
		export.Data, err = writeCSV(rows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s export: %w", format, err)
	}

	s.deps.Logger.Info("Expenses exported",
		zap.Int64("user_id", actor.ID),
		zap.String("format", format),
		zap.Int("rows", export.Rows))

	return export, nil
}

func (s *reportService) fileName(status *models.Status, team bool, format string) string {
	var b strings.Builder
	b.WriteString("expenses")
	if status != nil {
		b.WriteString("-" + string(*status))
	}
	if team {
		b.WriteString("-team")
	}
	b.WriteString("-" + models.FormatDate(s.deps.Now().In(s.deps.Location)))
	b.WriteString("." + format)
	return b.String()
}

func writeCSV(rows []models.ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(models.ExportFields); err != nil {
		return nil, err
	}
	for _, row := range rows {
		values := row.Values()
		for i := range values {
			values[i] = escapeFormula(values[i])
		}
		if err := w.Write(values); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// escapeFormula prefixes cells a spreadsheet would evaluate as a formula
func escapeFormula(value string) string {
	if value != "" && strings.ContainsRune("=+-@\t\r", rune(value[0])) {
		return "'" + value
	}
	return value
}

func writeXLSX(rows []models.ExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(models.ExportFields))
	for i, field := range models.ExportFields {
		header[i] = field
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, row := range rows {
		amount, _ := row.Amount.Round(2).Float64()
		values := []interface{}{
			row.ID,
			amount,
			string(row.Category),
			row.Description,
			string(row.Status),
			row.SubmittedBy,
			row.SubmittedDate,
			row.UpdatedDate,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	if len(rows) > 0 {
		style, err := f.NewStyle(&excelize.Style{NumFmt: 2})
		if err != nil {
			return nil, err
		}
		last := fmt.Sprintf("B%d", len(rows)+1)
		if err := f.SetCellStyle(exportSheet, "B2", last, style); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
