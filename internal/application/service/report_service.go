package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ReportService renders persisted payroll records into a downloadable
// spreadsheet for the finance side.
type ReportService interface {
	MonthlyReport(ctx context.Context, month string, projectID *int64) (*bytes.Buffer, error)
}

type reportServiceImpl struct {
	payrollService PayrollService
	logger         Logger
}

// NewReportService creates a new ReportService
func NewReportService(payrollService PayrollService, logger Logger) ReportService {
	return &reportServiceImpl{
		payrollService: payrollService,
		logger:         logger,
	}
}

var reportHeaders = []string{"Record ID", "User ID", "Project ID", "Month", "Days Present", "Base Rate", "Allowances", "Total Amount", "Status", "Created At"}

// MonthlyReport builds an xlsx workbook with one row per payroll record in
// the month, plus a grand total.
func (s *reportServiceImpl) MonthlyReport(ctx context.Context, month string, projectID *int64) (*bytes.Buffer, error) {
	records, err := s.payrollService.ListRecords(ctx, month, projectID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, "Payroll"); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	sheet = "Payroll"

	for col, header := range reportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	var grandTotal float64
	for i, record := range records {
		rowNum := i + 2
		values := []interface{}{
			record.ID,
			record.UserID,
			record.ProjectID,
			record.Month,
			record.DaysPresent,
			record.BaseRate,
			record.AllowancesTotal,
			record.TotalAmount,
			string(record.Approved),
			record.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", rowNum, err)
			}
		}
		grandTotal += record.TotalAmount
	}

	totalRow := len(records) + 2
	if err := f.SetCellValue(sheet, fmt.Sprintf("G%d", totalRow), "Total"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, fmt.Sprintf("H%d", totalRow), grandTotal); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}

	s.logger.Info("Monthly payroll report generated",
		"month", month,
		"records", len(records))
	return buf, nil
}

// Verify interface compliance
var _ ReportService = (*reportServiceImpl)(nil)
