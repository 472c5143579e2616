// Package export builds spreadsheet downloads for the admin console.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/theMessiMagic/if-fashion/internal/models"
)

const (
	CustomersSheet = "Customers"
	EmployeesSheet = "Employees"
)

var (
	customerHeader = []any{"Track ID", "Name", "Phone", "Image", "Message", "Submitted", "Status"}
	employeeHeader = []any{"Track ID", "Name", "Phone", "Aadhar", "Aadhar File", "Work Type", "Experience", "Message", "Status", "Salary Model", "Admin Note", "Submitted"}
)

// WriteWorkbook writes an XLSX workbook with one sheet per submission kind.
func WriteWorkbook(w io.Writer, customers []models.CustomerSubmission, employees []models.EmployeeApplication) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), CustomersSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(EmployeesSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	customerRows := make([][]any, 0, len(customers))
	for _, c := range customers {
		customerRows = append(customerRows, []any{c.TrackID, c.Name, c.Phone, c.Image, c.Message, c.SubmittedAt, string(c.Status)})
	}
	if err := writeSheet(f, CustomersSheet, customerHeader, customerRows, bold); err != nil {
		return err
	}

	employeeRows := make([][]any, 0, len(employees))
	for _, e := range employees {
		employeeRows = append(employeeRows, []any{
			e.TrackID, e.Name, e.Phone, e.NationalID, e.DocFile, e.WorkType, e.Experience,
			e.Message, string(e.Status), e.SalaryModel, e.AdminNote, e.SubmittedAt,
		})
	}
	if err := writeSheet(f, EmployeesSheet, employeeHeader, employeeRows, bold); err != nil {
		return err
	}

	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		// Values are written as strings so phone and Aadhar numbers keep leading zeros.
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 18)
}
