// Package export renders month summaries as XLSX workbooks.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"expensetracker/internal/core"
)

const (
	ExpensesSheet   = "Expenses"
	CategoriesSheet = "By Category"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Filename is the download name for a month export, e.g. expenses_2025_03.xlsx.
func Filename(year, month int) string {
	return fmt.Sprintf("expenses_%04d_%02d.xlsx", year, month)
}

// MonthWorkbook writes the month listing and per-category totals. The caller
// closes the returned file.
func MonthWorkbook(s core.MonthSummary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ExpensesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeExpenses(f, s); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeCategories(f, s); err != nil {
		f.Close()
		return nil, err
	}

	idx, err := f.GetSheetIndex(ExpensesSheet)
	if err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

func writeExpenses(f *excelize.File, s core.MonthSummary) error {
	if err := setRow(f, ExpensesSheet, 1, "Category", "Description", "Amount", "Date"); err != nil {
		return err
	}
	for i, e := range s.Expenses {
		if err := setRow(f, ExpensesSheet, i+2, string(e.Category), e.Description, e.Amount.Float(), e.Date.String()); err != nil {
			return err
		}
	}

	f.SetColWidth(ExpensesSheet, "A", "A", 18)
	f.SetColWidth(ExpensesSheet, "B", "B", 32)
	f.SetColWidth(ExpensesSheet, "C", "C", 12)
	f.SetColWidth(ExpensesSheet, "D", "D", 12)
	return applyAmountFormat(f, ExpensesSheet, "C", len(s.Expenses)+1)
}

func writeCategories(f *excelize.File, s core.MonthSummary) error {
	if _, err := f.NewSheet(CategoriesSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := setRow(f, CategoriesSheet, 1, "Category", "Total"); err != nil {
		return err
	}
	row := 2
	for _, c := range s.ByCategory {
		if err := setRow(f, CategoriesSheet, row, string(c.Category), c.Amount.Float()); err != nil {
			return err
		}
		row++
	}

	row++
	footer := [][]interface{}{
		{"Total Expenses", s.Total.Float()},
		{"Monthly Budget", s.Budget.Float()},
		{"Remaining Budget", s.Remaining.Float()},
	}
	for _, vals := range footer {
		if err := setRow(f, CategoriesSheet, row, vals...); err != nil {
			return err
		}
		row++
	}

	f.SetColWidth(CategoriesSheet, "A", "A", 20)
	f.SetColWidth(CategoriesSheet, "B", "B", 14)
	return applyAmountFormat(f, CategoriesSheet, "B", row-1)
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func applyAmountFormat(f *excelize.File, sheet, col string, lastRow int) error {
	if lastRow < 2 {
		return nil
	}
	style, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	return f.SetCellStyle(sheet, col+"2", fmt.Sprintf("%s%d", col, lastRow), style)
}
