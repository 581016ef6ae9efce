package aging

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	detailSheet  = "Advances"
)

// WriteXLSX renders the report as a two-sheet workbook.
func WriteXLSX(w io.Writer, r *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("naming summary sheet: %w", err)
	}

	if _, err := f.NewSheet(detailSheet); err != nil {
		return fmt.Errorf("creating detail sheet: %w", err)
	}

	rows := [][]any{
		{"As of", r.AsOf.Format(time.DateOnly)},
		{},
		{"Bucket", "Count", "Balance"},
	}

	for _, b := range r.Buckets {
		rows = append(rows, []any{string(b.Bucket), b.Count, b.Balance.InexactFloat64()})
	}

	rows = append(rows, []any{"Total", r.Count, r.Total.InexactFloat64()})

	if err := writeRows(f, summarySheet, rows); err != nil {
		return err
	}

	detail := [][]any{{"Contract", "Status", "Due date", "Days overdue", "Bucket", "Remaining", "Late fee", "Total due"}}

	for _, l := range r.Lines {
		detail = append(detail, []any{
			l.ContractNumber,
			string(l.Status),
			l.DueDate.Format(time.DateOnly),
			l.DaysOverdue,
			string(l.Bucket),
			l.RemainingBalance.InexactFloat64(),
			l.LateFee.InexactFloat64(),
			l.TotalDue.InexactFloat64(),
		})
	}

	if err := writeRows(f, detailSheet, detail); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}

		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("resolving cell: %w", err)
		}

		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}

	return nil
}
