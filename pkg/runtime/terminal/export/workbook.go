package export

import (
	"fmt"
	"io"

	"github.com/de-tools/revops-pilot/pkg/models/api"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary  = "Summary"
	SheetNewWon   = "New Won"
	SheetLost     = "Lost"
	SheetTopRisks = "Top Risks"
)

var dealHeader = []any{"Deal ID", "Name", "Owner", "Amount", "Stage", "Last Modified", "Source", "Days In Stage"}

// WriteWorkbook renders a summary as an .xlsx workbook with one sheet per section
func WriteWorkbook(w io.Writer, summary api.DeltaSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}

	rows := [][]any{
		{"Client", summary.ClientName},
		{"Period Start", summary.PeriodStart},
		{"Period End", summary.PeriodEnd},
		{"New Won", len(summary.NewWon)},
		{"Lost", len(summary.Lost)},
		{"Top Risks", len(summary.TopRisks)},
		{"Weighted Pipeline Prev", summary.PipelineChange.WeightedPipelinePrev},
		{"Weighted Pipeline Now", summary.PipelineChange.WeightedPipelineNow},
		{"Prev Is Placeholder", summary.PipelineChange.PrevIsPlaceholder},
	}
	for _, note := range summary.Notes {
		rows = append(rows, []any{"Note", note})
	}
	if err := writeRows(f, SheetSummary, rows); err != nil {
		return err
	}

	sections := []struct {
		sheet string
		deals []api.Deal
	}{
		{SheetNewWon, summary.NewWon},
		{SheetLost, summary.Lost},
		{SheetTopRisks, summary.TopRisks},
	}
	for _, section := range sections {
		if _, err := f.NewSheet(section.sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", section.sheet, err)
		}
		rows := [][]any{dealHeader}
		for _, d := range section.deals {
			lastModified := ""
			if d.LastModified != nil {
				lastModified = d.LastModified.Format("2006-01-02 15:04:05")
			}
			rows = append(rows, []any{
				d.DealID, d.Name, d.OwnerID, d.Amount, d.CanonicalStage, lastModified, d.SourceSystem, d.DaysInStage,
			})
		}
		if err := writeRows(f, section.sheet, rows); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
