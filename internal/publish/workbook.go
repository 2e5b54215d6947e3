package publish

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/navtrend/navtrend/internal/domain"
)

const summarySheet = "Summary"

// Workbook publishes an .xlsx report: a summary sheet plus one history sheet per fund.
type Workbook struct {
	Path string
}

// NewWorkbook creates an xlsx publisher.
func NewWorkbook(path string) *Workbook {
	return &Workbook{Path: path}
}

// Publish builds the workbook and moves it into place atomically.
func (w *Workbook) Publish(_ context.Context, funds []domain.Fund) error {
	f, err := buildWorkbook(funds)
	if err != nil {
		return err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encoding workbook: %w", err)
	}
	if err := writeFileAtomic(w.Path, buf.Bytes()); err != nil {
		return err
	}

	slog.Info("publish: workbook written", "path", w.Path, "funds", len(funds))
	return nil
}

func buildWorkbook(funds []domain.Fund) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("renaming default sheet: %w", err)
	}

	if err := f.SetSheetRow(summarySheet, "A1", &[]any{"Code", "Name", "Latest Date", "Latest NAV", "Total Growth %"}); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing summary header: %w", err)
	}

	for i, fund := range funds {
		row := summaryRow(fund)
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing summary row for %s: %w", fund.Code, err)
		}
		if err := writeHistorySheet(f, fund); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// writeHistorySheet adds a sheet named after the fund code with its daily records.
func writeHistorySheet(f *excelize.File, fund domain.Fund) error {
	if _, err := f.NewSheet(fund.Code); err != nil {
		return fmt.Errorf("creating sheet %s: %w", fund.Code, err)
	}
	if err := f.SetSheetRow(fund.Code, "A1", &[]any{"Date", "NAV", "Growth %", "Cumulative %"}); err != nil {
		return fmt.Errorf("writing %s header: %w", fund.Code, err)
	}
	for i, r := range fund.History {
		row := []any{r.Date, r.NAV, r.GrowthRate, r.CumulativeGrowth}
		if err := f.SetSheetRow(fund.Code, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", fund.Code, i, err)
		}
	}
	return nil
}
