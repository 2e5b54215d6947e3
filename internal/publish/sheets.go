package publish

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/navtrend/navtrend/internal/domain"
)

const (
	summarySheetName = "NAV_SUMMARY"
	historySheetName = "NAV_HISTORY"
)

// SheetsWriter mirrors the published funds into a Google spreadsheet.
type SheetsWriter struct {
	spreadsheetID string
	svc           *sheets.Service
}

// NewSheetsWriter creates a SheetsWriter authenticated with a service account JSON.
func NewSheetsWriter(ctx context.Context, spreadsheetID, credentialsJSON string) (*SheetsWriter, error) {
	creds, err := google.CredentialsFromJSON(
		ctx,
		[]byte(credentialsJSON),
		sheets.SpreadsheetsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parsing google credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &SheetsWriter{spreadsheetID: spreadsheetID, svc: svc}, nil
}

// Publish ensures both sheets exist, then clears and rewrites them.
func (w *SheetsWriter) Publish(ctx context.Context, funds []domain.Fund) error {
	if err := w.ensureSheets(ctx, summarySheetName, historySheetName); err != nil {
		return err
	}

	_, err := w.svc.Spreadsheets.Values.BatchClear(
		w.spreadsheetID,
		&sheets.BatchClearValuesRequest{
			Ranges: []string{summarySheetName + "!A:E", historySheetName + "!A:ZZ"},
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clearing sheets: %w", err)
	}

	_, err = w.svc.Spreadsheets.Values.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateValuesRequest{
			ValueInputOption: "USER_ENTERED",
			Data: []*sheets.ValueRange{
				{Range: summarySheetName + "!A1", Values: buildNavSummary(funds)},
				{Range: historySheetName + "!A1", Values: buildNavHistory(funds)},
			},
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing sheets: %w", err)
	}

	slog.Info("publish: spreadsheet updated", "spreadsheet", w.spreadsheetID, "funds", len(funds))
	return nil
}

// buildNavSummary builds the NAV_SUMMARY sheet data.
// Columns: Code | Name | Latest Date | Latest NAV | Total Growth %
func buildNavSummary(funds []domain.Fund) [][]any {
	data := make([][]any, 0, len(funds)+1)
	data = append(data, []any{"Code", "Name", "Latest Date", "Latest NAV", "Total Growth %"})

	for _, f := range funds {
		data = append(data, summaryRow(f))
	}
	return data
}

// summaryRow is one fund's summary line. A fund without history keeps only
// its code and name; the numeric cells stay empty.
func summaryRow(f domain.Fund) []any {
	latest, ok := f.Latest()
	if !ok {
		return []any{f.Code, f.Name, "", nil, nil}
	}
	return []any{f.Code, f.Name, latest.Date, latest.NAV, latest.CumulativeGrowth}
}

// buildNavHistory builds the NAV_HISTORY sheet: cumulative growth joined on
// date, one column per fund. Dates a fund has no record for stay blank.
// Columns: Date | <code> ...
func buildNavHistory(funds []domain.Fund) [][]any {
	dates, values := domain.JoinByDate(funds)

	header := append([]any{"Date"}, lo.Map(funds, func(f domain.Fund, _ int) any {
		return f.Code
	})...)

	data := make([][]any, 0, len(dates)+1)
	data = append(data, header)
	for j, date := range dates {
		row := make([]any, 0, len(funds)+1)
		row = append(row, date)
		for i := range funds {
			row = append(row, ptrFloat(values[i][j]))
		}
		data = append(data, row)
	}
	return data
}

// ensureSheets creates any of the named sheets that do not already exist.
func (w *SheetsWriter) ensureSheets(ctx context.Context, names ...string) error {
	spreadsheet, err := w.svc.Spreadsheets.Get(w.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("getting spreadsheet metadata: %w", err)
	}

	existing := lo.SliceToMap(spreadsheet.Sheets, func(s *sheets.Sheet) (string, bool) {
		return s.Properties.Title, true
	})

	requests := lo.FilterMap(names, func(name string, _ int) (*sheets.Request, bool) {
		if existing[name] {
			return nil, false
		}
		return &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: name},
			},
		}, true
	})
	if len(requests) == 0 {
		return nil
	}

	_, err = w.svc.Spreadsheets.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("creating sheets: %w", err)
	}

	return nil
}

// ptrFloat returns nil for a missing value so the cell stays empty.
func ptrFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
