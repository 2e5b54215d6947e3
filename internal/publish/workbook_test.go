package publish

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/navtrend/navtrend/internal/domain"
)

func TestWorkbookPublish(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "nav.xlsx")
	funds := append(testFunds(), domain.Fund{Code: "515100", Name: "红利ETF"})

	if err := NewWorkbook(path).Publish(context.Background(), funds); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	wantSheets := []string{"Summary", "588000", "515980", "515100"}
	sheets := f.GetSheetList()
	if len(sheets) != len(wantSheets) {
		t.Fatalf("sheets = %v, want %v", sheets, wantSheets)
	}
	for i, name := range wantSheets {
		if sheets[i] != name {
			t.Errorf("sheet[%d] = %s, want %s", i, sheets[i], name)
		}
	}

	rows, err := f.GetRows("Summary")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("summary rows = %d, want 4", len(rows))
	}
	if rows[1][0] != "588000" || rows[1][2] != "2025-12-02" || rows[1][3] != "1.01" || rows[1][4] != "1" {
		t.Errorf("summary row = %v", rows[1])
	}
	// No latest record: only code and name are filled.
	if len(rows[3]) > 3 && rows[3][3] != "" {
		t.Errorf("unavailable fund row = %v, want blank numbers", rows[3])
	}

	hist, err := f.GetRows("588000")
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 3 || hist[2][0] != "2025-12-02" || hist[2][2] != "1" {
		t.Errorf("history rows = %v", hist)
	}
}
