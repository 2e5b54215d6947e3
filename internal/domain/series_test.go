package domain

import (
	"fmt"
	"testing"
)

func TestJoinByDate(t *testing.T) {
	funds := []Fund{
		{Code: "588000", History: []DailyRecord{
			{Date: "2025-12-05", CumulativeGrowth: 0},
			{Date: "2025-12-08", CumulativeGrowth: 1.5},
		}},
		{Code: "515980", History: []DailyRecord{
			{Date: "2025-12-01", CumulativeGrowth: 0},
			{Date: "2025-12-05", CumulativeGrowth: -2},
		}},
		{Code: "515100"},
	}

	dates, values := JoinByDate(funds)

	if got, want := fmt.Sprint(dates), "[2025-12-01 2025-12-05 2025-12-08]"; got != want {
		t.Fatalf("dates = %s, want %s", got, want)
	}
	if len(values) != 3 {
		t.Fatalf("values = %d rows, want 3", len(values))
	}
	if values[0][0] != nil || values[0][2] == nil || *values[0][2] != 1.5 {
		t.Errorf("588000 row wrong: gap on first date, 1.5 on last expected")
	}
	if values[1][1] == nil || *values[1][1] != -2 || values[1][2] != nil {
		t.Errorf("515980 row wrong")
	}
	for j, v := range values[2] {
		if v != nil {
			t.Errorf("empty fund value[%d] = %v, want nil", j, *v)
		}
	}
}

func TestJoinByDateEmpty(t *testing.T) {
	dates, values := JoinByDate(nil)
	if len(dates) != 0 || len(values) != 0 {
		t.Errorf("JoinByDate(nil) = %v, %v, want empty", dates, values)
	}
}
