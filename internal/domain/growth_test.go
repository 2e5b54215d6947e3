package domain

import (
	"errors"
	"math"
	"testing"
)

func TestComputeHistoryScenario(t *testing.T) {
	points := []PricePoint{
		{Date: "2025-12-01", NAV: 1.000},
		{Date: "2025-12-02", NAV: 1.010},
		{Date: "2025-12-03", NAV: 0.999},
	}

	history, err := ComputeHistory(points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []DailyRecord{
		{Date: "2025-12-01", NAV: 1.000, GrowthRate: 0, CumulativeGrowth: 0},
		{Date: "2025-12-02", NAV: 1.010, GrowthRate: 1.00, CumulativeGrowth: 1.00},
		{Date: "2025-12-03", NAV: 0.999, GrowthRate: -1.09, CumulativeGrowth: -0.10},
	}
	if len(history) != len(want) {
		t.Fatalf("len = %d, want %d", len(history), len(want))
	}
	for i := range want {
		if history[i] != want[i] {
			t.Errorf("history[%d] = %+v, want %+v", i, history[i], want[i])
		}
	}
}

func TestComputeHistorySinglePoint(t *testing.T) {
	history, err := ComputeHistory([]PricePoint{{Date: "2025-12-01", NAV: 2.345}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("len = %d, want 1", len(history))
	}
	if history[0].GrowthRate != 0 || history[0].CumulativeGrowth != 0 {
		t.Errorf("rates = %v/%v, want 0/0", history[0].GrowthRate, history[0].CumulativeGrowth)
	}
	if history[0].NAV != 2.345 {
		t.Errorf("NAV = %v, want 2.345 (unrounded)", history[0].NAV)
	}
}

func TestComputeHistoryEmpty(t *testing.T) {
	_, err := ComputeHistory(nil)
	if !errors.Is(err, ErrEmptySeries) {
		t.Errorf("err = %v, want ErrEmptySeries", err)
	}
}

func TestComputeHistoryNonPositiveNAV(t *testing.T) {
	_, err := ComputeHistory([]PricePoint{
		{Date: "2025-12-01", NAV: 1.0},
		{Date: "2025-12-02", NAV: 0},
	})
	if !errors.Is(err, ErrInvalidNAV) {
		t.Errorf("err = %v, want ErrInvalidNAV", err)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func TestComputeHistoryProperties(t *testing.T) {
	navs := []float64{1.234, 1.251, 1.249, 1.302, 1.288, 1.176, 1.199, 1.4}
	points := make([]PricePoint, len(navs))
	for i, nav := range navs {
		points[i] = PricePoint{Date: "2025-12-0" + string(rune('1'+i)), NAV: nav}
	}

	history, err := ComputeHistory(points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != len(points) {
		t.Fatalf("len = %d, want %d", len(history), len(points))
	}
	if history[0].GrowthRate != 0 || history[0].CumulativeGrowth != 0 {
		t.Errorf("first record rates = %v/%v, want 0/0", history[0].GrowthRate, history[0].CumulativeGrowth)
	}

	for i := range history {
		if history[i].Date != points[i].Date || history[i].NAV != points[i].NAV {
			t.Errorf("history[%d] = %+v, does not preserve input %+v", i, history[i], points[i])
		}
		wantCum := round2((navs[i] - navs[0]) / navs[0] * 100)
		if math.Abs(history[i].CumulativeGrowth-wantCum) > 1e-9 {
			t.Errorf("cumulativeGrowth[%d] = %v, want %v", i, history[i].CumulativeGrowth, wantCum)
		}
		if i == 0 {
			continue
		}
		wantRate := round2((navs[i] - navs[i-1]) / navs[i-1] * 100)
		if math.Abs(history[i].GrowthRate-wantRate) > 1e-9 {
			t.Errorf("growthRate[%d] = %v, want %v", i, history[i].GrowthRate, wantRate)
		}
	}
}

func TestNewFundUsesRegistryName(t *testing.T) {
	fund, err := NewFund(FundConfig{Code: "588000", Name: "科创50ETF"}, []PricePoint{
		{Date: "2025-12-01", NAV: 1.0},
		{Date: "2025-12-02", NAV: 1.1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fund.Code != "588000" || fund.Name != "科创50ETF" {
		t.Errorf("fund = %s/%s, want 588000/科创50ETF", fund.Code, fund.Name)
	}
	if fund.TotalGrowth() != 10 {
		t.Errorf("TotalGrowth = %v, want 10", fund.TotalGrowth())
	}
}
