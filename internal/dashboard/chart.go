package dashboard

import (
	"github.com/navtrend/navtrend/internal/domain"
)

// Series is one fund's cumulative growth aligned to Chart.Dates.
// A nil entry means the fund has no record for that date.
type Series struct {
	Code   string     `json:"code"`
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

// Chart joins all fund histories on date.
type Chart struct {
	Dates  []string `json:"dates"`
	Series []Series `json:"series"`
}

// BuildChart builds the sorted union of dates and one series per fund, in
// fund order. Gaps stay nil.
func BuildChart(funds []domain.Fund) Chart {
	dates, values := domain.JoinByDate(funds)
	series := make([]Series, len(funds))
	for i, f := range funds {
		series[i] = Series{Code: f.Code, Name: f.Name, Values: values[i]}
	}
	return Chart{Dates: dates, Series: series}
}
