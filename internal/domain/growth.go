package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmptySeries indicates the upstream returned no price points for a fund.
	ErrEmptySeries = errors.New("empty price series")

	// ErrInvalidNAV indicates a non-positive NAV in a price series.
	ErrInvalidNAV = errors.New("nav must be positive")
)

// ComputeHistory derives daily and cumulative growth for an ascending price
// series. The first point is the baseline: both of its rates are zero.
// NAVs are copied verbatim; only the percentages are rounded.
func ComputeHistory(points []PricePoint) ([]DailyRecord, error) {
	if len(points) == 0 {
		return nil, ErrEmptySeries
	}

	navs := make([]decimal.Decimal, len(points))
	for i, p := range points {
		if p.NAV <= 0 {
			return nil, fmt.Errorf("%s: %w (got %v)", p.Date, ErrInvalidNAV, p.NAV)
		}
		navs[i] = decimal.NewFromFloat(p.NAV)
	}

	base := navs[0]
	history := make([]DailyRecord, len(points))
	for i, p := range points {
		prev := base
		if i > 0 {
			prev = navs[i-1]
		}
		history[i] = DailyRecord{
			Date:             p.Date,
			NAV:              p.NAV,
			GrowthRate:       PercentChange(navs[i], prev),
			CumulativeGrowth: PercentChange(navs[i], base),
		}
	}
	return history, nil
}

// NewFund builds a fund from a registry entry and its raw price series.
func NewFund(cfg FundConfig, points []PricePoint) (Fund, error) {
	history, err := ComputeHistory(points)
	if err != nil {
		return Fund{}, err
	}
	return Fund{Code: cfg.Code, Name: cfg.Name, History: history}, nil
}
