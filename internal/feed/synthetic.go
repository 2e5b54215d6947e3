package feed

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"time"

	"github.com/navtrend/navtrend/internal/domain"
)

// maxDailyMove bounds the synthetic day-over-day change (±2%).
const maxDailyMove = 0.02

// Synthesize generates a placeholder random-walk series per registry fund
// from baseline to today, skipping weekends. The walk is seeded from the
// baseline date and fund code, so a given day always yields the same data.
// Callers must flag the result as synthetic.
func Synthesize(registry domain.Registry, baseline, today time.Time) []domain.Fund {
	dates := tradingDays(baseline, today)

	funds := make([]domain.Fund, 0, len(registry))
	for _, cfg := range registry {
		r := rand.New(rand.NewPCG(uint64(baseline.Unix()), codeSeed(cfg.Code)))

		nav := roundNAV(0.5 + r.Float64()*1.5)
		points := make([]domain.PricePoint, len(dates))
		for i, d := range dates {
			if i > 0 {
				move := (r.Float64()*2 - 1) * maxDailyMove
				nav = max(roundNAV(nav*(1+move)), 0.001)
			}
			points[i] = domain.PricePoint{Date: d, NAV: nav}
		}

		// points is never empty and every nav is positive.
		fund, _ := domain.NewFund(cfg, points)
		funds = append(funds, fund)
	}
	return funds
}

// tradingDays lists weekdays from baseline through today. The baseline is
// always included so the series is never empty.
func tradingDays(baseline, today time.Time) []string {
	start := time.Date(baseline.Year(), baseline.Month(), baseline.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	days := []string{start.Format(time.DateOnly)}
	for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		days = append(days, d.Format(time.DateOnly))
	}
	return days
}

func codeSeed(code string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(code))
	return h.Sum64()
}

func roundNAV(v float64) float64 {
	return math.Round(v*1000) / 1000
}
