package domain

import (
	"sort"

	"github.com/samber/lo"
)

// JoinByDate aligns the cumulative growth of every fund on the sorted union
// of their history dates. values[i][j] is funds[i] on dates[j], or nil when
// that fund has no record for the date. Nothing is interpolated.
func JoinByDate(funds []Fund) (dates []string, values [][]*float64) {
	dates = lo.Uniq(lo.FlatMap(funds, func(f Fund, _ int) []string {
		return lo.Map(f.History, func(r DailyRecord, _ int) string { return r.Date })
	}))
	sort.Strings(dates)

	values = lo.Map(funds, func(f Fund, _ int) []*float64 {
		byDate := lo.SliceToMap(f.History, func(r DailyRecord) (string, float64) {
			return r.Date, r.CumulativeGrowth
		})
		return lo.Map(dates, func(d string, _ int) *float64 {
			v, ok := byDate[d]
			if !ok {
				return nil
			}
			return &v
		})
	})
	return dates, values
}
