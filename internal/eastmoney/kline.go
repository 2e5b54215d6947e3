package eastmoney

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/navtrend/navtrend/internal/domain"
)

// SecID maps a fund code to an Eastmoney security id. Shanghai listings
// (codes starting with 5 or 6) use market 1, everything else market 0.
func SecID(code string) string {
	if strings.HasPrefix(code, "5") || strings.HasPrefix(code, "6") {
		return "1." + code
	}
	return "0." + code
}

// ParseKlines converts "date,close" kline strings into price points.
func ParseKlines(klines []string) ([]domain.PricePoint, error) {
	points := make([]domain.PricePoint, 0, len(klines))
	for _, line := range klines {
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			return nil, fmt.Errorf("malformed kline %q", line)
		}

		date := strings.TrimSpace(fields[0])
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			return nil, fmt.Errorf("invalid kline date %q: %w", date, err)
		}

		nav, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid kline price %q: %w", fields[1], err)
		}

		points = append(points, domain.PricePoint{Date: date, NAV: nav})
	}
	return points, nil
}
