package domain

import "encoding/json"

// DailyRecord is one trading day's closing NAV with its derived percentages.
type DailyRecord struct {
	Date             string  `json:"date"`
	NAV              float64 `json:"nav"`
	GrowthRate       float64 `json:"growthRate"`
	CumulativeGrowth float64 `json:"cumulativeGrowth"`
}

// PricePoint is a raw (date, nav) pair as returned by the upstream provider.
type PricePoint struct {
	Date string
	NAV  float64
}

// Fund is a tracked fund with its ascending daily history.
// The latest values are always read from the tail of History.
type Fund struct {
	Code    string
	Name    string
	History []DailyRecord
}

// Latest returns the last history record, or false when the history is empty.
func (f Fund) Latest() (DailyRecord, bool) {
	if len(f.History) == 0 {
		return DailyRecord{}, false
	}
	return f.History[len(f.History)-1], true
}

// LatestNav returns the most recent NAV, or zero when there is no history.
func (f Fund) LatestNav() float64 {
	r, _ := f.Latest()
	return r.NAV
}

// LatestDate returns the most recent trading date, or "" when there is no history.
func (f Fund) LatestDate() string {
	r, _ := f.Latest()
	return r.Date
}

// TotalGrowth returns the cumulative growth of the most recent record.
func (f Fund) TotalGrowth() float64 {
	r, _ := f.Latest()
	return r.CumulativeGrowth
}

// fundJSON is the published wire shape. Field order is part of the format.
type fundJSON struct {
	Code        string        `json:"code"`
	Name        string        `json:"name"`
	History     []DailyRecord `json:"history"`
	LatestNav   *float64      `json:"latestNav"`
	LatestDate  *string       `json:"latestDate"`
	TotalGrowth *float64      `json:"totalGrowth"`
}

// MarshalJSON encodes the fund in the published format, deriving the latest
// fields from the history tail. An empty history encodes them as null.
func (f Fund) MarshalJSON() ([]byte, error) {
	out := fundJSON{
		Code:    f.Code,
		Name:    f.Name,
		History: f.History,
	}
	if out.History == nil {
		out.History = []DailyRecord{}
	}
	if latest, ok := f.Latest(); ok {
		out.LatestNav = &latest.NAV
		out.LatestDate = &latest.Date
		out.TotalGrowth = &latest.CumulativeGrowth
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a published fund. The denormalized latest fields are
// ignored because they are recomputed from History.
func (f *Fund) UnmarshalJSON(data []byte) error {
	var in fundJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	f.Code = in.Code
	f.Name = in.Name
	f.History = in.History
	return nil
}
