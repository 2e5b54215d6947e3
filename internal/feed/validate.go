package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/navtrend/navtrend/internal/domain"
)

// Decode validates a published payload against the registry and returns one
// fund per registry entry, in registry order, plus non-fatal warnings.
//
// Fund names always come from the registry; codes and history from the payload.
func Decode(body []byte, registry domain.Registry) ([]domain.Fund, []string, error) {
	entries, err := decodeShape(body)
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	byCode := make(map[string]map[string]any, len(entries))
	for i, entry := range entries {
		code, ok := asString(entry["code"])
		if !ok || code == "" {
			warnings = append(warnings, fmt.Sprintf("element %d has no code", i))
			continue
		}
		if _, dup := byCode[code]; dup {
			warnings = append(warnings, fmt.Sprintf("duplicate entry for %s ignored", code))
			continue
		}
		byCode[code] = entry
	}

	// Every configured fund must be present before any history is inspected.
	matched := make([]map[string]any, len(registry))
	for i, cfg := range registry {
		entry, ok := byCode[cfg.Code]
		if !ok {
			return nil, nil, &MissingFundError{Code: cfg.Code, Name: cfg.Name}
		}
		matched[i] = entry
	}

	funds := make([]domain.Fund, len(registry))
	for i, cfg := range registry {
		entry := matched[i]
		history, histWarnings, err := decodeHistory(cfg.Code, entry["history"])
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, histWarnings...)

		fund := domain.Fund{Code: cfg.Code, Name: cfg.Name, History: history}
		warnings = append(warnings, compareSummary(fund, entry)...)
		funds[i] = fund
	}

	return funds, warnings, nil
}

func decodeShape(body []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, &ShapeError{Reason: "malformed JSON", Err: err}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, &ShapeError{Reason: "trailing data after JSON array", Err: err}
	}

	items, ok := payload.([]any)
	if !ok {
		return nil, &ShapeError{Reason: "payload is not an array"}
	}
	if len(items) == 0 {
		return nil, &ShapeError{Reason: "payload is empty"}
	}

	entries := make([]map[string]any, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &ShapeError{Reason: fmt.Sprintf("element %d is not an object", i)}
		}
		entries[i] = obj
	}
	return entries, nil
}

// decodeHistory coerces a raw history array. The latest record must carry a
// date and a numeric nav; gaps earlier in the series only produce warnings.
func decodeHistory(code string, raw any) ([]domain.DailyRecord, []string, error) {
	if raw == nil {
		return nil, nil, &InvalidHistoryError{Code: code, Reason: "history is missing"}
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, nil, &InvalidHistoryError{Code: code, Reason: "history is not an array"}
	}
	if len(items) == 0 {
		return nil, nil, &InvalidHistoryError{Code: code, Reason: "history is empty"}
	}

	last, ok := items[len(items)-1].(map[string]any)
	if !ok {
		return nil, nil, &InvalidHistoryError{Code: code, Reason: "latest record is not an object"}
	}
	if date, ok := asString(last["date"]); !ok || date == "" {
		return nil, nil, &InvalidHistoryError{Code: code, Reason: "latest record has no date"}
	}
	if _, ok := asNumber(last["nav"]); !ok {
		return nil, nil, &InvalidHistoryError{Code: code, Reason: "latest record has no numeric nav"}
	}

	var warnings []string
	history := make([]domain.DailyRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s: record %d is not an object, skipped", code, i))
			continue
		}
		date, ok := asString(obj["date"])
		if !ok || date == "" {
			warnings = append(warnings, fmt.Sprintf("%s: record %d has no date, skipped", code, i))
			continue
		}

		rec := domain.DailyRecord{Date: date}
		var missing []string
		if rec.NAV, ok = asNumber(obj["nav"]); !ok {
			missing = append(missing, "nav")
		}
		if rec.GrowthRate, ok = asNumber(obj["growthRate"]); !ok {
			missing = append(missing, "growthRate")
		}
		if rec.CumulativeGrowth, ok = asNumber(obj["cumulativeGrowth"]); !ok {
			missing = append(missing, "cumulativeGrowth")
		}
		if len(missing) > 0 {
			warnings = append(warnings, fmt.Sprintf("%s: record %s missing %s, defaulted to 0", code, date, strings.Join(missing, ", ")))
		}
		history = append(history, rec)
	}
	return history, warnings, nil
}

// compareSummary flags upstream summary fields that disagree with the
// history tail. The history wins; the payload values are only reported.
func compareSummary(fund domain.Fund, entry map[string]any) []string {
	var warnings []string
	if name, ok := asString(entry["name"]); ok && name != "" && name != fund.Name {
		warnings = append(warnings, fmt.Sprintf("%s: upstream name %q replaced by %q", fund.Code, name, fund.Name))
	}
	if nav, ok := asNumber(entry["latestNav"]); ok && nav != fund.LatestNav() {
		warnings = append(warnings, fmt.Sprintf("%s: latestNav %v disagrees with history %v", fund.Code, nav, fund.LatestNav()))
	}
	if date, ok := asString(entry["latestDate"]); ok && date != fund.LatestDate() {
		warnings = append(warnings, fmt.Sprintf("%s: latestDate %s disagrees with history %s", fund.Code, date, fund.LatestDate()))
	}
	return warnings
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

func asNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case float64:
		f = t
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
