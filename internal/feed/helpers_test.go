package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/navtrend/navtrend/internal/domain"
)

var (
	baseline = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	fixedNow = time.Date(2025, 12, 10, 8, 30, 0, 0, time.UTC)
)

func testRegistry() domain.Registry {
	return domain.Registry{
		{Code: "588000", Name: "科创50ETF"},
		{Code: "515980", Name: "人工智能ETF"},
		{Code: "515100", Name: "红利ETF"},
	}
}

func sampleFunds() []domain.Fund {
	return []domain.Fund{
		{Code: "515100", Name: "Dividend ETF", History: []domain.DailyRecord{
			{Date: "2025-12-01", NAV: 1.5, GrowthRate: 0, CumulativeGrowth: 0},
			{Date: "2025-12-02", NAV: 1.53, GrowthRate: 2, CumulativeGrowth: 2},
		}},
		{Code: "588000", Name: "科创50ETF", History: []domain.DailyRecord{
			{Date: "2025-12-01", NAV: 1.0, GrowthRate: 0, CumulativeGrowth: 0},
			{Date: "2025-12-02", NAV: 1.01, GrowthRate: 1, CumulativeGrowth: 1},
			{Date: "2025-12-03", NAV: 0.999, GrowthRate: -1.09, CumulativeGrowth: -0.1},
		}},
		{Code: "515980", Name: "人工智能ETF", History: []domain.DailyRecord{
			{Date: "2025-12-01", NAV: 0.8, GrowthRate: 0, CumulativeGrowth: 0},
		}},
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

// jsonServer serves body with the given content type and records request URLs.
func jsonServer(t *testing.T, contentType string, status int, body []byte, seen *[]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = append(*seen, r.URL.String())
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(policy Policy, sources ...string) *Client {
	c := NewClient(sources, testRegistry(), policy, baseline, time.Second)
	c.now = func() time.Time { return fixedNow }
	return c
}
