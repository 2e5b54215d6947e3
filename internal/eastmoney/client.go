package eastmoney

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/navtrend/navtrend/internal/domain"
)

// DefaultURL is the Eastmoney historical kline endpoint.
const DefaultURL = "https://push2his.eastmoney.com/api/qt/stock/kline/get"

const (
	intervalDaily  = "101" // klt: one bar per trading day
	priceForward   = "1"   // fqt: forward-adjusted prices
	openEndDate    = "20991231"
	klineFields    = "f51,f53" // date, close
	metadataFields = "f1"
)

// ErrNoData indicates the provider returned no klines for the instrument.
var ErrNoData = errors.New("no kline data returned")

// Client is an HTTP client for the Eastmoney kline API with retry on 429 and 5xx.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewClient creates a new Eastmoney API client.
func NewClient(baseURL string, timeout time.Duration, maxRetries int, baseDelay time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// klineResponse is the subset of the kline payload we read. Data is null for
// unknown instruments.
type klineResponse struct {
	Data *struct {
		Code   string   `json:"code"`
		Name   string   `json:"name"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// FetchDailyNAV fetches the forward-adjusted daily closing prices of a fund
// from since (inclusive) up to the latest trading day.
func (c *Client) FetchDailyNAV(ctx context.Context, code string, since time.Time) ([]domain.PricePoint, error) {
	q := url.Values{}
	q.Set("secid", SecID(code))
	q.Set("fields1", metadataFields)
	q.Set("fields2", klineFields)
	q.Set("klt", intervalDaily)
	q.Set("fqt", priceForward)
	q.Set("beg", since.Format("20060102"))
	q.Set("end", openEndDate)

	var resp klineResponse
	if err := c.getJSON(ctx, c.baseURL+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil || len(resp.Data.Klines) == 0 {
		return nil, fmt.Errorf("%s: %w", code, ErrNoData)
	}

	points, err := ParseKlines(resp.Data.Klines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", code, err)
	}
	return points, nil
}

// get performs a GET request with retry on 429 and server errors.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("HTTP %d (attempt %d/%d)", resp.StatusCode, attempt+1, c.maxRetries+1)
			if attempt < c.maxRetries {
				delay := c.baseDelay * time.Duration(1<<uint(attempt))
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
				continue
			}
			return nil, lastErr
		}

		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	return nil, lastErr
}

// getJSON performs a GET request and unmarshals the JSON response.
func (c *Client) getJSON(ctx context.Context, rawURL string, dest any) error {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("parsing kline JSON: %w", err)
	}
	return nil
}
