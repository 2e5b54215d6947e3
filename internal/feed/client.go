package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/navtrend/navtrend/internal/domain"
)

// maxPayloadBytes bounds the published file size we are willing to read.
const maxPayloadBytes = 16 << 20

// SyntheticSource is the Meta.Source value of a generated fallback result.
const SyntheticSource = "synthetic"

// Policy selects how failures are handled. It is fixed at startup.
type Policy string

const (
	// PolicyStrict uses a single source and propagates any failure.
	PolicyStrict Policy = "strict"
	// PolicyResilient tries each source in order and falls back to synthetic data.
	PolicyResilient Policy = "resilient"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyStrict, PolicyResilient:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown fetch policy %q (want strict or resilient)", s)
	}
}

// SourceFailure records why one candidate source was rejected.
type SourceFailure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Meta describes how a Result was obtained.
type Meta struct {
	Timestamp        time.Time       `json:"timestamp"`
	ValidationErrors []string        `json:"validationErrors"`
	Source           string          `json:"source"`
	Synthetic        bool            `json:"synthetic"`
	FailedSources    []SourceFailure `json:"failedSources,omitempty"`
}

// Result is a validated, registry-ordered fund list.
type Result struct {
	Funds []domain.Fund
	Meta  Meta
}

// Client fetches and validates the published fund file.
type Client struct {
	sources    []string
	registry   domain.Registry
	policy     Policy
	baseline   time.Time
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a feed client. Under PolicyStrict only the first source is used.
func NewClient(sources []string, registry domain.Registry, policy Policy, baseline time.Time, timeout time.Duration) *Client {
	return &Client{
		sources:    sources,
		registry:   registry,
		policy:     policy,
		baseline:   baseline,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Load fetches the published funds according to the client's policy.
func (c *Client) Load(ctx context.Context) (Result, error) {
	if len(c.sources) == 0 && c.policy == PolicyStrict {
		return Result{}, errors.New("no data source configured")
	}

	if c.policy == PolicyStrict {
		return c.FetchFrom(ctx, c.sources[0])
	}

	var failures []SourceFailure
	for _, src := range c.sources {
		res, err := c.FetchFrom(ctx, src)
		if err == nil {
			res.Meta.FailedSources = failures
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		slog.Warn("feed: source rejected, trying next", "url", src, "error", err)
		failures = append(failures, SourceFailure{URL: src, Error: err.Error()})
	}

	now := c.now()
	slog.Warn("feed: all sources failed, serving synthetic data", "sources", len(c.sources))
	return Result{
		Funds: Synthesize(c.registry, c.baseline, now),
		Meta: Meta{
			Timestamp:        now,
			ValidationErrors: []string{},
			Source:           SyntheticSource,
			Synthetic:        true,
			FailedSources:    failures,
		},
	}, nil
}

// FetchFrom runs the full fetch-validate-normalize pipeline against one source.
func (c *Client) FetchFrom(ctx context.Context, source string) (Result, error) {
	body, err := c.fetch(ctx, source)
	if err != nil {
		return Result{}, err
	}

	funds, warnings, err := Decode(body, c.registry)
	if err != nil {
		return Result{}, err
	}
	if warnings == nil {
		warnings = []string{}
	}
	for _, w := range warnings {
		slog.Debug("feed: validation warning", "url", source, "warning", w)
	}

	return Result{
		Funds: funds,
		Meta: Meta{
			Timestamp:        c.now(),
			ValidationErrors: warnings,
			Source:           source,
		},
	}, nil
}

// fetch performs the cache-busted GET and checks status and content type
// before reading the body.
func (c *Client) fetch(ctx context.Context, source string) ([]byte, error) {
	target, err := cacheBust(source, c.now())
	if err != nil {
		return nil, &TransportError{URL: source, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &TransportError{URL: source, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: source, Err: err}
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: source, StatusCode: resp.StatusCode, ContentType: contentType}
	}
	if !isJSON(contentType) {
		return nil, &TransportError{URL: source, StatusCode: resp.StatusCode, ContentType: contentType}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, &TransportError{URL: source, StatusCode: resp.StatusCode, ContentType: contentType, Err: err}
	}
	return body, nil
}

// cacheBust appends t=<unix millis> so every call bypasses HTTP caches.
func cacheBust(source string, now time.Time) (string, error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("parsing source URL: %w", err)
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(now.UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}
