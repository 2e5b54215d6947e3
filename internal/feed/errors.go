package feed

import "fmt"

// TransportError reports a network failure, a non-success status or a
// non-JSON content type. The body is never parsed when this is returned.
type TransportError struct {
	URL         string
	StatusCode  int
	ContentType string
	Err         error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	case e.StatusCode != 0 && (e.StatusCode < 200 || e.StatusCode > 299):
		return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetching %s: unexpected content type %q", e.URL, e.ContentType)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// ShapeError reports a payload that is not a non-empty array of objects.
type ShapeError struct {
	Reason string
	Err    error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid payload: %s: %v", e.Reason, e.Err)
	}
	return "invalid payload: " + e.Reason
}

func (e *ShapeError) Unwrap() error { return e.Err }

// MissingFundError reports a registry fund absent from the payload.
type MissingFundError struct {
	Code string
	Name string
}

func (e *MissingFundError) Error() string {
	return fmt.Sprintf("fund %s (%s) missing from payload", e.Code, e.Name)
}

// InvalidHistoryError reports a missing or malformed history for one fund.
type InvalidHistoryError struct {
	Code   string
	Reason string
}

func (e *InvalidHistoryError) Error() string {
	return fmt.Sprintf("fund %s: invalid history: %s", e.Code, e.Reason)
}
