// Package dashboard turns the feed display state into the view the UI renders.
package dashboard

import (
	"errors"
	"time"

	"github.com/navtrend/navtrend/internal/domain"
	"github.com/navtrend/navtrend/internal/feed"
)

// Trend labels.
const (
	TrendUp          = "up"
	TrendDown        = "down"
	TrendFlat        = "flat"
	TrendUnavailable = "unavailable"
)

// Card is one fund summary tile. When Available is false the numeric
// fields are nil and the tile shows "data unavailable".
type Card struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Available   bool     `json:"available"`
	LatestNav   *float64 `json:"latestNav"`
	LatestDate  string   `json:"latestDate,omitempty"`
	TotalGrowth *float64 `json:"totalGrowth"`
	Trend       string   `json:"trend"`
}

// ErrorView describes a failed load.
type ErrorView struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// Dashboard is the full rendered view.
type Dashboard struct {
	Baseline  string     `json:"baseline"`
	DataDate  string     `json:"dataDate,omitempty"`
	Loading   bool       `json:"loading"`
	Synthetic bool       `json:"synthetic"`
	Source    string     `json:"source,omitempty"`
	Warnings  []string   `json:"warnings,omitempty"`
	Cards     []Card     `json:"cards"`
	Chart     Chart      `json:"chart"`
	Error     *ErrorView `json:"error,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Build renders state. Cards and chart are built from whatever funds the
// state still holds, so a failed refresh keeps showing the last good data
// next to the error.
func Build(state feed.State, baseline time.Time) Dashboard {
	d := Dashboard{
		Baseline:  baseline.Format(time.DateOnly),
		Loading:   state.Loading,
		Synthetic: state.Meta.Synthetic,
		Source:    state.Meta.Source,
		Warnings:  state.Meta.ValidationErrors,
		Cards:     make([]Card, 0, len(state.Funds)),
		Chart:     BuildChart(state.Funds),
	}
	if !state.UpdatedAt.IsZero() {
		updated := state.UpdatedAt
		d.UpdatedAt = &updated
	}
	if len(state.Funds) > 0 {
		d.DataDate = state.Funds[0].LatestDate()
	}
	for _, f := range state.Funds {
		d.Cards = append(d.Cards, NewCard(f))
	}
	if state.Err != nil {
		d.Error = &ErrorView{
			Kind:      errorKind(state.Err),
			Message:   state.Err.Error(),
			Retryable: true,
		}
	}
	return d
}

// NewCard summarizes one fund using only its accessors.
func NewCard(f domain.Fund) Card {
	c := Card{Code: f.Code, Name: f.Name, Trend: TrendUnavailable}
	if _, ok := f.Latest(); !ok {
		return c
	}
	nav := f.LatestNav()
	growth := f.TotalGrowth()
	c.Available = true
	c.LatestNav = &nav
	c.LatestDate = f.LatestDate()
	c.TotalGrowth = &growth
	c.Trend = trend(growth)
	return c
}

func trend(growth float64) string {
	switch {
	case growth > 0:
		return TrendUp
	case growth < 0:
		return TrendDown
	default:
		return TrendFlat
	}
}

func errorKind(err error) string {
	var (
		te *feed.TransportError
		se *feed.ShapeError
		mf *feed.MissingFundError
		ih *feed.InvalidHistoryError
	)
	switch {
	case errors.As(err, &te):
		return "transport"
	case errors.As(err, &se):
		return "shape"
	case errors.As(err, &mf):
		return "missing_fund"
	case errors.As(err, &ih):
		return "invalid_history"
	default:
		return "unknown"
	}
}
