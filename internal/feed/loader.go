package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/navtrend/navtrend/internal/domain"
)

// Fetcher loads a validated fund list.
type Fetcher interface {
	Load(ctx context.Context) (Result, error)
}

// State is what the presentation layer renders. After a failed load Err is
// set and the last good Funds are kept.
type State struct {
	Funds     []domain.Fund
	Meta      Meta
	Err       error
	Loading   bool
	UpdatedAt time.Time
}

// Loader owns the display state and serializes refreshes: a refresh issued
// while another is in flight is ignored.
type Loader struct {
	fetcher  Fetcher
	inFlight atomic.Bool

	mu    sync.RWMutex
	state State
}

// NewLoader creates a Loader around a Fetcher.
func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{fetcher: fetcher}
}

// State returns a snapshot of the current display state.
func (l *Loader) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Refresh loads synchronously. It returns false without doing anything when
// another refresh is still running.
func (l *Loader) Refresh(ctx context.Context) bool {
	if !l.begin() {
		return false
	}
	l.run(ctx)
	return true
}

// RefreshAsync starts a refresh in the background. It returns false when
// another refresh is still running.
func (l *Loader) RefreshAsync(ctx context.Context) bool {
	if !l.begin() {
		return false
	}
	go l.run(ctx)
	return true
}

// begin claims the in-flight slot and marks the state as loading before
// returning, so State never reports idle while a refresh is claimed.
func (l *Loader) begin() bool {
	if !l.inFlight.CompareAndSwap(false, true) {
		return false
	}
	l.mu.Lock()
	l.state.Loading = true
	l.mu.Unlock()
	return true
}

// run performs one load. begin must already have succeeded.
func (l *Loader) run(ctx context.Context) {
	defer l.inFlight.Store(false)

	res, err := l.safeLoad(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Loading = false
	l.state.UpdatedAt = time.Now()
	if err != nil {
		slog.Error("feed: load failed", "error", err)
		l.state.Err = err
		return
	}
	l.state.Funds = res.Funds
	l.state.Meta = res.Meta
	l.state.Err = nil
	slog.Info("feed: load completed", "source", res.Meta.Source, "funds", len(res.Funds),
		"synthetic", res.Meta.Synthetic, "warnings", len(res.Meta.ValidationErrors))
}

// safeLoad converts a panic in the fetcher into an error.
func (l *Loader) safeLoad(ctx context.Context) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("load panicked: %v", r)
		}
	}()
	return l.fetcher.Load(ctx)
}
