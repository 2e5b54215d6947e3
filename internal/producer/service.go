package producer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/navtrend/navtrend/internal/domain"
	"github.com/navtrend/navtrend/internal/eastmoney"
)

// ErrNothingToPublish indicates that every fund of a run was skipped.
var ErrNothingToPublish = errors.New("no fund data fetched")

// NAVFetcher defines the upstream daily price interface.
type NAVFetcher interface {
	FetchDailyNAV(ctx context.Context, code string, since time.Time) ([]domain.PricePoint, error)
}

// Publisher writes a finished fund list to one output location.
type Publisher interface {
	Publish(ctx context.Context, funds []domain.Fund) error
}

// SkippedFund records a fund omitted from a run and why.
type SkippedFund struct {
	Code   string
	Name   string
	Reason error
}

// Report is the outcome of a producer run.
type Report struct {
	RunID   string
	Funds   []domain.Fund
	Skipped []SkippedFund
}

// Options tunes how the upstream is queried.
type Options struct {
	// Concurrency above 1 fetches funds in parallel. Output order is unaffected.
	Concurrency int
	// Delay is the pause between sequential fetches.
	Delay time.Duration
}

// Service runs the fetch-compute-publish pipeline.
type Service struct {
	fetcher    NAVFetcher
	registry   domain.Registry
	baseline   time.Time
	publishers []Publisher
	opts       Options
}

// NewService creates a producer Service. fetcher is required.
func NewService(fetcher NAVFetcher, registry domain.Registry, baseline time.Time, opts Options, publishers ...Publisher) *Service {
	if fetcher == nil {
		panic("producer.NewService: fetcher is nil")
	}
	return &Service{
		fetcher:    fetcher,
		registry:   registry,
		baseline:   baseline,
		publishers: publishers,
		opts:       opts,
	}
}

// result is the per-fund outcome, indexed by registry position.
type result struct {
	fund domain.Fund
	err  error
}

// Build fetches and computes every registry fund. Per-fund failures are
// isolated: the fund is recorded in Report.Skipped and left out of Funds.
func (s *Service) Build(ctx context.Context) (Report, error) {
	runID := uuid.NewString()
	logger := slog.With("run", runID)
	logger.Info("producer: run started", "codes", s.registry.Codes(), "baseline", s.baseline.Format(time.DateOnly))

	var results []result
	var err error
	if s.opts.Concurrency > 1 {
		results, err = s.fetchParallel(ctx)
	} else {
		results, err = s.fetchSequential(ctx)
	}
	if err != nil {
		return Report{}, err
	}

	report := Report{RunID: runID}
	for i, r := range results {
		cfg := s.registry[i]
		if r.err != nil {
			if errors.Is(r.err, eastmoney.ErrNoData) || errors.Is(r.err, domain.ErrEmptySeries) {
				logger.Warn("producer: no data, fund skipped", "code", cfg.Code, "name", cfg.Name)
			} else {
				logger.Error("producer: fund failed", "code", cfg.Code, "name", cfg.Name, "error", r.err)
			}
			report.Skipped = append(report.Skipped, SkippedFund{Code: cfg.Code, Name: cfg.Name, Reason: r.err})
			continue
		}
		report.Funds = append(report.Funds, r.fund)
	}

	logger.Info("producer: run built",
		"fetched", len(report.Funds),
		"skipped", len(report.Skipped),
		"skippedCodes", lo.Map(report.Skipped, func(sf SkippedFund, _ int) string { return sf.Code }),
	)
	return report, nil
}

// Run builds the report and hands it to every publisher.
func (s *Service) Run(ctx context.Context) (Report, error) {
	report, err := s.Build(ctx)
	if err != nil {
		return report, err
	}
	if len(report.Funds) == 0 {
		return report, fmt.Errorf("run %s: %w", report.RunID, ErrNothingToPublish)
	}

	var errs []error
	for _, p := range s.publishers {
		if err := p.Publish(ctx, report.Funds); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return report, fmt.Errorf("publishing run %s: %w", report.RunID, err)
	}

	slog.Info("producer: run published", "run", report.RunID, "outputs", len(s.publishers))
	return report, nil
}

func (s *Service) fetchSequential(ctx context.Context) ([]result, error) {
	results := make([]result, len(s.registry))
	for i, cfg := range s.registry {
		if i > 0 && s.opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.opts.Delay):
			}
		}
		results[i] = s.fetchFund(ctx, cfg)
	}
	return results, ctx.Err()
}

func (s *Service) fetchParallel(ctx context.Context) ([]result, error) {
	results := make([]result, len(s.registry))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, cfg := range s.registry {
		g.Go(func() error {
			results[i] = s.fetchFund(gctx, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, ctx.Err()
}

func (s *Service) fetchFund(ctx context.Context, cfg domain.FundConfig) result {
	points, err := s.fetcher.FetchDailyNAV(ctx, cfg.Code, s.baseline)
	if err != nil {
		return result{err: fmt.Errorf("fetching %s: %w", cfg.Code, err)}
	}
	fund, err := domain.NewFund(cfg, points)
	if err != nil {
		return result{err: fmt.Errorf("computing %s: %w", cfg.Code, err)}
	}
	return result{fund: fund}
}
