package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/navtrend/navtrend/internal/producer"
)

// Producer runs one fetch-compute-publish cycle.
type Producer interface {
	Run(ctx context.Context) (producer.Report, error)
}

// ProduceWorker runs the producer on a cron schedule.
type ProduceWorker struct {
	producer   Producer
	schedule   cron.Schedule
	spec       string
	location   *time.Location
	runOnStart bool
}

// NewProduceWorker creates a ProduceWorker. spec is a standard five-field cron
// expression (or descriptor such as @daily) evaluated in loc.
func NewProduceWorker(p Producer, spec string, loc *time.Location, runOnStart bool) (*ProduceWorker, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", spec, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ProduceWorker{
		producer:   p,
		schedule:   schedule,
		spec:       spec,
		location:   loc,
		runOnStart: runOnStart,
	}, nil
}

// Run starts the scheduler. It blocks until the context is cancelled and any
// in-progress run has finished. Runs never overlap.
func (w *ProduceWorker) Run(ctx context.Context) {
	slog.Info("ProduceWorker: starting", "schedule", w.spec, "tz", w.location.String(),
		"next", w.schedule.Next(time.Now().In(w.location)))

	logger := slogLogger{}
	c := cron.New(
		cron.WithLocation(w.location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	job := c.Schedule(w.schedule, cron.FuncJob(func() { w.runOnce(ctx, "scheduled") }))
	c.Start()

	if w.runOnStart {
		// Through the wrapped entry so the start-up run also holds the skip lock.
		c.Entry(job).WrappedJob.Run()
	}

	<-ctx.Done()
	slog.Info("ProduceWorker: shutting down")
	<-c.Stop().Done()
}

func (w *ProduceWorker) runOnce(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	report, err := w.producer.Run(ctx)
	switch {
	case errors.Is(err, producer.ErrNothingToPublish):
		slog.Warn("ProduceWorker: run produced no funds", "trigger", trigger)
	case err != nil:
		slog.Error("ProduceWorker: run failed", "trigger", trigger, "error", err)
	default:
		slog.Info("ProduceWorker: run completed", "trigger", trigger, "run", report.RunID,
			"funds", len(report.Funds), "skipped", len(report.Skipped), "duration", time.Since(start))
	}
}

// slogLogger adapts cron's logger interface to slog.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
