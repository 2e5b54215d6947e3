package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/navtrend/navtrend/internal/api"
	"github.com/navtrend/navtrend/internal/config"
	"github.com/navtrend/navtrend/internal/dashboard"
	"github.com/navtrend/navtrend/internal/eastmoney"
	"github.com/navtrend/navtrend/internal/feed"
	"github.com/navtrend/navtrend/internal/producer"
	"github.com/navtrend/navtrend/internal/publish"
	"github.com/navtrend/navtrend/internal/worker"
)

// feedFlags are shared by the commands that load the published data.
func feedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "policy",
			Usage: "fetch policy: strict or resilient (overrides FETCH_POLICY)",
		},
		&cli.StringSliceFlag{
			Name:  "url",
			Usage: "data URL to load, repeatable (overrides DATA_URLS)",
		},
	}
}

func produceCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "produce",
		Usage: "fetch upstream NAVs once and publish the data file",
		Action: func(c *cli.Context) error {
			svc, err := newProducer(c.Context, cfg)
			if err != nil {
				return err
			}
			report, err := svc.Run(c.Context)
			if err != nil {
				return err
			}
			slog.Info("produce: done", "run", report.RunID, "funds", len(report.Funds), "skipped", len(report.Skipped))
			return nil
		},
	}
}

func scheduleCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "run produce on the SCHEDULE cron expression until interrupted",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "run-now", Usage: "also run once at start-up"},
		},
		Action: func(c *cli.Context) error {
			svc, err := newProducer(c.Context, cfg)
			if err != nil {
				return err
			}
			w, err := worker.NewProduceWorker(svc, cfg.Schedule, cfg.ScheduleTZ, c.Bool("run-now"))
			if err != nil {
				return err
			}
			w.Run(c.Context)
			return nil
		},
	}
}

func fetchCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "load the published data once and print the dashboard view as JSON",
		Flags: feedFlags(),
		Action: func(c *cli.Context) error {
			client, err := newFeedClient(c, cfg)
			if err != nil {
				return err
			}
			loader := feed.NewLoader(client)
			loader.Refresh(c.Context)

			state := loader.State()
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(dashboard.Build(state, cfg.Baseline)); err != nil {
				return fmt.Errorf("writing dashboard: %w", err)
			}
			if state.Err != nil {
				return cli.Exit(state.Err.Error(), 1)
			}
			return nil
		},
	}
}

func serveCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the data files and the dashboard API over HTTP",
		Flags: feedFlags(),
		Action: func(c *cli.Context) error {
			ctx := c.Context
			client, err := newFeedClient(c, cfg)
			if err != nil {
				return err
			}
			loader := feed.NewLoader(client)
			// Async so the server is already up when DATA_URLS points back at it.
			loader.RefreshAsync(ctx)

			srv := api.NewServer(cfg.HTTPPort, api.NewHandler(ctx, loader, cfg.Baseline), api.RouterOptions{
				PublicDir:   cfg.PublicDir,
				CORSOrigins: cfg.CORSOrigins,
			})

			errCh := make(chan error, 1)
			go func() {
				slog.Info("HTTP server listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case <-ctx.Done():
			case err := <-errCh:
				return fmt.Errorf("HTTP server: %w", err)
			}
			slog.Info("Shutting down...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("HTTP server shutdown: %w", err)
			}
			slog.Info("Shutdown complete")
			return nil
		},
	}
}

// newProducer wires the upstream client and every configured output.
func newProducer(ctx context.Context, cfg *config.Config) (*producer.Service, error) {
	client := eastmoney.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout, cfg.UpstreamRetryMax, cfg.UpstreamRetryBaseDelay)

	var publishers []producer.Publisher
	for _, path := range cfg.OutputPaths {
		publishers = append(publishers, publish.NewJSONFile(path))
	}
	if cfg.XLSXOutput != "" {
		publishers = append(publishers, publish.NewWorkbook(cfg.XLSXOutput))
	}
	if cfg.SheetsEnabled() {
		sw, err := publish.NewSheetsWriter(ctx, cfg.GoogleSheetsID, cfg.GoogleCredentialsJSON)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, sw)
	} else if cfg.GoogleSheetsID != "" {
		slog.Warn("GOOGLE_SHEETS_ID set without GOOGLE_CREDENTIALS_JSON, sheets output disabled")
	}

	opts := producer.Options{Concurrency: cfg.FetchConcurrency, Delay: cfg.UpstreamDelay}
	return producer.NewService(client, cfg.Registry, cfg.Baseline, opts, publishers...), nil
}

// newFeedClient builds the consumer client, applying command-line overrides.
func newFeedClient(c *cli.Context, cfg *config.Config) (*feed.Client, error) {
	policy := cfg.FetchPolicy
	if v := c.String("policy"); v != "" {
		p, err := feed.ParsePolicy(v)
		if err != nil {
			return nil, err
		}
		policy = p
	}
	sources := cfg.DataURLs
	if urls := c.StringSlice("url"); len(urls) > 0 {
		sources = urls
	}
	return feed.NewClient(sources, cfg.Registry, policy, cfg.Baseline, cfg.FeedTimeout), nil
}
