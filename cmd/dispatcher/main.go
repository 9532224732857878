package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paycrypt-gateway/config"
	pgStorage "paycrypt-gateway/internal/adapter/storage/postgres"
	redisStorage "paycrypt-gateway/internal/adapter/storage/redis"
	"paycrypt-gateway/internal/core/ports"
	"paycrypt-gateway/internal/service"
	"paycrypt-gateway/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:    "dispatcher",
		Usage:   "Deliver pending webhook events to client endpoints",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (defaults to search paths + PCW_ env vars)",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Max events claimed per pass (overrides config)",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "Per-delivery HTTP timeout (overrides config)",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent deliveries per pass (overrides config)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a single dispatch pass and exit (non-zero when deliveries failed)",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withDispatcher(ctx, cmd, runOnce)
				},
			},
			{
				Name:  "loop",
				Usage: "Dispatch continuously until interrupted",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:    "interval",
						Aliases: []string{"i"},
						Usage:   "Pause between passes (overrides config)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withDispatcher(ctx, cmd, runLoop)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "dispatcher: %v\n", err)
		os.Exit(1)
	}
}

type dispatchRun struct {
	svc     *service.DispatchServiceImpl
	cfg     *config.Config
	limit   int
	timeout time.Duration
	log     zerolog.Logger
}

// withDispatcher wires storage, cache and the dispatch service, runs fn,
// and tears the connections down afterwards.
func withDispatcher(ctx context.Context, cmd *cli.Command, fn func(ctx context.Context, cmd *cli.Command, run *dispatchRun) error) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	eventRepo := pgStorage.NewWebhookEventRepo(pool)
	clientRepo := pgStorage.NewClientConfigRepo(pool)

	// Redis is an optimisation; the dispatcher works without it.
	var configCache ports.ClientConfigCache
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, config cache disabled")
	} else {
		defer rdb.Close() //nolint:errcheck
		configCache = redisStorage.NewConfigCache(rdb)
	}

	limit := cfg.Webhook.BatchLimit
	if cmd.IsSet("limit") {
		limit = int(cmd.Int("limit"))
	}
	timeout := cfg.Webhook.HTTPTimeout
	if cmd.IsSet("timeout") {
		timeout = cmd.Duration("timeout")
	}
	workers := cfg.Webhook.Workers
	if cmd.IsSet("workers") {
		workers = int(cmd.Int("workers"))
	}

	svc := service.NewDispatchService(
		eventRepo,
		clientRepo,
		configCache,
		service.NewHMACSignatureService(),
		&http.Client{Timeout: timeout + time.Second},
		workers,
		log,
	)

	return fn(ctx, cmd, &dispatchRun{svc: svc, cfg: cfg, limit: limit, timeout: timeout, log: log})
}

func runOnce(ctx context.Context, _ *cli.Command, run *dispatchRun) error {
	summary, err := run.svc.DispatchPending(ctx, run.limit, run.timeout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d deliveries failed", summary.Failed, summary.Processed)
	}
	return nil
}

func runLoop(ctx context.Context, cmd *cli.Command, run *dispatchRun) error {
	interval := run.cfg.Webhook.DispatchInterval
	if cmd.IsSet("interval") {
		interval = cmd.Duration("interval")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run.log.Info().Dur("interval", interval).Msg("dispatch loop started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := run.svc.DispatchPending(ctx, run.limit, run.timeout); err != nil {
			// Transient store failures should not kill the loop.
			run.log.Error().Err(err).Msg("dispatch pass failed")
		}

		select {
		case <-ctx.Done():
			run.log.Info().Msg("dispatch loop stopped")
			return nil
		case <-ticker.C:
		}
	}
}
