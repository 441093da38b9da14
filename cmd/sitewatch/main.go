package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/sitewatch/internal/certs"
	"github.com/hamed0406/sitewatch/internal/config"
	"github.com/hamed0406/sitewatch/internal/httpapi"
	apimw "github.com/hamed0406/sitewatch/internal/httpapi/middleware"
	"github.com/hamed0406/sitewatch/internal/logging"
	"github.com/hamed0406/sitewatch/internal/monitor"
	"github.com/hamed0406/sitewatch/internal/notify"
	"github.com/hamed0406/sitewatch/internal/probe"
	"github.com/hamed0406/sitewatch/internal/repo"
	"github.com/hamed0406/sitewatch/internal/repo/file"
	"github.com/hamed0406/sitewatch/internal/repo/memory"
	"github.com/hamed0406/sitewatch/internal/repo/postgres"
	"github.com/hamed0406/sitewatch/internal/repo/sqlite"
	"github.com/hamed0406/sitewatch/internal/scheduler"
)

func main() {
	once := flag.Bool("once", false, "run a single check cycle and exit, ignoring SCHEDULE")
	dryRun := flag.Bool("dry-run", false, "log alerts instead of sending them and never write state")
	flag.Parse()

	cfg := config.FromEnv()
	if *dryRun {
		cfg.DryRun = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:")
		for _, e := range multierr.Errors(err) {
			fmt.Fprintln(os.Stderr, "  -", e)
		}
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(cfg, *once, logger); err != nil {
		logger.Error("sitewatch_failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, once bool, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sites, err := cfg.Sites()
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.DryRun {
		// work on a copy so the real state is never touched
		prev, err := store.Load(ctx)
		var corrupt *repo.CorruptionError
		if err != nil && !errors.As(err, &corrupt) {
			return fmt.Errorf("load state for dry run: %w", err)
		}
		store = memory.Seed(prev)
	}

	inspector := certs.NewInspector(cfg.TLSTimeout)
	checker := probe.NewHTTPChecker(cfg.HTTPTimeout, inspector)
	dispatcher := notify.NewDispatcher(buildNotifier(cfg, logger), logger)
	runner := scheduler.NewRunner(logger, sites, store, checker, monitor.NewEngine(logger), dispatcher, cfg.Concurrency)

	logger.Info("sitewatch_start",
		zap.Int("sites", len(sites)),
		zap.String("store", cfg.StoreBackend),
		zap.String("schedule", cfg.Schedule),
		zap.Bool("dry_run", cfg.DryRun),
	)

	if once || cfg.Schedule == "" {
		runSingle(ctx, runner, logger)
		return nil
	}

	sched, err := scheduler.ParseSchedule(cfg.Schedule)
	if err != nil {
		return err
	}

	if cfg.Addr != "" {
		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           apiHandler(cfg, logger, store, runner),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("api_listen", zap.String("addr", cfg.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("api_listen_failed", zap.Error(err))
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	runner.Run(ctx, sched)
	return nil
}

// runSingle runs one cycle. Cycle failures are logged, not turned into an
// exit code: only configuration problems end the process with status 1.
func runSingle(ctx context.Context, runner *scheduler.Runner, logger *zap.Logger) {
	if _, err := runner.RunOnce(ctx); err != nil {
		logger.Error("check_cycle_error", zap.Error(err))
	}
}

func apiHandler(cfg config.Config, logger *zap.Logger, store repo.RecordStore, runner *scheduler.Runner) http.Handler {
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	return httpapi.NewServer(logger, store, runner).Router(
		keys, cfg.AllowedOrigins,
		cfg.PublicRPM, cfg.PublicBurst,
		cfg.AdminRPM, cfg.AdminBurst,
	)
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.RecordStore, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return memory.New(), func() {}, nil
	case config.BackendPostgres:
		st, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return st, st.Close, nil
	case config.BackendSQLite:
		st, err := sqlite.New(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return st, func() { _ = st.Close() }, nil
	default:
		return file.New(cfg.StatusFile, logger), func() {}, nil
	}
}

func buildNotifier(cfg config.Config, logger *zap.Logger) notify.Notifier {
	if cfg.DryRun {
		return notify.Log{Logger: logger}
	}
	var multi notify.Multi
	if tg := notify.NewTelegram(cfg.TelegramToken, cfg.ChatID); tg != nil {
		multi = append(multi, tg)
	}
	if sl := notify.NewSlack(cfg.SlackWebhook); sl != nil {
		multi = append(multi, sl)
	}
	if len(multi) == 1 {
		return multi[0]
	}
	return multi
}
