package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/premovescan/premovescan/internal/alert"
	"github.com/premovescan/premovescan/internal/config"
	"github.com/premovescan/premovescan/internal/errs"
	"github.com/premovescan/premovescan/internal/httpapi"
	applog "github.com/premovescan/premovescan/internal/log"
	"github.com/premovescan/premovescan/internal/market"
	"github.com/premovescan/premovescan/internal/metrics"
	"github.com/premovescan/premovescan/internal/scan"
	"github.com/premovescan/premovescan/internal/store"
	"github.com/premovescan/premovescan/internal/trademonitor"
)

var (
	runOnce    bool
	runStats   bool
	runCleanup bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scan engine continuously, or once with --once",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runOnce, "once", false, "run a single scan cycle and exit")
	runCmd.Flags().BoolVar(&runStats, "stats", false, "print scheduler stats after each cycle")
	runCmd.Flags().BoolVar(&runCleanup, "cleanup", false, "run Store retention cleanup and exit")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return taggedErr(errs.Config, err)
	}
	applog.Init(cfg.LogLevel, isTerminal())
	log := applog.Component("cmd")

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		if errs.Is(err, errs.StoreCorruption) {
			return taggedErr(errs.StoreCorruption, err)
		}
		return taggedErr(errs.Config, err)
	}
	defer st.Close()

	if runCleanup {
		if err := st.Cleanup(cmd.Context(), cfg.Store.RetentionDays); err != nil {
			return taggedErr(errs.StoreIO, err)
		}
		log.Info().Msg("store cleanup complete")
		return nil
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return taggedErr(errs.Internal, err)
	}

	reg := prometheus.NewRegistry()
	mcol := metrics.New(reg)

	sink := alert.NewConsoleSink(applog.Component("alert"))
	scheduler := scan.New(registry, st, mcol, sink, cfg, applog.Component("scan"))
	monitor := trademonitor.New(st, registry, sink, applog.Component("trademonitor"))
	monitor.WithDedupCache(trademonitor.NewDedupCache(buildRedisClient(cfg)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("shutdown signal received")
		cancel()
	}()

	opsSrv := startOpsServer(cfg, scheduler, log)
	if opsSrv != nil {
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = opsSrv.Shutdown(shutdownCtx)
		}()
	}

	if runOnce {
		if err := scheduler.RunOnce(ctx); err != nil {
			return taggedErr(errs.Internal, err)
		}
		if runStats {
			printStats(scheduler.Stats())
		}
		return nil
	}

	return runContinuous(ctx, cfg, scheduler, monitor, log)
}

// buildRedisClient constructs the optional Redis client backing the trade
// monitor's dedup cache; a nil return means NewDedupCache falls back to an
// in-memory cache.
func buildRedisClient(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
}

// startOpsServer starts the /healthz+/stats listener when cfg.Ops.Addr is
// set, logging failures in the background rather than failing startup.
func startOpsServer(cfg config.Config, scheduler *scan.Scheduler, log zerolog.Logger) *http.Server {
	if cfg.Ops.Addr == "" {
		return nil
	}
	srv := &http.Server{Addr: cfg.Ops.Addr, Handler: httpapi.NewServer(scheduler)}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("ops http server failed")
		}
	}()
	return srv
}

func runContinuous(ctx context.Context, cfg config.Config, scheduler *scan.Scheduler, monitor *trademonitor.Monitor, log zerolog.Logger) error {
	cadence := time.Duration(cfg.Scan.CadenceSeconds) * time.Second
	cycleTicker := time.NewTicker(cadence)
	defer cycleTicker.Stop()
	monitorTicker := time.NewTicker(trademonitor.PollInterval)
	defer monitorTicker.Stop()

	runCycle := func() {
		if err := scheduler.RunOnce(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "scan cycle failed: %v\n", err)
		}
		if runStats {
			printStats(scheduler.Stats())
		}
	}
	runCycle()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-cycleTicker.C:
			runCycle()
		case <-monitorTicker.C:
			if err := monitor.PollOnce(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "trade monitor poll failed: %v\n", err)
			}
		}
	}
}

func buildRegistry(cfg config.Config) (*market.Registry, error) {
	var exchanges []*market.Exchange
	for _, ex := range cfg.Exchanges {
		if !ex.Enabled {
			continue
		}
		src := market.NewFakeSource(ex.Name)
		bucket := market.NewTokenBucket(5, 10)
		exchanges = append(exchanges, market.NewExchange(src, bucket, nil))
	}
	return market.NewRegistry(exchanges...), nil
}

func printStats(s scan.Stats) {
	fmt.Printf("cycle_at=%s duration=%s scanned=%d degraded=%d classifications=%v\n",
		s.LastCycleAt.Format(time.RFC3339), s.LastCycleDur, s.SymbolsScanned, s.SymbolsDegraded, s.Classifications)
}

func taggedErr(kind errs.Kind, err error) error {
	return errs.Wrap(kind, "", "startup", err)
}

func isTerminal() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func exitCodeFor(err error) int {
	switch {
	case errs.Is(err, errs.Config):
		return exitConfigError
	case errs.Is(err, errs.StoreCorruption):
		return exitStoreCorrupt
	case errs.Is(err, errs.Internal):
		return exitAdapterFatal
	default:
		return exitConfigError
	}
}
