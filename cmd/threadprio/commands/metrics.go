package commands

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/Swind/go-thread/core"
	"github.com/Swind/go-thread/errors"
	obs "github.com/Swind/go-thread/observability/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMetricsCmd(a *app) *cobra.Command {
	var (
		listen   string
		duration time.Duration
		threads  int
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Serve Prometheus metrics while worker threads run",
		Long: `Start an HTTP server exposing /metrics and keep spawning short-lived
threads with random priorities until --duration elapses.`,
		Example: `  threadprio metrics --listen :9090 --duration 30s
  curl -s http://127.0.0.1:9090/metrics | grep '^threadprio_'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = a.cfg.Metrics.Listen
			}
			return a.serveMetrics(cmd.Context(), listen, duration, threads)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default metrics.listen)")
	cmd.Flags().DurationVar(&duration, "duration", 10*time.Second, "how long to keep serving")
	cmd.Flags().IntVar(&threads, "threads", 8, "threads spawned per round")
	return cmd
}

func (a *app) serveMetrics(ctx context.Context, listen string, duration time.Duration, threads int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	reg := prom.NewRegistry()
	exporter, err := obs.NewMetricsExporter(a.cfg.Metrics.Namespace, reg, obs.ExporterOptions{})
	if err != nil {
		return err
	}
	poller, err := obs.NewSnapshotPoller(a.cfg.Metrics.Namespace, reg, a.cfg.PollInterval())
	if err != nil {
		return err
	}

	rt, err := a.newRuntime(exporter)
	if err != nil {
		return err
	}
	poller.AddRuntime(rt.Name(), rt)
	poller.Start(ctx)
	defer poller.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	pterm.Info.Printf("Serving metrics on %s/metrics for %s\n", listen, duration)
	a.logger.Info("metrics server started", zap.String("listen", listen), zap.Duration("duration", duration))

	err = runWorkload(ctx, rt, threads, serveErr)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		a.logger.Warn("metrics server shutdown failed", zap.Error(shutdownErr))
	}
	if rtErr := rt.Shutdown(shutdownCtx); rtErr != nil {
		a.logger.Warn("runtime shutdown failed", zap.Error(rtErr))
	}
	if err != nil {
		return errors.Wrap(err, "metrics server failed")
	}

	stats := rt.Stats()
	pterm.Success.Printf("Spawned %d threads (%d aborted, %d rejected assignments)\n", stats.Spawned, stats.Aborted, stats.Rejected)
	return nil
}

// runWorkload spawns rounds of threads until ctx ends or the server fails.
func runWorkload(ctx context.Context, rt *core.Runtime, threads int, serveErr <-chan error) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	round := 0
	for {
		for i := range threads {
			t := rt.Spawn(rt.Main(), func(ctx context.Context) error {
				select {
				case <-ctx.Done():
				case <-time.After(time.Duration(rand.IntN(400)) * time.Millisecond):
				}
				return nil
			}, core.WithName(fmt.Sprintf("worker-%d-%d", round, i)))
			t.SetPriority(rand.IntN(7) - 3)
		}
		round++

		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-serveErr:
			if ok {
				return err
			}
			return nil
		case <-ticker.C:
		}
	}
}
