package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/longkey1/xhsnote/internal/metrics"
	"github.com/longkey1/xhsnote/internal/server"
	"github.com/longkey1/xhsnote/internal/xhsnote"
)

const shutdownTimeout = 15 * time.Second

type serveOptions struct {
	listen string
}

var serveOpts = &serveOptions{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve note lookups over HTTP",
	Long: `Start an HTTP server exposing:

  GET  /api/v1/notes?note_id=...&share_url=...
  POST /api/v1/notes    {"note_id": "...", "share_url": "..."}
  GET  /healthz
  GET  /metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), serveOpts)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveOpts.listen, "listen", "l", "", "Listen address (overrides config, default :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context, opts *serveOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.listen != "" {
		cfg.Listen = opts.listen
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	fetcher := newFetcher(cfg, log, xhsnote.WithRecorder(collector))

	srv := &http.Server{
		Addr: cfg.Listen,
		Handler: server.NewRouter(server.Deps{
			Fetcher:   fetcher,
			Logger:    log.Named("http"),
			Collector: collector,
			Gatherer:  reg,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		// upstream timeout plus headroom for encoding
		WriteTimeout: cfg.Timeout + 10*time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.Listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
