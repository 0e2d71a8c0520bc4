package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vesper-hq/vesper/pkg/audit"
	"vesper-hq/vesper/pkg/config"
	vtls "vesper-hq/vesper/pkg/security/tls"
	"vesper-hq/vesper/pkg/server"
	"vesper-hq/vesper/pkg/telemetry/logging"
	"vesper-hq/vesper/pkg/telemetry/metrics"
	"vesper-hq/vesper/pkg/telemetry/stats"
)

var runFlags struct {
	host     string
	port     int
	logLevel string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Vesper server",
	Long: `Start the Vesper server with the specified configuration.

The server binds the configured listener and serves requests through
the admission gate: overloaded periods answer with 503 and a load
snapshot instead of queueing work.

Examples:
  # Start with default config
  vesper run

  # Start with custom config
  vesper run --config /etc/vesper/config.yaml

  # Override the listen host and port
  vesper run --host 0.0.0.0 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.host, "host", "", "override listen host")
	runCmd.Flags().IntVar(&runFlags.port, "port", 0, "override listen port")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFileWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply flag overrides
	if runFlags.host != "" {
		cfg.Server.Host = runFlags.host
	}
	if runFlags.port != 0 {
		cfg.Server.Port = runFlags.port
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return err
	}

	srv, err := newServer(cfg)
	if err != nil {
		return err
	}
	srv.SetHandler(newPipeline(srv))

	// TLS certificate hot reload
	var reloader *vtls.CertificateReloader
	if tlsOpts := srv.Settings().TLS; tlsOpts != nil && tlsOpts.WatchCerts {
		tlsCfg, err := vtls.New(tlsOpts)
		if err != nil {
			return err
		}
		reloader = vtls.NewCertificateReloader(tlsOpts.CertFile, tlsOpts.KeyFile)
		if err := reloader.Start(); err != nil {
			return err
		}
		defer reloader.Stop()
		vtls.UseReloader(tlsCfg, reloader)
		srv.SetTLSConfig(tlsCfg)
	}

	// Audit trail
	if cfg.Audit.Enabled {
		auditCfg := audit.DefaultConfig()
		auditCfg.Path = cfg.Audit.Path
		store, err := audit.NewStore(auditCfg)
		if err != nil {
			return err
		}
		defer store.Close()
		srv.SetEvents(audit.NewRecorder(store))
	}

	// Metrics endpoint on its own listener
	var metricsSrv *http.Server
	if cfg.Telemetry.Metrics.Enabled == nil || *cfg.Telemetry.Metrics.Enabled {
		collector := metrics.NewCollector(nil, nil)
		srv.SetMetrics(collector)

		mux := http.NewServeMux()
		mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
		metricsSrv = &http.Server{
			Addr:    cfg.Telemetry.Metrics.Address,
			Handler: mux,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics endpoint failed", "error", err)
			}
		}()
		logger.Info("metrics endpoint started",
			"address", cfg.Telemetry.Metrics.Address,
			"path", cfg.Telemetry.Metrics.Path,
		)
	}

	// Scheduled runtime stats report
	reporter := stats.NewReporter(cfg.Telemetry.Stats.Schedule, srv)
	if err := reporter.Start(); err != nil {
		return err
	}
	defer reporter.Stop()

	if err := srv.Start(); err != nil {
		return err
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig.String())

	if err := srv.Stop(server.StopOptions{}); err != nil {
		return err
	}

	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metricsSrv.Shutdown(ctx)
	}

	return nil
}

// newServer builds the server from the file configuration, passing only
// the positional arguments the file actually sets.
func newServer(cfg *config.File) (*server.Server, error) {
	var args []any
	if cfg.Server.Host != "" {
		args = append(args, cfg.Server.Host)
	}
	if cfg.Server.Port != 0 {
		args = append(args, cfg.Server.Port)
	}
	args = append(args, &cfg.Server.Options)

	return server.New(args...)
}
