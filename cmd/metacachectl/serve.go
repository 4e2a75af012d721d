package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kestrelcache/metacache/pkg/config"
	"github.com/kestrelcache/metacache/pkg/log"
	"github.com/kestrelcache/metacache/pkg/metrics"
	"github.com/kestrelcache/metacache/pkg/state"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Initialize cache state from a config file and expose Prometheus metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := state.Init(ctx, cfg); err != nil {
			return fmt.Errorf("serve: init cache state: %w", err)
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux}

		logger := log.WithComponent("metacachectl")
		errCh := make(chan error, 1)
		go func() {
			logger.Info().Str("addr", metricsAddr).Msg("metrics server listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			logger.Info().Msg("shutting down")
		case err := <-errCh:
			return fmt.Errorf("serve: metrics server: %w", err)
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("config", "", "path to a YAML config file (required)")
	serveCmd.Flags().String("metrics-addr", ":9090", "address to serve Prometheus metrics on")
	serveCmd.MarkFlagRequired("config")
}
