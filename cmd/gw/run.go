package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gatewatch/internal/config"
	"github.com/alfredjeanlab/gatewatch/internal/device"
	"github.com/alfredjeanlab/gatewatch/internal/events"
	"github.com/alfredjeanlab/gatewatch/internal/gate"
	"github.com/alfredjeanlab/gatewatch/internal/history"
	"github.com/alfredjeanlab/gatewatch/internal/monitor"
	"github.com/alfredjeanlab/gatewatch/internal/notify"
	"github.com/alfredjeanlab/gatewatch/internal/server"
	"github.com/alfredjeanlab/gatewatch/internal/store"
	"github.com/alfredjeanlab/gatewatch/internal/store/postgres"
	gatesync "github.com/alfredjeanlab/gatewatch/internal/sync"
)

var runCmd = &cobra.Command{
	Use:     "run",
	Short:   "Poll the gate controller and serve the monitor API",
	GroupID: "monitor",
	// Override PersistentPreRunE so we don't create an API client.
	PersistentPreRunE: noClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration.
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

		// Optional transition journal.
		var journal store.Store
		if cfg.DatabaseURL != "" {
			pg, err := postgres.New(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			journal = pg
			logger.Info("transition journal enabled")
		} else {
			logger.Info("transition journal disabled (GATEWATCH_DATABASE_URL not set)")
		}

		// Create event publishers. SSE is always on; NATS is optional.
		hub := server.NewHub()
		publishers := events.Fanout{hub}
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				if journal != nil {
					journal.Close()
				}
				return err
			}
			publishers = append(publishers, pub)
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			logger.Info("NATS events disabled (GATEWATCH_NATS_URL not set)")
		}

		// Notifications always reach the log; a command is optional.
		notifiers := notify.Multi{&notify.LogNotifier{Logger: logger}}
		if cfg.NotifyCommand != "" {
			notifiers = append(notifiers, &notify.CommandNotifier{
				Command: cfg.NotifyCommand,
				Timeout: cfg.NotifyTimeout,
			})
			logger.Info("notify command enabled")
		}

		dev := device.New(cfg.DeviceURL, cfg.Timeout)
		mon := monitor.New(monitor.Config{
			Interval:  cfg.PollInterval,
			Timeout:   cfg.Timeout,
			Fetcher:   dev,
			Machine:   gate.New(cfg.Threshold, cfg.ReleaseBand),
			Log:       history.New(cfg.LogCap),
			Notifier:  notifiers,
			Publisher: publishers,
			Journal:   journal,
			Logger:    logger,
		})

		// Start HTTP server.
		gateServer := server.NewGateServer(mon, hub, logger)
		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           gateServer.NewHTTPHandler(cfg.AuthToken),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serveErr, err := startAPI(httpServer, logger)
		if err != nil {
			_ = publishers.Close()
			if journal != nil {
				journal.Close()
			}
			return err
		}

		// Start sync scheduler if any destinations are configured.
		var scheduler *gatesync.Scheduler
		if cfg.SyncEnabled() {
			if journal == nil {
				logger.Warn("sync destinations configured but no journal; sync disabled")
			} else if dests := syncDestinations(cfg, logger); len(dests) > 0 {
				scheduler = gatesync.NewScheduler(journal, dests, cfg.SyncInterval, logger)
				scheduler.Start()
				logger.Info("sync scheduler started", "interval", cfg.SyncInterval)
			}
		}

		// Poll until SIGINT or SIGTERM, or until the API server dies.
		sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithCancel(sigCtx)
		defer cancel()

		logger.Info("gatewatch started",
			"monitor_id", mon.ID(),
			"device_url", dev.URL(),
			"http_addr", cfg.HTTPAddr,
			"threshold", cfg.Threshold,
		)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = mon.Run(ctx)
		}()

		runErr := waitForStop(ctx, serveErr)
		if runErr != nil {
			logger.Error("HTTP server failed, shutting down", "err", runErr)
		} else {
			logger.Info("received signal, shutting down")
		}
		cancel()
		<-done

		// Graceful shutdown.
		if scheduler != nil {
			scheduler.Stop()
			logger.Info("sync scheduler stopped")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publishers.Close(); err != nil {
			logger.Error("error closing publishers", "err", err)
		}
		if journal != nil {
			if err := journal.Close(); err != nil {
				logger.Error("error closing journal", "err", err)
			}
		}

		logger.Info("shutdown complete")
		return runErr
	},
}

// startAPI binds the server address and serves in the background. Bind
// failures are returned directly; later serve failures arrive on the channel.
func startAPI(srv *http.Server, logger *slog.Logger) (<-chan error, error) {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	return errc, nil
}

// waitForStop blocks until ctx is done or the API server fails.
func waitForStop(ctx context.Context, serveErr <-chan error) error {
	select {
	case <-ctx.Done():
		return nil
	case err := <-serveErr:
		return fmt.Errorf("serving API: %w", err)
	}
}

func syncDestinations(cfg *config.Config, logger *slog.Logger) []gatesync.Destination {
	var dests []gatesync.Destination

	if cfg.SyncS3Bucket != "" {
		s3Dest, err := gatesync.NewS3Destination(
			context.Background(),
			cfg.SyncS3Bucket,
			cfg.SyncS3Key,
			cfg.SyncS3Region,
			cfg.SyncS3Endpoint,
		)
		if err != nil {
			logger.Error("failed to create S3 sync destination", "err", err)
		} else {
			dests = append(dests, s3Dest)
			logger.Info("sync S3 destination enabled", "bucket", cfg.SyncS3Bucket, "key", cfg.SyncS3Key)
		}
	}

	if cfg.SyncGitRepo != "" {
		gitDest := gatesync.NewGitDestination(cfg.SyncGitRepo, cfg.SyncGitFile, cfg.SyncGitBranch)
		dests = append(dests, gitDest)
		logger.Info("sync git destination enabled", "repo", cfg.SyncGitRepo, "file", cfg.SyncGitFile)
	}

	return dests
}
