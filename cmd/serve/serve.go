// Package serve implements the command that runs the snippet site.
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/amsot/twfcode/internal/blocks"
	"github.com/amsot/twfcode/internal/buildinfo"
	"github.com/amsot/twfcode/internal/conf"
	"github.com/amsot/twfcode/internal/httpcontroller"
	"github.com/amsot/twfcode/internal/logger"
	"github.com/amsot/twfcode/internal/observability"
	"github.com/amsot/twfcode/internal/telemetry"
	"github.com/amsot/twfcode/internal/wordpress"
)

const (
	shutdownTimeout  = 10 * time.Second
	telemetryTimeout = 2 * time.Second
)

// Command creates the serve command.
func Command(settings *conf.Settings, build *buildinfo.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Long:  "Serve the snippet site until interrupted, then shut down gracefully.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, settings, build)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		panic(err)
	}

	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVarP(&settings.WebServer.Port, "port", "p", viper.GetString("webserver.port"), "Port to listen on")

	// Bind flags to the viper settings
	if err := viper.BindPFlag("webserver.port", cmd.Flags().Lookup("port")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}

// Run wires the CMS client, block renderer and page server, and serves until
// ctx is cancelled or the listener fails.
func Run(ctx context.Context, settings *conf.Settings, build *buildinfo.Context) error {
	log := logger.Global().Module("serve")

	if err := telemetry.Init(telemetry.Config{
		Enabled:     settings.Sentry.Enabled,
		DSN:         settings.Sentry.DSN,
		Environment: settings.Sentry.Environment,
		Release:     build.Release(),
	}); err != nil {
		log.Warn("error reporting unavailable", logger.Error(err))
	}
	defer telemetry.Flush(telemetryTimeout)

	var (
		cmsOpts    []wordpress.Option
		blockOpts  []blocks.Option
		serverOpts []httpcontroller.Option
	)
	if build != nil {
		serverOpts = append(serverOpts, httpcontroller.WithAssetVersion(build.Version))
	}
	if settings.Metrics.Enabled {
		metrics, err := observability.NewMetrics()
		if err != nil {
			return err
		}
		cmsOpts = append(cmsOpts, wordpress.WithObserver(metrics.CMS))
		blockOpts = append(blockOpts, blocks.WithObserver(metrics.Blocks))
		serverOpts = append(serverOpts, httpcontroller.WithMetrics(metrics))
	}

	client, err := wordpress.NewClient(wordpress.ConfigFromSettings(&settings.CMS), cmsOpts...)
	if err != nil {
		return err
	}
	defer client.Close()

	renderer, err := blocks.NewRenderer(blockOpts...)
	if err != nil {
		return err
	}

	server, err := httpcontroller.New(settings, client, renderer, serverOpts...)
	if err != nil {
		return err
	}

	errCh := server.Start()
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}
