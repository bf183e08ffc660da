package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adityaparmar/onebox/internal/adapters/elastic"
	"github.com/adityaparmar/onebox/internal/core"
	"github.com/adityaparmar/onebox/internal/di"
	"github.com/adityaparmar/onebox/internal/ports"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "onebox",
	Short: "Aggregate IMAP mailboxes into a searchable, categorized index",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("onebox version %s\n", version)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sync all configured accounts and serve the HTTP API",
	RunE: func(_ *cobra.Command, _ []string) error {
		container, err := di.BuildContainer()
		if err != nil {
			return fmt.Errorf("failed to build dependency container: %w", err)
		}
		return container.Invoke(run)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	esClient *elastic.Client,
	engine ports.SyncEngine,
	api ports.APIServer,
	cache core.CategoryCache,
	generator core.ReplyGenerator,
) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The search engine must be reachable before any collection work
	if err := esClient.WaitReady(ctx); err != nil {
		logger.Error("Search engine never became ready", zap.Error(err))
		return err
	}

	if err := engine.Start(); err != nil {
		logger.Error("Failed to start mailbox sync", zap.Error(err))
		return err
	}

	if err := api.Start(); err != nil {
		logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}

	<-ctx.Done()
	logger.Info("Shutting down...")

	if err := engine.Stop(); err != nil {
		logger.Error("Failed to stop mailbox sync", zap.Error(err))
	}
	if err := api.Stop(); err != nil {
		logger.Error("Failed to stop HTTP server", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := generator.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close reply generator", zap.Error(err))
		}
	}

	// Stop the cache if needed
	if stopper, ok := cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
