package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/datasage/datasage/internal/config"
	"github.com/datasage/datasage/internal/dependency"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start only the MCP catalog tool server",
	Long:  "Start the MCP catalog tool server on its own, for external MCP clients.",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	container, err := dependency.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("%s Tool server listening on %s:%d. Press Ctrl+C to stop.\n",
		logo, cfg.ToolServer.Host, cfg.ToolServer.Port)

	if err := container.ToolServer().Start(ctx); err != nil && err != context.Canceled {
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}
