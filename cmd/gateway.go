package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/datasage/datasage/internal/config"
	"github.com/datasage/datasage/internal/dependency"
)

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the datasage gateway: tool server, assistant, and chat channels",
	RunE:  runGateway,
}

func runGateway(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Model.APIKey == "" {
		return fmt.Errorf("no API key configured for model %q, edit %s",
			cfg.Model.Name, config.ConfigPath())
	}

	container, err := dependency.New(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("%s Starting datasage gateway...\n", logo)

	// Graceful shutdown context.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	channelMgr := container.Channels()
	if enabled := channelMgr.EnabledChannels(); len(enabled) > 0 {
		fmt.Printf("✓ Channels enabled: %s\n", strings.Join(enabled, ", "))
	} else {
		fmt.Println("Warning: no channels enabled")
	}

	g.Go(func() error { return container.ToolServer().Start(gctx) })
	g.Go(func() error { return container.AssistantLoop().Run(gctx) })
	g.Go(func() error { return channelMgr.StartAll(gctx) })
	g.Go(func() error { return container.Maintenance().Start(gctx) })

	defer container.Gateway().Close()

	fmt.Printf("%s Gateway running. Press Ctrl+C to stop.\n", logo)

	if err := g.Wait(); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "gateway error: %v\n", err)
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}
