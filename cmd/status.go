package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/datasage/datasage/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show datasage status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	fmt.Printf("%s datasage Status\n\n", logo)

	_, statErr := os.Stat(cfgPath)
	cfgMark := "✗"
	if statErr == nil {
		cfgMark = "✓"
	}
	fmt.Printf("Config:      %s %s\n", cfgPath, cfgMark)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	fmt.Printf("Model:       %s\n", cfg.Model.Name)
	fmt.Printf("Tool server: %s:%d\n\n", cfg.ToolServer.Host, cfg.ToolServer.Port)

	fmt.Println("Credentials:")
	fmt.Printf("  %-20s %s\n", "Catalog URL", setMark(cfg.Catalog.BaseURL))
	fmt.Printf("  %-20s %s\n", "Catalog token", setMark(cfg.Catalog.APIToken))
	fmt.Printf("  %-20s %s\n", "Anthropic key", setMark(cfg.Model.APIKey))

	fmt.Println("\nChannels:")
	slackMark := "(disabled)"
	if cfg.Channels.Slack.Enabled {
		slackMark = setMark(cfg.Channels.Slack.BotToken)
	}
	fmt.Printf("  %-20s %s\n", "Slack", slackMark)
	fmt.Printf("  %-20s ✓\n", "CLI")
	return nil
}

func setMark(value string) string {
	if value != "" {
		return "✓"
	}
	return "(not set)"
}
