package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/datasage/datasage/internal/config"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize configuration",
	RunE:  runOnboard,
}

func runOnboard(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config already exists at %s\n", cfgPath)
		fmt.Printf("Press Enter to refresh (keep existing values) or Ctrl+C to cancel: ")
		fmt.Scanln()
		existing, loadErr := config.Load(cfgPath)
		if loadErr != nil {
			def := config.DefaultConfig()
			existing = &def
		}
		if err := config.Save(existing, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
	} else {
		cfg := config.DefaultConfig()
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	fmt.Printf("\n%s datasage is ready!\n\n", logo)
	fmt.Println("Next steps:")
	fmt.Printf("  1. Set the catalog connection in %s\n", cfgPath)
	fmt.Println("     (or export CATALOG_BASE_URL and CATALOG_API_TOKEN)")
	fmt.Println("  2. Add your Anthropic API key (or export ANTHROPIC_API_KEY)")
	fmt.Printf("  3. Ask something: datasage ask -m \"What data sources do we have?\"\n")
	return nil
}
