package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/datasage/datasage/internal/bus"
	"github.com/datasage/datasage/internal/config"
	"github.com/datasage/datasage/internal/dependency"
	"github.com/datasage/datasage/internal/shared/cmdutils"
)

var askMessage string

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask the assistant about your data catalog",
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askMessage, "message", "m", "", "Ask a single question and exit")
}

var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

func runAsk(_ *cobra.Command, _ []string) error {
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
	defer container.Gateway().Close()

	if askMessage != "" {
		return runSingleQuestion(container)
	}

	return runInteractive(container)
}

// runSingleQuestion answers one question and prints the response.
// The embedded tool server is started first so the engine can reach it.
func runSingleQuestion(container *dependency.Container) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	go container.ToolServer().Start(ctx) //nolint:errcheck

	fmt.Fprintf(os.Stderr, "  ↳ thinking...\n")
	answer, err := container.AssistantLoop().AskDirect(ctx, askMessage)
	if err != nil {
		return err
	}

	cmdutils.PrintResponse(answer)
	return nil
}

// runInteractive starts the REPL loop: reads lines from stdin, sends each to
// the assistant via the bus, and waits for each answer before prompting again.
// The running conversation is replayed as history so follow-ups keep context.
func runInteractive(container *dependency.Container) error {
	fmt.Printf("%s Interactive mode (type 'exit' or Ctrl+C to quit)\n\n", logo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go container.ToolServer().Start(ctx)  //nolint:errcheck
	go container.AssistantLoop().Run(ctx) //nolint:errcheck

	msgBus := container.MessageBus()
	scanner := bufio.NewScanner(os.Stdin)
	var history []string

	for {
		fmt.Print("You: ")

		if !scanner.Scan() {
			fmt.Println("\nGoodbye!")
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if exitCommands[strings.ToLower(line)] {
			fmt.Println("Goodbye!")
			return nil
		}

		msg := bus.NewInboundMessage(string(bus.ChannelCLI), "cli-user", "direct", line)
		msg.SetHistory(strings.Join(history, "\n"))
		msgBus.Inbound <- msg
		history = append(history, "User: "+line)

		select {
		case out := <-msgBus.Outbound:
			cmdutils.PrintResponse(out.Content())
			history = append(history, "Assistant: "+out.Content())
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
