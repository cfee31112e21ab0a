package channels

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/datasage/datasage/internal/bus"
	"github.com/datasage/datasage/internal/shared/cmdutils"
)

var cliExitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

// CLIChannel wires the terminal (stdin/stdout) into the channel manager so
// questions typed at the console reach the assistant and answers are printed
// back. The running conversation is replayed as history with each question,
// mirroring how Slack threads carry context.
type CLIChannel struct {
	Base
	replies chan bus.OutboundMessage
	history []string
}

// NewCLIChannel creates a CLIChannel.
func NewCLIChannel(b *bus.MessageBus) *CLIChannel {
	return &CLIChannel{
		Base:    NewBase(bus.ChannelCLI, b),
		replies: make(chan bus.OutboundMessage, 1),
	}
}

func (c *CLIChannel) Name() string { return string(bus.ChannelCLI) }

// Start runs the stdin REPL: reads lines, dispatches them to the assistant,
// and prints each answer. Blocks until ctx is cancelled or stdin is closed.
func (c *CLIChannel) Start(ctx context.Context) error {
	fmt.Printf("CLI channel ready. Type 'exit' or press Ctrl+C to quit.\n\n")

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("You: ")

		scanDone := make(chan bool, 1)
		go func() {
			scanDone <- scanner.Scan()
		}()

		select {
		case ok := <-scanDone:
			if !ok {
				fmt.Println("\nGoodbye!")
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if cliExitCommands[strings.ToLower(line)] {
			fmt.Println("Goodbye!")
			return nil
		}

		c.HandleMessage("cli-user", "direct", line, strings.Join(c.history, "\n"), nil)
		c.history = append(c.history, "User: "+line)
		c.waitForReply(ctx)
	}
}

// waitForReply blocks until the assistant's answer arrives, then prints it
// and appends it to the running history.
func (c *CLIChannel) waitForReply(ctx context.Context) {
	select {
	case msg := <-c.replies:
		cmdutils.PrintResponse(msg.Content())
		c.history = append(c.history, "Assistant: "+msg.Content())
	case <-ctx.Done():
	}
}

// Send delivers an assistant answer to the CLI. The Start loop drains the
// replies channel and prints to stdout.
func (c *CLIChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	c.replies <- msg

	return nil
}
