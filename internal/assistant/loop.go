// Package assistant runs the core answering loop.
//
// It reads InboundMessages from the bus, asks the answer engine for a
// response, and publishes OutboundMessages for the channel manager to route.
// Each inbound message is handled in its own goroutine.
package assistant

import (
	"context"
	"log/slog"
	"time"

	"github.com/datasage/datasage/internal/bus"
	"github.com/datasage/datasage/internal/schema"
)

// fallbackAnswer is sent when the engine fails so the user is never left
// without a reply.
const fallbackAnswer = "Sorry, I encountered an error while processing your request."

// Loop connects the message bus to the answer engine.
type Loop struct {
	b        *bus.MessageBus
	answerer schema.Answerer
}

func NewLoop(b *bus.MessageBus, answerer schema.Answerer) *Loop {
	return &Loop{b: b, answerer: answerer}
}

// Run reads from the inbound bus and processes each message in a goroutine.
// Blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	slog.Info("assistant loop started")

	for {
		select {
		case msg := <-l.b.Inbound:
			go l.handleMessage(ctx, msg)
		case <-ctx.Done():
			slog.Info("assistant loop stopping")
			return ctx.Err()
		}
	}
}

func (l *Loop) handleMessage(ctx context.Context, msg bus.InboundMessage) {
	slog.Info("question received",
		"channel", msg.Channel(),
		"session", msg.SessionKey(),
		"preview", msg.Preview())

	start := time.Now()
	content := l.answer(ctx, msg)

	slog.Info("answer ready",
		"channel", msg.Channel(),
		"session", msg.SessionKey(),
		"elapsed", time.Since(start).Round(time.Millisecond))

	out := bus.NewOutboundMessage(msg.Channel(), msg.ChatId(), content)
	out.SetMetadata(msg.Metadata())

	select {
	case l.b.Outbound <- out:
	case <-ctx.Done():
	}
}

// answer invokes the engine and substitutes an apology when it fails.
func (l *Loop) answer(ctx context.Context, msg bus.InboundMessage) string {
	ans, err := l.answerer.Answer(ctx, msg.Content(), msg.History())
	if err != nil {
		slog.Error("answer engine failed", "session", msg.SessionKey(), "err", err)
		return fallbackAnswer
	}
	return ans.Answer
}

// AskDirect answers a single question outside the bus (one-shot CLI usage).
func (l *Loop) AskDirect(ctx context.Context, question string) (string, error) {
	ans, err := l.answerer.Answer(ctx, question, "")
	if err != nil {
		return "", err
	}
	return ans.Answer, nil
}
