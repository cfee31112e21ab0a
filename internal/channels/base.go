// Package channels provides chat-platform channel implementations.
package channels

import (
	"log/slog"

	"github.com/datasage/datasage/internal/bus"
)

// Base holds common state and helper methods shared by all channels.
type Base struct {
	channelName bus.Channel
	b           *bus.MessageBus
}

// NewBase creates a Base with the given channel name and bus.
func NewBase(name bus.Channel, b *bus.MessageBus) Base {
	return Base{channelName: name, b: b}
}

// HandleMessage builds an InboundMessage and pushes it onto the bus.
// history is the prior conversation rendered as "User:"/"Assistant:" lines;
// empty when the question starts a fresh conversation.
func (b *Base) HandleMessage(
	senderId, chatId, content, history string,
	metadata map[string]any,
) {
	msg := bus.NewInboundMessage(string(b.channelName), senderId, chatId, content)
	msg.SetHistory(history)
	msg.SetMetadata(metadata)

	select {
	case b.b.Inbound <- msg:
	default:
		slog.Warn("inbound queue full, dropping message",
			"channel", b.channelName, "sender", senderId)
	}
}
