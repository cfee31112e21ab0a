// Package bus defines the message types that flow between channels and the assistant.
package bus

import (
	"time"

	"github.com/datasage/datasage/internal/shared/stringutils"
)

// InboundMessage is a question received from a chat channel.
type InboundMessage struct {
	channel   string         // "slack", "cli", "system"
	senderId  string         // user identifier within the channel
	chatId    string         // chat / channel / DM identifier
	content   string         // message text
	history   string         // prior conversation rendered as "User:"/"Assistant:" lines
	timestamp time.Time      // when the message was received
	metadata  map[string]any // channel-specific extra data (thread_ts, message ts, …)
}

// NewInboundMessage creates an InboundMessage with Timestamp set to now.
// Use SetHistory and SetMetadata to attach optional fields.
func NewInboundMessage(channel, senderId, chatId, content string) InboundMessage {
	return InboundMessage{
		channel:   channel,
		senderId:  senderId,
		chatId:    chatId,
		content:   content,
		timestamp: time.Now(),
	}
}

func (m InboundMessage) ChatId() string                 { return m.chatId }
func (m InboundMessage) SenderId() string               { return m.senderId }
func (m InboundMessage) Content() string                { return m.content }
func (m InboundMessage) Channel() string                { return m.channel }
func (m InboundMessage) History() string                { return m.history }
func (m InboundMessage) Timestamp() time.Time           { return m.timestamp }
func (m InboundMessage) Metadata() map[string]any       { return m.metadata }
func (m *InboundMessage) SetHistory(history string)     { m.history = history }
func (m *InboundMessage) SetMetadata(md map[string]any) { m.metadata = md }

// SessionKey returns the unique key used to look up the conversation session.
// Format: "channel:chat_id".
func (m InboundMessage) SessionKey() string {
	return m.channel + ":" + m.chatId
}

// Preview returns a short snippet of the message content for logging.
func (m InboundMessage) Preview() string {
	return stringutils.Truncate(m.content, 80)
}
