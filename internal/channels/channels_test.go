package channels

import (
	"context"
	"testing"
	"time"

	"github.com/datasage/datasage/internal/bus"
	"github.com/datasage/datasage/internal/config"
	"github.com/datasage/datasage/internal/schema"
)

func TestBase_HandleMessage(t *testing.T) {
	b := bus.NewMessageBus(10)
	base := NewBase(bus.ChannelSlack, b)

	base.HandleMessage("U123", "C456", "list the tables", "User: hi\nAssistant: hello", map[string]any{
		"slack": map[string]any{"thread_ts": "171.001"},
	})

	if got := b.InboundSize(); got != 1 {
		t.Fatalf("inbound size = %d, want 1", got)
	}
	msg := <-b.Inbound
	if msg.Channel() != "slack" {
		t.Errorf("channel = %q, want slack", msg.Channel())
	}
	if msg.SenderId() != "U123" || msg.ChatId() != "C456" {
		t.Errorf("sender/chat = %q/%q", msg.SenderId(), msg.ChatId())
	}
	if msg.Content() != "list the tables" {
		t.Errorf("content = %q", msg.Content())
	}
	if msg.History() != "User: hi\nAssistant: hello" {
		t.Errorf("history = %q", msg.History())
	}
	slack, _ := msg.Metadata()["slack"].(map[string]any)
	if slack["thread_ts"] != "171.001" {
		t.Errorf("metadata thread_ts = %v", slack["thread_ts"])
	}
}

func TestBase_HandleMessage_FullQueueDoesNotBlock(t *testing.T) {
	b := bus.NewMessageBus(1)
	base := NewBase(bus.ChannelCLI, b)

	done := make(chan struct{})
	go func() {
		base.HandleMessage("u", "c", "first", "", nil)
		base.HandleMessage("u", "c", "second", "", nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("HandleMessage blocked on a full queue")
	}
	if got := b.InboundSize(); got != 1 {
		t.Fatalf("inbound size = %d, want 1 (overflow dropped)", got)
	}
}

type recordingChannel struct {
	name string
	sent chan bus.OutboundMessage
}

func (r *recordingChannel) Name() string { return r.name }

func (r *recordingChannel) Start(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (r *recordingChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	r.sent <- msg
	return nil
}

func TestManager_DispatchOutbound(t *testing.T) {
	b := bus.NewMessageBus(10)
	rec := &recordingChannel{name: "slack", sent: make(chan bus.OutboundMessage, 1)}
	m := &Manager{channels: map[string]schema.Channel{"slack": rec}, b: b}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.dispatchOutbound(ctx)

	b.Outbound <- bus.NewOutboundMessage("slack", "C456", "here are your tables")
	// A message for an unregistered channel is dropped without crashing.
	b.Outbound <- bus.NewOutboundMessage("telegram", "x", "nope")

	select {
	case msg := <-rec.sent:
		if msg.ChatId() != "C456" || msg.Content() != "here are your tables" {
			t.Errorf("unexpected outbound: %q / %q", msg.ChatId(), msg.Content())
		}
	case <-time.After(time.Second):
		t.Fatal("outbound message was not dispatched")
	}
}

func TestManager_EnabledChannels(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Channels.Slack.Enabled = true

	m := NewManager(&cfg, bus.NewMessageBus(10))

	names := m.EnabledChannels()
	found := map[string]bool{}
	for _, n := range names {
		found[n] = true
	}
	if !found["cli"] || !found["slack"] {
		t.Errorf("enabled channels = %v, want cli and slack", names)
	}
}

func TestSlackChannel_StripMention(t *testing.T) {
	s := &SlackChannel{botUserID: "U999"}

	if got := s.stripMention("<@U999> which schemas exist?"); got != "which schemas exist?" {
		t.Errorf("stripMention = %q", got)
	}
	if got := s.stripMention("no mention here"); got != "no mention here" {
		t.Errorf("stripMention = %q", got)
	}

	// Without a resolved bot ID the text passes through untouched.
	s = &SlackChannel{}
	if got := s.stripMention("<@U999> hi"); got != "<@U999> hi" {
		t.Errorf("stripMention = %q", got)
	}
}
