package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/datasage/datasage/internal/bus"
	"github.com/datasage/datasage/internal/schema"
)

type stubAnswerer struct {
	answer string
	err    error

	gotQuestion string
	gotHistory  string
}

func (s *stubAnswerer) Answer(_ context.Context, question, history string) (schema.Answer, error) {
	s.gotQuestion = question
	s.gotHistory = history
	if s.err != nil {
		return schema.Answer{}, s.err
	}
	return schema.NewAnswer(question, s.answer), nil
}

func receiveOutbound(t *testing.T, b *bus.MessageBus) bus.OutboundMessage {
	t.Helper()
	select {
	case msg := <-b.Outbound:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no outbound message")
		return bus.OutboundMessage{}
	}
}

func TestLoop_AnswersInbound(t *testing.T) {
	b := bus.NewMessageBus(10)
	st := &stubAnswerer{answer: "there are 3 data sources"}
	loop := NewLoop(b, st)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx) //nolint:errcheck

	in := bus.NewInboundMessage("slack", "U1", "C1", "how many data sources?")
	in.SetHistory("User: hi\nAssistant: hello")
	in.SetMetadata(map[string]any{"slack": map[string]any{"thread_ts": "1.2"}})
	b.Inbound <- in

	out := receiveOutbound(t, b)
	if out.Channel() != "slack" || out.ChatId() != "C1" {
		t.Errorf("routing = %q/%q", out.Channel(), out.ChatId())
	}
	if out.Content() != "there are 3 data sources" {
		t.Errorf("content = %q", out.Content())
	}
	if st.gotQuestion != "how many data sources?" {
		t.Errorf("question = %q", st.gotQuestion)
	}
	if st.gotHistory != "User: hi\nAssistant: hello" {
		t.Errorf("history = %q", st.gotHistory)
	}
	// Thread metadata must travel through so replies land in the thread.
	slack, _ := out.Metadata()["slack"].(map[string]any)
	if slack["thread_ts"] != "1.2" {
		t.Errorf("metadata thread_ts = %v", slack["thread_ts"])
	}
}

func TestLoop_EngineFailureSendsApology(t *testing.T) {
	b := bus.NewMessageBus(10)
	loop := NewLoop(b, &stubAnswerer{err: errors.New("model unavailable")})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx) //nolint:errcheck

	b.Inbound <- bus.NewInboundMessage("slack", "U1", "C1", "boom")

	out := receiveOutbound(t, b)
	if out.Content() != fallbackAnswer {
		t.Errorf("content = %q, want fallback apology", out.Content())
	}
}

func TestLoop_AskDirect(t *testing.T) {
	loop := NewLoop(bus.NewMessageBus(1), &stubAnswerer{answer: "42 tables"})

	got, err := loop.AskDirect(context.Background(), "count tables")
	if err != nil {
		t.Fatalf("AskDirect: %v", err)
	}
	if got != "42 tables" {
		t.Errorf("answer = %q", got)
	}

	loop = NewLoop(bus.NewMessageBus(1), &stubAnswerer{err: errors.New("nope")})
	if _, err := loop.AskDirect(context.Background(), "count tables"); err == nil {
		t.Fatal("expected error")
	}
}
