package schema

import "context"

// Answer is the result of one question answered by the engine.
//
// Sources is kept for wire compatibility with clients that expect a
// retrieval source list; this engine answers from live catalog tools only,
// so it is always empty.
type Answer struct {
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
	Question string   `json:"question"`
}

// NewAnswer builds an Answer with a non-nil, empty source list.
func NewAnswer(question, text string) Answer {
	return Answer{
		Answer:   text,
		Sources:  []string{},
		Question: question,
	}
}

// Answerer is the interface the chat channels and CLI talk to.
// The engine package provides the concrete implementation.
type Answerer interface {
	// Answer generates a response to question. history is an optional
	// plain-text transcript of prior turns ("" when none).
	Answer(ctx context.Context, question, history string) (Answer, error)
}
