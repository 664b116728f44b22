// Package llm defines the language-model collaborator boundary. The rest of
// the system depends only on the Client interface; production wiring uses the
// Gemini-backed implementation, tests substitute deterministic fakes.
package llm

import (
	"context"
	"time"
)

// Request describes one structured completion call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Model        string
	Temperature  float32
	MaxTokens    int32
}

// Response carries the completion text plus accounting for chain totals.
type Response struct {
	Text    string
	Tokens  int
	Latency time.Duration
}

// Client is the minimal interface the reasoning loop and workers use to call
// a language model. Implementations must return structured (JSON) text for
// CompleteStructured.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteStructured(ctx context.Context, req Request) (*Response, error)
}
