package llm

import (
	"context"
	"fmt"
)

// Unavailable returns a Client whose calls always fail with the given
// reason. Callers that construct it keep the rest of the pipeline intact:
// workers hit their deterministic fallback paths instead of crashing.
func Unavailable(reason string) Client {
	return unavailableClient{reason: reason}
}

type unavailableClient struct {
	reason string
}

func (c unavailableClient) Complete(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("llm unavailable: %s", c.reason)
}

func (c unavailableClient) CompleteStructured(ctx context.Context, req Request) (*Response, error) {
	return nil, fmt.Errorf("llm unavailable: %s", c.reason)
}
