// Package llm wraps the completion providers the interview engine talks to.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable covers timeouts, network failures, provider errors and a disabled client
	ErrUnavailable = errors.New("llm unavailable")
	// ErrMalformed is returned when a reply is empty or cannot be read as a verdict
	ErrMalformed = errors.New("llm reply malformed")
)

// Request is a single-prompt completion request
type Request struct {
	// Operation labels the call for metrics and traces ("evaluate", "classify")
	Operation   string
	Model       string
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int32
}

// Client returns free-text completions for a prompt
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Disabled is used when no provider is configured; every call is unavailable
type Disabled struct{}

func (Disabled) Complete(context.Context, Request) (string, error) {
	return "", ErrUnavailable
}
