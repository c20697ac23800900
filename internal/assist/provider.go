// Package assist wraps the optional text-completion service that can
// propose transactions before the heuristic pass runs.
package assist

import (
	"context"
	"errors"
)

var (
	// ErrContextLengthExceeded means the prompt was too long for the model.
	// Callers retry once with a much shorter excerpt.
	ErrContextLengthExceeded = errors.New("completion: context length exceeded")
	// ErrDisabled is returned by the Disabled provider.
	ErrDisabled = errors.New("completion: provider disabled")
	// ErrNoJSONArray means the response carried no JSON array at all.
	ErrNoJSONArray = errors.New("completion: response contains no JSON array")
)

// Provider produces a completion for a prompt. Implementations report an
// over-long prompt by wrapping ErrContextLengthExceeded.
type Provider interface {
	Respond(ctx context.Context, prompt string) (string, error)
	// Available reports whether calls can succeed at all. It is resolved
	// once at construction.
	Available() bool
}

// Disabled is the provider used when no completion service is configured.
type Disabled struct{}

func (Disabled) Respond(context.Context, string) (string, error) { return "", ErrDisabled }

func (Disabled) Available() bool { return false }

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, prompt string) (string, error)

func (f ProviderFunc) Respond(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func (f ProviderFunc) Available() bool { return f != nil }
