// Package llm defines the reasoning engine contract and the decorators
// shared by every vendor adapter.
package llm

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Engine sends one text prompt to a language model and returns its raw
// reply. Implementations do not interpret the reply.
type Engine interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, prompt string) (string, error)

// Invoke calls f.
func (f EngineFunc) Invoke(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

var (
	// ErrEngineUnavailable covers network, authentication and server failures.
	ErrEngineUnavailable = errors.New("reasoning engine unavailable")
	// ErrEngineTimeout is returned when a call exceeds its bounded wait.
	ErrEngineTimeout = errors.New("reasoning engine timeout")
)

// EngineError is a classified engine failure. errors.Is matches both the
// class sentinel and the underlying cause.
type EngineError struct {
	Kind     error
	Provider string
	Err      error
}

func (e *EngineError) Error() string {
	msg := e.Kind.Error()
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EngineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Unavailable wraps err as ErrEngineUnavailable.
func Unavailable(provider string, err error) error {
	return &EngineError{Kind: ErrEngineUnavailable, Provider: provider, Err: err}
}

// Timeout wraps err as ErrEngineTimeout.
func Timeout(provider string, err error) error {
	return &EngineError{Kind: ErrEngineTimeout, Provider: provider, Err: err}
}

// Classify maps an arbitrary adapter error onto the engine error classes.
// Errors that are already classified are returned unchanged.
func Classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return err
	}
	if isTimeout(err) {
		return Timeout(provider, err)
	}
	return Unavailable(provider, err)
}

// IsRetryable reports whether err belongs to one of the engine error classes.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrEngineTimeout) || errors.Is(err, ErrEngineUnavailable)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "client.timeout") || strings.Contains(msg, "tls handshake timeout")
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEngineTimeout):
		return "timeout"
	case errors.Is(err, ErrEngineUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
