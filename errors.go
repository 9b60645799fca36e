package prettify

import (
	"errors"
	"fmt"
)

// ErrorKind classifies render failures.
type ErrorKind int

// Error kinds.
const (
	RenderFailed    ErrorKind = iota // Input is malformed for a structurally strict format
	CommandNotFound                  // External command missing or failed to spawn
	NetworkError                     // Remote rendering service unreachable or failed
	Timeout                          // Reserved for bounded waits
)

func (k ErrorKind) String() string {
	switch k {
	case CommandNotFound:
		return "command not found"
	case NetworkError:
		return "network error"
	case Timeout:
		return "timeout"
	default:
		return "render failed"
	}
}

// Sentinel errors matched by RenderError.Is.
var (
	ErrRenderFailed    = errors.New("render failed")
	ErrCommandNotFound = errors.New("command not found")
	ErrNetwork         = errors.New("network error")
	ErrTimeout         = errors.New("timeout")
)

// ErrUnknownFormat is returned when no renderer is registered for a format id.
var ErrUnknownFormat = errors.New("unknown format")

// RenderError is the typed error returned by renderers and diagram backends.
type RenderError struct {
	Kind   ErrorKind
	Format string // Format id or backend name
	Err    error
}

// Errorf builds a RenderError with a formatted cause.
func Errorf(kind ErrorKind, format, msg string, args ...any) *RenderError {
	return &RenderError{Kind: kind, Format: format, Err: fmt.Errorf(msg, args...)}
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Format, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Format, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error for the error's kind.
func (e *RenderError) Is(target error) bool {
	switch target {
	case ErrRenderFailed:
		return e.Kind == RenderFailed
	case ErrCommandNotFound:
		return e.Kind == CommandNotFound
	case ErrNetwork:
		return e.Kind == NetworkError
	case ErrTimeout:
		return e.Kind == Timeout
	}
	return false
}
