package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"new", New(ErrCodeInvalidContainer, "container must have positive size, got %gx%g", 0.0, 600.0), "INVALID_CONTAINER: container must have positive size, got 0x600"},
		{"wrapped", Wrap(ErrCodeNetwork, errors.New("connection refused"), "query positions"), "NETWORK_ERROR: query positions: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("server selection timeout")
	err := Wrap(ErrCodeNetwork, cause, "ping mongo")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
}

func TestIs(t *testing.T) {
	notFound := New(ErrCodeNotFound, "focus position %q not found", "cto")

	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", notFound, ErrCodeNotFound, true},
		{"other code", notFound, ErrCodeNetwork, false},
		{"outer of chain", Wrap(ErrCodeNetwork, notFound, "fetch"), ErrCodeNetwork, true},
		{"inner of chain", Wrap(ErrCodeNetwork, notFound, "fetch"), ErrCodeNotFound, true},
		{"through fmt wrapping", fmt.Errorf("load chart: %w", notFound), ErrCodeNotFound, true},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil", nil, ErrCodeInvalidInput, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}
}

func TestStdlibIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("toggle: %w", New(ErrCodeSessionNotFound, "session %q not found", "abc"))
	if !errors.Is(err, &Error{Code: ErrCodeSessionNotFound}) {
		t.Error("errors.Is with a code-only target should match")
	}
	if errors.Is(err, &Error{Code: ErrCodeNotFound}) {
		t.Error("errors.Is matched a different code")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"coded", New(ErrCodeCyclicOrTooDeep, "node %q is its own ancestor", "A"), ErrCodeCyclicOrTooDeep},
		{"outermost wins", Wrap(ErrCodeNetwork, New(ErrCodeNotFound, "x"), "y"), ErrCodeNetwork},
		{"fmt wrapped", fmt.Errorf("layout: %w", New(ErrCodeInvalidConfig, "gap")), ErrCodeInvalidConfig},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"coded", New(ErrCodeInvalidInput, "position id is required"), "position id is required"},
		{"cause hidden", Wrap(ErrCodeNetwork, errors.New("dial tcp 10.0.0.3:27017"), "query positions"), "query positions"},
		{"plain", errors.New("plain error"), "plain error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCodeClient(t *testing.T) {
	client := []Code{
		ErrCodeInvalidInput, ErrCodeInvalidConfig, ErrCodeInvalidContainer, ErrCodeInvalidFormat,
		ErrCodeCyclicOrTooDeep, ErrCodeNotFound, ErrCodeSessionNotFound,
	}
	for _, c := range client {
		if !c.Client() {
			t.Errorf("%s.Client() = false", c)
		}
	}
	for _, c := range []Code{ErrCodeNetwork, ErrCodeInternal, ""} {
		if c.Client() {
			t.Errorf("%q.Client() = true", c)
		}
	}
}
