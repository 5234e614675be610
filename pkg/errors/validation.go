package errors

import (
	"strings"
	"unicode"
)

// MaxIDLength bounds position ids and source selectors.
const MaxIDLength = 256

// ValidateNodeID rejects position ids that are empty, longer than
// MaxIDLength bytes or contain control characters.
func ValidateNodeID(id string) error {
	switch {
	case id == "":
		return New(ErrCodeInvalidInput, "position id is required")
	case len(id) > MaxIDLength:
		return New(ErrCodeInvalidInput, "position id longer than %d bytes", MaxIDLength)
	case strings.IndexFunc(id, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidInput, "position id %q contains control characters", id)
	}
	return nil
}

// ValidateSelector checks a scope or period value before it reaches a
// database query. Empty means unscoped. name appears in the message.
func ValidateSelector(name, value string) error {
	if len(value) > MaxIDLength {
		return New(ErrCodeInvalidInput, "%s longer than %d bytes", name, MaxIDLength)
	}
	// "$" would let a value pose as a MongoDB operator.
	if strings.ContainsAny(value, "\x00$") {
		return New(ErrCodeInvalidInput, "%s %q contains invalid characters", name, value)
	}
	return nil
}
