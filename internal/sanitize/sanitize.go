// Package sanitize cleans and validates customer messages before they reach a reply provider.
package sanitize

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	DefaultMaxLength = 2000
	Ellipsis         = "..."
)

// unsafePatterns are matched case-insensitively against the cleaned message.
var unsafePatterns = []string{
	"<script",
	"javascript:",
	"onerror=",
}

// ValidationError reports input that the caller must fix. Its message is safe to show to clients.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

type Sanitizer struct {
	MaxLength int
}

func New(maxLength int) *Sanitizer {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Sanitizer{MaxLength: maxLength}
}

// Clean collapses whitespace, rejects unsafe content and truncates to MaxLength runes.
func (s *Sanitizer) Clean(message string) (string, error) {
	cleaned := strings.Join(strings.Fields(message), " ")
	if cleaned == "" {
		return "", &ValidationError{Reason: "Message cannot be empty"}
	}
	if ContainsUnsafe(cleaned) {
		return "", &ValidationError{Reason: "Message contains inappropriate content"}
	}
	return Truncate(cleaned, s.MaxLength), nil
}

// ContainsUnsafe reports whether text matches any entry of the denylist.
func ContainsUnsafe(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range unsafePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Truncate cuts text to max runes and appends Ellipsis when anything was dropped.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + Ellipsis
}
