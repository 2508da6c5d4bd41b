package service

import (
	"fmt"
	"html"
	"strings"

	"anoa.com/confessionwall/pkg/apperror"
	"github.com/microcosm-cc/bluemonday"
)

const (
	MinWords = 1
	MaxWords = 200
)

// denyList rejects obvious promotional content. First match wins.
var denyList = []string{"spam", "advertisement", "promotion", "buy now", "click here"}

// ContentValidator decides whether submitted text is acceptable and
// produces its normalized, markup-free form.
type ContentValidator struct {
	sanitizer *bluemonday.Policy
}

func NewContentValidator() *ContentValidator {
	return &ContentValidator{
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Validate trims the raw text, enforces the word-count window and the
// denylist, and returns the sanitized plain-text form. The returned error
// wraps apperror.ErrInvalidInput with a user-visible reason.
func (v *ContentValidator) Validate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		return "", reject("content cannot be empty")
	}

	wordCount := len(strings.Fields(trimmed))
	if wordCount < MinWords {
		// Unreachable after the empty check, kept as an explicit floor
		// in case the threshold ever moves.
		return "", reject(fmt.Sprintf("minimum %d word required", MinWords))
	}
	if wordCount > MaxWords {
		return "", reject(fmt.Sprintf("maximum %d words allowed", MaxWords))
	}

	lower := strings.ToLower(trimmed)
	for _, word := range denyList {
		if strings.Contains(lower, word) {
			return "", reject("content appears to be spam")
		}
	}

	// StrictPolicy strips all tags and attributes but escapes entities;
	// unescape so plain text like "a < b" survives the round trip.
	sanitized := html.UnescapeString(v.sanitizer.Sanitize(trimmed))

	return sanitized, nil
}

func reject(reason string) error {
	return fmt.Errorf("%w: %s", apperror.ErrInvalidInput, reason)
}
