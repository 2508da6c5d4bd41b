package service

import (
	"strings"
	"testing"

	"anoa.com/confessionwall/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsPlainContent(t *testing.T) {
	v := NewContentValidator()

	normalized, err := v.Validate("  this is fine  ")
	require.NoError(t, err)
	assert.Equal(t, "this is fine", normalized)
}

func TestValidateStripsMarkup(t *testing.T) {
	v := NewContentValidator()

	normalized, err := v.Validate(`hello <script>alert(1)</script><b>world</b>`)
	require.NoError(t, err)
	assert.NotContains(t, normalized, "<")
	assert.Contains(t, normalized, "hello")
	assert.Contains(t, normalized, "world")
}

func TestValidateRejectsEmpty(t *testing.T) {
	v := NewContentValidator()

	for _, raw := range []string{"", "   ", "\n\t  "} {
		_, err := v.Validate(raw)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		assert.Contains(t, err.Error(), "empty")
	}
}

func TestValidateRejectsTooManyWords(t *testing.T) {
	v := NewContentValidator()

	long := strings.Repeat("word ", MaxWords+1)
	_, err := v.Validate(long)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Contains(t, err.Error(), "maximum 200 words")
}

func TestValidateAcceptsExactlyMaxWords(t *testing.T) {
	v := NewContentValidator()

	boundary := strings.TrimSpace(strings.Repeat("word ", MaxWords))
	_, err := v.Validate(boundary)
	assert.NoError(t, err)
}

func TestValidateRejectsDenylistedContent(t *testing.T) {
	v := NewContentValidator()

	cases := []string{
		"this is pure spam honestly",
		"BUY NOW while stocks last",
		"an Advertisement for my store",
		"just click here for riches",
	}
	for _, raw := range cases {
		_, err := v.Validate(raw)
		require.Error(t, err, "content %q should be rejected", raw)
		assert.Contains(t, err.Error(), "appears to be spam")
	}
}
