package entities

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderError(t *testing.T) {
	err := &ProviderError{Provider: "openai", StatusCode: 401, Body: strings.Repeat("x", 600)}

	assert.True(t, errors.Is(err, ErrProviderStatus))
	assert.Contains(t, err.Error(), "provider openai returned status 401")
	assert.Equal(t, 500, strings.Count(err.Error(), "x"))

	var target *ProviderError
	wrapped := fmt.Errorf("calling provider: %w", err)
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, 401, target.StatusCode)
}

func TestOutlineError(t *testing.T) {
	t.Run("missing slides", func(t *testing.T) {
		raw := strings.Repeat("z", 700)
		err := &OutlineError{Err: ErrMissingSlides, Raw: raw}

		assert.True(t, errors.Is(err, ErrMissingSlides))
		assert.True(t, strings.HasPrefix(err.Error(), "LLM did not return a 'slides' key in the JSON. Response received: "))
		assert.True(t, strings.HasSuffix(err.Error(), raw[:500]))
		assert.Equal(t, 500, strings.Count(err.Error(), "z"))
	})

	t.Run("invalid json", func(t *testing.T) {
		err := &OutlineError{Err: ErrInvalidOutline, Raw: "not json"}

		assert.True(t, errors.Is(err, ErrInvalidOutline))
		assert.Contains(t, err.Error(), "not json")
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "héé", Truncate("hééllo", 3))
}
