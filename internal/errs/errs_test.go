package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestE(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, E(IO, "open", nil))
	})

	t.Run("kind survives wrapping", func(t *testing.T) {
		err := E(IO, "open foo.log", ErrEmptyInput)
		wrapped := fmt.Errorf("switch file: %w", err)

		assert.Equal(t, IO, KindOf(wrapped))
		assert.True(t, Is(wrapped, IO))
		assert.False(t, Is(wrapped, InvalidPattern))
		assert.True(t, errors.Is(wrapped, ErrEmptyInput))
		assert.Equal(t, "switch file: open foo.log: empty input", wrapped.Error())
	})

	t.Run("unclassified", func(t *testing.T) {
		assert.Equal(t, Other, KindOf(errors.New("boom")))
		assert.False(t, Is(nil, Other))
	})
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "resource exhausted", ResourceExhausted.String())
	assert.Equal(t, "invalid pattern", InvalidPattern.String())
	assert.Equal(t, "other", Kind(99).String())
}
