package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodes(t *testing.T) {
	t.Run("new error carries code and message", func(t *testing.T) {
		err := New(CodeNotFound, "certificate not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.Equal(t, "certificate not found", err.Error())
		assert.Equal(t, "certificate not found", MessageOf(err))
	})

	t.Run("wrap keeps the cause reachable", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(cause, CodeInternal, "failed to load certificate")
		assert.True(t, errors.Is(err, cause))
		assert.Equal(t, "failed to load certificate: connection reset", err.Error())
	})

	t.Run("wrap nil returns nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
	})

	t.Run("outermost code wins", func(t *testing.T) {
		inner := New(CodeNotFound, "missing")
		outer := Wrap(inner, CodeConflict, "already approved")
		assert.Equal(t, CodeConflict, CodeOf(outer))
	})

	t.Run("plain errors report internal", func(t *testing.T) {
		err := fmt.Errorf("boom")
		assert.Equal(t, CodeInternal, CodeOf(err))
		assert.Empty(t, MessageOf(err))
	})
}
