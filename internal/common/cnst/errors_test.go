package cnst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorConstants(t *testing.T) {
	t.Run("messages", func(t *testing.T) {
		assert.Equal(t, "dispatcher is not running", ErrNotRunning.Error())
		assert.Equal(t, "bus is closed", ErrBusClosed.Error())
		assert.Equal(t, "unsupported backend type", ErrUnsupportedBackend.Error())
	})

	t.Run("errors are distinct", func(t *testing.T) {
		assert.NotEqual(t, ErrNotRunning, ErrBusClosed)
		assert.NotEqual(t, ErrBusClosed, ErrUnsupportedBackend)
	})
}
