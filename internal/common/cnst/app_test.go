package cnst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppConstants(t *testing.T) {
	assert.Equal(t, "huddle", AppName)
	assert.Equal(t, "huddle", CommandName)
}
