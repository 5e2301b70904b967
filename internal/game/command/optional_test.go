package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptional(t *testing.T) {
	v, ok := Some(5).Get()
	assert.True(t, ok)
	assert.Equal(t, 5, v)
	assert.Equal(t, 5, Some(5).OrElse(9))

	var zero Optional[int]
	assert.False(t, zero.IsSet())
	assert.Equal(t, 9, zero.OrElse(9))
	assert.Equal(t, zero, None[int]())
}
