package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOfIsStableAndContentSensitive(t *testing.T) {
	a, err := Of([]byte("Sub Foo()\nEnd Sub"))
	assert.NoError(t, err)
	assert.NotEmpty(t, a)

	again, err := Of([]byte("Sub Foo()\nEnd Sub"))
	assert.NoError(t, err)
	assert.Equal(t, a, again)

	b, err := Of([]byte("Sub Bar()\nEnd Sub"))
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}
