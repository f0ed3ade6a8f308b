package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAcceptable(t *testing.T) {
	base := solidFrame(8, 8, 42)
	same := withChanged(base, 0, 0)
	oneByte := withChanged(base, 1, 1)

	assert.True(t, IsAcceptable(base, nil), "first capture is always accepted")
	assert.False(t, IsAcceptable(same, base))
	assert.True(t, IsAcceptable(oneByte, base))
	assert.True(t, IsAcceptable(solidFrame(4, 4, 42), base), "different size is never a duplicate")
}

func TestIsAcceptable_DoesNotMutate(t *testing.T) {
	a := solidFrame(4, 4, 1)
	b := solidFrame(4, 4, 1)
	before := append([]byte(nil), a.Pix...)

	IsAcceptable(a, b)
	assert.Equal(t, before, a.Pix)
}
