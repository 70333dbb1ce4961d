package ptr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeref(t *testing.T) {
	assert.Equal(t, 7, Deref(To(7), 10))
	assert.Equal(t, 10, Deref[int](nil, 10))
}

func TestNonZero(t *testing.T) {
	assert.Nil(t, NonZero(""))
	assert.Nil(t, NonZero(0))
	if p := NonZero("desc"); assert.NotNil(t, p) {
		assert.Equal(t, "desc", *p)
	}
}

func TestTo_Copies(t *testing.T) {
	v := "a"
	p := To(v)
	v = "b"
	assert.Equal(t, "a", *p)
}
