package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlabInsertGetRemove(t *testing.T) {
	s := NewSlab[string](2)
	a := s.Insert("a")
	b := s.Insert("b")
	assert.Equal(t, 2, s.Len())

	v, ok := s.Get(a)
	require.True(t, ok)
	assert.Equal(t, "a", v)

	removed, ok := s.Remove(a)
	require.True(t, ok)
	assert.Equal(t, "a", removed)
	assert.False(t, s.Valid(a))
	_, ok = s.Remove(a)
	assert.False(t, ok)

	c := s.Insert("c")
	assert.Equal(t, a.Index, c.Index, "freed index is reused")
	assert.NotEqual(t, a.Generation, c.Generation)
	_, ok = s.Get(a)
	assert.False(t, ok, "stale ref must not resolve to the new value")

	p, ok := s.Ptr(b)
	require.True(t, ok)
	*p = "bb"
	v, _ = s.Get(b)
	assert.Equal(t, "bb", v)
}

func TestSlabUnknownRef(t *testing.T) {
	s := NewSlab[int](0)
	assert.False(t, s.Valid(Ref{Index: 7}))
}
