package pool

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/skyrun/internal/core/fault"
)

type item struct {
	id     int
	active bool
}

func newTestPool() *Pool[*item] {
	n := 0
	return New(
		WithFactory(func(string) (*item, error) {
			n++
			return &item{id: n, active: true}, nil
		}),
		WithAcquireHook(func(it *item) { it.active = true }),
		WithReleaseHook(func(it *item) { it.active = false }),
	)
}

func TestPrewarmThenAcquireUntilEmpty(t *testing.T) {
	p := newTestPool()
	require.NoError(t, p.Prewarm("A", 3))
	assert.Equal(t, 3, p.Free("A"))

	seen := map[int]bool{}
	for i := 0; i < 3; i++ {
		it, _, ok := p.Acquire("A")
		require.True(t, ok, "acquire %d", i)
		assert.True(t, it.active)
		seen[it.id] = true
	}
	assert.Len(t, seen, 3)

	_, _, ok := p.Acquire("A")
	assert.False(t, ok, "fourth acquire must come back empty")
	_, _, ok = p.Acquire("B")
	assert.False(t, ok)
}

func TestReleaseIsFIFO(t *testing.T) {
	p := newTestPool()
	require.NoError(t, p.Prewarm("A", 2))

	first, id1, _ := p.Acquire("A")
	second, id2, _ := p.Acquire("A")
	require.NoError(t, p.Release(id2))
	require.NoError(t, p.Release(id1))
	assert.False(t, first.active)

	got, _, ok := p.Acquire("A")
	require.True(t, ok)
	assert.Same(t, second, got, "oldest released instance comes out first")
}

func TestDoubleReleaseAndStaleSlot(t *testing.T) {
	p := newTestPool()
	require.NoError(t, p.Prewarm("A", 1))
	_, id, _ := p.Acquire("A")

	require.NoError(t, p.Release(id))
	err := p.Release(id)
	assert.True(t, errors.Is(err, fault.ErrDoubleRelease))
	assert.Equal(t, 1, p.Free("A"), "double release must not enqueue twice")

	_, err = p.Discard(id)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Free("A"))
	assert.True(t, errors.Is(p.Release(id), fault.ErrStaleSlot))
}

func TestEnrollFreshInstance(t *testing.T) {
	p := newTestPool()
	fresh := &item{id: 99, active: true}
	id := p.Enroll("B", fresh)
	assert.True(t, p.InUse(id))

	require.NoError(t, p.Release(id))
	assert.False(t, fresh.active)

	got, id2, ok := p.Acquire("B")
	require.True(t, ok)
	assert.Same(t, fresh, got)
	assert.Equal(t, id, id2)
	inst, ok := p.Instance(id2)
	require.True(t, ok)
	assert.Same(t, fresh, inst)
	assert.Equal(t, 1, p.Size())
}

func TestPrewarmWithoutFactory(t *testing.T) {
	p := New[*item]()
	err := p.Prewarm("A", 1)
	assert.True(t, errors.Is(err, fault.ErrConfiguration))
}
