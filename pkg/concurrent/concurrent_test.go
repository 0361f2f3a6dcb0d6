package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/skyrun/pkg/sequence"
)

func TestForEachRespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	items := make([]int, 32)
	err := ForEach(context.Background(), sequence.From(items), 3, func(ctx context.Context, _ int) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		inFlight.Add(-1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestForEachCancelsOnError(t *testing.T) {
	boom := errors.New("boom")
	err := ForEach(context.Background(), sequence.From([]int{1, 2, 3}), 1, func(ctx context.Context, v int) error {
		if v == 1 {
			return boom
		}
		return ctx.Err()
	})
	assert.ErrorIs(t, err, boom)
}

func TestParallelMapPreservesOrder(t *testing.T) {
	out, err := ParallelMap(context.Background(), sequence.From([]int{1, 2, 3, 4, 5}), 2, func(_ context.Context, v int) (int, error) {
		return v * v, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 9, 16, 25}, out)

	_, err = ParallelMap(context.Background(), sequence.From([]int{1, 2}), 0, func(_ context.Context, v int) (int, error) {
		return 0, errors.New("nope")
	})
	assert.Error(t, err)
}
