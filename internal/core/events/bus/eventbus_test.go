package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	n int
}

func (testEvent) Type() string { return "test.event" }

type otherEvent struct{}

func (otherEvent) Type() string { return "test.other" }

type testObserver struct {
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	got := 0
	_, err := On(b, func(e testEvent) error {
		got = e.n
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(testEvent{n: 123}))
	assert.Equal(t, 123, got, "delivery is synchronous")
}

func TestDeliveryFollowsSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		_, err := b.Subscribe("test.event", func(Event) error {
			order = append(order, i)
			return nil
		})
		require.NoError(t, err)
	}
	require.NoError(t, b.Publish(testEvent{}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestUnsubscribeDuringDelivery(t *testing.T) {
	b := New()
	var calls []string
	var second Subscription

	_, _ = b.Subscribe("test.event", func(Event) error {
		calls = append(calls, "first")
		_ = second.Cancel()
		return nil
	})
	second, _ = b.Subscribe("test.event", func(Event) error {
		calls = append(calls, "second")
		return nil
	})

	require.NoError(t, b.Publish(testEvent{}))
	assert.Equal(t, []string{"first"}, calls)
	assert.False(t, second.IsActive())
	assert.Equal(t, 1, b.Subscribers("test.event"))
}

func TestSubscribeDuringDeliverySeesNextEvent(t *testing.T) {
	b := New()
	late := 0
	subscribed := false
	_, _ = b.Subscribe("test.event", func(Event) error {
		if !subscribed {
			subscribed = true
			_, _ = b.Subscribe("test.event", func(Event) error {
				late++
				return nil
			})
		}
		return nil
	})

	require.NoError(t, b.Publish(testEvent{}))
	assert.Equal(t, 0, late)
	require.NoError(t, b.Publish(testEvent{}))
	assert.Equal(t, 1, late)
}

func TestPublishFromHandler(t *testing.T) {
	b := New()
	var seen []string
	_, _ = On(b, func(testEvent) error {
		seen = append(seen, "test")
		return b.Publish(otherEvent{})
	})
	_, _ = On(b, func(otherEvent) error {
		seen = append(seen, "other")
		return nil
	})
	require.NoError(t, b.Publish(testEvent{}))
	assert.Equal(t, []string{"test", "other"}, seen)
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	e1 := errors.New("one")
	e2 := errors.New("two")
	_, _ = b.Subscribe("test.event", func(Event) error { return e1 })
	_, _ = b.Subscribe("test.event", func(Event) error { return nil })
	_, _ = b.Subscribe("test.event", func(Event) error { return e2 })

	err := b.Publish(testEvent{})
	require.Error(t, err)
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)

	err = b.PublishBatch(testEvent{}, otherEvent{}, testEvent{})
	assert.ErrorIs(t, err, e1)
}

func TestSubscribeValidation(t *testing.T) {
	b := New()
	_, err := b.Subscribe("", func(Event) error { return nil })
	assert.Error(t, err)
	_, err = b.Subscribe("x", nil)
	assert.Error(t, err)
	assert.Error(t, b.Publish(nil))
	assert.NoError(t, b.Unsubscribe(nil))
}

func TestGroupCancelAll(t *testing.T) {
	b := New()
	var g Group
	count := 0
	require.NoError(t, g.Add(On(b, func(testEvent) error { count++; return nil })))
	require.NoError(t, g.Add(On(b, func(otherEvent) error { count++; return nil })))
	assert.Equal(t, 2, g.Len())

	g.CancelAll()
	assert.Equal(t, 0, g.Len())
	_ = b.PublishBatch(testEvent{}, otherEvent{})
	assert.Equal(t, 0, count)
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	// without observer, metrics should remain zero despite activity
	_, _ = b.Subscribe("test.event", func(Event) error { return nil })
	_ = b.Publish(testEvent{})
	m := b.GetMetrics()
	assert.Zero(t, m.Published)
	assert.Zero(t, m.DeliveredHandlers)

	// now add observer and expect metrics to update
	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish(testEvent{})
	m2 := b.GetMetrics()
	assert.Equal(t, uint64(1), m2.Published)
	assert.Equal(t, uint64(1), m2.DeliveredHandlers)
	assert.Equal(t, uint64(1), m2.SubscribersActive)
	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, 1, obs.deliveredCount)

	b.RemoveObserver(obs)
	_ = b.Publish(testEvent{})
	assert.Equal(t, 1, obs.publishCount)
}
