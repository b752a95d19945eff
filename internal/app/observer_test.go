package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBus_PublishInOrder(t *testing.T) {
	var bus eventBus
	var calls []string

	bus.subscribe(func(_ context.Context, e Event) { calls = append(calls, "first:"+string(e.Kind)) })
	bus.subscribe(func(_ context.Context, e Event) { calls = append(calls, "second:"+string(e.Kind)) })

	bus.publish(context.Background(), Event{Kind: EventFilterChanged})

	assert.Equal(t, []string{"first:filter_changed", "second:filter_changed"}, calls)
}

func TestEventBus_StampsTime(t *testing.T) {
	var bus eventBus
	var got Event

	bus.subscribe(func(_ context.Context, e Event) { got = e })
	bus.publish(context.Background(), Event{Kind: EventSessionCleared})

	assert.False(t, got.At.IsZero())
}

func TestEventBus_Unsubscribe(t *testing.T) {
	var bus eventBus
	count := 0

	unsubscribe := bus.subscribe(func(context.Context, Event) { count++ })
	bus.publish(context.Background(), Event{})

	unsubscribe()
	unsubscribe()
	bus.publish(context.Background(), Event{})

	assert.Equal(t, 1, count)
}

func TestEventBus_UnsubscribeDuringPublish(t *testing.T) {
	var bus eventBus
	count := 0

	var unsubscribe func()
	unsubscribe = bus.subscribe(func(context.Context, Event) {
		count++
		unsubscribe()
	})
	bus.subscribe(func(context.Context, Event) { count++ })

	bus.publish(context.Background(), Event{})
	bus.publish(context.Background(), Event{})

	assert.Equal(t, 3, count)
}
