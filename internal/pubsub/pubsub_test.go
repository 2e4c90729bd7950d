package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		require.FailNow(t, "timeout waiting for event")
	}
	return Event[T]{}
}

func TestBroker_DeliversToAllSubscribers(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()

	ctx := context.Background()
	chs := []<-chan Event[int]{b.Subscribe(ctx), b.Subscribe(ctx)}
	require.Equal(t, 2, b.SubscriberCount())

	b.Publish(CreatedEvent, 7)
	for _, ch := range chs {
		ev := receive(t, ch)
		require.Equal(t, 7, ev.Payload)
		require.Equal(t, CreatedEvent, ev.Type)
		require.False(t, ev.Timestamp.IsZero())
	}
}

func TestBroker_DropsWhenSubscriberIsFull(t *testing.T) {
	b := NewBrokerWithBuffer[int](1)
	defer b.Close()

	ch := b.Subscribe(context.Background())
	b.Publish(CreatedEvent, 1)
	b.Publish(CreatedEvent, 2)

	require.Equal(t, 1, receive(t, ch).Payload)
	select {
	case ev := <-ch:
		require.Failf(t, "unexpected event", "%v", ev)
	default:
	}
}

func TestBroker_ContextCancelUnsubscribes(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	cancel()

	require.Eventually(t, func() bool { return b.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-ch
	require.False(t, ok)
}

func TestBroker_CloseEndsSubscriptions(t *testing.T) {
	b := NewBroker[string]()
	ch := b.Subscribe(context.Background())
	b.Close()
	b.Close()

	_, ok := <-ch
	require.False(t, ok)

	late := b.Subscribe(context.Background())
	_, ok = <-late
	require.False(t, ok)
	require.NotPanics(t, func() { b.Publish(UpdatedEvent, "ignored") })
}

func TestContinuousListener(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	l := NewContinuousListener(ctx, b)

	b.Publish(UpdatedEvent, "first")
	msg := l.Listen()()
	ev, ok := msg.(Event[string])
	require.True(t, ok)
	require.Equal(t, "first", ev.Payload)

	cancel()
	require.Nil(t, l.Listen()())
}
