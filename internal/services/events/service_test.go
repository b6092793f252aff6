package events

import (
	"testing"
	"time"

	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	t.Run("delivers to all subscribers", func(t *testing.T) {
		svc := NewService()
		defer svc.Close()

		ch1, cancel1 := svc.Subscribe()
		defer cancel1()
		ch2, cancel2 := svc.Subscribe()
		defer cancel2()

		svc.Publish(interfaces.Event{Type: "upload_progress"})

		for _, ch := range []<-chan interfaces.Event{ch1, ch2} {
			select {
			case ev := <-ch:
				assert.Equal(t, "upload_progress", ev.Type)
			case <-time.After(time.Second):
				t.Fatal("event not delivered")
			}
		}
	})

	t.Run("cancel stops delivery and closes channel", func(t *testing.T) {
		svc := NewService()
		defer svc.Close()

		ch, cancel := svc.Subscribe()
		cancel()

		svc.Publish(interfaces.Event{Type: "upload_state"})

		_, open := <-ch
		assert.False(t, open)
	})

	t.Run("full subscriber drops events without blocking", func(t *testing.T) {
		svc := NewService()
		defer svc.Close()

		_, cancel := svc.Subscribe()
		defer cancel()

		done := make(chan struct{})
		go func() {
			for i := 0; i < subscriberBuffer*2; i++ {
				svc.Publish(interfaces.Event{Type: "flood"})
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("publisher blocked on slow subscriber")
		}
	})

	t.Run("double cancel is safe", func(t *testing.T) {
		svc := NewService()
		defer svc.Close()

		_, cancel := svc.Subscribe()
		cancel()
		require.NotPanics(t, func() { cancel() })
	})
}
