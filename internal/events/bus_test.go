package events

import "testing"

func TestBusFanOut(t *testing.T) {
	bus := NewBus()

	ch1, cancel1 := bus.Subscribe()
	defer cancel1()
	ch2, cancel2 := bus.Subscribe()
	defer cancel2()

	bus.Publish(Event{RunID: "run-1", Type: TypeRunStarted})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.RunID != "run-1" || ev.Type != TypeRunStarted {
				t.Errorf("subscriber %d: unexpected event %+v", i, ev)
			}
			if ev.Time.IsZero() {
				t.Errorf("subscriber %d: event not timestamped", i)
			}
		default:
			t.Errorf("subscriber %d received nothing", i)
		}
	}
}

func TestBusCancelStopsDelivery(t *testing.T) {
	bus := NewBus()

	ch, cancel := bus.Subscribe()
	cancel()
	cancel() // repeated cancel is a no-op

	bus.Publish(Event{Type: TypeRunCompleted})

	if _, open := <-ch; open {
		t.Error("cancelled subscription must be closed and drained")
	}
}

func TestBusDropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	// Fill the buffer and keep publishing; the extra events are dropped
	// instead of blocking the publisher.
	for i := 0; i < subscriberBuffer+10; i++ {
		bus.Publish(Event{Type: TypeActaFetched})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			if received != subscriberBuffer {
				t.Errorf("received %d events, want %d", received, subscriberBuffer)
			}
			return
		}
	}
}
