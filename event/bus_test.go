package event

import "testing"

func TestBusPublishDeliversToSubscribers(t *testing.T) {
	b := NewBus()

	var got []string
	b.Subscribe(TopicBufferEntered, func(payload any) {
		ev := payload.(BufferEntered)
		got = append(got, ev.BufferID)
	})

	b.Publish(TopicBufferEntered, BufferEntered{BufferID: "buf1"})
	b.Publish(TopicBufferEntered, BufferEntered{BufferID: "buf2"})

	if len(got) != 2 || got[0] != "buf1" || got[1] != "buf2" {
		t.Errorf("delivered = %v, want [buf1 buf2]", got)
	}
}

func TestBusTopicsAreIndependent(t *testing.T) {
	b := NewBus()

	moved := 0
	b.Subscribe(TopicCursorMoved, func(any) { moved++ })

	b.Publish(TopicBufferEntered, BufferEntered{BufferID: "buf1"})
	if moved != 0 {
		t.Errorf("cursor handler fired %d times for a buffer event", moved)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	b := NewBus()

	calls := 0
	sub := b.Subscribe(TopicCursorMoved, func(any) { calls++ })

	b.Publish(TopicCursorMoved, CursorMoved{BufferID: "buf1"})
	sub.Unsubscribe()
	b.Publish(TopicCursorMoved, CursorMoved{BufferID: "buf1"})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if n := b.SubscriberCount(TopicCursorMoved); n != 0 {
		t.Errorf("SubscriberCount = %d, want 0", n)
	}

	// Unsubscribing twice is harmless.
	sub.Unsubscribe()
}

func TestBusMultipleSubscribers(t *testing.T) {
	b := NewBus()

	a, c := 0, 0
	b.Subscribe(TopicLanguageDetected, func(any) { a++ })
	b.Subscribe(TopicLanguageDetected, func(any) { c++ })

	b.Publish(TopicLanguageDetected, LanguageDetected{BufferID: "buf1", Language: "python"})

	if a != 1 || c != 1 {
		t.Errorf("deliveries = (%d, %d), want (1, 1)", a, c)
	}
}
