package event

import (
	"sync"

	"github.com/google/uuid"
)

// Handler receives a published payload.
type Handler func(payload any)

// Subscription represents an active handler registration.
type Subscription struct {
	id    string
	topic Topic
	bus   *Bus
}

// Unsubscribe removes this subscription from its bus. Safe to call more
// than once.
func (s Subscription) Unsubscribe() {
	if s.bus != nil {
		s.bus.unsubscribe(s.topic, s.id)
	}
}

// Bus is a synchronous topic-keyed publish/subscribe hub.
type Bus struct {
	mu   sync.RWMutex
	subs map[Topic]map[string]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic]map[string]Handler)}
}

// Subscribe registers a handler for a topic and returns its subscription.
func (b *Bus) Subscribe(topic Topic, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[string]Handler)
	}
	id := uuid.NewString()
	b.subs[topic][id] = h
	return Subscription{id: id, topic: topic, bus: b}
}

// Publish delivers the payload to every handler subscribed to the topic,
// on the caller's goroutine.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
}

// SubscriberCount returns the number of handlers registered for a topic.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

func (b *Bus) unsubscribe(topic Topic, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if handlers, ok := b.subs[topic]; ok {
		delete(handlers, id)
		if len(handlers) == 0 {
			delete(b.subs, topic)
		}
	}
}
