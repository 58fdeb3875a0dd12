package session

import (
	"sort"
	"sync"
	"time"
)

type Topic string

const (
	TopicAlertsReplaced Topic = "alerts.replaced"
	TopicAlertsOverload Topic = "alerts.overload"
	TopicAlertSelected  Topic = "alert.selected"
	TopicAlertMetadata  Topic = "alert.metadata"
	TopicImageryState   Topic = "imagery.state"
	TopicImageryLayers  Topic = "imagery.layers"
	TopicAOIChanged     Topic = "aoi.changed"
)

type Event struct {
	Topic     Topic
	Timestamp time.Time
	Payload   interface{}
}

// Bus delivers events synchronously, in subscription order, to the
// handlers registered for their topic.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[Topic]map[int]func(Event)
	now  func() time.Time
}

func NewBus() *Bus {
	return &Bus{
		subs: map[Topic]map[int]func(Event){},
		now:  time.Now,
	}
}

// Subscribe registers fn for topic and returns a function removing it.
func (b *Bus) Subscribe(topic Topic, fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	if b.subs[topic] == nil {
		b.subs[topic] = map[int]func(Event){}
	}
	b.subs[topic][id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish runs the handlers outside the bus lock so they may publish or subscribe.
func (b *Bus) Publish(topic Topic, payload interface{}) {
	b.mu.RLock()
	ids := make([]int, 0, len(b.subs[topic]))
	for id := range b.subs[topic] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.subs[topic][id])
	}
	b.mu.RUnlock()

	e := Event{Topic: topic, Timestamp: b.now(), Payload: payload}
	for _, h := range handlers {
		h(e)
	}
}
