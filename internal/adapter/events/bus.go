package events

import (
	"sync"

	"flashmirror/internal/app/ports"

	"github.com/sirupsen/logrus"
)

// Bus fans events out to in-process subscribers. Handlers run on the
// publishing goroutine, in subscription order.
type Bus struct {
	log    logrus.FieldLogger
	mu     sync.RWMutex
	next   int
	subs   map[int]func(ports.Event)
	order  []int
	closed bool
}

func NewBus(log logrus.FieldLogger) *Bus {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Bus{log: log, subs: map[int]func(ports.Event){}}
}

// Subscribe registers fn and returns a function that removes it. After
// Close, Subscribe is a no-op.
func (b *Bus) Subscribe(fn func(ports.Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = fn
	b.order = append(b.order, id)
	return func() { b.remove(id) }
}

func (b *Bus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[id]; !ok {
		return
	}
	delete(b.subs, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

func (b *Bus) Publish(evt ports.Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	handlers := make([]func(ports.Event), 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.deliver(h, evt)
	}
}

func (b *Bus) deliver(h func(ports.Event), evt ports.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithFields(logrus.Fields{"intent": evt.Intent, "event": evt.Kind}).Errorf("event subscriber panicked: %v", r)
		}
	}()
	h(evt)
}

// Close drops every subscription; later events go nowhere.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = map[int]func(ports.Event){}
	b.order = nil
}

func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
