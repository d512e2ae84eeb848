// Package eventbus decouples the watch loops from anything that wants to
// observe them (the TUI status line, tests). Publish never blocks; slow
// subscribers lose events rather than stalling a poll cycle.
package eventbus

import (
	"sync"
	"sync/atomic"
	"time"
)

// Topics published by the watch loops.
const (
	TopicPriceNovel     = "price.novel"     // Data: the rendered offer summary
	TopicPollError      = "poll.error"      // Data: the error string
	TopicThreadActivity = "thread.activity" // Data: thread name
	TopicConfigReloaded = "config.reloaded" // Data: nil
)

// Event is a small in-memory signal. Data should be cheap to copy.
type Event struct {
	Topic string
	Time  time.Time
	Data  any
}

type Bus interface {
	Publish(e Event)
	Subscribe(buffer int) (ch <-chan Event, unsubscribe func())
}

// New returns an in-memory fanout bus with no background goroutines.
func New() Bus {
	return &memBus{subs: map[uint64]chan Event{}}
}

type memBus struct {
	mu   sync.RWMutex
	subs map[uint64]chan Event
	seq  atomic.Uint64
}

func (b *memBus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	b.mu.RLock()
	chs := make([]chan Event, 0, len(b.subs))
	for _, ch := range b.subs {
		chs = append(chs, ch)
	}
	b.mu.RUnlock()

	for _, ch := range chs {
		// Non-blocking send; a concurrently closed channel panics, which we
		// swallow because unsubscribe races with Publish by design.
		func() {
			defer func() { _ = recover() }()
			select {
			case ch <- e:
			default:
			}
		}()
	}
}

func (b *memBus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Event, buffer)
	id := b.seq.Add(1)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsub
}
