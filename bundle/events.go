package bundle

import (
	"context"
	"sync"
)

type progressBroadcaster struct {
	mu       sync.Mutex
	watchers map[uint64]chan ProgressEvent
	nextID   uint64
}

func newProgressBroadcaster() *progressBroadcaster {
	return &progressBroadcaster{
		watchers: make(map[uint64]chan ProgressEvent),
	}
}

func (b *progressBroadcaster) Subscribe(ctx context.Context) (<-chan ProgressEvent, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		ch := make(chan ProgressEvent)
		close(ch)
		return ch, nil
	}
	ch := make(chan ProgressEvent, 1)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.watchers[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.watchers, id)
		close(ch)
		b.mu.Unlock()
	}()

	return ch, nil
}

// Broadcast delivers the event to every live subscriber without blocking.
// Sends happen under the lock so an unsubscribe cannot close a channel
// mid-send; the non-blocking select keeps slow consumers from stalling saves.
func (b *progressBroadcaster) Broadcast(evt ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.watchers {
		select {
		case ch <- evt:
		default:
		}
	}
}
