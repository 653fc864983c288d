package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"softsell-assistant/internal/domain"
)

// subscriberBufferSize is the channel buffer for each subscriber.
const subscriberBufferSize = 64

type EventKind string

const (
	EventMessage    EventKind = "message"
	EventPending    EventKind = "pending"
	EventVisibility EventKind = "visibility"
	EventBackoff    EventKind = "backoff"
)

// Event reports one state transition. State is the snapshot taken right after
// the transition; Message is set for EventMessage.
type Event struct {
	Kind    EventKind
	Message *domain.Message
	State   domain.ConversationState
}

// broadcaster fans engine events out to subscribers. Publishing never blocks:
// events are dropped for subscribers whose channels are full.
type broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
	logger      *slog.Logger
}

func newBroadcaster(logger *slog.Logger) *broadcaster {
	return &broadcaster{
		subscribers: make(map[string]chan Event),
		logger:      logger,
	}
}

// subscribe registers a subscriber that is removed, and its channel closed,
// when ctx is cancelled.
func (b *broadcaster) subscribe(ctx context.Context) (<-chan Event, string) {
	subID := uuid.NewString()
	ch := make(chan Event, subscriberBufferSize)

	b.mu.Lock()
	b.subscribers[subID] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "sub_id", subID)

	go func() {
		<-ctx.Done()
		b.unsubscribe(subID)
	}()

	return ch, subID
}

func (b *broadcaster) publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
			b.logger.Debug("dropped event for slow subscriber", "sub_id", id, "kind", ev.Kind)
		}
	}
}

func (b *broadcaster) unsubscribe(subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subscribers[subID]
	if !ok {
		return
	}
	delete(b.subscribers, subID)
	close(ch)

	b.logger.Debug("subscriber removed", "sub_id", subID)
}
