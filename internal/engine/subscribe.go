package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"glasswork/internal/domain"
)

const (
	defaultFeedInterval = 2 * time.Second
	defaultFeedBatch    = 100
	subscriberBuffer    = 16
)

// Subscription delivers status changes to one consumer. Slow consumers
// miss updates rather than block the publisher.
type Subscription struct {
	C      <-chan domain.StatusLog
	cancel func()
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

type broker struct {
	mu     sync.Mutex
	subs   map[int]chan domain.StatusLog
	next   int
	lastID int64
}

func newBroker() *broker {
	return &broker{subs: make(map[int]chan domain.StatusLog)}
}

func (b *broker) subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan domain.StatusLog, subscriberBuffer)
	b.subs[id] = ch
	return &Subscription{
		C: ch,
		cancel: func() {
			b.mu.Lock()
			if ch, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
			b.mu.Unlock()
		},
	}
}

// publish fans a record out to subscribers. A record can arrive twice,
// once from the local SetStatus and once from the feed poller; IDs are
// monotonic, so anything at or below the high-water mark already went out.
func (b *broker) publish(log domain.StatusLog) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if log.ID <= b.lastID {
		return
	}
	b.lastID = log.ID
	for _, ch := range b.subs {
		select {
		case ch <- log:
		default:
		}
	}
}

// Subscribe registers for status change notifications. Every SetStatus in
// this process that creates a log entry is delivered; entries written by
// other processes arrive once StartStatusFeed is running.
func (e Engine) Subscribe() *Subscription {
	return e.broker.subscribe()
}

// StartStatusFeed polls the status log for rows inserted past the current
// tail, typically by another process sharing the database, and publishes
// them to subscribers. It stops when ctx is done.
func (e Engine) StartStatusFeed(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultFeedInterval
	}
	cursor, err := e.Repo.LatestStatusID(ctx)
	if err != nil {
		log.Printf("status feed: init cursor failed: %v", err)
		cursor = 0
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			logs, err := e.Repo.StatusAfter(ctx, cursor, defaultFeedBatch)
			if err != nil {
				log.Printf("status feed: fetch failed: %v", err)
				continue
			}
			for _, entry := range logs {
				e.broker.publish(entry)
				cursor = entry.ID
			}
		}
	}()
}
