package journal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChangeKind names the mutation behind an EntryChanged event.
type ChangeKind string

const (
	KindCreated  ChangeKind = "created"
	KindUpdated  ChangeKind = "updated"
	KindDeleted  ChangeKind = "deleted"
	KindLocked   ChangeKind = "locked"
	KindUnlocked ChangeKind = "unlocked"
)

// EntryChanged is emitted after a successful create, update, delete, lock
// or unlock.  It never carries entry content.
type EntryChanged struct {
	EventID uuid.UUID
	Kind    ChangeKind
	OwnerID uint64
	EntryID uint64
	Day     time.Time
	At      time.Time
}

// Listener receives change events.  A returned error is logged and
// otherwise ignored.
type Listener func(ctx context.Context, ev EntryChanged) error

type subscription struct {
	id uint64
	fn Listener
}

// Broadcaster fans change events out to any number of listeners, in
// subscription order, on the caller's goroutine.
type Broadcaster struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
	log    *zap.Logger
}

// NewBroadcaster returns an empty Broadcaster.  A nil logger discards.
func NewBroadcaster(log *zap.Logger) *Broadcaster {
	if log == nil {
		log = zap.NewNop()
	}
	return &Broadcaster{log: log}
}

// Subscribe registers fn and returns a function that removes it.  The
// returned function is safe to call more than once.
func (b *Broadcaster) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers ev to every listener registered at the time of the
// call.  Listeners run detached from ctx cancellation so a finished
// request does not abort them.
func (b *Broadcaster) Publish(ctx context.Context, ev EntryChanged) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs...)
	b.mu.RUnlock()

	ctx = context.WithoutCancel(ctx)
	for _, s := range subs {
		if err := b.deliver(ctx, s.fn, ev); err != nil {
			b.log.Warn("entry change listener failed",
				zap.String("event_id", ev.EventID.String()),
				zap.String("kind", string(ev.Kind)),
				zap.Uint64("owner_id", ev.OwnerID),
				zap.Uint64("entry_id", ev.EntryID),
				zap.Error(err))
		}
	}
}

func (b *Broadcaster) deliver(ctx context.Context, fn Listener, ev EntryChanged) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic: %v", r)
		}
	}()
	return fn(ctx, ev)
}
