package feed

import (
	"context"
	"log"
	"time"
)

// snapshot is the per-source high-water-mark plus the id set already seen.
// Owned exclusively by the broadcaster loop; advanced only after a
// successful poll so a failed tick misses nothing.
type snapshot struct {
	mark  time.Time
	known map[int64]bool
}

// Broadcaster periodically polls its sources for changes past the retained
// snapshot and pushes one event per tick to every hub subscriber.
type Broadcaster struct {
	Interval time.Duration
	Sources  []Source
	Hub      *Hub
	Now      func() time.Time

	snaps map[string]*snapshot
}

func (b *Broadcaster) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// Run loops until ctx is cancelled. The first poll of each source only
// primes the snapshot, so pre-existing rows are not replayed as created.
func (b *Broadcaster) Run(ctx context.Context) {
	interval := b.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	b.tick(ctx)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			b.tick(ctx)
		}
	}
}

func (b *Broadcaster) tick(ctx context.Context) {
	if b.snaps == nil {
		b.snaps = make(map[string]*snapshot)
	}

	var updates []Update
	for _, src := range b.Sources {
		snap := b.snaps[src.Name()]
		if snap == nil {
			b.prime(ctx, src)
			continue
		}

		changes, err := src.ChangedSince(ctx, snap.mark)
		if err != nil {
			// retried next tick with the snapshot unchanged
			log.Printf("[FEED] action=poll source=%s err=%v", src.Name(), err)
			continue
		}

		mark := snap.mark
		for _, ch := range changes {
			kind := TypeCreated
			switch {
			case ch.Deleted:
				kind = TypeDeleted
				delete(snap.known, ch.ID)
			case snap.known[ch.ID]:
				kind = TypeUpdated
			default:
				snap.known[ch.ID] = true
			}
			if ch.At.After(mark) {
				mark = ch.At
			}
			updates = append(updates, Update{Type: kind, EntityID: ch.ID, Message: ch.Summary})
		}
		snap.mark = mark
	}

	if len(updates) > 0 {
		b.Hub.Broadcast(NewEvent(b.now(), updates))
	}
}

func (b *Broadcaster) prime(ctx context.Context, src Source) {
	changes, err := src.ChangedSince(ctx, time.Time{})
	if err != nil {
		log.Printf("[FEED] action=prime source=%s err=%v", src.Name(), err)
		return
	}
	snap := &snapshot{known: make(map[int64]bool)}
	for _, ch := range changes {
		if ch.Deleted {
			continue
		}
		snap.known[ch.ID] = true
		if ch.At.After(snap.mark) {
			snap.mark = ch.At
		}
	}
	b.snaps[src.Name()] = snap
}
