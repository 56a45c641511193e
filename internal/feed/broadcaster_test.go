package feed

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubSource struct {
	name    string
	changes []Change
	err     error
	polls   int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) ChangedSince(_ context.Context, since time.Time) ([]Change, error) {
	s.polls++
	if s.err != nil {
		return nil, s.err
	}
	var out []Change
	for _, c := range s.changes {
		if c.At.After(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

func drain(s *Subscriber) []Event {
	var evs []Event
	for {
		select {
		case ev := <-s.Events():
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}

func TestBroadcasterEmitsCreatedToEverySubscriber(t *testing.T) {
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	src := &stubSource{name: "quote", changes: []Change{
		{ID: 1, At: t0, Summary: "quote by Basho"},
	}}
	hub := NewHub()
	b := &Broadcaster{Sources: []Source{src}, Hub: hub}

	ctx := context.Background()
	b.tick(ctx) // primes: existing rows are not replayed

	s1 := hub.Subscribe(4)
	s2 := hub.Subscribe(4)

	src.changes = append(src.changes, Change{ID: 2, At: t0.Add(time.Minute), Summary: "quote by Issa"})
	b.tick(ctx)

	for _, sub := range []*Subscriber{s1, s2} {
		evs := drain(sub)
		if len(evs) != 1 {
			t.Fatalf("subscriber got %d events, want exactly 1", len(evs))
		}
		ev := evs[0]
		if ev.Type != TypeCreated || ev.EntityID != 2 {
			t.Fatalf("unexpected event %+v", ev)
		}
	}

	// high-water-mark advanced past the new row: next tick emits nothing
	b.tick(ctx)
	if evs := drain(s1); len(evs) != 0 {
		t.Fatalf("snapshot did not advance, got %+v", evs)
	}
}

func TestBroadcasterClassifiesKnownIDAsUpdated(t *testing.T) {
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	src := &stubSource{name: "quote", changes: []Change{
		{ID: 1, At: t0, Summary: "quote by Basho"},
	}}
	hub := NewHub()
	b := &Broadcaster{Sources: []Source{src}, Hub: hub}
	ctx := context.Background()
	b.tick(ctx)

	sub := hub.Subscribe(4)

	src.changes = []Change{{ID: 1, At: t0.Add(time.Minute), Summary: "quote by Basho"}}
	b.tick(ctx)

	evs := drain(sub)
	if len(evs) != 1 || evs[0].Type != TypeUpdated || evs[0].EntityID != 1 {
		t.Fatalf("touching a known id should emit updated, got %+v", evs)
	}
}

func TestBroadcasterDeletionFromLog(t *testing.T) {
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	src := &stubSource{name: "manga", changes: []Change{
		{ID: 7, At: t0, Summary: "manga"},
	}}
	hub := NewHub()
	b := &Broadcaster{Sources: []Source{src}, Hub: hub}
	ctx := context.Background()
	b.tick(ctx)

	sub := hub.Subscribe(4)

	src.changes = []Change{{ID: 7, At: t0.Add(time.Minute), Deleted: true, Summary: "removed"}}
	b.tick(ctx)

	evs := drain(sub)
	if len(evs) != 1 || evs[0].Type != TypeDeleted || evs[0].EntityID != 7 {
		t.Fatalf("logged deletion should emit deleted, got %+v", evs)
	}
}

func TestBroadcasterPollFailureLeavesSnapshotIntact(t *testing.T) {
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	src := &stubSource{name: "quote", changes: []Change{
		{ID: 1, At: t0, Summary: "quote"},
	}}
	hub := NewHub()
	b := &Broadcaster{Sources: []Source{src}, Hub: hub}
	ctx := context.Background()
	b.tick(ctx)

	sub := hub.Subscribe(4)

	// the store goes away for one tick; nothing may be lost
	src.changes = append(src.changes, Change{ID: 2, At: t0.Add(time.Minute), Summary: "quote"})
	src.err = errors.New("store down")
	b.tick(ctx)
	if evs := drain(sub); len(evs) != 0 {
		t.Fatalf("failed poll must not emit, got %+v", evs)
	}

	src.err = nil
	b.tick(ctx)
	evs := drain(sub)
	if len(evs) != 1 || evs[0].Type != TypeCreated || evs[0].EntityID != 2 {
		t.Fatalf("change made during the outage should surface next tick, got %+v", evs)
	}
}

func TestNewEventFlattensSingleUpdate(t *testing.T) {
	at := time.Now()
	ev := NewEvent(at, []Update{{Type: TypeCreated, EntityID: 3, Message: "m"}})
	if ev.Type != TypeCreated || ev.EntityID != 3 || len(ev.Updates) != 0 {
		t.Fatalf("single change should flatten, got %+v", ev)
	}

	ev = NewEvent(at, []Update{
		{Type: TypeCreated, EntityID: 3},
		{Type: TypeDeleted, EntityID: 4},
	})
	if ev.Type != TypeBatch || len(ev.Updates) != 2 {
		t.Fatalf("multiple changes should batch, got %+v", ev)
	}
}
