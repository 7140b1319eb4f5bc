package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bazarblot/marketplace/internal/core/domain"
)

type recordingSink struct {
	mu     sync.Mutex
	events []domain.ProductEvent
	fail   map[int64]bool
}

func (s *recordingSink) Publish(_ context.Context, e domain.ProductEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[e.ProductID] {
		return errors.New("boom")
	}
	s.events = append(s.events, e)
	return nil
}

type outcomeCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *outcomeCounter) observe(o string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[o]++
}

func TestDispatcher_PerProductOrdering(t *testing.T) {
	sink := &recordingSink{}
	oc := &outcomeCounter{counts: map[string]int{}}
	d := NewDispatcher(3, sink, oc.observe, zerolog.Nop())
	d.Start(context.Background())

	types := []domain.ProductEventType{domain.ProductCreated, domain.ProductUpdated, domain.ProductDeleted}
	for id := int64(1); id <= 10; id++ {
		for _, typ := range types {
			d.Enqueue(domain.ProductEvent{Type: typ, ProductID: id})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if len(sink.events) != 30 {
		t.Fatalf("expected 30 delivered events, got %d", len(sink.events))
	}
	seen := map[int64][]domain.ProductEventType{}
	for _, e := range sink.events {
		seen[e.ProductID] = append(seen[e.ProductID], e.Type)
	}
	for id, got := range seen {
		for i := range types {
			if got[i] != types[i] {
				t.Fatalf("product %d: events out of order: %v", id, got)
			}
		}
	}
	if oc.counts[OutcomePublished] != 30 {
		t.Fatalf("expected 30 published outcomes, got %v", oc.counts)
	}
}

func TestDispatcher_FailuresAreCountedNotFatal(t *testing.T) {
	sink := &recordingSink{fail: map[int64]bool{2: true}}
	oc := &outcomeCounter{counts: map[string]int{}}
	d := NewDispatcher(1, sink, oc.observe, zerolog.Nop())
	d.Start(context.Background())

	d.Enqueue(domain.ProductEvent{Type: domain.ProductCreated, ProductID: 1})
	d.Enqueue(domain.ProductEvent{Type: domain.ProductCreated, ProductID: 2})
	d.Enqueue(domain.ProductEvent{Type: domain.ProductCreated, ProductID: 3})

	if err := d.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if oc.counts[OutcomeFailed] != 1 || oc.counts[OutcomePublished] != 2 {
		t.Fatalf("unexpected outcomes: %v", oc.counts)
	}
}

func TestDispatcher_EnqueueAfterShutdownDrops(t *testing.T) {
	oc := &outcomeCounter{counts: map[string]int{}}
	d := NewDispatcher(2, &recordingSink{}, oc.observe, zerolog.Nop())
	d.Start(context.Background())
	if err := d.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := d.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}

	d.Enqueue(domain.ProductEvent{Type: domain.ProductCreated, ProductID: 1})
	if oc.counts[OutcomeDropped] != 1 {
		t.Fatalf("expected a dropped event, got %v", oc.counts)
	}
}

func TestDispatcher_ShardIndexStable(t *testing.T) {
	d := NewDispatcher(4, &recordingSink{}, nil, zerolog.Nop())
	for id := int64(-5); id < 50; id++ {
		a, b := d.shardIndex(id), d.shardIndex(id)
		if a != b || a < 0 || a >= 4 {
			t.Fatalf("bad shard %d for id %d", a, id)
		}
	}
}
