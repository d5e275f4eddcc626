package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cortexbuild/platform/internal/core/domain"
)

type collectingService struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (s *collectingService) Process(_ context.Context, event domain.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *collectingService) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestDispatcher_ProcessesAllEvents(t *testing.T) {
	svc := &collectingService{}
	d := NewDispatcher(4, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	const total = 20
	for i := 0; i < total; i++ {
		d.Record(domain.AuditEvent{
			Actor:   "demo@cortexbuild.com",
			Action:  domain.AuditLogin,
			Outcome: domain.AuditOutcomeSuccess,
		})
	}

	deadline := time.Now().Add(2 * time.Second)
	for svc.count() < total {
		if time.Now().After(deadline) {
			t.Fatalf("processed %d of %d events before deadline", svc.count(), total)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDispatcher_SameActorSameShard(t *testing.T) {
	d := NewDispatcher(8, &collectingService{}, zerolog.Nop())

	first := d.shardIndex("demo@cortexbuild.com")
	for i := 0; i < 10; i++ {
		if d.shardIndex("demo@cortexbuild.com") != first {
			t.Fatalf("shard index must be deterministic per actor")
		}
	}
}

func TestDispatcher_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	// One worker, never started: the channel fills and Record must return.
	d := NewDispatcher(1, &collectingService{}, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Record(domain.AuditEvent{Actor: "a", Action: domain.AuditLogin})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Record blocked on a full queue")
	}
}
