package runtime

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// defaultTracerName is the tracer used for flush spans unless overridden.
const defaultTracerName = "membrane"

// Scheduler is the deferred-execution side of the render bridge: dirty
// views are enqueued exactly once per dirtying epoch and drained by
// Flush. Enqueueing is synchronous and non-blocking; nothing runs until
// the host calls Flush.
type Scheduler struct {
	mu     sync.Mutex
	queue  []*View
	queued map[uint64]struct{}

	tracer trace.Tracer
}

func newScheduler() *Scheduler {
	return &Scheduler{
		queued: make(map[uint64]struct{}),
		tracer: otel.Tracer(defaultTracerName),
	}
}

// enqueue adds a view to the flush queue, deduplicating by view ID.
func (s *Scheduler) enqueue(v *View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.queued[v.id]; ok {
		return
	}
	s.queued[v.id] = struct{}{}
	s.queue = append(s.queue, v)
}

// Pending returns the number of views awaiting a flush.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// flush drains the queue and re-renders each live view. Views dirtied by
// anything that ran between passes are picked up in the same flush.
func (s *Scheduler) flush(ctx context.Context, r *Renderer) (int, error) {
	s.mu.Lock()
	pending := len(s.queue)
	s.mu.Unlock()

	_, span := s.tracer.Start(ctx, "membrane.flush",
		trace.WithAttributes(attribute.Int("membrane.pending_views", pending)))
	defer span.End()

	passes := 0
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			break
		}
		v := s.queue[0]
		s.queue = s.queue[1:]
		delete(s.queued, v.id)
		s.mu.Unlock()

		if v.disposed.Load() || !v.dirty.Load() {
			continue
		}
		if err := r.RenderPass(v, v.render); err != nil {
			span.RecordError(err)
			return passes, err
		}
		passes++
	}

	span.SetAttributes(attribute.Int("membrane.passes", passes))
	return passes, nil
}
