package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/membrane-dev/membrane/internal/diag"
	"github.com/membrane-dev/membrane/pkg/observable"
)

// ErrNestedRender is returned when a render pass starts while another is
// active. Exactly one consumer renders at a time; passes do not nest.
var ErrNestedRender = errors.New("runtime: render pass already active")

// RenderContext is the explicit per-pass render state: one context is
// created for each pass and consumed linearly, instead of relying on
// ambient process-wide flags. The membrane observes it through the
// renderer's RenderBridge methods.
type RenderContext struct {
	renderer *Renderer
	view     *View
}

// View returns the consumer this pass is rendering.
func (c *RenderContext) View() *View {
	return c.view
}

// Renderer sequences render passes and implements observable.RenderBridge.
// It owns the scheduler that coalesces dirty views between flushes.
type Renderer struct {
	mu     sync.Mutex
	active *RenderContext

	sched *Scheduler
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithTracer sets the tracer used for flush spans.
func WithTracer(tracer trace.Tracer) RendererOption {
	return func(r *Renderer) {
		r.sched.tracer = tracer
	}
}

// NewRenderer creates a renderer with an empty schedule.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{sched: newScheduler()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scheduler returns the renderer's dirty-view scheduler.
func (r *Renderer) Scheduler() *Scheduler {
	return r.sched
}

// RenderingActive implements observable.RenderBridge.
func (r *Renderer) RenderingActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// CurrentConsumer implements observable.RenderBridge.
func (r *Renderer) CurrentConsumer() observable.Consumer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return nil
	}
	return r.active.view
}

// MarkDirty implements observable.RenderBridge. Idempotent.
func (r *Renderer) MarkDirty(c observable.Consumer) {
	if v, ok := c.(*View); ok {
		v.dirty.Store(true)
	}
}

// ScheduleRerender implements observable.RenderBridge. The scheduler
// coalesces repeated scheduling of the same view into one queued pass.
func (r *Renderer) ScheduleRerender(c observable.Consumer) {
	if v, ok := c.(*View); ok {
		r.sched.enqueue(v)
	}
}

// RenderPass runs fn as the render pass for view. Reads through membrane
// proxies inside fn are recorded as the view's dependencies; writes are
// rejected by the membrane for the duration. The view's dirty flag is
// cleared at the start of the pass, opening a new dirtying epoch.
func (r *Renderer) RenderPass(view *View, fn func(*RenderContext)) error {
	r.mu.Lock()
	if r.active != nil {
		r.mu.Unlock()
		return fmt.Errorf("[%s] %s: %w", diag.CodeNestedRenderPass, diag.Summary(diag.CodeNestedRenderPass), ErrNestedRender)
	}
	ctx := &RenderContext{renderer: r, view: view}
	r.active = ctx
	r.mu.Unlock()

	view.dirty.Store(false)

	defer func() {
		r.mu.Lock()
		r.active = nil
		r.mu.Unlock()
		view.renders.Add(1)
	}()

	fn(ctx)
	return nil
}

// Render runs a full pass for view using its own render closure.
func (r *Renderer) Render(view *View) error {
	return r.RenderPass(view, view.render)
}

// Flush re-renders every currently queued dirty view, one pass at a time.
// Returns the number of passes run.
func (r *Renderer) Flush(ctx context.Context) (int, error) {
	return r.sched.flush(ctx, r)
}

var _ observable.RenderBridge = (*Renderer)(nil)
