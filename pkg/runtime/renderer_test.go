package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/membrane-dev/membrane/pkg/observable"
)

func TestRenderPassActivatesBridge(t *testing.T) {
	r := NewRenderer()
	m := observable.New(r)
	scope := NewRootScope(m.Registry())
	defer scope.Dispose()

	if r.RenderingActive() {
		t.Fatal("no pass should be active initially")
	}
	if r.CurrentConsumer() != nil {
		t.Fatal("no consumer should be current initially")
	}

	view := scope.NewView("probe", func(*RenderContext) {})
	err := r.RenderPass(view, func(ctx *RenderContext) {
		if !r.RenderingActive() {
			t.Error("pass must be active inside RenderPass")
		}
		if r.CurrentConsumer() != observable.Consumer(view) {
			t.Error("current consumer must be the rendering view")
		}
		if ctx.View() != view {
			t.Error("context must carry the rendering view")
		}
	})
	if err != nil {
		t.Fatalf("render pass failed: %v", err)
	}

	if r.RenderingActive() {
		t.Error("pass must be inactive after RenderPass returns")
	}
	if view.Renders() != 1 {
		t.Errorf("expected 1 completed render, got %d", view.Renders())
	}
}

func TestNestedRenderPassRejected(t *testing.T) {
	r := NewRenderer()
	m := observable.New(r)
	scope := NewRootScope(m.Registry())
	defer scope.Dispose()

	outer := scope.NewView("outer", func(*RenderContext) {})
	inner := scope.NewView("inner", func(*RenderContext) {})

	var nestedErr error
	err := r.RenderPass(outer, func(*RenderContext) {
		nestedErr = r.RenderPass(inner, func(*RenderContext) {})
	})
	if err != nil {
		t.Fatalf("outer pass failed: %v", err)
	}
	if !errors.Is(nestedErr, ErrNestedRender) {
		t.Errorf("expected ErrNestedRender, got %v", nestedErr)
	}
}

func TestSchedulerCoalesces(t *testing.T) {
	r := NewRenderer()
	m := observable.New(r)
	scope := NewRootScope(m.Registry())
	defer scope.Dispose()

	view := scope.NewView("v", func(*RenderContext) {})
	r.MarkDirty(view)
	r.ScheduleRerender(view)
	r.ScheduleRerender(view)
	r.ScheduleRerender(view)

	if pending := r.Scheduler().Pending(); pending != 1 {
		t.Errorf("scheduling must coalesce by view, got %d pending", pending)
	}
}

func TestFlushRerendersDirtyViews(t *testing.T) {
	r := NewRenderer()
	m := observable.New(r)
	scope := NewRootScope(m.Registry())
	defer scope.Dispose()

	state := observable.NewObject()
	if err := state.Set("count", 0); err != nil {
		t.Fatal(err)
	}
	proxy, err := m.Wrap(state)
	if err != nil {
		t.Fatal(err)
	}

	var seen []any
	view := scope.NewView("counter", func(*RenderContext) {
		v, _ := proxy.Get("count")
		seen = append(seen, v)
	})
	if err := r.Render(view); err != nil {
		t.Fatal(err)
	}

	if err := proxy.Set("count", 1); err != nil {
		t.Fatal(err)
	}
	if !view.Dirty() {
		t.Fatal("view must be dirty after a tracked write")
	}

	passes, err := r.Flush(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if passes != 1 {
		t.Errorf("expected 1 pass, got %d", passes)
	}
	if len(seen) != 2 || seen[1] != 1 {
		t.Errorf("re-render must observe the new value, saw %v", seen)
	}
	if view.Dirty() {
		t.Error("view must be clean after the flush")
	}
}

func TestMultipleWritesOneFlushPass(t *testing.T) {
	r := NewRenderer()
	m := observable.New(r)
	scope := NewRootScope(m.Registry())
	defer scope.Dispose()

	state := observable.NewObject()
	_ = state.Set("a", 1)
	_ = state.Set("b", 2)
	proxy, _ := m.Wrap(state)

	view := scope.NewView("multi", func(*RenderContext) {
		_, _ = proxy.Get("a")
		_, _ = proxy.Get("b")
	})
	if err := r.Render(view); err != nil {
		t.Fatal(err)
	}

	// Several dependencies change before the scheduler flushes; the
	// consumer re-renders exactly once.
	_ = proxy.Set("a", 10)
	_ = proxy.Set("b", 20)

	passes, err := r.Flush(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if passes != 1 {
		t.Errorf("expected a single coalesced pass, got %d", passes)
	}
	if view.Renders() != 2 {
		t.Errorf("expected 2 total renders, got %d", view.Renders())
	}
}

func TestFlushSkipsCleanViews(t *testing.T) {
	r := NewRenderer()
	m := observable.New(r)
	scope := NewRootScope(m.Registry())
	defer scope.Dispose()

	view := scope.NewView("clean", func(*RenderContext) {})
	r.ScheduleRerender(view) // queued but never dirtied

	passes, err := r.Flush(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if passes != 0 {
		t.Errorf("clean views must be skipped, got %d passes", passes)
	}
}
