package runtime

import (
	"context"
	"testing"

	"github.com/membrane-dev/membrane/pkg/observable"
)

func TestScopeDisposeUnsubscribesViews(t *testing.T) {
	r := NewRenderer()
	m := observable.New(r)
	scope := NewRootScope(m.Registry())

	state := observable.NewObject()
	_ = state.Set("a", 1)
	proxy, _ := m.Wrap(state)

	view := scope.NewView("doomed", func(*RenderContext) {
		_, _ = proxy.Get("a")
	})
	if err := r.Render(view); err != nil {
		t.Fatal(err)
	}
	if stats := m.Registry().Stats(); stats.Memberships != 1 {
		t.Fatalf("expected 1 membership, got %d", stats.Memberships)
	}

	scope.Dispose()

	if stats := m.Registry().Stats(); stats.Memberships != 0 {
		t.Errorf("dispose must remove the view from every set, got %d", stats.Memberships)
	}
	if !view.IsDisposed() {
		t.Error("view must be marked disposed")
	}

	// A write after disposal marks nothing and renders nothing.
	_ = proxy.Set("a", 2)
	passes, err := r.Flush(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if passes != 0 {
		t.Errorf("disposed views must never re-render, got %d passes", passes)
	}
}

func TestScopeCleanupsRunInReverseOrder(t *testing.T) {
	r := NewRenderer()
	m := observable.New(r)
	scope := NewRootScope(m.Registry())

	var order []int
	scope.OnCleanup(func() { order = append(order, 1) })
	scope.OnCleanup(func() { order = append(order, 2) })
	scope.OnCleanup(func() { order = append(order, 3) })

	scope.Dispose()

	if len(order) != 3 || order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Errorf("cleanups must run in reverse order, got %v", order)
	}

	// After disposal, cleanups run immediately.
	ran := false
	scope.OnCleanup(func() { ran = true })
	if !ran {
		t.Error("cleanup registered after dispose must run immediately")
	}
}

func TestScopeChildDisposal(t *testing.T) {
	r := NewRenderer()
	m := observable.New(r)
	root := NewRootScope(m.Registry())

	var order []string
	child1 := root.Child()
	child1.OnCleanup(func() { order = append(order, "child1") })
	child2 := root.Child()
	child2.OnCleanup(func() { order = append(order, "child2") })
	root.OnCleanup(func() { order = append(order, "root") })

	root.Dispose()

	// Children dispose first, newest first, then the root's cleanups.
	want := []string{"child2", "child1", "root"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("disposal order[%d]: expected %q, got %q", i, want[i], order[i])
		}
	}
	if !child1.IsDisposed() || !child2.IsDisposed() {
		t.Error("children must be disposed with the root")
	}

	// Dispose is idempotent.
	root.Dispose()
	if len(order) != len(want) {
		t.Error("second dispose must be a no-op")
	}
}

func TestChildDisposeDetachesFromParent(t *testing.T) {
	r := NewRenderer()
	m := observable.New(r)
	root := NewRootScope(m.Registry())

	child := root.Child()
	ran := 0
	child.OnCleanup(func() { ran++ })

	child.Dispose()
	if ran != 1 {
		t.Fatalf("expected child cleanup to run once, got %d", ran)
	}

	// Disposing the root must not re-dispose the detached child.
	root.Dispose()
	if ran != 1 {
		t.Errorf("detached child re-disposed, cleanup ran %d times", ran)
	}
}
