// Package runtime is the reference render-context bridge for the
// observable membrane: it sequences render passes one consumer at a
// time, coalesces dirty views into a flushable schedule, and owns
// consumer lifecycle through scopes.
//
// A minimal loop looks like:
//
//	renderer := runtime.NewRenderer()
//	m := observable.New(renderer)
//	scope := runtime.NewRootScope(m.Registry())
//
//	view := scope.NewView("counter", func(*runtime.RenderContext) {
//	    proxy, _ := m.Wrap(state)
//	    _, _ = proxy.Get("count") // records the dependency
//	})
//	_ = renderer.Render(view)
//
//	_ = proxy.Set("count", 1) // marks the view dirty, schedules once
//	renderer.Flush(ctx)       // re-renders the dirty view
//
// Render passes never nest and writes are rejected while one is active;
// the membrane enforces purity through the bridge.
package runtime
