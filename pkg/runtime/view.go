package runtime

import "sync/atomic"

// View is the reference Consumer implementation: a named render closure
// with a dirty flag. Reading observable state inside the closure while it
// renders subscribes the view; a later change to that state marks it
// dirty and schedules exactly one re-render.
type View struct {
	id   uint64
	name string

	// render is re-invoked on every pass, re-recording dependencies.
	render func(*RenderContext)

	// dirty means a dependency changed and a re-render is pending.
	dirty atomic.Bool

	// disposed views are skipped by the scheduler.
	disposed atomic.Bool

	// renders counts completed render passes.
	renders atomic.Uint64
}

// ID implements observable.Consumer.
func (v *View) ID() uint64 {
	return v.id
}

// Dirty implements observable.Consumer.
func (v *View) Dirty() bool {
	return v.dirty.Load()
}

// Name returns the view's display name.
func (v *View) Name() string {
	return v.name
}

// Renders returns the number of completed render passes.
func (v *View) Renders() uint64 {
	return v.renders.Load()
}

// IsDisposed reports whether the owning scope has been disposed.
func (v *View) IsDisposed() bool {
	return v.disposed.Load()
}
