package runtime

import (
	"sync"
	"sync/atomic"

	"github.com/membrane-dev/membrane/pkg/observable"
)

// Scope is a consumer lifecycle owner. Views created in a scope are
// unsubscribed from the dependency registry when the scope is disposed;
// the registry never cleans up after consumers on its own.
//
// Scopes form a hierarchy mirroring the component tree: disposing a scope
// disposes its children first (in reverse creation order), then its
// views, then runs registered cleanups in reverse order.
type Scope struct {
	id       uint64
	registry *observable.Registry
	parent   *Scope

	mu       sync.Mutex
	children []*Scope
	views    []*View
	cleanups []func()

	disposed atomic.Bool
}

// NewRootScope creates a scope with no parent, releasing consumers
// through the given registry.
func NewRootScope(registry *observable.Registry) *Scope {
	return &Scope{id: nextID(), registry: registry}
}

// ID returns the scope's unique identifier.
func (s *Scope) ID() uint64 {
	return s.id
}

// IsDisposed reports whether this scope has been disposed.
func (s *Scope) IsDisposed() bool {
	return s.disposed.Load()
}

// Child creates a sub-scope that will be disposed with this scope.
func (s *Scope) Child() *Scope {
	child := &Scope{id: nextID(), registry: s.registry, parent: s}
	s.mu.Lock()
	s.children = append(s.children, child)
	s.mu.Unlock()
	return child
}

// NewView creates a view owned by this scope. The render closure runs on
// every pass for the view, re-recording its dependencies.
func (s *Scope) NewView(name string, render func(*RenderContext)) *View {
	v := &View{id: nextID(), name: name, render: render}
	s.mu.Lock()
	s.views = append(s.views, v)
	s.mu.Unlock()
	return v
}

// OnCleanup registers a function to run when this scope is disposed.
// If the scope is already disposed the function runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if s.disposed.Load() {
		fn()
		return
	}
	s.mu.Lock()
	s.cleanups = append(s.cleanups, fn)
	s.mu.Unlock()
}

// Dispose tears the scope down: children in reverse order, then views
// (each removed from every dependency set it joined), then cleanups in
// reverse order. Idempotent.
func (s *Scope) Dispose() {
	if s.disposed.Swap(true) {
		return
	}

	if s.parent != nil {
		s.parent.removeChild(s)
	}

	s.mu.Lock()
	children := s.children
	views := s.views
	cleanups := s.cleanups
	s.children, s.views, s.cleanups = nil, nil, nil
	s.mu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	for _, v := range views {
		v.disposed.Store(true)
		s.registry.Unsubscribe(v)
	}

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

func (s *Scope) removeChild(child *Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}
