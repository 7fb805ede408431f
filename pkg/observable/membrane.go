package observable

import (
	"log/slog"
	"sync"
	"time"

	"github.com/membrane-dev/membrane/internal/diag"
)

// Membrane wraps observable values in transparent proxies and maintains
// the identity cache and dependency registry behind them.
//
// Exactly one proxy exists per distinct Original Target for as long as
// the target is registered: wrap(wrap(x)) == wrap(x) and
// unwrap(wrap(x)) == x. The cache is indexed by target identity and holds
// strong references; owners release targets explicitly via Release (the
// explicit-ownership port of the original's weak indexing). Retaining and
// mutating an Original Target directly bypasses notification - a
// documented caveat, not a runtime-enforced one.
type Membrane struct {
	bridge   RenderBridge
	registry *Registry

	mu    sync.Mutex
	cache map[Target]*Proxy

	logger   *slog.Logger
	metrics  *Metrics
	observer Observer
}

// Option configures a Membrane.
type Option func(*Membrane)

// WithLogger sets the logger used for developer-aid diagnostics.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Membrane) {
		m.logger = logger
	}
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Membrane) {
		m.metrics = metrics
	}
}

// WithObserver attaches a mutation observer (devtools hook).
func WithObserver(observer Observer) Option {
	return func(m *Membrane) {
		m.observer = observer
	}
}

// New creates a membrane bound to the given render bridge.
func New(bridge RenderBridge, opts ...Option) *Membrane {
	m := &Membrane{
		bridge: bridge,
		cache:  make(map[Target]*Proxy),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.registry = NewRegistry(bridge)
	m.registry.metrics = m.metrics
	return m
}

// Registry returns the dependency registry backing this membrane, for
// consumer lifecycle owners and devtools.
func (m *Membrane) Registry() *Registry {
	return m.registry
}

// Wrap returns the membrane proxy for v. v must be observable (a
// sequence, or a bare-prototype record); anything else is a usage error.
// Wrapping is idempotent: proxies are unwrapped first, and repeated calls
// return the identical proxy.
func (m *Membrane) Wrap(v Value) (*Proxy, error) {
	v = Unwrap(v)
	if !IsObservable(v) {
		return nil, usageError(diag.CodeNotObservable, "wrap", describeValue(v), ErrNotObservable)
	}
	return m.wrapObservable(v), nil
}

// wrapObservable wraps a value already known to be observable.
func (m *Membrane) wrapObservable(v Value) *Proxy {
	target := v.(Target)

	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.cache[target]; ok {
		if m.metrics != nil {
			m.metrics.cacheHits.Inc()
		}
		return p
	}
	p := newProxy(m, target)
	m.cache[target] = p
	if m.metrics != nil {
		m.metrics.proxiesCreated.Inc()
	}
	return p
}

// Unwrap returns the Original Target behind a membrane proxy, or v
// unchanged for anything else. O(1) and side-effect-free.
func Unwrap(v Value) Value {
	if p, ok := v.(*Proxy); ok {
		return p.target
	}
	return v
}

// Release drops the proxy cache entry and every dependency row for
// target (or the target behind a proxy). Call when the owning code is
// done with the target; otherwise the membrane keeps it reachable.
func (m *Membrane) Release(v Value) {
	target, ok := Unwrap(v).(Target)
	if !ok {
		return
	}
	m.mu.Lock()
	delete(m.cache, target)
	m.mu.Unlock()
	m.registry.Release(target)
}

// CacheSize reports the number of live proxies, for devtools.
func (m *Membrane) CacheSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}

// observe forwards a mutation event to the attached observer, if any.
func (m *Membrane) observe(op MutationOp, target Target, prop string, notified int) {
	if m.observer == nil {
		return
	}
	m.observer.ObserveMutation(MutationEvent{
		Op:        op,
		Kind:      target.Kind().String(),
		Property:  prop,
		Notified:  notified,
		Timestamp: time.Now(),
	})
}

// warnForeignRead emits the developer-aid diagnostic for reads returning
// non-observable object values.
func (m *Membrane) warnForeignRead(prop string, v Value) {
	if m.metrics != nil {
		m.metrics.foreignReads.Inc()
	}
	if m.logger == nil {
		return
	}
	m.logger.Warn("read returned a non-observable value; mutations to it will be unobservable",
		"code", diag.CodeForeignValueRead,
		"property", prop,
		"type", describeValue(v),
	)
}
