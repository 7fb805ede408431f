package observable

import "github.com/membrane-dev/membrane/internal/diag"

// Proxy is the membrane proxy handed to application code in place of an
// Original Target. Every structural operation delegates to the original,
// wrapping and unwrapping values as they cross the boundary, recording
// dependencies on tracked reads and notifying dependents on writes.
//
// Proxy implements Target, so nested observable values compose: reading
// a nested record through a proxy yields that record's own proxy, and
// mutating it notifies dependents of the nested target.
type Proxy struct {
	membrane *Membrane

	// target is the Original Target. Application data lives here and
	// only here.
	target Target

	// shadow is the empty skeleton backing this proxy's reported state;
	// see shadow.go for the locking protocol.
	shadow Target

	// locked is set once the shadow has been fully mirrored and frozen.
	locked bool
}

func newProxy(m *Membrane, target Target) *Proxy {
	return &Proxy{
		membrane: m,
		target:   target,
		shadow:   newShadow(target.Kind()),
	}
}

// Kind reports the Original Target's kind.
func (p *Proxy) Kind() Kind {
	return p.target.Kind()
}

// Get fetches key from the Original Target. If a render pass is active
// the read is recorded as a dependency of the current consumer. Observable
// results come back wrapped; foreign object values come back raw with a
// diagnostic warning, since mutations on them are unobservable.
func (p *Proxy) Get(key string) (Value, bool) {
	v, ok := p.target.Get(key)

	bridge := p.membrane.bridge
	if bridge.RenderingActive() {
		if c := bridge.CurrentConsumer(); c != nil {
			p.membrane.registry.Record(c, p.target, key)
		}
	}

	if IsObservable(v) {
		return p.membrane.wrapObservable(v), ok
	}
	if ok && isForeignObject(v) {
		p.membrane.warnForeignRead(key, v)
	}
	return v, ok
}

// Set writes key through to the Original Target and notifies dependents
// if the value actually changed. Writes are forbidden while a render pass
// is active: the render phase must be free of observable side effects,
// and a rejected write leaves the original untouched.
//
// Equal values do not notify, with one exception: a sequence's length,
// where the backing store may already reflect the new length (append
// followed by an explicit length write) yet a structural change occurred.
func (p *Proxy) Set(key string, v Value) error {
	bridge := p.membrane.bridge
	if bridge.RenderingActive() {
		if p.membrane.metrics != nil {
			p.membrane.metrics.purityViolations.Inc()
		}
		err := propertyError(diag.CodeRenderPhaseWrite, "set", key, ErrRenderPhaseWrite)
		if c := bridge.CurrentConsumer(); c != nil {
			err.ConsumerID = c.ID()
		}
		return err
	}

	v = Unwrap(v)
	old, _ := p.target.Get(key)
	if sameValue(old, v) {
		if key == LengthKey && p.target.Kind() == KindSequence {
			n := p.membrane.registry.Notify(p.target, key)
			p.membrane.observe(OpSet, p.target, key, n)
		}
		return nil
	}

	if err := p.target.Set(key, v); err != nil {
		return err
	}
	n := p.membrane.registry.Notify(p.target, key)
	p.membrane.observe(OpSet, p.target, key, n)
	return nil
}

// Delete removes key from the Original Target and notifies dependents of
// (target, key) unconditionally, whether or not the property existed.
func (p *Proxy) Delete(key string) (bool, error) {
	existed, err := p.target.Delete(key)
	if err != nil {
		return false, err
	}
	n := p.membrane.registry.Notify(p.target, key)
	p.membrane.observe(OpDelete, p.target, key, n)
	return existed, nil
}

// Has delegates containment to the Original Target. No tracking.
func (p *Proxy) Has(key string) bool {
	return p.target.Has(key)
}

// OwnKeys returns the Original Target's own key list, enumerable and
// non-enumerable alike. No tracking.
func (p *Proxy) OwnKeys() []string {
	return p.target.OwnKeys()
}

// Proto delegates to the Original Target.
func (p *Proxy) Proto() *Object {
	return p.target.Proto()
}

// SetProto always fails: the prototype of an observable value is
// immutable through the membrane.
func (p *Proxy) SetProto(proto *Object) error {
	return usageError(diag.CodeImmutableProto, "setPrototype", describeValue(p.target), ErrImmutablePrototype)
}

// IsExtensible reports the Original Target's extensibility. If the
// original has become non-extensible the shadow is locked first, so the
// reported state never disagrees with the skeleton.
func (p *Proxy) IsExtensible() bool {
	extensible := p.target.IsExtensible()
	if !extensible {
		p.lockShadow()
	}
	return extensible
}

// PreventExtensions makes the Original Target non-extensible, locking the
// shadow before the new state can be observed.
func (p *Proxy) PreventExtensions() {
	p.target.PreventExtensions()
	p.lockShadow()
}

// OwnDescriptor returns the descriptor for an own property. Configurable
// descriptors pass through unchanged (re-wrapping of the value is
// deferred to the next read). Non-configurable descriptors are returned
// with their value wrapped if observable and mirrored onto the shadow, so
// later structural checks against the skeleton stay consistent and the
// reported shape is stable across repeated queries.
func (p *Proxy) OwnDescriptor(key string) (Descriptor, bool) {
	d, ok := p.target.OwnDescriptor(key)
	if !ok {
		return Descriptor{}, false
	}
	if d.Configurable {
		return d, true
	}
	if IsObservable(d.Value) {
		d.Value = p.membrane.wrapObservable(d.Value)
	}
	p.mirrorDescriptor(key, d)
	return d, true
}

// DefineOwn defines key on the Original Target. The descriptor's value is
// always unwrapped first - a proxy must never be stored inside real data.
// Non-configurable descriptors are mirrored onto the shadow after the
// original accepts them.
func (p *Proxy) DefineOwn(key string, d Descriptor) error {
	d.Value = Unwrap(d.Value)
	if err := p.target.DefineOwn(key, d); err != nil {
		return err
	}
	if !d.Configurable {
		p.mirrorDescriptor(key, d)
	}
	p.membrane.observe(OpDefine, p.target, key, 0)
	return nil
}

// Invoke always fails: an observable data wrapper is never callable.
func (p *Proxy) Invoke(args ...Value) (Value, error) {
	return nil, usageError(diag.CodeNotCallable, "apply", describeValue(p.target), ErrNotCallable)
}

// New always fails: an observable data wrapper is never constructible.
func (p *Proxy) New(args ...Value) (Value, error) {
	return nil, usageError(diag.CodeNotCallable, "construct", describeValue(p.target), ErrNotCallable)
}

var _ Target = (*Proxy)(nil)
