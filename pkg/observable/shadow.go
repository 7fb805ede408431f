package observable

// The shadow target is an empty skeleton of the same kind as the Original
// Target. It holds no application data; it exists so the proxy's reported
// state can be checked against a backing structure the way the original
// object model demands: a non-configurable property must look identical
// on the proxy and its skeleton, and their extensibility must agree.
//
// Mirroring is lazy. The common case (fully configurable, fully
// extensible) never touches the shadow; properties are copied over on
// first need, and the whole target is mirrored and frozen only when the
// original becomes non-extensible.

// newShadow creates the empty skeleton for a target kind.
func newShadow(kind Kind) Target {
	if kind == KindSequence {
		return NewArray()
	}
	return NewObject()
}

// mirrorDescriptor copies one descriptor onto the shadow, wrapping an
// observable value first so the shadow never references raw application
// data. Errors are impossible by construction: the original enforces the
// same configurability invariants before the mirror is updated.
func (p *Proxy) mirrorDescriptor(key string, d Descriptor) {
	if IsObservable(d.Value) {
		d.Value = p.membrane.wrapObservable(d.Value)
	}
	_ = p.shadow.DefineOwn(key, d)
}

// lockShadow mirrors every own property of the original onto the shadow
// and freezes the shadow's extensibility. This must happen before the
// proxy reports the original as non-extensible; otherwise the proxy's
// reported state and its skeleton would disagree at the boundary.
func (p *Proxy) lockShadow() {
	if p.locked {
		return
	}
	for _, key := range p.target.OwnKeys() {
		if d, ok := p.target.OwnDescriptor(key); ok {
			p.mirrorDescriptor(key, d)
		}
	}
	p.shadow.PreventExtensions()
	p.locked = true
}

// ShadowConsistent verifies the skeleton invariants: extensibility
// agreement once locked, and every mirrored non-configurable property
// matching the original's shape. Exposed for tests and devtools; a false
// result means the lazy-locking protocol was skipped or misordered.
func (p *Proxy) ShadowConsistent() bool {
	if p.locked != !p.shadow.IsExtensible() {
		return false
	}
	if p.locked && p.target.IsExtensible() {
		return false
	}
	for _, key := range p.shadow.OwnKeys() {
		sd, ok := p.shadow.OwnDescriptor(key)
		if !ok {
			continue
		}
		td, ok := p.target.OwnDescriptor(key)
		if !ok {
			return false
		}
		if sd.Configurable != td.Configurable || sd.Enumerable != td.Enumerable {
			return false
		}
		if !sd.Writable && !td.Writable && !sameValue(Unwrap(sd.Value), td.Value) {
			return false
		}
	}
	return true
}
