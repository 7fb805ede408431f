package observable

import (
	"errors"
	"testing"
	"time"
)

func TestReadDuringRenderRecordsDependency(t *testing.T) {
	bridge := newTestBridge()
	m := New(bridge)
	o := NewObject()
	_ = o.Set("a", 1)
	p, _ := m.Wrap(o)

	c := newTestConsumer()
	bridge.renderAs(c, func() {
		if v, ok := p.Get("a"); !ok || v != 1 {
			t.Errorf("read through proxy: got %v (found=%v)", v, ok)
		}
	})

	if err := p.Set("a", 2); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !c.Dirty() {
		t.Error("consumer must be marked dirty")
	}
	if c.scheduledCount() != 1 {
		t.Errorf("expected exactly 1 scheduling, got %d", c.scheduledCount())
	}
}

func TestReadOutsideRenderIsPassthrough(t *testing.T) {
	bridge := newTestBridge()
	m := New(bridge)
	o := NewObject()
	_ = o.Set("a", 1)
	p, _ := m.Wrap(o)

	_, _ = p.Get("a") // no pass active: unobserved

	c := newTestConsumer()
	bridge.renderAs(c, func() {})

	_ = p.Set("a", 2)
	if c.Dirty() || c.scheduledCount() != 0 {
		t.Error("untracked read must not subscribe")
	}
}

func TestSameValueWriteDoesNotNotify(t *testing.T) {
	bridge := newTestBridge()
	m := New(bridge)
	o := NewObject()
	_ = o.Set("a", 1)
	p, _ := m.Wrap(o)

	c := newTestConsumer()
	bridge.renderAs(c, func() { _, _ = p.Get("a") })

	if err := p.Set("a", 1); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if c.Dirty() || c.scheduledCount() != 0 {
		t.Error("same-value write must not notify")
	}
}

func TestReferenceInequalityDrivesNotification(t *testing.T) {
	bridge := newTestBridge()
	m := New(bridge)
	o := NewObject()
	inner := NewObject()
	_ = inner.Set("c", 2)
	_ = o.Set("b", inner)
	p, _ := m.Wrap(o)

	c := newTestConsumer()
	bridge.renderAs(c, func() { _, _ = p.Get("b") })

	// A structurally identical but distinct record still notifies.
	replacement := NewObject()
	_ = replacement.Set("c", 2)
	if err := p.Set("b", replacement); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if c.scheduledCount() != 1 {
		t.Errorf("reference inequality must notify, got %d schedulings", c.scheduledCount())
	}
}

func TestLengthWriteRegression(t *testing.T) {
	bridge := newTestBridge()
	m := New(bridge)
	a := NewArray(1, 2)
	p, _ := m.Wrap(a)

	c := newTestConsumer()
	bridge.renderAs(c, func() { _, _ = p.Get(LengthKey) })

	// Push already grew the backing store; the explicit length write sees
	// old == new but a structural change occurred. Documented exception
	// to the same-value rule.
	if err := a.Push(3); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if err := p.Set(LengthKey, 3); err != nil {
		t.Fatalf("length write failed: %v", err)
	}
	if c.scheduledCount() != 1 {
		t.Errorf("same-value length write must still notify, got %d", c.scheduledCount())
	}
}

func TestDeleteAlwaysNotifies(t *testing.T) {
	bridge := newTestBridge()
	m := New(bridge)
	o := NewObject()
	_ = o.Set("a", 1)
	p, _ := m.Wrap(o)

	c := newTestConsumer()
	bridge.renderAs(c, func() { _, _ = p.Get("a") })

	existed, err := p.Delete("a")
	if err != nil || !existed {
		t.Fatalf("delete: existed=%v err=%v", existed, err)
	}
	if c.scheduledCount() != 1 {
		t.Errorf("delete must notify, got %d", c.scheduledCount())
	}
}

// Documented quirk: deleting a property that never existed still notifies
// dependents of that (target, property) pair.
func TestDeleteMissingPropertyStillNotifies(t *testing.T) {
	bridge := newTestBridge()
	m := New(bridge)
	o := NewObject()
	p, _ := m.Wrap(o)

	c := newTestConsumer()
	bridge.renderAs(c, func() { _, _ = p.Get("ghost") })

	existed, err := p.Delete("ghost")
	if err != nil || existed {
		t.Fatalf("delete of missing: existed=%v err=%v", existed, err)
	}
	if c.scheduledCount() != 1 {
		t.Errorf("delete of a missing property must still notify, got %d", c.scheduledCount())
	}
}

func TestWriteDuringRenderFails(t *testing.T) {
	bridge := newTestBridge()
	m := New(bridge)
	o := NewObject()
	_ = o.Set("a", 1)
	p, _ := m.Wrap(o)

	c := newTestConsumer()
	var writeErr error
	bridge.renderAs(c, func() {
		writeErr = p.Set("a", 99)
	})

	if !errors.Is(writeErr, ErrRenderPhaseWrite) {
		t.Fatalf("expected ErrRenderPhaseWrite, got %v", writeErr)
	}
	var inv *InvariantError
	if !errors.As(writeErr, &inv) {
		t.Fatalf("expected *InvariantError, got %T", writeErr)
	}
	if inv.Property != "a" {
		t.Errorf("error must name the property, got %q", inv.Property)
	}
	if inv.ConsumerID != c.ID() {
		t.Errorf("error must name the active consumer, got %d want %d", inv.ConsumerID, c.ID())
	}
	// The original is untouched.
	if v, _ := o.Get("a"); v != 1 {
		t.Errorf("rejected write must leave the original unchanged, got %v", v)
	}
}

func TestNestedValuesComeBackWrapped(t *testing.T) {
	bridge := newTestBridge()
	m := New(bridge)
	outer := NewObject()
	inner := NewObject()
	_ = inner.Set("c", 2)
	_ = outer.Set("b", inner)
	p, _ := m.Wrap(outer)

	v, ok := p.Get("b")
	if !ok {
		t.Fatal("nested read failed")
	}
	nested, ok := v.(*Proxy)
	if !ok {
		t.Fatalf("nested observable value must come back wrapped, got %T", v)
	}
	if Unwrap(nested) != Target(inner) {
		t.Error("nested proxy must wrap the inner record")
	}

	// Mutating through the nested proxy notifies dependents of the
	// nested target, not the outer one.
	outerConsumer := newTestConsumer()
	innerConsumer := newTestConsumer()
	bridge.renderAs(outerConsumer, func() { _, _ = p.Get("b") })
	bridge.renderAs(innerConsumer, func() { _, _ = nested.Get("c") })

	if err := nested.Set("c", 3); err != nil {
		t.Fatalf("nested write failed: %v", err)
	}
	if innerConsumer.scheduledCount() != 1 {
		t.Errorf("inner consumer must be notified, got %d", innerConsumer.scheduledCount())
	}
	if outerConsumer.scheduledCount() != 0 {
		t.Errorf("outer consumer must not be notified by a nested write, got %d", outerConsumer.scheduledCount())
	}
}

func TestWriteUnwrapsProxies(t *testing.T) {
	bridge := newTestBridge()
	m := New(bridge)
	outer := NewObject()
	inner := NewObject()
	p, _ := m.Wrap(outer)
	pi, _ := m.Wrap(inner)

	if err := p.Set("inner", pi); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	raw, _ := outer.Get("inner")
	if _, isProxy := raw.(*Proxy); isProxy {
		t.Error("a proxy must never be stored inside real data")
	}
	if raw != Target(inner) {
		t.Errorf("original must hold the unwrapped record, got %T", raw)
	}
}

func TestForeignValueReadReturnsRaw(t *testing.T) {
	bridge := newTestBridge()
	m := New(bridge)
	o := NewObject()
	foreign := &time.Time{}
	_ = o.Set("t", foreign)
	p, _ := m.Wrap(o)

	v, ok := p.Get("t")
	if !ok || v != Value(foreign) {
		t.Errorf("foreign value must come back raw, got %v (found=%v)", v, ok)
	}
}

func TestPrototypeIsImmutableThroughProxy(t *testing.T) {
	bridge := newTestBridge()
	m := New(bridge)
	o := NewObject()
	p, _ := m.Wrap(o)

	if err := p.SetProto(NewObject()); !errors.Is(err, ErrImmutablePrototype) {
		t.Errorf("expected ErrImmutablePrototype, got %v", err)
	}
	if p.Proto() != nil {
		t.Error("prototype must be unchanged")
	}
}

func TestProxyIsNeitherCallableNorConstructible(t *testing.T) {
	m := New(newTestBridge())
	p, _ := m.Wrap(NewObject())

	if _, err := p.Invoke(); !errors.Is(err, ErrNotCallable) {
		t.Errorf("invoke must fail, got %v", err)
	}
	if _, err := p.New(); !errors.Is(err, ErrNotCallable) {
		t.Errorf("construct must fail, got %v", err)
	}
}

func TestHasAndOwnKeysDelegate(t *testing.T) {
	bridge := newTestBridge()
	m := New(bridge)
	o := NewObject()
	_ = o.Set("a", 1)
	_ = o.Set("b", 2)
	p, _ := m.Wrap(o)

	c := newTestConsumer()
	bridge.renderAs(c, func() {
		if !p.Has("a") || p.Has("z") {
			t.Error("Has must delegate to the original")
		}
		if keys := p.OwnKeys(); len(keys) != 2 {
			t.Errorf("expected 2 keys, got %v", keys)
		}
	})

	// Neither Has nor OwnKeys tracks.
	_ = p.Set("a", 9)
	if c.scheduledCount() != 0 {
		t.Errorf("enumeration must not create dependencies, got %d", c.scheduledCount())
	}
}
