package observable

import "reflect"

// Value is any value that can live inside an observable container.
// Primitives (nil, bool, int64, float64, string), *Object, *Array and
// *Proxy all flow through the membrane unchanged in type; any other Go
// value is treated as foreign (non-observable) data.
type Value = any

// Kind identifies the shape of a Target.
type Kind uint8

const (
	// KindRecord is a plain keyed record (Object).
	KindRecord Kind = iota + 1

	// KindSequence is an ordered indexable sequence (Array).
	KindSequence
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Descriptor describes the state of a single property on a Target.
// The zero value is not useful; use NewDescriptor for the default
// (writable, enumerable, configurable) shape.
type Descriptor struct {
	// Value is the property's current value.
	Value Value

	// Writable allows the value to change through Set.
	Writable bool

	// Enumerable marks the property as visible to enumeration-oriented
	// callers. OwnKeys reports both enumerable and non-enumerable keys;
	// the flag is carried for descriptor fidelity.
	Enumerable bool

	// Configurable allows the descriptor itself to be redefined or the
	// property to be deleted. Non-configurable properties are the ones
	// the shadow-locking protocol must mirror.
	Configurable bool
}

// NewDescriptor returns a fully permissive descriptor for v.
func NewDescriptor(v Value) Descriptor {
	return Descriptor{Value: v, Writable: true, Enumerable: true, Configurable: true}
}

// Target is a gettable/settable/enumerable container: the contract shared
// by Object, Array and the membrane Proxy that fronts them.
type Target interface {
	// Kind reports whether this is a record or a sequence.
	Kind() Kind

	// Get returns the value for key, consulting the prototype chain for
	// records. The second result reports whether the key resolved.
	Get(key string) (Value, bool)

	// Set assigns key to v, enforcing writability and extensibility.
	Set(key string, v Value) error

	// Delete removes an own property, reporting whether it existed.
	// Deleting a non-configurable property is an error.
	Delete(key string) (bool, error)

	// Has reports whether key resolves on this target (own or inherited).
	Has(key string) bool

	// OwnKeys returns every own key, enumerable or not, in a stable order.
	OwnKeys() []string

	// OwnDescriptor returns the descriptor for an own property.
	OwnDescriptor(key string) (Descriptor, bool)

	// DefineOwn creates or reconfigures an own property, enforcing the
	// non-configurable and extensibility invariants.
	DefineOwn(key string, d Descriptor) error

	// Proto returns the prototype record, or nil.
	Proto() *Object

	// IsExtensible reports whether new own properties may be added.
	IsExtensible() bool

	// PreventExtensions makes the target permanently non-extensible.
	PreventExtensions()
}

// IsObservable reports whether v is eligible for membrane wrapping:
// a sequence, or a record with a bare (nil) prototype. Proxies, foreign
// Go values and primitives are not observable. Callers that hold a proxy
// should unwrap first; Wrap does this automatically.
func IsObservable(v Value) bool {
	switch t := v.(type) {
	case *Array:
		return t != nil
	case *Object:
		return t != nil && t.proto == nil
	default:
		return false
	}
}

// isForeignObject reports whether v is object-shaped but not observable:
// a record with a prototype, or any non-primitive foreign Go value.
// Reads returning such values are unobservable and worth a diagnostic.
func isForeignObject(v Value) bool {
	switch v.(type) {
	case nil, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, string,
		*Array, *Proxy:
		return false
	case *Object:
		return !IsObservable(v)
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Struct,
		reflect.Interface, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

// sameValue reports whether old and new are the same for change-detection
// purposes. Containers and proxies compare by reference identity, never by
// deep equality; primitives compare by value. Uncomparable foreign values
// are always considered changed.
func sameValue(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case *Object:
		bv, ok := b.(*Object)
		return ok && av == bv
	case *Array:
		bv, ok := b.(*Array)
		return ok && av == bv
	case *Proxy:
		bv, ok := b.(*Proxy)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	if !ra.Type().Comparable() {
		return false
	}
	return a == b
}
