package observable

import "github.com/membrane-dev/membrane/internal/diag"

// Object is a plain keyed record: insertion-ordered properties, an
// optional prototype record, and an extensibility flag. Objects with a
// nil (bare) prototype are observable; objects carrying a prototype
// behave like class instances and are not.
type Object struct {
	keys       []string
	props      map[string]Descriptor
	proto      *Object
	extensible bool
}

// NewObject creates an empty, extensible, bare-prototype record.
func NewObject() *Object {
	return &Object{
		props:      make(map[string]Descriptor),
		extensible: true,
	}
}

// NewObjectWithProto creates an extensible record inheriting from proto.
// Such records are not observable.
func NewObjectWithProto(proto *Object) *Object {
	o := NewObject()
	o.proto = proto
	return o
}

// Kind implements Target.
func (o *Object) Kind() Kind {
	return KindRecord
}

// Get returns the value for key, consulting the prototype chain.
func (o *Object) Get(key string) (Value, bool) {
	for cur := o; cur != nil; cur = cur.proto {
		if d, ok := cur.props[key]; ok {
			return d.Value, true
		}
	}
	return nil, false
}

// Set assigns key to v. Existing properties must be writable; new
// properties require the record to be extensible. Inherited properties
// are shadowed by a new own property, never written through.
func (o *Object) Set(key string, v Value) error {
	if d, ok := o.props[key]; ok {
		if !d.Writable {
			return propertyError(diag.CodeReadOnlyProperty, "set", key, ErrReadOnlyProperty)
		}
		d.Value = v
		o.props[key] = d
		return nil
	}
	if !o.extensible {
		return propertyError(diag.CodeNotExtensible, "set", key, ErrNotExtensible)
	}
	o.keys = append(o.keys, key)
	o.props[key] = NewDescriptor(v)
	return nil
}

// Delete removes an own property, reporting whether it existed.
func (o *Object) Delete(key string) (bool, error) {
	d, ok := o.props[key]
	if !ok {
		return false, nil
	}
	if !d.Configurable {
		return false, propertyError(diag.CodeNonConfigurable, "delete", key, ErrNonConfigurable)
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true, nil
}

// Has reports whether key resolves on this record or its prototype chain.
func (o *Object) Has(key string) bool {
	for cur := o; cur != nil; cur = cur.proto {
		if _, ok := cur.props[key]; ok {
			return true
		}
	}
	return false
}

// OwnKeys returns the record's own keys in insertion order.
func (o *Object) OwnKeys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// OwnDescriptor returns the descriptor for an own property.
func (o *Object) OwnDescriptor(key string) (Descriptor, bool) {
	d, ok := o.props[key]
	return d, ok
}

// DefineOwn creates or reconfigures an own property. Non-configurable
// properties may not change enumerability or regain configurability;
// non-writable ones may not change value or regain writability.
func (o *Object) DefineOwn(key string, d Descriptor) error {
	cur, ok := o.props[key]
	if !ok {
		if !o.extensible {
			return propertyError(diag.CodeNotExtensible, "defineProperty", key, ErrNotExtensible)
		}
		o.keys = append(o.keys, key)
		o.props[key] = d
		return nil
	}
	if !cur.Configurable {
		if d.Configurable || d.Enumerable != cur.Enumerable {
			return propertyError(diag.CodeNonConfigurable, "defineProperty", key, ErrNonConfigurable)
		}
		if !cur.Writable && (d.Writable || !sameValue(d.Value, cur.Value)) {
			return propertyError(diag.CodeNonConfigurable, "defineProperty", key, ErrNonConfigurable)
		}
	}
	o.props[key] = d
	return nil
}

// Proto returns the prototype record, or nil for bare records.
func (o *Object) Proto() *Object {
	return o.proto
}

// IsExtensible implements Target.
func (o *Object) IsExtensible() bool {
	return o.extensible
}

// PreventExtensions implements Target. Irreversible.
func (o *Object) PreventExtensions() {
	o.extensible = false
}

var _ Target = (*Object)(nil)
