package observable

import (
	"fmt"
	"strconv"

	"github.com/membrane-dev/membrane/internal/diag"
)

// LengthKey is the synthetic length property every sequence carries.
// It is writable, non-enumerable and non-configurable, matching the host
// object model the membrane reproduces.
const LengthKey = "length"

// Array is an ordered indexable sequence. Own properties are the decimal
// element indices plus LengthKey. Sequences are always observable.
type Array struct {
	elems      []Descriptor
	extensible bool
}

// NewArray creates an extensible sequence holding the given values.
func NewArray(values ...Value) *Array {
	a := &Array{extensible: true}
	for _, v := range values {
		a.elems = append(a.elems, NewDescriptor(v))
	}
	return a
}

// Len returns the current element count.
func (a *Array) Len() int {
	return len(a.elems)
}

// Push appends values, growing the internal length immediately. This is
// the structural-change path that makes a later same-value length write
// still observable.
func (a *Array) Push(values ...Value) error {
	if !a.extensible {
		return propertyError(diag.CodeNotExtensible, "push", LengthKey, ErrNotExtensible)
	}
	for _, v := range values {
		a.elems = append(a.elems, NewDescriptor(v))
	}
	return nil
}

// Kind implements Target.
func (a *Array) Kind() Kind {
	return KindSequence
}

// Get returns the element at a decimal index, or the length.
func (a *Array) Get(key string) (Value, bool) {
	if key == LengthKey {
		return len(a.elems), true
	}
	if i, ok := parseIndex(key); ok && i < len(a.elems) {
		return a.elems[i].Value, true
	}
	return nil, false
}

// Set writes an element or the length. Writing an index at or past the
// current length grows the sequence (requires extensibility); writing a
// smaller length truncates.
func (a *Array) Set(key string, v Value) error {
	if key == LengthKey {
		n, ok := v.(int)
		if !ok || n < 0 {
			return fmt.Errorf("membrane: sequence length must be a non-negative int, got %T", v)
		}
		return a.setLength(n)
	}
	i, ok := parseIndex(key)
	if !ok {
		return fmt.Errorf("membrane: sequence key must be a decimal index or %q, got %q", LengthKey, key)
	}
	if i < len(a.elems) {
		if !a.elems[i].Writable {
			return propertyError(diag.CodeReadOnlyProperty, "set", key, ErrReadOnlyProperty)
		}
		a.elems[i].Value = v
		return nil
	}
	if !a.extensible {
		return propertyError(diag.CodeNotExtensible, "set", key, ErrNotExtensible)
	}
	for len(a.elems) < i {
		a.elems = append(a.elems, NewDescriptor(nil))
	}
	a.elems = append(a.elems, NewDescriptor(v))
	return nil
}

func (a *Array) setLength(n int) error {
	switch {
	case n < len(a.elems):
		a.elems = a.elems[:n]
	case n > len(a.elems):
		if !a.extensible {
			return propertyError(diag.CodeNotExtensible, "set", LengthKey, ErrNotExtensible)
		}
		for len(a.elems) < n {
			a.elems = append(a.elems, NewDescriptor(nil))
		}
	}
	return nil
}

// Delete clears an element in place (the sequence keeps its length) and
// reports whether the index was populated. The length property is
// non-configurable and cannot be deleted.
func (a *Array) Delete(key string) (bool, error) {
	if key == LengthKey {
		return false, propertyError(diag.CodeNonConfigurable, "delete", key, ErrNonConfigurable)
	}
	if i, ok := parseIndex(key); ok && i < len(a.elems) {
		a.elems[i] = NewDescriptor(nil)
		return true, nil
	}
	return false, nil
}

// Has implements Target.
func (a *Array) Has(key string) bool {
	if key == LengthKey {
		return true
	}
	i, ok := parseIndex(key)
	return ok && i < len(a.elems)
}

// OwnKeys returns the element indices in order, then the length key.
func (a *Array) OwnKeys() []string {
	out := make([]string, 0, len(a.elems)+1)
	for i := range a.elems {
		out = append(out, strconv.Itoa(i))
	}
	return append(out, LengthKey)
}

// OwnDescriptor implements Target. The length descriptor is synthesized
// as writable, non-enumerable, non-configurable.
func (a *Array) OwnDescriptor(key string) (Descriptor, bool) {
	if key == LengthKey {
		return Descriptor{Value: len(a.elems), Writable: true}, true
	}
	if i, ok := parseIndex(key); ok && i < len(a.elems) {
		return a.elems[i], true
	}
	return Descriptor{}, false
}

// DefineOwn implements Target with the same configurability invariants as
// records. Defining the length property may only change its value.
func (a *Array) DefineOwn(key string, d Descriptor) error {
	if key == LengthKey {
		if d.Configurable || d.Enumerable || !d.Writable {
			return propertyError(diag.CodeNonConfigurable, "defineProperty", key, ErrNonConfigurable)
		}
		n, ok := d.Value.(int)
		if !ok || n < 0 {
			return fmt.Errorf("membrane: sequence length must be a non-negative int, got %T", d.Value)
		}
		return a.setLength(n)
	}
	i, ok := parseIndex(key)
	if !ok {
		return fmt.Errorf("membrane: sequence key must be a decimal index or %q, got %q", LengthKey, key)
	}
	if i < len(a.elems) {
		cur := a.elems[i]
		if !cur.Configurable {
			if d.Configurable || d.Enumerable != cur.Enumerable {
				return propertyError(diag.CodeNonConfigurable, "defineProperty", key, ErrNonConfigurable)
			}
			if !cur.Writable && (d.Writable || !sameValue(d.Value, cur.Value)) {
				return propertyError(diag.CodeNonConfigurable, "defineProperty", key, ErrNonConfigurable)
			}
		}
		a.elems[i] = d
		return nil
	}
	if !a.extensible {
		return propertyError(diag.CodeNotExtensible, "defineProperty", key, ErrNotExtensible)
	}
	for len(a.elems) < i {
		a.elems = append(a.elems, NewDescriptor(nil))
	}
	a.elems = append(a.elems, d)
	return nil
}

// Proto returns nil; sequences carry no prototype record.
func (a *Array) Proto() *Object {
	return nil
}

// IsExtensible implements Target.
func (a *Array) IsExtensible() bool {
	return a.extensible
}

// PreventExtensions implements Target. Irreversible; the length becomes
// effectively frozen at its current value for growth.
func (a *Array) PreventExtensions() {
	a.extensible = false
}

// parseIndex parses a canonical decimal element index.
func parseIndex(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	if len(key) > 1 && key[0] == '0' {
		return 0, false
	}
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

var _ Target = (*Array)(nil)
