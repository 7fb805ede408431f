package observable

import (
	"errors"
	"fmt"

	"github.com/membrane-dev/membrane/internal/diag"
)

// Sentinel errors for the membrane's invariant violations.
// All checks run before any Original Target mutation, so a returned error
// guarantees no partial state was left behind.
var (
	// ErrNotObservable is returned by Wrap for values that are not a
	// sequence or a bare-prototype record. Wrapping such a value would
	// silently defeat tracking, so it is a usage error, not a no-op.
	ErrNotObservable = errors.New("membrane: value is not observable")

	// ErrRenderPhaseWrite is returned when a write goes through a proxy
	// while a render pass is active. The render phase must be free of
	// observable side effects.
	ErrRenderPhaseWrite = errors.New("membrane: write during render pass")

	// ErrImmutablePrototype is returned when code attempts to change the
	// prototype of a wrapped value. The prototype of an observable value
	// is immutable through the membrane.
	ErrImmutablePrototype = errors.New("membrane: prototype of observable value is immutable")

	// ErrNotCallable is returned by Proxy.Invoke and Proxy.New. An
	// observable data wrapper is never callable nor constructible.
	ErrNotCallable = errors.New("membrane: observable value is not callable")

	// ErrNotExtensible is returned when adding a property to a
	// non-extensible target.
	ErrNotExtensible = errors.New("membrane: target is not extensible")

	// ErrNonConfigurable is returned when redefining or deleting a
	// non-configurable property, or writing a non-writable one.
	ErrNonConfigurable = errors.New("membrane: property is not configurable")

	// ErrReadOnlyProperty is returned when writing a non-writable property.
	ErrReadOnlyProperty = errors.New("membrane: property is not writable")
)

// InvariantError carries the context of a membrane invariant violation:
// the diagnostic code, the operation and operand, and (for render-purity
// violations) the consumer that was rendering.
type InvariantError struct {
	// Code is the diagnostic code (see internal/diag), e.g. "M002".
	Code string

	// Op is the trap or operation that failed, e.g. "set", "wrap".
	Op string

	// Property is the property name involved, if any.
	Property string

	// Operand describes the offending value, e.g. "record", "*time.Time".
	Operand string

	// ConsumerID is the identity of the actively rendering consumer for
	// render-purity violations; zero otherwise.
	ConsumerID uint64

	// Err is the underlying sentinel error.
	Err error
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, diag.Summary(e.Code))
	if e.Property != "" {
		msg += fmt.Sprintf(" (op=%s property=%q)", e.Op, e.Property)
	} else if e.Operand != "" {
		msg += fmt.Sprintf(" (op=%s operand=%s)", e.Op, e.Operand)
	} else {
		msg += fmt.Sprintf(" (op=%s)", e.Op)
	}
	if e.ConsumerID != 0 {
		msg += fmt.Sprintf(" consumer=%d", e.ConsumerID)
	}
	return msg
}

// Unwrap returns the sentinel error for errors.Is support.
func (e *InvariantError) Unwrap() error {
	return e.Err
}

// usageError builds an InvariantError for a usage violation.
func usageError(code, op, operand string, sentinel error) *InvariantError {
	return &InvariantError{Code: code, Op: op, Operand: operand, Err: sentinel}
}

// propertyError builds an InvariantError tied to a property.
func propertyError(code, op, property string, sentinel error) *InvariantError {
	return &InvariantError{Code: code, Op: op, Property: property, Err: sentinel}
}

// describeValue gives a short operand description for error messages.
func describeValue(v Value) string {
	switch v.(type) {
	case nil:
		return "nil"
	case *Object:
		return "record"
	case *Array:
		return "sequence"
	case *Proxy:
		return "proxy"
	default:
		return fmt.Sprintf("%T", v)
	}
}
