// Package diag is the registry of membrane diagnostic codes. Every
// invariant violation and developer-aid warning carries a stable code so
// errors are grep-able and documentable.
package diag

// Category classifies a diagnostic.
type Category string

const (
	// CategoryUsage covers programming errors: wrapping the wrong thing,
	// invoking a data proxy, mutating a prototype.
	CategoryUsage Category = "usage"

	// CategoryPurity covers render-purity violations: mutation while a
	// render pass is active.
	CategoryPurity Category = "purity"

	// CategoryModel covers object-model invariant failures:
	// extensibility and configurability conflicts.
	CategoryModel Category = "model"

	// CategoryWarning covers non-fatal developer aids.
	CategoryWarning Category = "warning"
)

// Template defines a registered diagnostic.
type Template struct {
	Category   Category
	Summary    string
	Detail     string
	Suggestion string
}

// Diagnostic codes.
const (
	CodeNotObservable    = "M001"
	CodeRenderPhaseWrite = "M002"
	CodeImmutableProto   = "M003"
	CodeNotCallable      = "M004"
	CodeForeignValueRead = "M005"
	CodeNotExtensible    = "M006"
	CodeNonConfigurable  = "M007"
	CodeNestedRenderPass = "M008"
	CodeReadOnlyProperty = "M009"
)

// registry maps diagnostic codes to their templates.
var registry = map[string]Template{
	CodeNotObservable: {
		Category:   CategoryUsage,
		Summary:    "value is not observable",
		Detail:     "Only sequences and bare-prototype records can be wrapped. Class-like records, foreign Go values and primitives cannot be tracked.",
		Suggestion: "Pass a plain record or sequence, or restructure the data so the mutable parts are plain containers.",
	},
	CodeRenderPhaseWrite: {
		Category:   CategoryPurity,
		Summary:    "write through membrane proxy during render pass",
		Detail:     "The render phase must be free of observable side effects. The write was rejected and the underlying data is unchanged.",
		Suggestion: "Move the mutation into an event handler or run it after the render pass completes.",
	},
	CodeImmutableProto: {
		Category:   CategoryUsage,
		Summary:    "prototype of an observable value is immutable",
		Detail:     "Changing the prototype of a wrapped value would change its observability class out from under the membrane.",
		Suggestion: "Build a new record with the desired prototype instead of mutating the wrapped one.",
	},
	CodeNotCallable: {
		Category:   CategoryUsage,
		Summary:    "observable data wrapper is not callable or constructible",
		Detail:     "Membrane proxies wrap plain data. Invoking or constructing one indicates a value of the wrong kind reached the membrane.",
		Suggestion: "Check the value handed to Wrap; functions and constructors are not observable data.",
	},
	CodeForeignValueRead: {
		Category:   CategoryWarning,
		Summary:    "read returned a non-observable object value",
		Detail:     "The value is returned unwrapped; mutations made to it will not notify any consumer.",
		Suggestion: "Store plain records/sequences in observable state, or treat the foreign value as immutable.",
	},
	CodeNotExtensible: {
		Category:   CategoryModel,
		Summary:    "cannot add property to a non-extensible target",
		Detail:     "The target was made non-extensible; new own properties are rejected.",
		Suggestion: "Define all properties before calling PreventExtensions.",
	},
	CodeNonConfigurable: {
		Category:   CategoryModel,
		Summary:    "property is non-configurable",
		Detail:     "Non-configurable properties cannot be redefined or deleted, and non-writable ones cannot change value.",
		Suggestion: "Define the property as configurable if it needs to change shape later.",
	},
	CodeNestedRenderPass: {
		Category:   CategoryPurity,
		Summary:    "render pass started while another is active",
		Detail:     "Exactly one consumer may be rendering at a time; render passes do not nest.",
		Suggestion: "Let the scheduler sequence consumer renders instead of rendering from inside a render.",
	},
	CodeReadOnlyProperty: {
		Category:   CategoryModel,
		Summary:    "property is not writable",
		Detail:     "The property's descriptor marks it non-writable; the write was rejected.",
		Suggestion: "Redefine the property as writable, or treat it as a constant.",
	},
}

// Lookup returns the template for a code, if registered.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Summary returns the short description for a code, or the code itself
// for unregistered codes.
func Summary(code string) string {
	if t, ok := registry[code]; ok {
		return t.Summary
	}
	return code
}

// Codes returns every registered code. Order is unspecified.
func Codes() []string {
	out := make([]string, 0, len(registry))
	for code := range registry {
		out = append(out, code)
	}
	return out
}
