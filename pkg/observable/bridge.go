package observable

import "time"

// Consumer is an opaque reference to an entity that reads observable
// state during a render pass: typically a view or component instance.
// The membrane only reads its identity and dirty flag; lifecycle belongs
// to the render runtime.
type Consumer interface {
	// ID returns a stable unique identifier, used for set semantics and
	// notification dedup.
	ID() uint64

	// Dirty reports whether a re-render is already pending. The membrane
	// schedules a consumer only on its clean-to-dirty transition.
	Dirty() bool
}

// RenderBridge is the membrane's window into the host render loop. The
// membrane never drives rendering itself; it consults the bridge on every
// tracked read and hands dirty consumers back through it.
//
// Implementations must be safe for the single logical thread of control
// the membrane runs on; see pkg/runtime for the reference implementation.
type RenderBridge interface {
	// RenderingActive reports whether a render pass is in progress.
	RenderingActive() bool

	// CurrentConsumer returns the consumer currently rendering, or nil.
	CurrentConsumer() Consumer

	// MarkDirty flags the consumer for re-render. Idempotent.
	MarkDirty(c Consumer)

	// ScheduleRerender queues a re-render for a now-dirty consumer.
	// Implementations coalesce repeated scheduling of the same consumer.
	ScheduleRerender(c Consumer)
}

// MutationOp names the kind of structural change behind a MutationEvent.
type MutationOp string

const (
	OpSet    MutationOp = "set"
	OpDelete MutationOp = "delete"
	OpDefine MutationOp = "define"
)

// MutationEvent is a devtools-facing record of one mutation that went
// through the membrane and the notification fan-out it caused.
type MutationEvent struct {
	Op        MutationOp `json:"op"`
	Kind      string     `json:"kind"`
	Property  string     `json:"property"`
	Notified  int        `json:"notified"`
	Timestamp time.Time  `json:"timestamp"`
}

// Observer receives mutation events. Wired in by devtools; nil by default.
// Observers must not mutate observable state reentrantly.
type Observer interface {
	ObserveMutation(ev MutationEvent)
}
