// Package observable is the reactive dependency-tracking membrane: it
// wraps plain data values so that reads performed while a consumer is
// rendering are recorded as dependencies, and writes notify exactly the
// consumers that depend on the touched property.
//
// # Core Types
//
// Object and Array are the plain containers the membrane understands.
// Membrane wraps them in Proxy values and keeps one proxy per target:
//
//	m := observable.New(bridge)
//	state := observable.NewObject()
//	_ = state.Set("count", 0)
//
//	proxy, _ := m.Wrap(state)
//	v, _ := proxy.Get("count")   // tracked during a render pass
//	_ = proxy.Set("count", 1)    // notifies dependents of (state, "count")
//
// Nested observable values come back wrapped, so deep reads and writes
// track and notify against the nested target, not the outer one.
//
// # Render Bridge
//
// The membrane never drives rendering. It consults a RenderBridge for
// "is a pass active" and "who is rendering", and hands consumers that
// transition clean-to-dirty back through MarkDirty and ScheduleRerender.
// pkg/runtime provides the reference bridge.
//
// # Concurrency
//
// The membrane runs on one logical thread of control: exactly one
// consumer renders at a time and no trap blocks or performs I/O. The
// registry and cache carry mutexes only so devtools can read snapshots
// while the render loop runs.
package observable
