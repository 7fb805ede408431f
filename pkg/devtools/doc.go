// Package devtools is a development-time inspector for the membrane:
// a Prometheus /metrics endpoint, a JSON /stats snapshot of the
// dependency registry and proxy cache, and an /events websocket that
// streams live mutation events to connected clients.
//
// The inspector observes, never drives: it attaches to a membrane as an
// observable.Observer and reads snapshots under the registry's own locks.
package devtools
