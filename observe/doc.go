// Package observe provides observability for guarded remote calls.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. Consumers wire the Sink into a guard.Caller as its
// EventSink.
package observe
