// Package notify provides destinations for ledger events.
//
// The ledger emits one event per successful mutation and hands it to a
// single sink. This package supplies the sinks a deployment composes:
// a structured-log sink, a bounded in-memory ring buffer backing the
// events API, a fan-out combinator, and a capture sink for tests.
//
// All sinks are safe for concurrent use and never call back into the
// ledger.
package notify
