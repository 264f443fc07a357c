// Package canonical builds the nested canonical document (modules ->
// entities -> fragment arrays) from a flat extraction Snapshot, serializes
// it as RFC 8785 style canonical JSON, and validates its structural
// invariants before it reaches downstream hydration.
//
// Canonical serialization guarantees byte-identical documents for identical
// snapshots: object keys sorted by UTF-16 code units, NFC-normalized
// strings, no HTML escaping, numbers carried as their original JSON
// literals (never through float64).
package canonical
