// Package model defines the typed domain values produced by an extraction
// run: the normalized Request, one immutable row struct per result-set kind,
// the mutable Accumulator scoped to a single run, and the immutable Snapshot
// the accumulator finalizes into.
//
// Rows are created only by the engine's row mappers and are never mutated
// after construction. The Accumulator is the only mutable aggregate in the
// system and is discarded once Finalize is called.
package model
