// Package engine implements the metasnap extraction engine: it drives a
// forward-only multi-result-set cursor through the fixed 22-set contract and
// decodes each result set into the typed rows of internal/model.
//
// ARCHITECTURE:
//
// Single-pass, single-threaded run:
// One extraction request drives one cursor sequentially. The cursor protocol
// is strictly ordered - result sets cannot be read out of order, rows cannot
// be rewound - so there is no internal fan-out and no shared mutable state.
// Cancellation is cooperative: the context is checked before each row read
// and before each result-set advance, never mid-row.
//
// Processing flow:
//  1. The Sequencer owns the processor table (one processor per result set,
//     sorted by priority then name, fixed at construction).
//  2. Each processor maps its result set row-by-row through typed column
//     accessors and a projection into one typed-row kind.
//  3. Typed rows accumulate into a model.Accumulator, finalized into an
//     immutable model.Snapshot after the last result set.
//
// Capture-then-raise:
// Because the cursor cannot be re-read after a failure, the full diagnostic
// snapshot of a failing row (every column, not just the failing one) is
// captured eagerly inside the same row-read pass that detects the failure.
// Every raised error is self-describing; nothing needs the cursor afterwards.
//
// The engine is designed for correctness and diagnosability, not throughput.
package engine
