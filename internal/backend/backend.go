// Package backend provides the two execution backends of metasnap: the live
// backend drives the extraction script against a real connection, the
// fixture backend replays recorded JSON documents. Both implement Reader,
// so everything downstream of a Snapshot is backend-agnostic.
package backend

import (
	"context"
	"fmt"

	"github.com/tetrad-labs/metasnap/internal/model"
)

// Reader is the single read contract both backends implement.
type Reader interface {
	// Read performs one extraction run for the request and returns the
	// immutable snapshot. All resources acquired for the run are released
	// before Read returns, on every exit path.
	Read(ctx context.Context, req model.Request) (*model.Snapshot, error)
}

// ExecutionError wraps a provider-level failure (connectivity, timeout,
// server-side syntax error). Callers match on this type, never on the
// provider's own error types.
type ExecutionError struct {
	Stage string // "open", "query", "read"
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("EXECUTION_FAILED: %s: %v", e.Stage, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// FixtureMissingError reports that no fixture was recorded for a request,
// or that a manifest entry points at a file that does not exist. It is
// deliberately distinct from FixtureMalformedError so test tooling can tell
// "nothing recorded" apart from "recording is broken".
type FixtureMissingError struct {
	Key  string
	Path string // referenced file, empty when the manifest entry itself is missing
}

func (e *FixtureMissingError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("FIXTURE_MISSING: fixture file %q for key %q does not exist", e.Path, e.Key)
	}
	return fmt.Sprintf("FIXTURE_MISSING: no fixture recorded for key %q", e.Key)
}

// FixtureMalformedError reports that a recorded fixture exists but cannot
// be decoded into a canonical-shaped document.
type FixtureMalformedError struct {
	Path string
	Err  error
}

func (e *FixtureMalformedError) Error() string {
	return fmt.Sprintf("FIXTURE_MALFORMED: %s: %v", e.Path, e.Err)
}

func (e *FixtureMalformedError) Unwrap() error { return e.Err }
