package backend

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tetrad-labs/metasnap/internal/engine"
	"github.com/tetrad-labs/metasnap/internal/model"
)

// DefaultScript is the fixed multi-statement extraction script shipped with
// the binary. The text is an opaque resource: metasnap never generates or
// rewrites SQL, it only binds the request parameters and decodes the 22
// result sets the script returns in contract order.
//
//go:embed script/metadata.sql
var DefaultScript string

// OpenFunc produces a ready-to-use connection pool for one extraction run.
// Connection-string handling, authentication and retry/timeout policy all
// live behind this function; the live backend only opens, reads, closes.
type OpenFunc func(ctx context.Context) (*sql.DB, error)

// Live executes the extraction script against a real connection and drives
// the sequencer over the returned multi-result-set cursor.
//
// A Live backend is safe for concurrent Read calls as long as OpenFunc
// hands out independent connections; the backend itself keeps no mutable
// state across runs.
type Live struct {
	open      OpenFunc
	script    string
	overrides engine.Overrides
	log       *slog.Logger
}

// NewLive builds a live backend. An empty script selects DefaultScript.
func NewLive(open OpenFunc, script string, overrides engine.Overrides, log *slog.Logger) *Live {
	if script == "" {
		script = DefaultScript
	}
	if log == nil {
		log = slog.Default()
	}
	return &Live{open: open, script: script, overrides: overrides, log: log}
}

// Read performs one extraction run. Provider-level failures come back as
// *ExecutionError; contract violations keep their engine error types. The
// connection and cursor are scoped to this call and released on every exit
// path.
func (l *Live) Read(ctx context.Context, req model.Request) (*model.Snapshot, error) {
	db, err := l.open(ctx)
	if err != nil {
		return nil, &ExecutionError{Stage: "open", Err: err}
	}
	defer db.Close()

	args, err := scriptArgs(req)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, l.script, args...)
	if err != nil {
		return nil, &ExecutionError{Stage: "query", Err: err}
	}
	cur := engine.NewSQLCursor(rows)
	defer cur.Close()

	l.log.Info("extraction started", "modules", req.ModuleCSV(),
		"includeSystem", req.IncludeSystem, "includeInactive", req.IncludeInactive,
		"onlyActiveAttributes", req.OnlyActiveAttributes)

	seq := engine.NewSequencer(l.overrides, l.log)
	snap, err := seq.Run(ctx, cur)
	if err != nil {
		if engine.CodeOf(err) == "" && ctx.Err() == nil {
			// Not a contract error and not a cancellation: the provider
			// failed mid-read.
			return nil, &ExecutionError{Stage: "read", Err: err}
		}
		return nil, err
	}

	l.log.Info("extraction completed", "database", snap.DatabaseName, "rows", snap.TotalRows())
	return snap, nil
}

// scriptArgs renders the request as the script's bound parameters, in the
// fixed wire order: module CSV, include-system, include-inactive,
// only-active-attributes, and - only when filters exist - the JSON-encoded
// entity-filter payload as a fifth parameter.
func scriptArgs(req model.Request) ([]any, error) {
	args := []any{
		req.ModuleCSV(),
		req.IncludeSystem,
		req.IncludeInactive,
		req.OnlyActiveAttributes,
	}
	if len(req.EntityFilters) > 0 {
		payload, err := json.Marshal(req.EntityFilters)
		if err != nil {
			return nil, fmt.Errorf("encoding entity filters: %w", err)
		}
		args = append(args, string(payload))
	}
	return args, nil
}
