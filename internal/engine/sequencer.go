package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tetrad-labs/metasnap/internal/model"
)

// State is the sequencer's position in its run lifecycle.
type State string

const (
	StateNotStarted        State = "NotStarted"
	StateAwaitingResultSet State = "AwaitingResultSet"
	StateProcessingRows    State = "ProcessingRows"
	StateCompleted         State = "Completed"
	StateFailed            State = "Failed"
)

// Sequencer owns the ordered processor table and drives one cursor through
// it: process result set i, advance to result set i+1, repeat. A cursor
// that ends while processors remain is a contract violation, not a partial
// success.
//
// A Sequencer is single-use: construct, Run once, discard. State is
// exposed for observability and tests only.
type Sequencer struct {
	procs     []processor
	overrides Overrides
	log       *slog.Logger
	state     State
}

// NewSequencer builds a sequencer with the full 22-set contract order and
// the given override registry.
func NewSequencer(overrides Overrides, log *slog.Logger) *Sequencer {
	if log == nil {
		log = slog.Default()
	}
	return &Sequencer{
		procs:     buildProcessors(),
		overrides: overrides,
		log:       log,
		state:     StateNotStarted,
	}
}

// State returns the sequencer's current lifecycle state.
func (s *Sequencer) State() State { return s.state }

// Run drives the cursor through every result set in contract order and
// finalizes the accumulated rows into a Snapshot. The snapshot's database
// name is resolved from the databaseInfo result set.
//
// Run does not close the cursor; the owning backend releases it on every
// exit path. The context is checked before each result-set advance (row
// level checks happen inside the mapper).
func (s *Sequencer) Run(ctx context.Context, cur Cursor) (*model.Snapshot, error) {
	if s.state != StateNotStarted {
		return nil, fmt.Errorf("sequencer already ran (state %s)", s.state)
	}

	acc := model.NewAccumulator()
	for i, p := range s.procs {
		s.state = StateProcessingRows
		count, err := p.run(ctx, cur, acc, s.overrides, s.log)
		if err != nil {
			s.state = StateFailed
			return nil, err
		}
		s.log.Debug("result set mapped", "resultSet", p.def.name, "rows", count)

		if i+1 < len(s.procs) {
			s.state = StateAwaitingResultSet
			if err := ctx.Err(); err != nil {
				s.state = StateFailed
				return nil, err
			}
			more, err := cur.NextResultSet()
			if err != nil {
				s.state = StateFailed
				return nil, err
			}
			if !more {
				next := s.procs[i+1].def
				s.state = StateFailed
				return nil, &ResultSetMissingError{
					CompletedName: p.def.name,
					CompletedRows: count,
					ExpectedName:  next.name,
					ExpectedIndex: i + 1,
				}
			}
		} else if more, err := cur.NextResultSet(); err == nil && more {
			// Trailing sets beyond the contract are tolerated but loud:
			// they usually mean the script grew a statement the contract
			// does not know about yet.
			s.log.Warn("source returned more result sets than the contract declares",
				"lastContractSet", p.def.name)
		}
	}

	s.state = StateCompleted

	name := ""
	if info := acc.DatabaseInfo(); len(info) > 0 {
		name = info[0].Name
	}
	return acc.Finalize(name), nil
}
