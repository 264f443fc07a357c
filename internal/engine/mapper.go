package engine

import (
	"context"
	"fmt"
	"log/slog"
)

// resultSetDef pairs a result-set name with its descriptor table and the
// explicit priority that fixes its position in the contract order.
type resultSetDef struct {
	name     string
	priority int
	columns  []Column
}

// mapRows decodes every row of the current result set through project,
// returning the typed rows in cursor order. Zero rows is a valid outcome.
//
// On any projection failure (including accessor errors) the full row is
// captured into a RowSnapshot first and a RowMappingError is returned; the
// run never continues silently past a bad row. The context is checked
// before each row read, never mid-row.
func mapRows[T any](ctx context.Context, cur Cursor, def *resultSetDef, overrides Overrides, log *slog.Logger, project func(*RowReader) (T, error)) ([]T, error) {
	cols, err := cur.Columns()
	if err != nil {
		return nil, err
	}
	if len(cols) != len(def.columns) {
		return nil, &ShapeError{ResultSet: def.name, Expected: len(def.columns), Actual: len(cols)}
	}

	var out []T
	for rowIndex := 0; ; rowIndex++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		more, err := cur.Next()
		if err != nil {
			return nil, err
		}
		if !more {
			return out, nil
		}
		vals, err := cur.ReadRow()
		if err != nil {
			return nil, err
		}

		reader := &RowReader{
			resultSet: def.name,
			cols:      cols,
			vals:      vals,
			overrides: overrides,
			log:       log,
		}
		row, err := runProjection(reader, project)
		if err != nil {
			return nil, &RowMappingError{
				ResultSet: def.name,
				RowIndex:  rowIndex,
				Snapshot:  CaptureRow(def.name, rowIndex, cols, vals),
				Err:       err,
			}
		}
		out = append(out, row)
	}
}

// runProjection invokes project, converting a panic into an error so the
// mapper can still capture the row before raising.
func runProjection[T any](reader *RowReader, project func(*RowReader) (T, error)) (row T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("projection panicked: %v", r)
		}
	}()
	return project(reader)
}
