package engine

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes engine errors. Codes appear verbatim in failure
// diagnostics documents, so they are part of the outbound contract.
type ErrorCode string

const (
	// CodeResultSetMissing indicates the cursor ended while processors
	// remained. This is a contract violation, never a partial success.
	CodeResultSetMissing ErrorCode = "RESULT_SET_MISSING"

	// CodeRowMapping indicates a projection or accessor failed for one row.
	CodeRowMapping ErrorCode = "ROW_MAPPING_FAILED"

	// CodeColumnRead indicates a typed accessor hit a type mismatch or an
	// unexpected null.
	CodeColumnRead ErrorCode = "COLUMN_READ_FAILED"

	// CodeShapeMismatch indicates a result set arrived with the wrong
	// column count for its descriptor table.
	CodeShapeMismatch ErrorCode = "RESULT_SET_SHAPE_MISMATCH"
)

// ColumnReadError is the structured failure raised by a typed column
// accessor: which column, at which ordinal, what was expected and what the
// provider actually reported.
type ColumnReadError struct {
	ResultSet    string
	Column       string
	Ordinal      int
	Expected     ColumnType
	ProviderType string
	Reason       string
}

func (e *ColumnReadError) Error() string {
	return fmt.Sprintf("%s: result set %q column %q (ordinal %d): expected %s, provider type %q: %s",
		CodeColumnRead, e.ResultSet, e.Column, e.Ordinal, e.Expected, e.ProviderType, e.Reason)
}

// ShapeError reports a column-count mismatch between the descriptor table
// and the result set the provider actually returned.
type ShapeError struct {
	ResultSet string
	Expected  int
	Actual    int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: result set %q has %d columns, contract declares %d",
		CodeShapeMismatch, e.ResultSet, e.Actual, e.Expected)
}

// RowMappingError wraps a projection failure for one row together with the
// full diagnostic snapshot of that row. The snapshot is captured before this
// error is raised because the cursor cannot be rewound afterwards.
type RowMappingError struct {
	ResultSet string
	// RowIndex is zero-based within the result set.
	RowIndex int
	Snapshot *RowSnapshot
	Err      error
}

func (e *RowMappingError) Error() string {
	return fmt.Sprintf("%s: result set %q row %d: %v", CodeRowMapping, e.ResultSet, e.RowIndex, e.Err)
}

func (e *RowMappingError) Unwrap() error { return e.Err }

// ResultSetMissingError reports that the cursor had no further result set
// while processors remained. It names both sides of the break so schema
// drift can be diagnosed without re-running the script.
type ResultSetMissingError struct {
	// CompletedName is the last result set that finished successfully.
	CompletedName string
	CompletedRows int
	// ExpectedName is the result set that should have followed.
	ExpectedName  string
	ExpectedIndex int
}

func (e *ResultSetMissingError) Error() string {
	return fmt.Sprintf("%s: cursor ended after result set %q (%d rows); expected result set %d %q",
		CodeResultSetMissing, e.CompletedName, e.CompletedRows, e.ExpectedIndex, e.ExpectedName)
}

// CodeOf extracts the engine error code from err, unwrapping as needed.
// Returns "" when err carries no engine code.
func CodeOf(err error) ErrorCode {
	var (
		colErr   *ColumnReadError
		shapeErr *ShapeError
		rowErr   *RowMappingError
		rsErr    *ResultSetMissingError
	)
	switch {
	case errors.As(err, &rsErr):
		return CodeResultSetMissing
	case errors.As(err, &rowErr):
		return CodeRowMapping
	case errors.As(err, &shapeErr):
		return CodeShapeMismatch
	case errors.As(err, &colErr):
		return CodeColumnRead
	}
	return ""
}

// SnapshotOf extracts the diagnostic row snapshot from err, if any.
func SnapshotOf(err error) *RowSnapshot {
	var rowErr *RowMappingError
	if errors.As(err, &rowErr) {
		return rowErr.Snapshot
	}
	return nil
}
