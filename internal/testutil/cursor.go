// Package testutil provides deterministic test doubles shared across the
// metasnap test suites: an in-memory scripted cursor and a fixed clock.
package testutil

import (
	"errors"

	"github.com/tetrad-labs/metasnap/internal/engine"
)

// ScriptedResultSet is one canned result set served by a ScriptedCursor.
type ScriptedResultSet struct {
	Columns []engine.ColumnMeta
	Rows    [][]any
}

// ScriptedCursor serves a fixed sequence of result sets through the
// engine.Cursor interface. It lets tests exercise contract violations
// (missing sets, bad values, wrong shapes) without a database.
//
// Error injection: set FailColumnsErr, FailRowErr or FailAdvanceErr to make
// the corresponding operation fail once the matching position is reached.
type ScriptedCursor struct {
	Sets []ScriptedResultSet

	// FailRowErr, when non-nil, is returned by ReadRow at set FailRowSet /
	// row FailRowIndex.
	FailRowErr   error
	FailRowSet   int
	FailRowIndex int

	// FailAdvanceErr, when non-nil, is returned by the NextResultSet call
	// leaving set FailAdvanceAfter.
	FailAdvanceErr   error
	FailAdvanceAfter int

	setIdx int
	rowIdx int
	closed bool
	// CloseCount tracks Close calls so tests can assert cleanup happened
	// on every exit path.
	CloseCount int
}

var errCursorClosed = errors.New("scripted cursor is closed")

// NewScriptedCursor positions a cursor before the first row of the first
// result set.
func NewScriptedCursor(sets ...ScriptedResultSet) *ScriptedCursor {
	return &ScriptedCursor{Sets: sets, rowIdx: -1}
}

func (c *ScriptedCursor) current() (*ScriptedResultSet, error) {
	if c.closed {
		return nil, errCursorClosed
	}
	if c.setIdx >= len(c.Sets) {
		return nil, errors.New("scripted cursor positioned past last result set")
	}
	return &c.Sets[c.setIdx], nil
}

func (c *ScriptedCursor) Columns() ([]engine.ColumnMeta, error) {
	set, err := c.current()
	if err != nil {
		return nil, err
	}
	return set.Columns, nil
}

func (c *ScriptedCursor) Next() (bool, error) {
	set, err := c.current()
	if err != nil {
		return false, err
	}
	if c.rowIdx+1 >= len(set.Rows) {
		return false, nil
	}
	c.rowIdx++
	return true, nil
}

func (c *ScriptedCursor) ReadRow() ([]any, error) {
	set, err := c.current()
	if err != nil {
		return nil, err
	}
	if c.FailRowErr != nil && c.setIdx == c.FailRowSet && c.rowIdx == c.FailRowIndex {
		return nil, c.FailRowErr
	}
	if c.rowIdx < 0 || c.rowIdx >= len(set.Rows) {
		return nil, errors.New("scripted cursor not positioned on a row")
	}
	return set.Rows[c.rowIdx], nil
}

func (c *ScriptedCursor) NextResultSet() (bool, error) {
	if c.closed {
		return false, errCursorClosed
	}
	if c.FailAdvanceErr != nil && c.setIdx == c.FailAdvanceAfter {
		return false, c.FailAdvanceErr
	}
	c.setIdx++
	c.rowIdx = -1
	return c.setIdx < len(c.Sets), nil
}

func (c *ScriptedCursor) Close() error {
	c.closed = true
	c.CloseCount++
	return nil
}

// ContractSets builds one empty scripted result set per contract entry, in
// contract order, with provider metadata derived from the descriptors.
// Tests overlay rows onto the sets they care about.
func ContractSets() []ScriptedResultSet {
	schemas := engine.ContractSchemas()
	sets := make([]ScriptedResultSet, len(schemas))
	for i, rs := range schemas {
		cols := make([]engine.ColumnMeta, len(rs.Columns))
		for j, col := range rs.Columns {
			cols[j] = engine.ColumnMeta{
				Ordinal:      col.Ordinal,
				Name:         col.Name,
				ProviderType: providerTypeFor(col.Type),
			}
		}
		sets[i] = ScriptedResultSet{Columns: cols}
	}
	return sets
}

// SetIndex returns the contract position of the named result set, or -1.
func SetIndex(name string) int {
	for i, n := range engine.ResultSetNames() {
		if n == name {
			return i
		}
	}
	return -1
}

func providerTypeFor(t engine.ColumnType) string {
	switch t {
	case engine.TypeInt32:
		return "INT"
	case engine.TypeInt64:
		return "BIGINT"
	case engine.TypeBool:
		return "BIT"
	case engine.TypeUUID:
		return "UNIQUEIDENTIFIER"
	case engine.TypeDecimal:
		return "DECIMAL"
	default:
		return "NVARCHAR"
	}
}
