package engine

import (
	"database/sql"
	"fmt"
)

// ColumnMeta describes one column of the current result set as the provider
// reports it.
type ColumnMeta struct {
	Ordinal      int
	Name         string
	ProviderType string
}

// Cursor is a forward-only, single-pass view over a multi-result-set query.
//
// The protocol mirrors database/sql: Next advances within the current result
// set, NextResultSet advances to the following one, Columns describes the
// current result set. Neither rows nor result sets can be revisited.
//
// Implementations: SQLCursor (live backend) and testutil.ScriptedCursor.
type Cursor interface {
	// Columns describes the current result set. Valid after positioning on
	// a result set, including before the first Next.
	Columns() ([]ColumnMeta, error)

	// Next advances to the next row of the current result set. Returns
	// false with a nil error at the end of the set.
	Next() (bool, error)

	// ReadRow returns the raw provider values of the current row, one per
	// column, in ordinal order. NULL is represented as a nil element.
	ReadRow() ([]any, error)

	// NextResultSet advances past any unread rows to the following result
	// set. Returns false with a nil error when no further set exists.
	NextResultSet() (bool, error)

	// Close releases the underlying resources. Safe to call more than once.
	Close() error
}

// SQLCursor adapts *sql.Rows to the Cursor interface. It relies on the
// driver implementing driver.RowsNextResultSet for multi-statement scripts.
type SQLCursor struct {
	rows     *sql.Rows
	colCount int
}

// NewSQLCursor wraps rows. The caller transfers ownership; Close closes the
// underlying rows.
func NewSQLCursor(rows *sql.Rows) *SQLCursor {
	return &SQLCursor{rows: rows, colCount: -1}
}

func (c *SQLCursor) Columns() ([]ColumnMeta, error) {
	types, err := c.rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("reading column metadata: %w", err)
	}
	metas := make([]ColumnMeta, len(types))
	for i, ct := range types {
		metas[i] = ColumnMeta{
			Ordinal:      i,
			Name:         ct.Name(),
			ProviderType: ct.DatabaseTypeName(),
		}
	}
	c.colCount = len(metas)
	return metas, nil
}

func (c *SQLCursor) Next() (bool, error) {
	if c.rows.Next() {
		return true, nil
	}
	if err := c.rows.Err(); err != nil {
		return false, err
	}
	return false, nil
}

func (c *SQLCursor) ReadRow() ([]any, error) {
	if c.colCount < 0 {
		cols, err := c.rows.Columns()
		if err != nil {
			return nil, err
		}
		c.colCount = len(cols)
	}
	vals := make([]any, c.colCount)
	dests := make([]any, c.colCount)
	for i := range vals {
		dests[i] = &vals[i]
	}
	if err := c.rows.Scan(dests...); err != nil {
		return nil, err
	}
	return vals, nil
}

func (c *SQLCursor) NextResultSet() (bool, error) {
	c.colCount = -1
	if c.rows.NextResultSet() {
		return true, nil
	}
	if err := c.rows.Err(); err != nil {
		return false, err
	}
	return false, nil
}

func (c *SQLCursor) Close() error {
	return c.rows.Close()
}
