package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureRowCapturesEveryColumn(t *testing.T) {
	cols := []ColumnMeta{
		{0, "id", "UNIQUEIDENTIFIER"},
		{1, "name", "NVARCHAR"},
		{2, "isActive", "BIT"},
		{3, "maxLength", "INT"},
	}
	vals := []any{"a3c7d1e0-0000-4000-8000-000000000001", "Customer", int64(1), nil}

	snap := CaptureRow("entities", 7, cols, vals)
	require.Len(t, snap.Columns, 4)
	assert.Equal(t, "entities", snap.ResultSet)
	assert.Equal(t, 7, snap.RowIndex)

	name, ok := snap.Column("NAME")
	require.True(t, ok)
	assert.Equal(t, "Customer", name.Value)
	assert.Equal(t, "NVARCHAR", name.ProviderType)
	assert.False(t, name.IsNull)

	null, ok := snap.Column("maxLength")
	require.True(t, ok)
	assert.True(t, null.IsNull)
	assert.Empty(t, null.Value)

	_, ok = snap.Column("ghost")
	assert.False(t, ok)
}

func TestCaptureRowTruncatesLongValues(t *testing.T) {
	long := strings.Repeat("x", maxValuePreview+100)
	snap := CaptureRow("columnDefaults", 0,
		[]ColumnMeta{{0, "definition", "NVARCHAR"}}, []any{long})

	col := snap.Columns[0]
	assert.True(t, col.Truncated)
	assert.Len(t, col.Value, maxValuePreview)
}

func TestCaptureRowToleratesMissingValues(t *testing.T) {
	// More columns than scanned values must not panic; the short column
	// carries a serialization error instead.
	snap := CaptureRow("modules", 0,
		[]ColumnMeta{{0, "a", "NVARCHAR"}, {1, "b", "NVARCHAR"}}, []any{"only"})

	require.Len(t, snap.Columns, 2)
	assert.Empty(t, snap.Columns[0].SerializationError)
	assert.NotEmpty(t, snap.Columns[1].SerializationError)
}

func TestCaptureRowRendersScalars(t *testing.T) {
	snap := CaptureRow("sequences", 0,
		[]ColumnMeta{{0, "increment", "BIGINT"}, {1, "enabled", "BIT"}, {2, "ratio", "FLOAT"}},
		[]any{int64(-5), true, float64(0.25)})

	assert.Equal(t, "-5", snap.Columns[0].Value)
	assert.Equal(t, "true", snap.Columns[1].Value)
	assert.Equal(t, "0.25", snap.Columns[2].Value)
}
