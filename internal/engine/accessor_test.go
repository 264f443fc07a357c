package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestReader(vals []any, ov Overrides) *RowReader {
	cols := make([]ColumnMeta, len(vals))
	for i := range vals {
		cols[i] = ColumnMeta{Ordinal: i, Name: "col", ProviderType: "NVARCHAR"}
	}
	return &RowReader{
		resultSet: "modules",
		cols:      cols,
		vals:      vals,
		overrides: ov,
		log:       discardLogger(),
	}
}

func TestTextReadsStringAndBytes(t *testing.T) {
	r := newTestReader([]any{"hello", []byte("world")}, NewOverrides())

	s, err := r.Text(Column{0, "name", TypeText})
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	s, err = r.Text(Column{1, "other", TypeText})
	require.NoError(t, err)
	assert.Equal(t, "world", s)
}

func TestTextRejectsNull(t *testing.T) {
	r := newTestReader([]any{nil}, NewOverrides())

	_, err := r.Text(Column{0, "name", TypeText})
	require.Error(t, err)

	var colErr *ColumnReadError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, "modules", colErr.ResultSet)
	assert.Equal(t, "name", colErr.Column)
	assert.Equal(t, 0, colErr.Ordinal)
	assert.Equal(t, TypeText, colErr.Expected)
	assert.Contains(t, colErr.Reason, "NULL")
}

func TestTextNullWithOverrideYieldsZeroValue(t *testing.T) {
	ov := NewOverrides().WithOptional("modules", "name")
	r := newTestReader([]any{nil}, ov)

	s, err := r.Text(Column{0, "name", TypeText})
	require.NoError(t, err)
	assert.Equal(t, "", s)
}

func TestOverrideIsScopedToResultSet(t *testing.T) {
	// An override for a different result set must not leak into this one.
	ov := NewOverrides().WithOptional("entities", "name")
	r := newTestReader([]any{nil}, ov)

	_, err := r.Text(Column{0, "name", TypeText})
	require.Error(t, err)
	assert.Equal(t, CodeColumnRead, CodeOf(err))
}

func TestTextOrNilAcceptsNullWithoutOverride(t *testing.T) {
	r := newTestReader([]any{nil, "x"}, NewOverrides())

	v, err := r.TextOrNil(Column{0, "value", TypeText})
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = r.TextOrNil(Column{1, "value", TypeText})
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "x", *v)
}

func TestDescriptorAccessorKindMismatch(t *testing.T) {
	r := newTestReader([]any{"text"}, NewOverrides())

	// Descriptor says text, accessor reads int64.
	_, err := r.Int64(Column{0, "name", TypeText})
	require.Error(t, err)

	var colErr *ColumnReadError
	require.ErrorAs(t, err, &colErr)
	assert.Contains(t, colErr.Reason, "descriptor declares text")
}

func TestOrdinalOutOfRange(t *testing.T) {
	r := newTestReader([]any{"only"}, NewOverrides())

	_, err := r.Text(Column{5, "ghost", TypeText})
	require.Error(t, err)

	var colErr *ColumnReadError
	require.ErrorAs(t, err, &colErr)
	assert.Contains(t, colErr.Reason, "out of range")
}

func TestBoolAcceptsNativeAndIntegerForms(t *testing.T) {
	r := newTestReader([]any{true, int64(1), int64(0), int64(7)}, NewOverrides())

	b, err := r.Bool(Column{0, "flag", TypeBool})
	require.NoError(t, err)
	assert.True(t, b)

	b, err = r.Bool(Column{1, "flag", TypeBool})
	require.NoError(t, err)
	assert.True(t, b)

	b, err = r.Bool(Column{2, "flag", TypeBool})
	require.NoError(t, err)
	assert.False(t, b)

	_, err = r.Bool(Column{3, "flag", TypeBool})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid boolean")
}

func TestUUIDAcceptsTextAndBinaryForms(t *testing.T) {
	want := uuid.MustParse("a3c7d1e0-0000-4000-8000-000000000001")
	r := newTestReader([]any{want.String(), want[:], []byte(want.String()), "nope"}, NewOverrides())

	for ordinal := 0; ordinal < 3; ordinal++ {
		got, err := r.UUID(Column{ordinal, "id", TypeUUID})
		require.NoError(t, err, "ordinal %d", ordinal)
		assert.Equal(t, want, got)
	}

	_, err := r.UUID(Column{3, "id", TypeUUID})
	require.Error(t, err)
}

func TestInt32Overflow(t *testing.T) {
	r := newTestReader([]any{int64(1 << 40)}, NewOverrides())

	_, err := r.Int32(Column{0, "n", TypeInt32})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overflows int32")
}

func TestDecimalStaysTextual(t *testing.T) {
	r := newTestReader([]any{"123.4500", []byte("-0.001"), int64(42), float64(1.5)}, NewOverrides())

	cases := []struct {
		ordinal int
		want    string
	}{
		{0, "123.4500"},
		{1, "-0.001"},
		{2, "42"},
		{3, "1.5"},
	}
	for _, tc := range cases {
		got, err := r.Decimal(Column{tc.ordinal, "value", TypeDecimal})
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}
