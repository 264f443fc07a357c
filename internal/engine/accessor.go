package engine

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
)

// ColumnType is the expected primitive kind of a contract column.
type ColumnType string

const (
	TypeInt32   ColumnType = "int32"
	TypeInt64   ColumnType = "int64"
	TypeText    ColumnType = "text"
	TypeBool    ColumnType = "bool"
	TypeUUID    ColumnType = "uuid"
	TypeDecimal ColumnType = "decimal"
)

// Column is an immutable (ordinal, name, expected type) descriptor. The
// descriptor tables in processors.go are defined once at startup and reused
// for every read; ordinals are unique within one result set.
type Column struct {
	Ordinal int
	Name    string
	Type    ColumnType
}

// RowReader exposes typed reads over the raw values of one row. It is
// created by the row mapper per row and must not be retained beyond the
// row's projection.
//
// Required accessors (Text, Int32, ...) raise a ColumnReadError on type
// mismatch or NULL - unless the column is registered in the override
// registry, in which case a NULL degrades to the zero value with a
// low-severity log line. The *OrNil accessors model columns the contract
// itself declares nullable and never fail on NULL.
type RowReader struct {
	resultSet string
	cols      []ColumnMeta
	vals      []any
	overrides Overrides
	log       *slog.Logger
}

func (r *RowReader) fail(c Column, reason string) error {
	providerType := ""
	if c.Ordinal >= 0 && c.Ordinal < len(r.cols) {
		providerType = r.cols[c.Ordinal].ProviderType
	}
	return &ColumnReadError{
		ResultSet:    r.resultSet,
		Column:       c.Name,
		Ordinal:      c.Ordinal,
		Expected:     c.Type,
		ProviderType: providerType,
		Reason:       reason,
	}
}

// value validates the descriptor against the provider metadata and returns
// the raw value. A nil value with ok=false means an accepted NULL (either a
// registered override for required reads, or any NULL for nullable reads).
func (r *RowReader) value(c Column, want ColumnType, required bool) (any, bool, error) {
	if c.Type != want {
		return nil, false, r.fail(c, fmt.Sprintf("descriptor declares %s, accessor reads %s", c.Type, want))
	}
	if c.Ordinal < 0 || c.Ordinal >= len(r.vals) {
		return nil, false, r.fail(c, fmt.Sprintf("ordinal out of range (row has %d columns)", len(r.vals)))
	}
	v := r.vals[c.Ordinal]
	if v == nil {
		if !required {
			return nil, false, nil
		}
		if r.overrides.IsOptional(r.resultSet, c.Name) {
			r.log.Debug("optional column was NULL, accepting",
				"resultSet", r.resultSet, "column", c.Name, "ordinal", c.Ordinal)
			return nil, false, nil
		}
		return nil, false, r.fail(c, "unexpected NULL for required column")
	}
	return v, true, nil
}

// Text reads a required text column. A registered override degrades NULL to "".
func (r *RowReader) Text(c Column) (string, error) {
	v, ok, err := r.value(c, TypeText, true)
	if err != nil || !ok {
		return "", err
	}
	return r.asText(c, v)
}

// TextOrNil reads a nullable text column.
func (r *RowReader) TextOrNil(c Column) (*string, error) {
	v, ok, err := r.value(c, TypeText, false)
	if err != nil || !ok {
		return nil, err
	}
	s, err := r.asText(c, v)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Int64 reads a required 64-bit integer column.
func (r *RowReader) Int64(c Column) (int64, error) {
	v, ok, err := r.value(c, TypeInt64, true)
	if err != nil || !ok {
		return 0, err
	}
	return r.asInt64(c, v)
}

// Int32 reads a required 32-bit integer column.
func (r *RowReader) Int32(c Column) (int32, error) {
	v, ok, err := r.value(c, TypeInt32, true)
	if err != nil || !ok {
		return 0, err
	}
	return r.asInt32(c, v)
}

// Int32OrNil reads a nullable 32-bit integer column.
func (r *RowReader) Int32OrNil(c Column) (*int32, error) {
	v, ok, err := r.value(c, TypeInt32, false)
	if err != nil || !ok {
		return nil, err
	}
	n, err := r.asInt32(c, v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Bool reads a required boolean column. Providers without a native boolean
// type report 0/1 integers; both representations are accepted.
func (r *RowReader) Bool(c Column) (bool, error) {
	v, ok, err := r.value(c, TypeBool, true)
	if err != nil || !ok {
		return false, err
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case int64:
		if b == 0 || b == 1 {
			return b == 1, nil
		}
		return false, r.fail(c, fmt.Sprintf("integer %d is not a valid boolean", b))
	default:
		return false, r.fail(c, fmt.Sprintf("provider value has type %T", v))
	}
}

// UUID reads a required identifier column. Accepts canonical text form or a
// 16-byte binary value.
func (r *RowReader) UUID(c Column) (uuid.UUID, error) {
	v, ok, err := r.value(c, TypeUUID, true)
	if err != nil || !ok {
		return uuid.Nil, err
	}
	switch u := v.(type) {
	case string:
		id, perr := uuid.Parse(u)
		if perr != nil {
			return uuid.Nil, r.fail(c, fmt.Sprintf("not a valid UUID: %v", perr))
		}
		return id, nil
	case []byte:
		if len(u) == 16 {
			id, perr := uuid.FromBytes(u)
			if perr != nil {
				return uuid.Nil, r.fail(c, fmt.Sprintf("not a valid UUID: %v", perr))
			}
			return id, nil
		}
		id, perr := uuid.Parse(string(u))
		if perr != nil {
			return uuid.Nil, r.fail(c, fmt.Sprintf("not a valid UUID: %v", perr))
		}
		return id, nil
	default:
		return uuid.Nil, r.fail(c, fmt.Sprintf("provider value has type %T", v))
	}
}

// Decimal reads a required decimal column as verbatim text. Decimals are
// never converted to binary floating point; the provider's textual
// rendering is the value.
func (r *RowReader) Decimal(c Column) (string, error) {
	v, ok, err := r.value(c, TypeDecimal, true)
	if err != nil || !ok {
		return "", err
	}
	switch d := v.(type) {
	case string:
		return d, nil
	case []byte:
		return string(d), nil
	case int64:
		return strconv.FormatInt(d, 10), nil
	case float64:
		// Shortest round-trip rendering keeps the value deterministic
		// for providers that refuse to hand decimals over as text.
		return strconv.FormatFloat(d, 'f', -1, 64), nil
	default:
		return "", r.fail(c, fmt.Sprintf("provider value has type %T", v))
	}
}

func (r *RowReader) asText(c Column, v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", r.fail(c, fmt.Sprintf("provider value has type %T", v))
	}
}

func (r *RowReader) asInt64(c Column, v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	default:
		return 0, r.fail(c, fmt.Sprintf("provider value has type %T", v))
	}
}

func (r *RowReader) asInt32(c Column, v any) (int32, error) {
	n, err := r.asInt64(Column{Ordinal: c.Ordinal, Name: c.Name, Type: TypeInt64}, v)
	if err != nil {
		return 0, r.fail(c, fmt.Sprintf("provider value has type %T", v))
	}
	if n < -1<<31 || n > 1<<31-1 {
		return 0, r.fail(c, fmt.Sprintf("value %d overflows int32", n))
	}
	return int32(n), nil
}
