package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// maxValuePreview bounds the captured rendering of a single column value.
// Large text columns (definitions, JSON fragments) are truncated, not
// dropped, so the snapshot stays loggable.
const maxValuePreview = 256

// ColumnSnapshot is the diagnostic capture of one column of a failing row.
type ColumnSnapshot struct {
	Ordinal      int    `json:"ordinal"`
	Name         string `json:"name"`
	ProviderType string `json:"providerType"`
	IsNull       bool   `json:"isNull"`
	// Value is a bounded preview of the provider value, empty when IsNull.
	Value     string `json:"value"`
	Truncated bool   `json:"truncated,omitempty"`
	// SerializationError records a per-column rendering problem instead of
	// aborting the capture.
	SerializationError string `json:"serializationError,omitempty"`
}

// RowSnapshot is the diagnostic capture of an entire failing row: every
// column present on the cursor, not just the ones the active descriptor set
// reads. It is created eagerly, in the same pass that detects the failure,
// because the cursor cannot be rewound afterwards.
type RowSnapshot struct {
	ResultSet string           `json:"resultSet"`
	RowIndex  int              `json:"rowIndex"`
	Columns   []ColumnSnapshot `json:"columns"`
}

// CaptureRow snapshots the raw values of the current row. It never fails:
// any problem rendering an individual value is recorded in that column's
// SerializationError field.
func CaptureRow(resultSet string, rowIndex int, cols []ColumnMeta, vals []any) *RowSnapshot {
	snap := &RowSnapshot{
		ResultSet: resultSet,
		RowIndex:  rowIndex,
		Columns:   make([]ColumnSnapshot, len(cols)),
	}
	for i, meta := range cols {
		cs := ColumnSnapshot{
			Ordinal:      meta.Ordinal,
			Name:         meta.Name,
			ProviderType: meta.ProviderType,
		}
		var v any
		if i < len(vals) {
			v = vals[i]
		} else {
			cs.SerializationError = "no value scanned for this ordinal"
		}
		if cs.SerializationError == "" {
			if v == nil {
				cs.IsNull = true
			} else {
				preview, truncated, err := previewValue(v)
				cs.Value = preview
				cs.Truncated = truncated
				if err != nil {
					cs.SerializationError = err.Error()
				}
			}
		}
		snap.Columns[i] = cs
	}
	return snap
}

// Column looks up a captured column by name, case-insensitively. Used by
// callers that resolve friendly context (e.g. the business entity a failing
// row belongs to) out of the snapshot.
func (s *RowSnapshot) Column(name string) (ColumnSnapshot, bool) {
	for _, c := range s.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ColumnSnapshot{}, false
}

// previewValue renders v as bounded text. The deferred recover turns a
// panicking String/Format implementation into a serialization error rather
// than aborting the whole capture.
func previewValue(v any) (preview string, truncated bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			preview, truncated = "", false
			err = fmt.Errorf("value rendering panicked: %v", r)
		}
	}()

	var s string
	switch val := v.(type) {
	case string:
		s = val
	case []byte:
		s = string(val)
	case int64:
		s = strconv.FormatInt(val, 10)
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(val)
	case time.Time:
		s = val.UTC().Format(time.RFC3339Nano)
	default:
		s = fmt.Sprintf("%v", val)
	}
	if len(s) > maxValuePreview {
		return s[:maxValuePreview], true, nil
	}
	return s, false, nil
}
