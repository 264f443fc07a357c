package engine

import "strings"

// Overrides is the contract override registry: the set of (result set,
// column) pairs permitted to be NULL despite the strict contract.
//
// The registry is immutable after construction. WithOptional returns a new
// registry; callers build the full set once per run from configuration and
// never mutate it afterwards, which makes concurrent reads safe. Matching is
// case-insensitive on both keys. The zero value is the strict registry with
// no exemptions.
type Overrides struct {
	optional map[string]map[string]struct{}
}

// NewOverrides returns the strict (empty) registry.
func NewOverrides() Overrides {
	return Overrides{}
}

// WithOptional returns a copy of the registry with one additional exemption.
func (o Overrides) WithOptional(resultSet, column string) Overrides {
	rs := strings.ToLower(resultSet)
	col := strings.ToLower(column)

	next := make(map[string]map[string]struct{}, len(o.optional)+1)
	for k, cols := range o.optional {
		copied := make(map[string]struct{}, len(cols))
		for c := range cols {
			copied[c] = struct{}{}
		}
		next[k] = copied
	}
	if next[rs] == nil {
		next[rs] = make(map[string]struct{}, 1)
	}
	next[rs][col] = struct{}{}
	return Overrides{optional: next}
}

// IsOptional reports whether the column is exempt from the non-null rule
// for the given result set. This is the sole read operation; the typed
// accessors consult it on every null they encounter.
func (o Overrides) IsOptional(resultSet, column string) bool {
	cols, ok := o.optional[strings.ToLower(resultSet)]
	if !ok {
		return false
	}
	_, ok = cols[strings.ToLower(column)]
	return ok
}

// Len returns the number of registered exemptions.
func (o Overrides) Len() int {
	n := 0
	for _, cols := range o.optional {
		n += len(cols)
	}
	return n
}
