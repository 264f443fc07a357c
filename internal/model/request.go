package model

import (
	"sort"
	"strings"
)

// EntityFilter restricts extraction to a single entity within a module.
type EntityFilter struct {
	Module string `json:"module" yaml:"module"`
	Entity string `json:"entity" yaml:"entity"`
}

// Request describes one extraction run.
//
// Construct with NewRequest so the module list is normalized; two requests
// that name the same modules in different order or casing are equivalent,
// and both backends rely on that equivalence for key matching.
type Request struct {
	// Modules is the normalized module list: deduplicated
	// case-insensitively, sorted ascending. Empty means all modules.
	Modules []string

	IncludeSystem        bool
	IncludeInactive      bool
	OnlyActiveAttributes bool

	// EntityFilters optionally narrows extraction to specific entities.
	// Applied by the backend; an empty slice means no narrowing.
	EntityFilters []EntityFilter
}

// NewRequest builds a Request with a normalized module list.
func NewRequest(modules []string, includeSystem, includeInactive, onlyActiveAttributes bool) Request {
	return Request{
		Modules:              NormalizeModules(modules),
		IncludeSystem:        includeSystem,
		IncludeInactive:      includeInactive,
		OnlyActiveAttributes: onlyActiveAttributes,
	}
}

// NormalizeModules deduplicates module names case-insensitively and sorts
// the survivors ascending by their lowercase form. The first-seen casing
// wins for the retained entry.
//
// Both backends MUST use this exact normalization when building lookup
// keys, otherwise live and fixture runs would disagree about which
// requests are equivalent.
func NormalizeModules(modules []string) []string {
	seen := make(map[string]struct{}, len(modules))
	out := make([]string, 0, len(modules))
	for _, m := range modules {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		key := strings.ToLower(m)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

// ModuleCSV renders the normalized module list as the comma-separated text
// bound as the script's first parameter. Empty list renders as "".
func (r Request) ModuleCSV() string {
	return strings.Join(r.Modules, ",")
}
