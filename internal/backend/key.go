package backend

import (
	"strings"

	"github.com/tetrad-labs/metasnap/internal/model"
)

// RequestKey builds the normalized lookup key for a request: the sorted,
// case-insensitive module list plus the three boolean flags.
//
// This is the single equivalence function shared by both backends. The
// fixture manifest is indexed by it, and the live backend's request
// normalization flows through the same model.NormalizeModules, so a request
// that hits a fixture in tests addresses the same logical data live.
func RequestKey(req model.Request) string {
	mods := model.NormalizeModules(req.Modules)
	lowered := make([]string, len(mods))
	for i, m := range mods {
		lowered[i] = strings.ToLower(m)
	}
	var b strings.Builder
	b.WriteString("modules=")
	b.WriteString(strings.Join(lowered, ","))
	b.WriteString("|system=")
	b.WriteString(flag(req.IncludeSystem))
	b.WriteString("|inactive=")
	b.WriteString(flag(req.IncludeInactive))
	b.WriteString("|activeattrs=")
	b.WriteString(flag(req.OnlyActiveAttributes))
	return b.String()
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
