package canonical

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tetrad-labs/metasnap/internal/model"
)

// fragmentKinds are the per-entity fragment properties in the order they
// appear on an entity object.
var fragmentKinds = []string{"attributes", "relationships", "indexes", "triggers"}

// BuildDocument reshapes a flat Snapshot into the canonical document:
//
//	{exportedAtUtc, modules: [{name, isSystem, isActive, entities: [...]}]}
//
// Each entity carries its four pre-serialized fragments parsed back into
// JSON values. Resolution per entity and kind:
//   - fragment row with text        -> the parsed value
//   - fragment row with NULL text   -> explicit null (the validator rejects it)
//   - no fragment row for the entity -> empty array
//
// Modules and entities are sorted case-insensitively by name so the
// document is deterministic regardless of source row order. A fragment that
// is not parseable JSON fails the build with a path-scoped error; a
// fragment that parses to a non-array is attached as-is and left for the
// validator, which reports it with the same path style.
func BuildDocument(snap *model.Snapshot, exportedAt time.Time) (map[string]any, error) {
	entitiesByModule := make(map[uuid.UUID][]model.EntityRow, len(snap.Modules))
	for _, e := range snap.Entities {
		entitiesByModule[e.ModuleID] = append(entitiesByModule[e.ModuleID], e)
	}

	fragments := map[string]map[uuid.UUID]*string{
		"attributes":    fragmentIndex(snap.AttributeJSON),
		"relationships": fragmentIndex(snap.RelationshipJSON),
		"indexes":       fragmentIndex(snap.IndexJSON),
		"triggers":      fragmentIndex(snap.TriggerJSON),
	}

	modules := make([]model.ModuleRow, len(snap.Modules))
	copy(modules, snap.Modules)
	sort.Slice(modules, func(i, j int) bool {
		return strings.ToLower(modules[i].Name) < strings.ToLower(modules[j].Name)
	})

	moduleList := make([]any, 0, len(modules))
	for _, m := range modules {
		entities := make([]model.EntityRow, len(entitiesByModule[m.ID]))
		copy(entities, entitiesByModule[m.ID])
		sort.Slice(entities, func(i, j int) bool {
			return strings.ToLower(entities[i].Name) < strings.ToLower(entities[j].Name)
		})

		entityList := make([]any, 0, len(entities))
		for _, e := range entities {
			entity := map[string]any{"name": e.Name}
			for _, kind := range fragmentKinds {
				value, err := resolveFragment(fragments[kind], e.ID)
				if err != nil {
					return nil, &ValidationError{Problems: []Problem{{
						Path:    fmt.Sprintf("modules[%s].entities[%s].%s", m.Name, e.Name, kind),
						Message: err.Error(),
					}}}
				}
				entity[kind] = value
			}
			entityList = append(entityList, entity)
		}

		moduleList = append(moduleList, map[string]any{
			"name":     m.Name,
			"isSystem": m.IsSystem,
			"isActive": m.IsActive,
			"entities": entityList,
		})
	}

	return map[string]any{
		"exportedAtUtc": exportedAt.UTC().Format(time.RFC3339),
		"modules":       moduleList,
	}, nil
}

func fragmentIndex(rows []model.EntityFragmentRow) map[uuid.UUID]*string {
	idx := make(map[uuid.UUID]*string, len(rows))
	for _, r := range rows {
		idx[r.EntityID] = r.Fragment
	}
	return idx
}

func resolveFragment(idx map[uuid.UUID]*string, entityID uuid.UUID) (any, error) {
	text, emitted := idx[entityID]
	if !emitted {
		return []any{}, nil
	}
	if text == nil {
		// Explicit null marker: the source emitted a fragment row for this
		// entity but no content. Preserved so the validator can name it.
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(*text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("fragment is not valid JSON: %v", err)
	}
	return v, nil
}
