package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/tetrad-labs/metasnap/internal/canonical"
	"github.com/tetrad-labs/metasnap/internal/model"
)

// fixtureNamespace seeds the deterministic UUIDs the fixture backend
// assigns to modules and entities. Canonical documents carry names, not
// ids, so replayed ids are derived: same name, same id, every run.
var fixtureNamespace = uuid.MustParse("f2b1c0de-7a4e-5c11-9d30-0242ac180002")

// ManifestCase is one recorded fixture: the request it answers and the
// document file holding the canonical-shaped data.
type ManifestCase struct {
	Modules              []string `yaml:"modules"`
	IncludeSystem        bool     `yaml:"includeSystem"`
	IncludeInactive      bool     `yaml:"includeInactive"`
	OnlyActiveAttributes bool     `yaml:"onlyActiveAttributes"`
	Path                 string   `yaml:"path"`
}

// Manifest is the on-disk fixture index.
type Manifest struct {
	// DatabaseName stands in for the live backend's resolved database
	// name. Defaults to "fixture".
	DatabaseName string         `yaml:"databaseName"`
	Cases        []ManifestCase `yaml:"cases"`
}

// Fixture replays recorded extraction runs. The manifest is resolved once
// at load time into a key index built with the same RequestKey function the
// live path normalizes with, so the two backends agree on request
// equivalence. The index is read-only after construction and safe for
// concurrent Read calls.
type Fixture struct {
	dir          string
	databaseName string
	index        map[string]string
	log          *slog.Logger
}

// LoadFixture reads and indexes a manifest file. Paths inside the manifest
// are resolved relative to the manifest's directory.
func LoadFixture(manifestPath string, log *slog.Logger) (*Fixture, error) {
	if log == nil {
		log = slog.Default()
	}
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("reading fixture manifest: %w", err)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, &FixtureMalformedError{Path: manifestPath, Err: err}
	}
	if manifest.DatabaseName == "" {
		manifest.DatabaseName = "fixture"
	}

	f := &Fixture{
		dir:          filepath.Dir(manifestPath),
		databaseName: manifest.DatabaseName,
		index:        make(map[string]string, len(manifest.Cases)),
		log:          log,
	}
	for _, c := range manifest.Cases {
		req := model.NewRequest(c.Modules, c.IncludeSystem, c.IncludeInactive, c.OnlyActiveAttributes)
		f.index[RequestKey(req)] = c.Path
	}
	return f, nil
}

// Read resolves the request key against the manifest and decodes the
// recorded document into a Snapshot shape-compatible with the live backend:
// the same typed-row kinds, with ids derived deterministically from names.
func (f *Fixture) Read(ctx context.Context, req model.Request) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := RequestKey(req)
	relPath, ok := f.index[key]
	if !ok {
		return nil, &FixtureMissingError{Key: key}
	}
	path := filepath.Join(f.dir, relPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FixtureMissingError{Key: key, Path: path}
		}
		return nil, &FixtureMalformedError{Path: path, Err: err}
	}

	doc, err := decodeFixtureDocument(path, data)
	if err != nil {
		return nil, err
	}
	f.log.Debug("fixture resolved", "key", key, "path", path)
	return f.buildSnapshot(path, doc, req)
}

type fixtureEntity struct {
	Name          string
	Attributes    any
	Relationships any
	Indexes       any
	Triggers      any
	present       map[string]bool
}

type fixtureModule struct {
	Name     string
	IsSystem bool
	IsActive bool
	Entities []fixtureEntity
}

func decodeFixtureDocument(path string, data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, &FixtureMalformedError{Path: path, Err: err}
	}
	if _, ok := doc["modules"].([]any); !ok {
		return nil, &FixtureMalformedError{Path: path, Err: fmt.Errorf("document has no modules array")}
	}
	return doc, nil
}

func (f *Fixture) buildSnapshot(path string, doc map[string]any, req model.Request) (*model.Snapshot, error) {
	modules, err := parseFixtureModules(path, doc["modules"].([]any))
	if err != nil {
		return nil, err
	}

	acc := model.NewAccumulator()
	var (
		moduleRows    []model.ModuleRow
		entityRows    []model.EntityRow
		attrJSON      []model.EntityFragmentRow
		relJSON       []model.EntityFragmentRow
		idxJSON       []model.EntityFragmentRow
		trgJSON       []model.EntityFragmentRow
		moduleJSON    []model.ModuleFragmentRow
		filterActive  = len(req.EntityFilters) > 0
		entityAllowed = allowedEntities(req.EntityFilters)
	)

	for _, m := range modules {
		moduleID := deriveID("module", m.Name)
		moduleRows = append(moduleRows, model.ModuleRow{
			ID: moduleID, Name: m.Name, IsSystem: m.IsSystem, IsActive: m.IsActive,
		})
		moduleJSON = append(moduleJSON, model.ModuleFragmentRow{ModuleID: moduleID})

		for _, e := range m.Entities {
			if filterActive && !entityAllowed[filterKey(m.Name, e.Name)] {
				continue
			}
			entityID := deriveID("entity", m.Name+"."+e.Name)
			entityRows = append(entityRows, model.EntityRow{
				ID: entityID, ModuleID: moduleID, Name: e.Name, TableName: e.Name,
			})

			for kind, value := range map[string]any{
				"attributes": e.Attributes, "relationships": e.Relationships,
				"indexes": e.Indexes, "triggers": e.Triggers,
			} {
				if !e.present[kind] {
					continue
				}
				row := model.EntityFragmentRow{EntityID: entityID}
				if value != nil {
					text, merr := canonical.Marshal(value)
					if merr != nil {
						return nil, &FixtureMalformedError{Path: path, Err: fmt.Errorf("entity %q %s: %w", e.Name, kind, merr)}
					}
					s := string(text)
					row.Fragment = &s
				}
				switch kind {
				case "attributes":
					attrJSON = append(attrJSON, row)
				case "relationships":
					relJSON = append(relJSON, row)
				case "indexes":
					idxJSON = append(idxJSON, row)
				case "triggers":
					trgJSON = append(trgJSON, row)
				}
			}
		}
	}

	// The fixture file contract carries modules and entities only; the
	// physical-reality kinds replay as empty lists so the snapshot keeps
	// every typed-row kind the live backend produces.
	steps := []func() error{
		func() error {
			return acc.SetDatabaseInfo([]model.DatabaseInfoRow{{
				Name: f.databaseName, Collation: "fixture", EngineVersion: "fixture",
			}})
		},
		func() error { return acc.SetModules(moduleRows) },
		func() error { return acc.SetEntities(entityRows) },
		func() error { return acc.SetAttributes(nil) },
		func() error { return acc.SetReferences(nil) },
		func() error { return acc.SetPhysicalTables(nil) },
		func() error { return acc.SetColumnReality(nil) },
		func() error { return acc.SetColumnDefaults(nil) },
		func() error { return acc.SetColumnChecks(nil) },
		func() error { return acc.SetUniqueConstraints(nil) },
		func() error { return acc.SetIndexes(nil) },
		func() error { return acc.SetIndexColumns(nil) },
		func() error { return acc.SetForeignKeys(nil) },
		func() error { return acc.SetForeignKeyColumns(nil) },
		func() error { return acc.SetTriggers(nil) },
		func() error { return acc.SetSequences(nil) },
		func() error { return acc.SetExtendedProperties(nil) },
		func() error { return acc.SetAttributeJSON(attrJSON) },
		func() error { return acc.SetRelationshipJSON(relJSON) },
		func() error { return acc.SetIndexJSON(idxJSON) },
		func() error { return acc.SetTriggerJSON(trgJSON) },
		func() error { return acc.SetModuleJSON(moduleJSON) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return acc.Finalize(f.databaseName), nil
}

func parseFixtureModules(path string, raw []any) ([]fixtureModule, error) {
	malformed := func(format string, args ...any) error {
		return &FixtureMalformedError{Path: path, Err: fmt.Errorf(format, args...)}
	}

	modules := make([]fixtureModule, 0, len(raw))
	for i, mv := range raw {
		mod, ok := mv.(map[string]any)
		if !ok {
			return nil, malformed("modules[%d] is not an object", i)
		}
		name, _ := mod["name"].(string)
		if name == "" {
			return nil, malformed("modules[%d] has no name", i)
		}
		isSystem, _ := mod["isSystem"].(bool)
		isActive, _ := mod["isActive"].(bool)
		fm := fixtureModule{Name: name, IsSystem: isSystem, IsActive: isActive}

		entities, _ := mod["entities"].([]any)
		for j, ev := range entities {
			ent, ok := ev.(map[string]any)
			if !ok {
				return nil, malformed("modules[%s].entities[%d] is not an object", name, j)
			}
			entName, _ := ent["name"].(string)
			if entName == "" {
				return nil, malformed("modules[%s].entities[%d] has no name", name, j)
			}
			fe := fixtureEntity{Name: entName, present: make(map[string]bool, 4)}
			for _, kind := range []string{"attributes", "relationships", "indexes", "triggers"} {
				if v, present := ent[kind]; present {
					fe.present[kind] = true
					switch kind {
					case "attributes":
						fe.Attributes = v
					case "relationships":
						fe.Relationships = v
					case "indexes":
						fe.Indexes = v
					case "triggers":
						fe.Triggers = v
					}
				}
			}
			fm.Entities = append(fm.Entities, fe)
		}
		modules = append(modules, fm)
	}
	return modules, nil
}

func allowedEntities(filters []model.EntityFilter) map[string]bool {
	allowed := make(map[string]bool, len(filters))
	for _, f := range filters {
		allowed[filterKey(f.Module, f.Entity)] = true
	}
	return allowed
}

func filterKey(module, entity string) string {
	return strings.ToLower(module) + "|" + strings.ToLower(entity)
}

// deriveID produces the deterministic UUID for a named fixture object.
func deriveID(kind, name string) uuid.UUID {
	return uuid.NewSHA1(fixtureNamespace, []byte(kind+":"+strings.ToLower(name)))
}
