package canonical

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// Problem is one structural defect found in a canonical document, located
// by a path-like description (module/entity names, not raw JSON offsets).
type Problem struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError aggregates every structural defect of one document.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("DOCUMENT_INVALID: %s: %s", e.Problems[0].Path, e.Problems[0].Message)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "DOCUMENT_INVALID: %d problems", len(e.Problems))
	for _, p := range e.Problems {
		fmt.Fprintf(&b, "; %s: %s", p.Path, p.Message)
	}
	return b.String()
}

// Validate checks the structural invariants of a built canonical document:
// the top-level modules property must be an array, and every entity's
// attributes/relationships/indexes/triggers property must be present and an
// array (null is a defect). Defects are reported with module/entity paths.
//
// A hand walk produces the entity-scoped messages; the embedded CUE schema
// is then unified against the document as a backstop for shape drift the
// walk does not cover (wrong scalar types, missing module fields).
func Validate(doc map[string]any) error {
	var problems []Problem

	modulesVal, ok := doc["modules"]
	if !ok {
		problems = append(problems, Problem{Path: "modules", Message: "property is missing"})
	} else if _, isArr := modulesVal.([]any); !isArr {
		problems = append(problems, Problem{
			Path:    "modules",
			Message: fmt.Sprintf("property is not an array (got %s)", jsonTypeName(modulesVal)),
		})
	} else {
		problems = append(problems, walkModules(modulesVal.([]any))...)
	}

	if len(problems) == 0 {
		problems = append(problems, schemaProblems(doc)...)
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidateJSON decodes a serialized document and validates it. Used by the
// CLI against document files on disk.
func ValidateJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return &ValidationError{Problems: []Problem{{
			Path:    "(document)",
			Message: fmt.Sprintf("not a JSON object: %v", err),
		}}}
	}
	return Validate(doc)
}

func walkModules(modules []any) []Problem {
	var problems []Problem
	for i, mv := range modules {
		mod, ok := mv.(map[string]any)
		if !ok {
			problems = append(problems, Problem{
				Path:    fmt.Sprintf("modules[%d]", i),
				Message: fmt.Sprintf("module is not an object (got %s)", jsonTypeName(mv)),
			})
			continue
		}
		modName := nameOrIndex(mod, i)
		entitiesVal, ok := mod["entities"]
		if !ok {
			continue
		}
		entities, ok := entitiesVal.([]any)
		if !ok {
			problems = append(problems, Problem{
				Path:    fmt.Sprintf("modules[%s].entities", modName),
				Message: fmt.Sprintf("property is not an array (got %s)", jsonTypeName(entitiesVal)),
			})
			continue
		}
		for j, ev := range entities {
			entity, ok := ev.(map[string]any)
			if !ok {
				problems = append(problems, Problem{
					Path:    fmt.Sprintf("modules[%s].entities[%d]", modName, j),
					Message: fmt.Sprintf("entity is not an object (got %s)", jsonTypeName(ev)),
				})
				continue
			}
			entName := nameOrIndex(entity, j)
			for _, kind := range fragmentKinds {
				path := fmt.Sprintf("modules[%s].entities[%s].%s", modName, entName, kind)
				fragVal, present := entity[kind]
				switch {
				case !present:
					problems = append(problems, Problem{Path: path, Message: "property is missing"})
				case fragVal == nil:
					problems = append(problems, Problem{Path: path, Message: "property is null"})
				default:
					if _, isArr := fragVal.([]any); !isArr {
						problems = append(problems, Problem{
							Path:    path,
							Message: fmt.Sprintf("property is not an array (got %s)", jsonTypeName(fragVal)),
						})
					}
				}
			}
		}
	}
	return problems
}

// schemaProblems unifies the document with the embedded CUE schema and
// converts any residual errors into path-scoped problems.
func schemaProblems(doc map[string]any) []Problem {
	data, err := Marshal(doc)
	if err != nil {
		return []Problem{{Path: "(document)", Message: fmt.Sprintf("cannot serialize for schema check: %v", err)}}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if schema.Err() != nil {
		return []Problem{{Path: "(schema)", Message: schema.Err().Error()}}
	}
	docSchema := schema.LookupPath(cue.ParsePath("#Document"))
	if docSchema.Err() != nil {
		return []Problem{{Path: "(schema)", Message: docSchema.Err().Error()}}
	}

	// JSON is a subset of CUE, so the serialized document compiles directly.
	docVal := ctx.CompileBytes(data, cue.Filename("document.json"))
	if docVal.Err() != nil {
		return []Problem{{Path: "(document)", Message: docVal.Err().Error()}}
	}

	unified := docSchema.Unify(docVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		var problems []Problem
		for _, e := range cueerrors.Errors(err) {
			problems = append(problems, Problem{
				Path:    strings.Join(e.Path(), "."),
				Message: e.Error(),
			})
		}
		return problems
	}
	return nil
}

func nameOrIndex(obj map[string]any, index int) string {
	if n, ok := obj["name"].(string); ok && n != "" {
		return n
	}
	return fmt.Sprintf("%d", index)
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number, int, int64, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
