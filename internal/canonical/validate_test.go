package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDocument() map[string]any {
	return map[string]any{
		"exportedAtUtc": "2024-05-01T12:00:00Z",
		"modules": []any{
			map[string]any{
				"name":     "Sales",
				"isSystem": false,
				"isActive": true,
				"entities": []any{
					map[string]any{
						"name":          "Customer",
						"attributes":    []any{},
						"relationships": []any{},
						"indexes":       []any{},
						"triggers":      []any{},
					},
				},
			},
		},
	}
}

func TestValidateAcceptsWellFormedDocument(t *testing.T) {
	require.NoError(t, Validate(validDocument()))
}

func TestValidateRejectsMissingModules(t *testing.T) {
	err := Validate(map[string]any{"exportedAtUtc": "2024-05-01T12:00:00Z"})
	require.Error(t, err)

	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "modules", invalid.Problems[0].Path)
	assert.Equal(t, "property is missing", invalid.Problems[0].Message)
}

func TestValidateRejectsNonArrayModules(t *testing.T) {
	doc := validDocument()
	doc["modules"] = "oops"

	err := Validate(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an array (got string)")
}

func TestValidateRejectsNullFragment(t *testing.T) {
	doc := validDocument()
	entity := doc["modules"].([]any)[0].(map[string]any)["entities"].([]any)[0].(map[string]any)
	entity["triggers"] = nil

	err := Validate(doc)
	require.Error(t, err)

	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)
	require.Len(t, invalid.Problems, 1)
	assert.Equal(t, "modules[Sales].entities[Customer].triggers", invalid.Problems[0].Path)
	assert.Equal(t, "property is null", invalid.Problems[0].Message)
}

func TestValidateRejectsMissingFragment(t *testing.T) {
	doc := validDocument()
	entity := doc["modules"].([]any)[0].(map[string]any)["entities"].([]any)[0].(map[string]any)
	delete(entity, "indexes")

	err := Validate(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "modules[Sales].entities[Customer].indexes")
	assert.Contains(t, err.Error(), "property is missing")
}

func TestValidateReportsEveryDefect(t *testing.T) {
	doc := validDocument()
	entity := doc["modules"].([]any)[0].(map[string]any)["entities"].([]any)[0].(map[string]any)
	entity["triggers"] = nil
	entity["attributes"] = map[string]any{}

	err := Validate(doc)
	require.Error(t, err)

	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Len(t, invalid.Problems, 2)
}

func TestValidateSchemaBackstopCatchesWrongScalarTypes(t *testing.T) {
	doc := validDocument()
	// The hand walk ignores module scalars; the CUE schema must not.
	doc["modules"].([]any)[0].(map[string]any)["isActive"] = "yes"

	err := Validate(doc)
	require.Error(t, err)

	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.NotEmpty(t, invalid.Problems)
}

func TestValidateJSONRejectsNonObject(t *testing.T) {
	err := ValidateJSON([]byte(`[1,2,3]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a JSON object")
}
