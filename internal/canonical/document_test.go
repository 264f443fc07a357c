package canonical

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetrad-labs/metasnap/internal/model"
)

var (
	salesID    = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	customerID = uuid.MustParse("22222222-2222-4222-8222-222222222222")
	orderID    = uuid.MustParse("33333333-3333-4333-8333-333333333333")

	exportInstant = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func strp(s string) *string { return &s }

// salesSnapshot is the one-module dataset used across the builder tests:
// Sales with entities Customer and Order, fragments partially populated so
// all three resolution outcomes (text, absent, empty) are exercised.
func salesSnapshot() *model.Snapshot {
	return &model.Snapshot{
		DatabaseName: "testdb",
		Modules: []model.ModuleRow{
			{ID: salesID, Name: "Sales", IsSystem: false, IsActive: true},
		},
		Entities: []model.EntityRow{
			// Deliberately unsorted; the builder must order them by name.
			{ID: orderID, ModuleID: salesID, Name: "Order", TableName: "SalesOrder"},
			{ID: customerID, ModuleID: salesID, Name: "Customer", TableName: "Customer"},
		},
		AttributeJSON: []model.EntityFragmentRow{
			{EntityID: customerID, Fragment: strp(`[{"name":"Id","dataType":"uniqueidentifier"},{"name":"Name","dataType":"nvarchar"}]`)},
			{EntityID: orderID, Fragment: strp(`[{"name":"Total","scale":2}]`)},
		},
		RelationshipJSON: []model.EntityFragmentRow{
			// No row for Customer: resolves to an empty array.
			{EntityID: orderID, Fragment: strp(`[{"name":"Customer","cardinality":"many-to-one"}]`)},
		},
		IndexJSON: []model.EntityFragmentRow{
			{EntityID: customerID, Fragment: strp(`[]`)},
		},
		TriggerJSON: []model.EntityFragmentRow{
			{EntityID: customerID, Fragment: strp(`[{"name":"trg_customer_audit","isDisabled":false}]`)},
			{EntityID: orderID, Fragment: strp(`[]`)},
		},
	}
}

func TestBuildDocumentGolden(t *testing.T) {
	doc, err := BuildDocument(salesSnapshot(), exportInstant)
	require.NoError(t, err)
	require.NoError(t, Validate(doc))

	data, err := Marshal(doc)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "sales_document", data)
}

func TestBuildDocumentSortsModulesAndEntities(t *testing.T) {
	snap := salesSnapshot()
	otherID := uuid.MustParse("44444444-4444-4444-8444-444444444444")
	snap.Modules = append(snap.Modules, model.ModuleRow{ID: otherID, Name: "billing", IsActive: true})

	doc, err := BuildDocument(snap, exportInstant)
	require.NoError(t, err)

	modules := doc["modules"].([]any)
	require.Len(t, modules, 2)
	// Case-insensitive: "billing" sorts before "Sales".
	assert.Equal(t, "billing", modules[0].(map[string]any)["name"])
	assert.Equal(t, "Sales", modules[1].(map[string]any)["name"])

	entities := modules[1].(map[string]any)["entities"].([]any)
	require.Len(t, entities, 2)
	assert.Equal(t, "Customer", entities[0].(map[string]any)["name"])
	assert.Equal(t, "Order", entities[1].(map[string]any)["name"])
}

func TestBuildDocumentAbsentFragmentBecomesEmptyArray(t *testing.T) {
	doc, err := BuildDocument(salesSnapshot(), exportInstant)
	require.NoError(t, err)

	modules := doc["modules"].([]any)
	customer := modules[0].(map[string]any)["entities"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{}, customer["relationships"])
}

func TestBuildDocumentPreservesExplicitNullForValidator(t *testing.T) {
	snap := salesSnapshot()
	snap.TriggerJSON = []model.EntityFragmentRow{
		{EntityID: customerID, Fragment: nil}, // row emitted, content NULL
		{EntityID: orderID, Fragment: strp(`[]`)},
	}

	doc, err := BuildDocument(snap, exportInstant)
	require.NoError(t, err)

	err = Validate(doc)
	require.Error(t, err)
	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)
	require.Len(t, invalid.Problems, 1)
	assert.Equal(t, "modules[Sales].entities[Customer].triggers", invalid.Problems[0].Path)
	assert.Equal(t, "property is null", invalid.Problems[0].Message)
}

func TestBuildDocumentRejectsUnparseableFragment(t *testing.T) {
	snap := salesSnapshot()
	snap.AttributeJSON[1].Fragment = strp(`{"broken":`)

	_, err := BuildDocument(snap, exportInstant)
	require.Error(t, err)

	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)
	require.Len(t, invalid.Problems, 1)
	assert.Equal(t, "modules[Sales].entities[Order].attributes", invalid.Problems[0].Path)
	assert.Contains(t, invalid.Problems[0].Message, "not valid JSON")
}

func TestBuildDocumentRoundTripIsStable(t *testing.T) {
	doc, err := BuildDocument(salesSnapshot(), exportInstant)
	require.NoError(t, err)
	first, err := Marshal(doc)
	require.NoError(t, err)

	// Re-decoding and re-marshaling the canonical bytes must be byte-identical.
	require.NoError(t, ValidateJSON(first))
	doc2, err := BuildDocument(salesSnapshot(), exportInstant)
	require.NoError(t, err)
	second, err := Marshal(doc2)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}
