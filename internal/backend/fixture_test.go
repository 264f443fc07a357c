package backend

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetrad-labs/metasnap/internal/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadTestFixture(t *testing.T) *Fixture {
	t.Helper()
	f, err := LoadFixture(filepath.Join("testdata", "manifest.yaml"), quietLogger())
	require.NoError(t, err)
	return f
}

func TestFixtureReplaysRecordedRequest(t *testing.T) {
	f := loadTestFixture(t)

	snap, err := f.Read(context.Background(), model.NewRequest([]string{"Sales"}, false, false, false))
	require.NoError(t, err)

	assert.Equal(t, "replaydb", snap.DatabaseName)
	require.Len(t, snap.Modules, 1)
	assert.Equal(t, "Sales", snap.Modules[0].Name)
	require.Len(t, snap.Entities, 2)

	// Entities link back to their module through the derived id.
	for _, e := range snap.Entities {
		assert.Equal(t, snap.Modules[0].ID, e.ModuleID)
	}

	// One fragment row per entity for each recorded fragment kind.
	assert.Len(t, snap.AttributeJSON, 2)
	assert.Len(t, snap.RelationshipJSON, 2)
	assert.Len(t, snap.ModuleJSON, 1)
}

func TestFixtureKeyMatchingIgnoresOrderAndCase(t *testing.T) {
	f := loadTestFixture(t)

	snap, err := f.Read(context.Background(),
		model.NewRequest([]string{"BILLING", "sales"}, true, false, false))
	require.NoError(t, err)
	require.Len(t, snap.Modules, 2)
	assert.Equal(t, "Billing", snap.Modules[0].Name)
	assert.Equal(t, "Sales", snap.Modules[1].Name)
}

func TestFixtureIDsAreDeterministic(t *testing.T) {
	f := loadTestFixture(t)
	req := model.NewRequest([]string{"Sales"}, false, false, false)

	first, err := f.Read(context.Background(), req)
	require.NoError(t, err)
	second, err := f.Read(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first.Modules[0].ID, first.Entities[0].ID)
}

func TestFixtureMissingRequest(t *testing.T) {
	f := loadTestFixture(t)

	_, err := f.Read(context.Background(), model.NewRequest([]string{"Nope"}, false, false, false))
	require.Error(t, err)

	var missing *FixtureMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "modules=nope|system=0|inactive=0|activeattrs=0", missing.Key)
	assert.Empty(t, missing.Path)
}

func TestFixtureMissingFile(t *testing.T) {
	f := loadTestFixture(t)

	_, err := f.Read(context.Background(), model.NewRequest([]string{"Ghost"}, false, false, false))
	require.Error(t, err)

	var missing *FixtureMissingError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Path, "missing.json")
}

func TestFixtureMalformedFile(t *testing.T) {
	f := loadTestFixture(t)

	_, err := f.Read(context.Background(), model.NewRequest([]string{"Broken"}, false, false, false))
	require.Error(t, err)

	var malformed *FixtureMalformedError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Path, "broken.json")
}

func TestFixtureAppliesEntityFilters(t *testing.T) {
	f := loadTestFixture(t)

	req := model.NewRequest([]string{"Sales"}, false, false, false)
	req.EntityFilters = []model.EntityFilter{{Module: "sales", Entity: "customer"}}

	snap, err := f.Read(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, snap.Entities, 1)
	assert.Equal(t, "Customer", snap.Entities[0].Name)
}

func TestFixtureHonorsCancelledContext(t *testing.T) {
	f := loadTestFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Read(ctx, model.NewRequest([]string{"Sales"}, false, false, false))
	require.ErrorIs(t, err, context.Canceled)
}

func TestFixtureSnapshotCarriesEveryKind(t *testing.T) {
	f := loadTestFixture(t)

	snap, err := f.Read(context.Background(), model.NewRequest([]string{"Sales"}, false, false, false))
	require.NoError(t, err)

	// The physical-reality kinds replay as empty, never missing: the count
	// map must cover the full contract.
	counts := snap.RowCounts()
	assert.Len(t, counts, len(model.Kinds))
	assert.Equal(t, 0, counts[model.KindForeignKeys])
	assert.Equal(t, 1, counts[model.KindDatabaseInfo])
}
