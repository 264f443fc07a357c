package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulatorRejectsDoubleAssignment(t *testing.T) {
	acc := NewAccumulator()

	require.NoError(t, acc.SetModules([]ModuleRow{{Name: "Sales"}}))
	err := acc.SetModules([]ModuleRow{{Name: "Billing"}})
	require.Error(t, err)

	var reassign *ReassignError
	require.ErrorAs(t, err, &reassign)
	assert.Equal(t, KindModules, reassign.Kind)
}

func TestAccumulatorTracksAssignedKinds(t *testing.T) {
	acc := NewAccumulator()
	assert.False(t, acc.Assigned(KindEntities))

	require.NoError(t, acc.SetEntities(nil))
	assert.True(t, acc.Assigned(KindEntities))
	assert.False(t, acc.Assigned(KindModules))
}

func TestFinalizeCarriesRowsAndName(t *testing.T) {
	acc := NewAccumulator()
	require.NoError(t, acc.SetModules([]ModuleRow{{Name: "Sales"}}))
	require.NoError(t, acc.SetTriggers([]TriggerRow{{TriggerName: "trg_audit"}}))

	snap := acc.Finalize("proddb")
	assert.Equal(t, "proddb", snap.DatabaseName)
	require.Len(t, snap.Modules, 1)
	assert.Equal(t, "Sales", snap.Modules[0].Name)
	assert.Equal(t, 2, snap.TotalRows())
}

func TestKindsCoverEveryRowCount(t *testing.T) {
	var snap Snapshot
	counts := snap.RowCounts()
	require.Len(t, counts, len(Kinds))
	for _, k := range Kinds {
		_, present := counts[k]
		assert.True(t, present, "kind %s missing from row counts", k)
	}
}
