package model

import "fmt"

// ReassignError reports that a result-set kind was assigned twice within one
// run. Double assignment always indicates a broken processor table, so it is
// a hard error rather than last-write-wins.
type ReassignError struct {
	Kind Kind
}

func (e *ReassignError) Error() string {
	return fmt.Sprintf("ACCUMULATOR_REASSIGNED: result set %q assigned twice in one run", e.Kind)
}

// Accumulator is the mutable aggregation target one extraction run writes
// into. It is owned by the sequencer for the duration of a single run and
// must not outlive it: Finalize consumes the accumulated lists by reference
// into the immutable Snapshot and the accumulator is discarded.
//
// Each Set method may be called at most once per run; a second call for the
// same kind returns a ReassignError.
type Accumulator struct {
	snap     Snapshot
	assigned map[Kind]bool
}

// NewAccumulator creates an empty accumulator for one run.
func NewAccumulator() *Accumulator {
	return &Accumulator{assigned: make(map[Kind]bool, len(Kinds))}
}

func (a *Accumulator) mark(k Kind) error {
	if a.assigned[k] {
		return &ReassignError{Kind: k}
	}
	a.assigned[k] = true
	return nil
}

// Assigned reports whether the given kind has been written this run.
func (a *Accumulator) Assigned(k Kind) bool { return a.assigned[k] }

// DatabaseInfo exposes the accumulated databaseInfo rows so the sequencer
// can resolve the source database name before finalizing.
func (a *Accumulator) DatabaseInfo() []DatabaseInfoRow { return a.snap.DatabaseInfo }

func (a *Accumulator) SetDatabaseInfo(rows []DatabaseInfoRow) error {
	if err := a.mark(KindDatabaseInfo); err != nil {
		return err
	}
	a.snap.DatabaseInfo = rows
	return nil
}

func (a *Accumulator) SetModules(rows []ModuleRow) error {
	if err := a.mark(KindModules); err != nil {
		return err
	}
	a.snap.Modules = rows
	return nil
}

func (a *Accumulator) SetEntities(rows []EntityRow) error {
	if err := a.mark(KindEntities); err != nil {
		return err
	}
	a.snap.Entities = rows
	return nil
}

func (a *Accumulator) SetAttributes(rows []AttributeRow) error {
	if err := a.mark(KindAttributes); err != nil {
		return err
	}
	a.snap.Attributes = rows
	return nil
}

func (a *Accumulator) SetReferences(rows []ReferenceRow) error {
	if err := a.mark(KindReferences); err != nil {
		return err
	}
	a.snap.References = rows
	return nil
}

func (a *Accumulator) SetPhysicalTables(rows []PhysicalTableRow) error {
	if err := a.mark(KindPhysicalTables); err != nil {
		return err
	}
	a.snap.PhysicalTables = rows
	return nil
}

func (a *Accumulator) SetColumnReality(rows []ColumnRealityRow) error {
	if err := a.mark(KindColumnReality); err != nil {
		return err
	}
	a.snap.ColumnReality = rows
	return nil
}

func (a *Accumulator) SetColumnDefaults(rows []ColumnDefaultRow) error {
	if err := a.mark(KindColumnDefaults); err != nil {
		return err
	}
	a.snap.ColumnDefaults = rows
	return nil
}

func (a *Accumulator) SetColumnChecks(rows []ColumnCheckRow) error {
	if err := a.mark(KindColumnChecks); err != nil {
		return err
	}
	a.snap.ColumnChecks = rows
	return nil
}

func (a *Accumulator) SetUniqueConstraints(rows []UniqueConstraintRow) error {
	if err := a.mark(KindUniqueConstraints); err != nil {
		return err
	}
	a.snap.UniqueConstraints = rows
	return nil
}

func (a *Accumulator) SetIndexes(rows []IndexRow) error {
	if err := a.mark(KindIndexes); err != nil {
		return err
	}
	a.snap.Indexes = rows
	return nil
}

func (a *Accumulator) SetIndexColumns(rows []IndexColumnRow) error {
	if err := a.mark(KindIndexColumns); err != nil {
		return err
	}
	a.snap.IndexColumns = rows
	return nil
}

func (a *Accumulator) SetForeignKeys(rows []ForeignKeyRow) error {
	if err := a.mark(KindForeignKeys); err != nil {
		return err
	}
	a.snap.ForeignKeys = rows
	return nil
}

func (a *Accumulator) SetForeignKeyColumns(rows []ForeignKeyColumnRow) error {
	if err := a.mark(KindForeignKeyColumns); err != nil {
		return err
	}
	a.snap.ForeignKeyColumns = rows
	return nil
}

func (a *Accumulator) SetTriggers(rows []TriggerRow) error {
	if err := a.mark(KindTriggers); err != nil {
		return err
	}
	a.snap.Triggers = rows
	return nil
}

func (a *Accumulator) SetSequences(rows []SequenceRow) error {
	if err := a.mark(KindSequences); err != nil {
		return err
	}
	a.snap.Sequences = rows
	return nil
}

func (a *Accumulator) SetExtendedProperties(rows []ExtendedPropertyRow) error {
	if err := a.mark(KindExtendedProperties); err != nil {
		return err
	}
	a.snap.ExtendedProperties = rows
	return nil
}

func (a *Accumulator) SetAttributeJSON(rows []EntityFragmentRow) error {
	if err := a.mark(KindAttributeJSON); err != nil {
		return err
	}
	a.snap.AttributeJSON = rows
	return nil
}

func (a *Accumulator) SetRelationshipJSON(rows []EntityFragmentRow) error {
	if err := a.mark(KindRelationshipJSON); err != nil {
		return err
	}
	a.snap.RelationshipJSON = rows
	return nil
}

func (a *Accumulator) SetIndexJSON(rows []EntityFragmentRow) error {
	if err := a.mark(KindIndexJSON); err != nil {
		return err
	}
	a.snap.IndexJSON = rows
	return nil
}

func (a *Accumulator) SetTriggerJSON(rows []EntityFragmentRow) error {
	if err := a.mark(KindTriggerJSON); err != nil {
		return err
	}
	a.snap.TriggerJSON = rows
	return nil
}

func (a *Accumulator) SetModuleJSON(rows []ModuleFragmentRow) error {
	if err := a.mark(KindModuleJSON); err != nil {
		return err
	}
	a.snap.ModuleJSON = rows
	return nil
}

// Finalize consumes the accumulator into an immutable Snapshot. The lists
// move by reference; no deep copy is needed because the accumulator is
// discarded after this call. When the source never resolved a database name
// (fixture runs), databaseName may be taken from the manifest instead.
func (a *Accumulator) Finalize(databaseName string) *Snapshot {
	snap := a.snap
	snap.DatabaseName = databaseName
	a.snap = Snapshot{}
	return &snap
}
