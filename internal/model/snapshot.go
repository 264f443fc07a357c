package model

// Snapshot is the complete, immutable result of one extraction run: every
// typed-row list plus the resolved source database name.
//
// A Snapshot is produced exactly once, by Accumulator.Finalize, after the
// sequencer has completed all 22 result sets. Nothing mutates it afterwards;
// the document builder and the diagnostics report only read it.
type Snapshot struct {
	DatabaseName string

	DatabaseInfo       []DatabaseInfoRow
	Modules            []ModuleRow
	Entities           []EntityRow
	Attributes         []AttributeRow
	References         []ReferenceRow
	PhysicalTables     []PhysicalTableRow
	ColumnReality      []ColumnRealityRow
	ColumnDefaults     []ColumnDefaultRow
	ColumnChecks       []ColumnCheckRow
	UniqueConstraints  []UniqueConstraintRow
	Indexes            []IndexRow
	IndexColumns       []IndexColumnRow
	ForeignKeys        []ForeignKeyRow
	ForeignKeyColumns  []ForeignKeyColumnRow
	Triggers           []TriggerRow
	Sequences          []SequenceRow
	ExtendedProperties []ExtendedPropertyRow
	AttributeJSON      []EntityFragmentRow
	RelationshipJSON   []EntityFragmentRow
	IndexJSON          []EntityFragmentRow
	TriggerJSON        []EntityFragmentRow
	ModuleJSON         []ModuleFragmentRow
}

// RowCounts returns the number of rows per kind, in no particular map
// order. Used by backend-parity checks and run summaries.
func (s *Snapshot) RowCounts() map[Kind]int {
	return map[Kind]int{
		KindDatabaseInfo:       len(s.DatabaseInfo),
		KindModules:            len(s.Modules),
		KindEntities:           len(s.Entities),
		KindAttributes:         len(s.Attributes),
		KindReferences:         len(s.References),
		KindPhysicalTables:     len(s.PhysicalTables),
		KindColumnReality:      len(s.ColumnReality),
		KindColumnDefaults:     len(s.ColumnDefaults),
		KindColumnChecks:       len(s.ColumnChecks),
		KindUniqueConstraints:  len(s.UniqueConstraints),
		KindIndexes:            len(s.Indexes),
		KindIndexColumns:       len(s.IndexColumns),
		KindForeignKeys:        len(s.ForeignKeys),
		KindForeignKeyColumns:  len(s.ForeignKeyColumns),
		KindTriggers:           len(s.Triggers),
		KindSequences:          len(s.Sequences),
		KindExtendedProperties: len(s.ExtendedProperties),
		KindAttributeJSON:      len(s.AttributeJSON),
		KindRelationshipJSON:   len(s.RelationshipJSON),
		KindIndexJSON:          len(s.IndexJSON),
		KindTriggerJSON:        len(s.TriggerJSON),
		KindModuleJSON:         len(s.ModuleJSON),
	}
}

// TotalRows returns the row count across every kind.
func (s *Snapshot) TotalRows() int {
	total := 0
	for _, n := range s.RowCounts() {
		total += n
	}
	return total
}
