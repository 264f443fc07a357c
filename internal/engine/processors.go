package engine

import (
	"context"
	"log/slog"
	"sort"

	"github.com/tetrad-labs/metasnap/internal/model"
)

// Descriptor tables for the 22 result sets of the extraction script.
// Ordinals, names and expected types are the structural contract: a script
// change that reorders sets, renames columns or alters types is a breaking
// change and must surface as a contract error, never as silently wrong data.
//
// Priorities fix the contract order once, at startup. They are spaced by 10
// so a future set can be slotted in without renumbering everything.

var databaseInfoDef = &resultSetDef{
	name:     "databaseInfo",
	priority: 10,
	columns: []Column{
		{0, "name", TypeText},
		{1, "collation", TypeText},
		{2, "engineVersion", TypeText},
	},
}

var modulesDef = &resultSetDef{
	name:     "modules",
	priority: 20,
	columns: []Column{
		{0, "id", TypeUUID},
		{1, "name", TypeText},
		{2, "isSystem", TypeBool},
		{3, "isActive", TypeBool},
	},
}

var entitiesDef = &resultSetDef{
	name:     "entities",
	priority: 30,
	columns: []Column{
		{0, "id", TypeUUID},
		{1, "moduleId", TypeUUID},
		{2, "name", TypeText},
		{3, "tableName", TypeText},
		{4, "isAudited", TypeBool},
	},
}

var attributesDef = &resultSetDef{
	name:     "attributes",
	priority: 40,
	columns: []Column{
		{0, "id", TypeUUID},
		{1, "entityId", TypeUUID},
		{2, "name", TypeText},
		{3, "columnName", TypeText},
		{4, "dataType", TypeText},
		{5, "isActive", TypeBool},
		{6, "isNullable", TypeBool},
	},
}

var referencesDef = &resultSetDef{
	name:     "references",
	priority: 50,
	columns: []Column{
		{0, "id", TypeUUID},
		{1, "entityId", TypeUUID},
		{2, "name", TypeText},
		{3, "targetEntityId", TypeUUID},
		{4, "cardinality", TypeText},
	},
}

var physicalTablesDef = &resultSetDef{
	name:     "physicalTables",
	priority: 60,
	columns: []Column{
		{0, "schemaName", TypeText},
		{1, "tableName", TypeText},
		{2, "objectId", TypeInt64},
	},
}

var columnRealityDef = &resultSetDef{
	name:     "columnReality",
	priority: 70,
	columns: []Column{
		{0, "tableName", TypeText},
		{1, "columnName", TypeText},
		{2, "providerType", TypeText},
		{3, "maxLength", TypeInt32},
		{4, "isNullable", TypeBool},
	},
}

var columnDefaultsDef = &resultSetDef{
	name:     "columnDefaults",
	priority: 80,
	columns: []Column{
		{0, "tableName", TypeText},
		{1, "columnName", TypeText},
		{2, "definition", TypeText},
	},
}

var columnChecksDef = &resultSetDef{
	name:     "columnChecks",
	priority: 90,
	columns: []Column{
		{0, "tableName", TypeText},
		{1, "constraintName", TypeText},
		{2, "definition", TypeText},
	},
}

var uniqueConstraintsDef = &resultSetDef{
	name:     "uniqueConstraints",
	priority: 100,
	columns: []Column{
		{0, "tableName", TypeText},
		{1, "constraintName", TypeText},
		{2, "columnCsv", TypeText},
	},
}

var indexesDef = &resultSetDef{
	name:     "indexes",
	priority: 110,
	columns: []Column{
		{0, "tableName", TypeText},
		{1, "indexName", TypeText},
		{2, "isUnique", TypeBool},
		{3, "isClustered", TypeBool},
	},
}

var indexColumnsDef = &resultSetDef{
	name:     "indexColumns",
	priority: 120,
	columns: []Column{
		{0, "indexName", TypeText},
		{1, "columnName", TypeText},
		{2, "keyOrdinal", TypeInt32},
		{3, "isIncluded", TypeBool},
	},
}

var foreignKeysDef = &resultSetDef{
	name:     "foreignKeys",
	priority: 130,
	columns: []Column{
		{0, "constraintName", TypeText},
		{1, "tableName", TypeText},
		{2, "referencedTable", TypeText},
		{3, "isDisabled", TypeBool},
	},
}

var foreignKeyColumnsDef = &resultSetDef{
	name:     "foreignKeyColumns",
	priority: 140,
	columns: []Column{
		{0, "constraintName", TypeText},
		{1, "columnName", TypeText},
		{2, "referencedColumn", TypeText},
		{3, "ordinal", TypeInt32},
	},
}

var triggersDef = &resultSetDef{
	name:     "triggers",
	priority: 150,
	columns: []Column{
		{0, "tableName", TypeText},
		{1, "triggerName", TypeText},
		{2, "isDisabled", TypeBool},
		{3, "definitionHash", TypeText},
	},
}

var sequencesDef = &resultSetDef{
	name:     "sequences",
	priority: 160,
	columns: []Column{
		{0, "schemaName", TypeText},
		{1, "sequenceName", TypeText},
		{2, "startValue", TypeDecimal},
		{3, "increment", TypeInt64},
	},
}

var extendedPropertiesDef = &resultSetDef{
	name:     "extendedProperties",
	priority: 170,
	columns: []Column{
		{0, "objectName", TypeText},
		{1, "propertyName", TypeText},
		{2, "value", TypeText},
	},
}

// The per-entity fragment sets share one column shape; only the name and
// position differ.
func entityFragmentDef(name string, priority int) *resultSetDef {
	return &resultSetDef{
		name:     name,
		priority: priority,
		columns: []Column{
			{0, "entityId", TypeUUID},
			{1, "fragment", TypeText},
		},
	}
}

var (
	attributeJSONDef    = entityFragmentDef("attributeJson", 180)
	relationshipJSONDef = entityFragmentDef("relationshipJson", 190)
	indexJSONDef        = entityFragmentDef("indexJson", 200)
	triggerJSONDef      = entityFragmentDef("triggerJson", 210)
)

var moduleJSONDef = &resultSetDef{
	name:     "moduleJson",
	priority: 220,
	columns: []Column{
		{0, "moduleId", TypeUUID},
		{1, "fragment", TypeText},
	},
}

// processor binds one result-set definition to the code that maps its rows
// and writes them into the accumulator.
type processor struct {
	def *resultSetDef
	run func(ctx context.Context, cur Cursor, acc *model.Accumulator, ov Overrides, log *slog.Logger) (int, error)
}

// newProcessor wires a definition, projection and accumulator assignment
// into a processor. The assignment error (double write) is surfaced, not
// swallowed.
func newProcessor[T any](def *resultSetDef, project func(*RowReader) (T, error), assign func(*model.Accumulator, []T) error) processor {
	return processor{
		def: def,
		run: func(ctx context.Context, cur Cursor, acc *model.Accumulator, ov Overrides, log *slog.Logger) (int, error) {
			rows, err := mapRows(ctx, cur, def, ov, log, project)
			if err != nil {
				return 0, err
			}
			if err := assign(acc, rows); err != nil {
				return 0, err
			}
			return len(rows), nil
		},
	}
}

// buildProcessors constructs the full processor table sorted by priority
// then name. The ordering is computed exactly once, at startup; extraction
// itself never re-sorts.
func buildProcessors() []processor {
	procs := []processor{
		newProcessor(databaseInfoDef, projectDatabaseInfo, (*model.Accumulator).SetDatabaseInfo),
		newProcessor(modulesDef, projectModule, (*model.Accumulator).SetModules),
		newProcessor(entitiesDef, projectEntity, (*model.Accumulator).SetEntities),
		newProcessor(attributesDef, projectAttribute, (*model.Accumulator).SetAttributes),
		newProcessor(referencesDef, projectReference, (*model.Accumulator).SetReferences),
		newProcessor(physicalTablesDef, projectPhysicalTable, (*model.Accumulator).SetPhysicalTables),
		newProcessor(columnRealityDef, projectColumnReality, (*model.Accumulator).SetColumnReality),
		newProcessor(columnDefaultsDef, projectColumnDefault, (*model.Accumulator).SetColumnDefaults),
		newProcessor(columnChecksDef, projectColumnCheck, (*model.Accumulator).SetColumnChecks),
		newProcessor(uniqueConstraintsDef, projectUniqueConstraint, (*model.Accumulator).SetUniqueConstraints),
		newProcessor(indexesDef, projectIndex, (*model.Accumulator).SetIndexes),
		newProcessor(indexColumnsDef, projectIndexColumn, (*model.Accumulator).SetIndexColumns),
		newProcessor(foreignKeysDef, projectForeignKey, (*model.Accumulator).SetForeignKeys),
		newProcessor(foreignKeyColumnsDef, projectForeignKeyColumn, (*model.Accumulator).SetForeignKeyColumns),
		newProcessor(triggersDef, projectTrigger, (*model.Accumulator).SetTriggers),
		newProcessor(sequencesDef, projectSequence, (*model.Accumulator).SetSequences),
		newProcessor(extendedPropertiesDef, projectExtendedProperty, (*model.Accumulator).SetExtendedProperties),
		newProcessor(attributeJSONDef, projectEntityFragment, (*model.Accumulator).SetAttributeJSON),
		newProcessor(relationshipJSONDef, projectEntityFragment, (*model.Accumulator).SetRelationshipJSON),
		newProcessor(indexJSONDef, projectEntityFragment, (*model.Accumulator).SetIndexJSON),
		newProcessor(triggerJSONDef, projectEntityFragment, (*model.Accumulator).SetTriggerJSON),
		newProcessor(moduleJSONDef, projectModuleFragment, (*model.Accumulator).SetModuleJSON),
	}
	sort.SliceStable(procs, func(i, j int) bool {
		a, b := procs[i].def, procs[j].def
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		return a.name < b.name
	})
	return procs
}

// ResultSetNames returns the contract's result-set names in order. Useful
// for docs, fixtures and tests; the engine itself uses the processor table.
func ResultSetNames() []string {
	schemas := ContractSchemas()
	names := make([]string, len(schemas))
	for i, rs := range schemas {
		names[i] = rs.Name
	}
	return names
}

// ResultSetSchema describes one contract result set for callers outside the
// engine (test cursors, fixture tooling).
type ResultSetSchema struct {
	Name    string
	Columns []Column
}

// ContractSchemas returns the full contract in order: every result set with
// its descriptor table. The returned slices are copies; mutating them does
// not affect the engine.
func ContractSchemas() []ResultSetSchema {
	procs := buildProcessors()
	schemas := make([]ResultSetSchema, len(procs))
	for i, p := range procs {
		cols := make([]Column, len(p.def.columns))
		copy(cols, p.def.columns)
		schemas[i] = ResultSetSchema{Name: p.def.name, Columns: cols}
	}
	return schemas
}

func projectDatabaseInfo(r *RowReader) (model.DatabaseInfoRow, error) {
	c := databaseInfoDef.columns
	var row model.DatabaseInfoRow
	var err error
	if row.Name, err = r.Text(c[0]); err != nil {
		return row, err
	}
	if row.Collation, err = r.Text(c[1]); err != nil {
		return row, err
	}
	if row.EngineVersion, err = r.Text(c[2]); err != nil {
		return row, err
	}
	return row, nil
}

func projectModule(r *RowReader) (model.ModuleRow, error) {
	c := modulesDef.columns
	var row model.ModuleRow
	var err error
	if row.ID, err = r.UUID(c[0]); err != nil {
		return row, err
	}
	if row.Name, err = r.Text(c[1]); err != nil {
		return row, err
	}
	if row.IsSystem, err = r.Bool(c[2]); err != nil {
		return row, err
	}
	if row.IsActive, err = r.Bool(c[3]); err != nil {
		return row, err
	}
	return row, nil
}

func projectEntity(r *RowReader) (model.EntityRow, error) {
	c := entitiesDef.columns
	var row model.EntityRow
	var err error
	if row.ID, err = r.UUID(c[0]); err != nil {
		return row, err
	}
	if row.ModuleID, err = r.UUID(c[1]); err != nil {
		return row, err
	}
	if row.Name, err = r.Text(c[2]); err != nil {
		return row, err
	}
	if row.TableName, err = r.Text(c[3]); err != nil {
		return row, err
	}
	if row.IsAudited, err = r.Bool(c[4]); err != nil {
		return row, err
	}
	return row, nil
}

func projectAttribute(r *RowReader) (model.AttributeRow, error) {
	c := attributesDef.columns
	var row model.AttributeRow
	var err error
	if row.ID, err = r.UUID(c[0]); err != nil {
		return row, err
	}
	if row.EntityID, err = r.UUID(c[1]); err != nil {
		return row, err
	}
	if row.Name, err = r.Text(c[2]); err != nil {
		return row, err
	}
	if row.ColumnName, err = r.Text(c[3]); err != nil {
		return row, err
	}
	if row.DataType, err = r.Text(c[4]); err != nil {
		return row, err
	}
	if row.IsActive, err = r.Bool(c[5]); err != nil {
		return row, err
	}
	if row.IsNullable, err = r.Bool(c[6]); err != nil {
		return row, err
	}
	return row, nil
}

func projectReference(r *RowReader) (model.ReferenceRow, error) {
	c := referencesDef.columns
	var row model.ReferenceRow
	var err error
	if row.ID, err = r.UUID(c[0]); err != nil {
		return row, err
	}
	if row.EntityID, err = r.UUID(c[1]); err != nil {
		return row, err
	}
	if row.Name, err = r.Text(c[2]); err != nil {
		return row, err
	}
	if row.TargetEntityID, err = r.UUID(c[3]); err != nil {
		return row, err
	}
	if row.Cardinality, err = r.Text(c[4]); err != nil {
		return row, err
	}
	return row, nil
}

func projectPhysicalTable(r *RowReader) (model.PhysicalTableRow, error) {
	c := physicalTablesDef.columns
	var row model.PhysicalTableRow
	var err error
	if row.SchemaName, err = r.Text(c[0]); err != nil {
		return row, err
	}
	if row.TableName, err = r.Text(c[1]); err != nil {
		return row, err
	}
	if row.ObjectID, err = r.Int64(c[2]); err != nil {
		return row, err
	}
	return row, nil
}

func projectColumnReality(r *RowReader) (model.ColumnRealityRow, error) {
	c := columnRealityDef.columns
	var row model.ColumnRealityRow
	var err error
	if row.TableName, err = r.Text(c[0]); err != nil {
		return row, err
	}
	if row.ColumnName, err = r.Text(c[1]); err != nil {
		return row, err
	}
	if row.ProviderType, err = r.Text(c[2]); err != nil {
		return row, err
	}
	if row.MaxLength, err = r.Int32OrNil(c[3]); err != nil {
		return row, err
	}
	if row.IsNullable, err = r.Bool(c[4]); err != nil {
		return row, err
	}
	return row, nil
}

func projectColumnDefault(r *RowReader) (model.ColumnDefaultRow, error) {
	c := columnDefaultsDef.columns
	var row model.ColumnDefaultRow
	var err error
	if row.TableName, err = r.Text(c[0]); err != nil {
		return row, err
	}
	if row.ColumnName, err = r.Text(c[1]); err != nil {
		return row, err
	}
	if row.Definition, err = r.Text(c[2]); err != nil {
		return row, err
	}
	return row, nil
}

func projectColumnCheck(r *RowReader) (model.ColumnCheckRow, error) {
	c := columnChecksDef.columns
	var row model.ColumnCheckRow
	var err error
	if row.TableName, err = r.Text(c[0]); err != nil {
		return row, err
	}
	if row.ConstraintName, err = r.Text(c[1]); err != nil {
		return row, err
	}
	if row.Definition, err = r.Text(c[2]); err != nil {
		return row, err
	}
	return row, nil
}

func projectUniqueConstraint(r *RowReader) (model.UniqueConstraintRow, error) {
	c := uniqueConstraintsDef.columns
	var row model.UniqueConstraintRow
	var err error
	if row.TableName, err = r.Text(c[0]); err != nil {
		return row, err
	}
	if row.ConstraintName, err = r.Text(c[1]); err != nil {
		return row, err
	}
	if row.ColumnCSV, err = r.Text(c[2]); err != nil {
		return row, err
	}
	return row, nil
}

func projectIndex(r *RowReader) (model.IndexRow, error) {
	c := indexesDef.columns
	var row model.IndexRow
	var err error
	if row.TableName, err = r.Text(c[0]); err != nil {
		return row, err
	}
	if row.IndexName, err = r.Text(c[1]); err != nil {
		return row, err
	}
	if row.IsUnique, err = r.Bool(c[2]); err != nil {
		return row, err
	}
	if row.IsClustered, err = r.Bool(c[3]); err != nil {
		return row, err
	}
	return row, nil
}

func projectIndexColumn(r *RowReader) (model.IndexColumnRow, error) {
	c := indexColumnsDef.columns
	var row model.IndexColumnRow
	var err error
	if row.IndexName, err = r.Text(c[0]); err != nil {
		return row, err
	}
	if row.ColumnName, err = r.Text(c[1]); err != nil {
		return row, err
	}
	if row.KeyOrdinal, err = r.Int32(c[2]); err != nil {
		return row, err
	}
	if row.IsIncluded, err = r.Bool(c[3]); err != nil {
		return row, err
	}
	return row, nil
}

func projectForeignKey(r *RowReader) (model.ForeignKeyRow, error) {
	c := foreignKeysDef.columns
	var row model.ForeignKeyRow
	var err error
	if row.ConstraintName, err = r.Text(c[0]); err != nil {
		return row, err
	}
	if row.TableName, err = r.Text(c[1]); err != nil {
		return row, err
	}
	if row.ReferencedTable, err = r.Text(c[2]); err != nil {
		return row, err
	}
	if row.IsDisabled, err = r.Bool(c[3]); err != nil {
		return row, err
	}
	return row, nil
}

func projectForeignKeyColumn(r *RowReader) (model.ForeignKeyColumnRow, error) {
	c := foreignKeyColumnsDef.columns
	var row model.ForeignKeyColumnRow
	var err error
	if row.ConstraintName, err = r.Text(c[0]); err != nil {
		return row, err
	}
	if row.ColumnName, err = r.Text(c[1]); err != nil {
		return row, err
	}
	if row.ReferencedColumn, err = r.Text(c[2]); err != nil {
		return row, err
	}
	if row.Ordinal, err = r.Int32(c[3]); err != nil {
		return row, err
	}
	return row, nil
}

func projectTrigger(r *RowReader) (model.TriggerRow, error) {
	c := triggersDef.columns
	var row model.TriggerRow
	var err error
	if row.TableName, err = r.Text(c[0]); err != nil {
		return row, err
	}
	if row.TriggerName, err = r.Text(c[1]); err != nil {
		return row, err
	}
	if row.IsDisabled, err = r.Bool(c[2]); err != nil {
		return row, err
	}
	if row.DefinitionHash, err = r.Text(c[3]); err != nil {
		return row, err
	}
	return row, nil
}

func projectSequence(r *RowReader) (model.SequenceRow, error) {
	c := sequencesDef.columns
	var row model.SequenceRow
	var err error
	if row.SchemaName, err = r.Text(c[0]); err != nil {
		return row, err
	}
	if row.SequenceName, err = r.Text(c[1]); err != nil {
		return row, err
	}
	if row.StartValue, err = r.Decimal(c[2]); err != nil {
		return row, err
	}
	if row.Increment, err = r.Int64(c[3]); err != nil {
		return row, err
	}
	return row, nil
}

func projectExtendedProperty(r *RowReader) (model.ExtendedPropertyRow, error) {
	c := extendedPropertiesDef.columns
	var row model.ExtendedPropertyRow
	var err error
	if row.ObjectName, err = r.Text(c[0]); err != nil {
		return row, err
	}
	if row.PropertyName, err = r.Text(c[1]); err != nil {
		return row, err
	}
	if row.Value, err = r.TextOrNil(c[2]); err != nil {
		return row, err
	}
	return row, nil
}

// projectEntityFragment serves all four per-entity fragment sets; the
// column shape is identical across them.
func projectEntityFragment(r *RowReader) (model.EntityFragmentRow, error) {
	var row model.EntityFragmentRow
	var err error
	if row.EntityID, err = r.UUID(Column{Ordinal: 0, Name: "entityId", Type: TypeUUID}); err != nil {
		return row, err
	}
	if row.Fragment, err = r.TextOrNil(Column{Ordinal: 1, Name: "fragment", Type: TypeText}); err != nil {
		return row, err
	}
	return row, nil
}

func projectModuleFragment(r *RowReader) (model.ModuleFragmentRow, error) {
	c := moduleJSONDef.columns
	var row model.ModuleFragmentRow
	var err error
	if row.ModuleID, err = r.UUID(c[0]); err != nil {
		return row, err
	}
	if row.Fragment, err = r.TextOrNil(c[1]); err != nil {
		return row, err
	}
	return row, nil
}
