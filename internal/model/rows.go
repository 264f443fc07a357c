package model

import "github.com/google/uuid"

// Kind names one result-set kind. Kind values double as the fixed JSON keys
// used by the diagnostics report, so they are part of the outbound contract
// and must never be renamed.
type Kind string

const (
	KindDatabaseInfo       Kind = "databaseInfo"
	KindModules            Kind = "modules"
	KindEntities           Kind = "entities"
	KindAttributes         Kind = "attributes"
	KindReferences         Kind = "references"
	KindPhysicalTables     Kind = "physicalTables"
	KindColumnReality      Kind = "columnReality"
	KindColumnDefaults     Kind = "columnDefaults"
	KindColumnChecks       Kind = "columnChecks"
	KindUniqueConstraints  Kind = "uniqueConstraints"
	KindIndexes            Kind = "indexes"
	KindIndexColumns       Kind = "indexColumns"
	KindForeignKeys        Kind = "foreignKeys"
	KindForeignKeyColumns  Kind = "foreignKeyColumns"
	KindTriggers           Kind = "triggers"
	KindSequences          Kind = "sequences"
	KindExtendedProperties Kind = "extendedProperties"
	KindAttributeJSON      Kind = "attributeJson"
	KindRelationshipJSON   Kind = "relationshipJson"
	KindIndexJSON          Kind = "indexJson"
	KindTriggerJSON        Kind = "triggerJson"
	KindModuleJSON         Kind = "moduleJson"
)

// Kinds lists every result-set kind in contract order (priority then name,
// fixed at startup). The sequencer's processor table and the diagnostics
// report both iterate this slice so that output ordering is deterministic.
var Kinds = []Kind{
	KindDatabaseInfo,
	KindModules,
	KindEntities,
	KindAttributes,
	KindReferences,
	KindPhysicalTables,
	KindColumnReality,
	KindColumnDefaults,
	KindColumnChecks,
	KindUniqueConstraints,
	KindIndexes,
	KindIndexColumns,
	KindForeignKeys,
	KindForeignKeyColumns,
	KindTriggers,
	KindSequences,
	KindExtendedProperties,
	KindAttributeJSON,
	KindRelationshipJSON,
	KindIndexJSON,
	KindTriggerJSON,
	KindModuleJSON,
}

// DatabaseInfoRow identifies the source database. The live script emits
// exactly one row; the resolved name is carried into the Snapshot and the
// diagnostics report.
type DatabaseInfoRow struct {
	Name          string `json:"name"`
	Collation     string `json:"collation"`
	EngineVersion string `json:"engineVersion"`
}

// ModuleRow is one business module.
type ModuleRow struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	IsSystem bool      `json:"isSystem"`
	IsActive bool      `json:"isActive"`
}

// EntityRow is one entity owned by a module.
type EntityRow struct {
	ID        uuid.UUID `json:"id"`
	ModuleID  uuid.UUID `json:"moduleId"`
	Name      string    `json:"name"`
	TableName string    `json:"tableName"`
	IsAudited bool      `json:"isAudited"`
}

// AttributeRow is one declared attribute of an entity.
type AttributeRow struct {
	ID         uuid.UUID `json:"id"`
	EntityID   uuid.UUID `json:"entityId"`
	Name       string    `json:"name"`
	ColumnName string    `json:"columnName"`
	DataType   string    `json:"dataType"`
	IsActive   bool      `json:"isActive"`
	IsNullable bool      `json:"isNullable"`
}

// ReferenceRow is one declared relationship between entities.
type ReferenceRow struct {
	ID             uuid.UUID `json:"id"`
	EntityID       uuid.UUID `json:"entityId"`
	Name           string    `json:"name"`
	TargetEntityID uuid.UUID `json:"targetEntityId"`
	Cardinality    string    `json:"cardinality"`
}

// PhysicalTableRow is one table that actually exists in the database.
type PhysicalTableRow struct {
	SchemaName string `json:"schemaName"`
	TableName  string `json:"tableName"`
	ObjectID   int64  `json:"objectId"`
}

// ColumnRealityRow is the observed shape of one physical column, as opposed
// to the attribute metadata that declares it.
type ColumnRealityRow struct {
	TableName    string `json:"tableName"`
	ColumnName   string `json:"columnName"`
	ProviderType string `json:"providerType"`
	// MaxLength is nil for types without a length (the provider reports
	// NULL there).
	MaxLength  *int32 `json:"maxLength"`
	IsNullable bool   `json:"isNullable"`
}

// ColumnDefaultRow is one column default constraint.
type ColumnDefaultRow struct {
	TableName  string `json:"tableName"`
	ColumnName string `json:"columnName"`
	Definition string `json:"definition"`
}

// ColumnCheckRow is one check constraint scoped to a table.
type ColumnCheckRow struct {
	TableName      string `json:"tableName"`
	ConstraintName string `json:"constraintName"`
	Definition     string `json:"definition"`
}

// UniqueConstraintRow is one unique constraint with its column list as the
// provider renders it (comma separated, key order).
type UniqueConstraintRow struct {
	TableName      string `json:"tableName"`
	ConstraintName string `json:"constraintName"`
	ColumnCSV      string `json:"columnCsv"`
}

// IndexRow is one index on a physical table.
type IndexRow struct {
	TableName   string `json:"tableName"`
	IndexName   string `json:"indexName"`
	IsUnique    bool   `json:"isUnique"`
	IsClustered bool   `json:"isClustered"`
}

// IndexColumnRow is one column participating in an index.
type IndexColumnRow struct {
	IndexName  string `json:"indexName"`
	ColumnName string `json:"columnName"`
	KeyOrdinal int32  `json:"keyOrdinal"`
	IsIncluded bool   `json:"isIncluded"`
}

// ForeignKeyRow is one foreign key constraint.
type ForeignKeyRow struct {
	ConstraintName  string `json:"constraintName"`
	TableName       string `json:"tableName"`
	ReferencedTable string `json:"referencedTable"`
	IsDisabled      bool   `json:"isDisabled"`
}

// ForeignKeyColumnRow is one column pair of a foreign key.
type ForeignKeyColumnRow struct {
	ConstraintName   string `json:"constraintName"`
	ColumnName       string `json:"columnName"`
	ReferencedColumn string `json:"referencedColumn"`
	Ordinal          int32  `json:"ordinal"`
}

// TriggerRow is one trigger on a physical table. Only the definition hash
// is extracted; trigger bodies stay in the database.
type TriggerRow struct {
	TableName      string `json:"tableName"`
	TriggerName    string `json:"triggerName"`
	IsDisabled     bool   `json:"isDisabled"`
	DefinitionHash string `json:"definitionHash"`
}

// SequenceRow is one sequence object. StartValue is decimal text verbatim
// from the provider; it is never parsed into floating point.
type SequenceRow struct {
	SchemaName   string `json:"schemaName"`
	SequenceName string `json:"sequenceName"`
	StartValue   string `json:"startValue"`
	Increment    int64  `json:"increment"`
}

// ExtendedPropertyRow is one extended property (description, annotation)
// attached to a database object. Value may legitimately be NULL when the
// property exists without content, which is why it is the canonical example
// of a contract-override column.
type ExtendedPropertyRow struct {
	ObjectName   string  `json:"objectName"`
	PropertyName string  `json:"propertyName"`
	Value        *string `json:"value"`
}

// EntityFragmentRow carries one pre-serialized JSON-array fragment for an
// entity (attributes, relationships, indexes or triggers, depending on the
// result set it came from). Fragment is nil when the source emitted an
// explicit NULL for the entity.
type EntityFragmentRow struct {
	EntityID uuid.UUID `json:"entityId"`
	Fragment *string   `json:"fragment"`
}

// ModuleFragmentRow carries one pre-serialized JSON-array fragment for a
// module.
type ModuleFragmentRow struct {
	ModuleID uuid.UUID `json:"moduleId"`
	Fragment *string   `json:"fragment"`
}
