// Package report renders the outbound diagnostics documents of a run: a
// success document carrying every typed-row kind under its fixed key, or a
// failure document carrying coded error entries and, when available, the
// diagnostic row snapshot.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/tetrad-labs/metasnap/internal/backend"
	"github.com/tetrad-labs/metasnap/internal/canonical"
	"github.com/tetrad-labs/metasnap/internal/engine"
	"github.com/tetrad-labs/metasnap/internal/model"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Entry is one coded error in a failure document.
type Entry struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Writer builds and writes diagnostics documents.
type Writer struct {
	clock Clock
	newID func() uuid.UUID
}

// Option configures a Writer.
type Option func(*Writer)

// WithClock pins the clock (tests).
func WithClock(c Clock) Option {
	return func(w *Writer) { w.clock = c }
}

// WithRunID pins run-id generation (tests).
func WithRunID(fn func() uuid.UUID) Option {
	return func(w *Writer) { w.newID = fn }
}

// NewWriter creates a Writer with the system clock and random run ids.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{clock: systemClock{}, newID: uuid.New}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Now exposes the writer's clock so callers timestamp canonical documents
// and diagnostics documents from the same instant.
func (w *Writer) Now() time.Time { return w.clock.Now().UTC() }

// SuccessDocument renders a snapshot as the success diagnostics document:
// status marker, export timestamp, resolved database name, and one JSON
// array per typed-row kind under its fixed key.
func (w *Writer) SuccessDocument(snap *model.Snapshot) map[string]any {
	doc := map[string]any{
		"status":        "success",
		"exportedAtUtc": w.clock.Now().UTC().Format(time.RFC3339),
		"databaseName":  snap.DatabaseName,
		"runId":         w.newID().String(),
	}
	doc[string(model.KindDatabaseInfo)] = orEmpty(snap.DatabaseInfo)
	doc[string(model.KindModules)] = orEmpty(snap.Modules)
	doc[string(model.KindEntities)] = orEmpty(snap.Entities)
	doc[string(model.KindAttributes)] = orEmpty(snap.Attributes)
	doc[string(model.KindReferences)] = orEmpty(snap.References)
	doc[string(model.KindPhysicalTables)] = orEmpty(snap.PhysicalTables)
	doc[string(model.KindColumnReality)] = orEmpty(snap.ColumnReality)
	doc[string(model.KindColumnDefaults)] = orEmpty(snap.ColumnDefaults)
	doc[string(model.KindColumnChecks)] = orEmpty(snap.ColumnChecks)
	doc[string(model.KindUniqueConstraints)] = orEmpty(snap.UniqueConstraints)
	doc[string(model.KindIndexes)] = orEmpty(snap.Indexes)
	doc[string(model.KindIndexColumns)] = orEmpty(snap.IndexColumns)
	doc[string(model.KindForeignKeys)] = orEmpty(snap.ForeignKeys)
	doc[string(model.KindForeignKeyColumns)] = orEmpty(snap.ForeignKeyColumns)
	doc[string(model.KindTriggers)] = orEmpty(snap.Triggers)
	doc[string(model.KindSequences)] = orEmpty(snap.Sequences)
	doc[string(model.KindExtendedProperties)] = orEmpty(snap.ExtendedProperties)
	doc[string(model.KindAttributeJSON)] = orEmpty(snap.AttributeJSON)
	doc[string(model.KindRelationshipJSON)] = orEmpty(snap.RelationshipJSON)
	doc[string(model.KindIndexJSON)] = orEmpty(snap.IndexJSON)
	doc[string(model.KindTriggerJSON)] = orEmpty(snap.TriggerJSON)
	doc[string(model.KindModuleJSON)] = orEmpty(snap.ModuleJSON)
	return doc
}

// FailureDocument renders an error as the failure diagnostics document.
// Every error entry carries a stable code; when the failure wraps a row
// mapping error, the full row snapshot is embedded.
func (w *Writer) FailureDocument(err error) map[string]any {
	doc := map[string]any{
		"status":        "failure",
		"exportedAtUtc": w.clock.Now().UTC().Format(time.RFC3339),
		"runId":         w.newID().String(),
		"errors":        Entries(err),
	}
	if snap := engine.SnapshotOf(err); snap != nil {
		doc["rowSnapshot"] = snap
	}
	return doc
}

// Entries maps an error to its coded entries. Validation errors expand to
// one entry per structural problem; everything else maps to one entry.
func Entries(err error) []Entry {
	var (
		execErr     *backend.ExecutionError
		missingErr  *backend.FixtureMissingError
		badFixture  *backend.FixtureMalformedError
		invalidErr  *canonical.ValidationError
		reassignErr *model.ReassignError
	)
	switch {
	case errors.As(err, &invalidErr):
		entries := make([]Entry, len(invalidErr.Problems))
		for i, p := range invalidErr.Problems {
			entries[i] = Entry{Code: "DOCUMENT_INVALID", Message: fmt.Sprintf("%s: %s", p.Path, p.Message)}
		}
		return entries
	case errors.As(err, &execErr):
		return []Entry{{Code: "EXECUTION_FAILED", Message: execErr.Error()}}
	case errors.As(err, &missingErr):
		return []Entry{{Code: "FIXTURE_MISSING", Message: missingErr.Error()}}
	case errors.As(err, &badFixture):
		return []Entry{{Code: "FIXTURE_MALFORMED", Message: badFixture.Error()}}
	case errors.As(err, &reassignErr):
		return []Entry{{Code: "ACCUMULATOR_REASSIGNED", Message: reassignErr.Error()}}
	}
	if code := engine.CodeOf(err); code != "" {
		return []Entry{{Code: string(code), Message: err.Error()}}
	}
	return []Entry{{Code: "UNEXPECTED", Message: err.Error()}}
}

// Write serializes a document to path with stable formatting.
func Write(path string, doc map[string]any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing diagnostics document: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing diagnostics document: %w", err)
	}
	return nil
}

// orEmpty keeps empty kinds as [] rather than null in the document.
func orEmpty[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
