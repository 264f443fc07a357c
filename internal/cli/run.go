package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tetrad-labs/metasnap/internal/backend"
	"github.com/tetrad-labs/metasnap/internal/canonical"
	"github.com/tetrad-labs/metasnap/internal/model"
	"github.com/tetrad-labs/metasnap/internal/report"
)

// requestFlags are the extraction-shaping flags shared by extract and
// replay.
type requestFlags struct {
	modules              []string
	includeSystem        bool
	includeInactive      bool
	onlyActiveAttributes bool
	entities             []string // Module.Entity pairs
	out                  string
}

// buildRequest converts CLI flags to the engine request.
func (rf *requestFlags) buildRequest() (model.Request, error) {
	req := model.NewRequest(rf.modules, rf.includeSystem, rf.includeInactive, rf.onlyActiveAttributes)
	for _, pair := range rf.entities {
		mod, ent, ok := strings.Cut(pair, ".")
		if !ok || mod == "" || ent == "" {
			return model.Request{}, fmt.Errorf("invalid entity filter %q, want Module.Entity", pair)
		}
		req.EntityFilters = append(req.EntityFilters, model.EntityFilter{Module: mod, Entity: ent})
	}
	return req, nil
}

// runSummary is the success payload the formatter prints.
type runSummary struct {
	Database   string `json:"database"`
	Modules    int    `json:"modules"`
	Entities   int    `json:"entities"`
	TotalRows  int    `json:"totalRows"`
	OutputPath string `json:"outputPath,omitempty"`
}

func (s runSummary) String() string {
	out := fmt.Sprintf("extracted %s: %d modules, %d entities, %d rows",
		s.Database, s.Modules, s.Entities, s.TotalRows)
	if s.OutputPath != "" {
		out += " -> " + s.OutputPath
	}
	return out
}

// runExtraction drives one full run: read through the given backend, build
// and validate the canonical document, write it out, and emit diagnostics.
// All failure paths still produce a failure diagnostics document when the
// config asks for one.
func (a *app) runExtraction(ctx context.Context, rd backend.Reader, rf *requestFlags) error {
	req, err := rf.buildRequest()
	if err != nil {
		return WrapExitError(ExitCommandError, "building request", err)
	}

	writer := report.NewWriter()

	snap, err := rd.Read(ctx, req)
	if err != nil {
		return a.fail(writer, err)
	}

	doc, err := canonical.BuildDocument(snap, writer.Now())
	if err != nil {
		return a.fail(writer, err)
	}
	if err := canonical.Validate(doc); err != nil {
		return a.fail(writer, err)
	}

	data, err := canonical.Marshal(doc)
	if err != nil {
		return a.fail(writer, err)
	}
	if rf.out != "" {
		if werr := os.WriteFile(rf.out, append(data, '\n'), 0o644); werr != nil {
			return WrapExitError(ExitCommandError, "writing canonical document", werr)
		}
	}

	if a.cfg.DiagnosticsPath != "" {
		if derr := report.Write(a.cfg.DiagnosticsPath, writer.SuccessDocument(snap)); derr != nil {
			return WrapExitError(ExitCommandError, "writing diagnostics", derr)
		}
	}

	summary := runSummary{
		Database:   snap.DatabaseName,
		Modules:    len(snap.Modules),
		Entities:   len(snap.Entities),
		TotalRows:  snap.TotalRows(),
		OutputPath: rf.out,
	}
	if rf.out == "" {
		// No output path: the canonical document goes to stdout and the
		// summary is demoted to verbose logging so the stream stays clean.
		fmt.Fprintln(a.formatter.Writer, string(data))
		a.formatter.VerboseLog("%s", summary)
		return nil
	}
	return a.formatter.Success(summary)
}

// fail writes the failure diagnostics document when configured, reports the
// coded errors through the formatter, and returns the run failure.
func (a *app) fail(writer *report.Writer, err error) error {
	if a.cfg.DiagnosticsPath != "" {
		if derr := report.Write(a.cfg.DiagnosticsPath, writer.FailureDocument(err)); derr != nil {
			a.log.Error("writing failure diagnostics", "error", derr)
		}
	}
	details := make([]ErrorDetail, 0, 2)
	for _, e := range report.Entries(err) {
		details = append(details, ErrorDetail{Code: e.Code, Message: e.Message})
	}
	if ferr := a.formatter.Failure(details); ferr != nil {
		a.log.Error("writing failure output", "error", ferr)
	}
	return WrapExitError(ExitFailure, "extraction failed", err)
}
