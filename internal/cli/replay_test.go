package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetrad-labs/metasnap/internal/canonical"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReplayCommandProducesCanonicalDocument(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "doc.json")

	stdout, err := runCommand(t,
		"replay",
		"--manifest", filepath.Join("testdata", "manifest.yaml"),
		"--modules", "Sales",
		"--format", "json",
		"--out", outPath,
	)
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.NoError(t, canonical.ValidateJSON(data))
	assert.Contains(t, string(data), `"name":"Sales"`)
}

func TestReplayCommandIsDeterministic(t *testing.T) {
	read := func() string {
		outPath := filepath.Join(t.TempDir(), "doc.json")
		_, err := runCommand(t,
			"replay",
			"--manifest", filepath.Join("testdata", "manifest.yaml"),
			"--modules", "Sales",
			"--out", outPath,
		)
		require.NoError(t, err)
		data, err := os.ReadFile(outPath)
		require.NoError(t, err)
		return string(data)
	}

	first, second := read(), read()
	// Strip the export timestamps; everything else must match byte for byte.
	assert.Equal(t, stripTimestamp(t, first), stripTimestamp(t, second))
}

func stripTimestamp(t *testing.T, doc string) map[string]any {
	t.Helper()
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &decoded))
	delete(decoded, "exportedAtUtc")
	return decoded
}

func TestReplayCommandReportsMissingFixture(t *testing.T) {
	stdout, err := runCommand(t,
		"replay",
		"--manifest", filepath.Join("testdata", "manifest.yaml"),
		"--modules", "Ghost",
		"--format", "json",
	)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "FIXTURE_MISSING", resp.Errors[0].Code)
}

func TestReplayCommandRequiresManifest(t *testing.T) {
	_, err := runCommand(t, "replay")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateCommandAcceptsReplayOutput(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "doc.json")
	_, err := runCommand(t,
		"replay",
		"--manifest", filepath.Join("testdata", "manifest.yaml"),
		"--modules", "Sales",
		"--out", outPath,
	)
	require.NoError(t, err)

	stdout, err := runCommand(t, "validate", outPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "is valid")
}

func TestValidateCommandRejectsBrokenDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"modules":"oops"}`), 0o644))

	stdout, err := runCommand(t, "validate", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotEmpty(t, resp.Errors)
	assert.Equal(t, "DOCUMENT_INVALID", resp.Errors[0].Code)
}
