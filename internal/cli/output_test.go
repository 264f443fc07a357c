package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatterJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]string{"database": "d"}))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Errors)
}

func TestFormatterJSONFailure(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Failure([]ErrorDetail{{Code: "FIXTURE_MISSING", Message: "no fixture"}}))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "FIXTURE_MISSING", resp.Errors[0].Code)
}

func TestFormatterTextFailure(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Failure([]ErrorDetail{{Code: "EXECUTION_FAILED", Message: "refused"}}))
	assert.Equal(t, "EXECUTION_FAILED: refused\n", buf.String())
}

func TestExitCodeExtraction(t *testing.T) {
	assert.Equal(t, ExitCommandError,
		GetExitCode(WrapExitError(ExitCommandError, "bad flags", nil)))
	assert.Equal(t, ExitFailure,
		GetExitCode(WrapExitError(ExitFailure, "run failed", errors.New("x"))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("unwrapped")))
}

func TestExitErrorUnwraps(t *testing.T) {
	inner := errors.New("root cause")
	err := WrapExitError(ExitFailure, "outer", inner)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "outer")
	assert.Contains(t, err.Error(), "root cause")
}

func TestBuildRequestParsesEntityFilters(t *testing.T) {
	rf := &requestFlags{
		modules:  []string{"Sales"},
		entities: []string{"Sales.Order", "Sales.Customer"},
	}
	req, err := rf.buildRequest()
	require.NoError(t, err)
	require.Len(t, req.EntityFilters, 2)
	assert.Equal(t, "Sales", req.EntityFilters[0].Module)
	assert.Equal(t, "Order", req.EntityFilters[0].Entity)
}

func TestBuildRequestRejectsMalformedEntityFilter(t *testing.T) {
	rf := &requestFlags{entities: []string{"NoSeparator"}}
	_, err := rf.buildRequest()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want Module.Entity")
}
