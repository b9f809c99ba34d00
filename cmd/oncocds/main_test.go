package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncology-cds-engine/internal/catalogue"
	"github.com/oncology-cds-engine/internal/domain"
	"github.com/oncology-cds-engine/internal/service"
)

const breastInput = `{
  "patient_id": "patient-001",
  "disease_status": {"primary_diagnosis": "Breast Cancer", "stage": "II"},
  "performance_status": {"scale": "ECOG", "score": "1"}
}`

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "logging:\n  level: error\nfeedback:\n  driver: sqlite\n  path: " + filepath.Join(dir, "feedback.db") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", writeConfig(t)}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "oncocds dev")
	assert.Contains(t, out, service.EngineVersion)
}

func TestRecommend_JSON(t *testing.T) {
	out, err := run(t, breastInput, "recommend")
	require.NoError(t, err)

	var output domain.DecisionOutput
	require.NoError(t, json.Unmarshal([]byte(out), &output))
	assert.Equal(t, catalogue.BreastACT, output.Primary.ProtocolID)
}

func TestRecommend_TextFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(breastInput), 0o644))

	out, err := run(t, "", "recommend", "--input", path, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Primary: ")
	assert.Contains(t, out, catalogue.BreastACT)
	assert.Contains(t, out, "Overall risk:")
}

func TestRecommend_Explain(t *testing.T) {
	out, err := run(t, breastInput, "recommend", "--explain")
	require.NoError(t, err)

	var trace service.Trace
	require.NoError(t, json.Unmarshal([]byte(out), &trace))
	assert.Equal(t, []string{catalogue.BreastACT}, trace.Eligible)
}

func TestRecommend_Errors(t *testing.T) {
	_, err := run(t, "{", "recommend")
	assert.Error(t, err)

	_, err = run(t, `{"disease_status": {"primary_diagnosis": "Breast Cancer"}}`, "recommend")
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestProtocols(t *testing.T) {
	out, err := run(t, "", "protocols", "list", "--cancer-type", "lung")
	require.NoError(t, err)
	assert.Contains(t, out, catalogue.LungOsimertinib)
	assert.NotContains(t, out, catalogue.BreastACT)

	out, err = run(t, "", "protocols", "show", catalogue.BreastTCH)
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "`+catalogue.BreastTCH+`"`)

	_, err = run(t, "", "protocols", "show", "unknown")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out, err = run(t, "", "protocols", "export")
	require.NoError(t, err)
	parsed, err := catalogue.Parse([]byte(out))
	require.NoError(t, err)
	assert.Len(t, parsed, len(catalogue.Builtin()))
}

func TestFeedbackSummary(t *testing.T) {
	out, err := run(t, "", "feedback", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, `"total": 0`)
}

func TestMCPConfig(t *testing.T) {
	out, err := run(t, "", "mcp-config", "--binary", "/bin/lite", "--data-dir", "/data")
	require.NoError(t, err)
	assert.Contains(t, out, `"command": "/bin/lite"`)
	assert.Contains(t, out, `"ONCOCDS_DATA_DIR": "/data"`)
}
