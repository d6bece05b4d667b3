// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/stepledger/internal/cmd/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupEnv(t *testing.T) {
	tests := []struct {
		name       string
		in         []string
		out        []string
		wantFormat string
	}{
		{
			name:       "no args",
			wantFormat: "table",
		},
		{
			name:       "version shortcut",
			in:         []string{"-v"},
			out:        []string{"version"},
			wantFormat: "table",
		},
		{
			name:       "format with equal sign",
			in:         []string{"status", "-format=JSON"},
			out:        []string{"status", "-format=JSON"},
			wantFormat: "json",
		},
		{
			name:       "format as next arg",
			in:         []string{"status", "-format", "json"},
			out:        []string{"status", "-format", "json"},
			wantFormat: "json",
		},
		{
			name:       "stops at double dash",
			in:         []string{"status", "--", "-format=json"},
			out:        []string{"status", "--", "-format=json"},
			wantFormat: "table",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(base.EnvStepledgerCLIFormat, "")
			args, format := setupEnv(tt.in)
			assert.Equal(t, tt.out, args)
			assert.Equal(t, tt.wantFormat, format)
		})
	}

	t.Run("format from env", func(t *testing.T) {
		t.Setenv(base.EnvStepledgerCLIFormat, "json")
		_, format := setupEnv([]string{"status"})
		assert.Equal(t, "json", format)
	})
}

type testReport struct {
	Steps []struct {
		Id     string `json:"id"`
		Status string `json:"status"`
		Error  string `json:"error"`
	} `json:"steps"`
}

func (r testReport) statuses() []string {
	var s []string
	for _, e := range r.Steps {
		s = append(s, e.Id+"="+e.Status)
	}
	return s
}

func testRun(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := RunCustom(args, &RunOptions{Stdout: &stdout, Stderr: &stderr})
	return code, stdout.String(), stderr.String()
}

func testWorkspace(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	steps := filepath.Join(dir, "steps")
	require.NoError(t, os.Mkdir(steps, 0o700))
	files := map[string]string{
		"0001_accounts.hcl": `
up   = "create table accounts (id text primary key);"
down = "drop table accounts;"
`,
		"0002_seed.yaml": `
up: insert into accounts (id) values ('root');
down: delete from accounts where id = 'root';
`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(steps, name), []byte(content), 0o600))
	}
	cfg := filepath.Join(dir, "stepledger.hcl")
	require.NoError(t, os.WriteFile(cfg, []byte(fmt.Sprintf(`
log_level = "warn"

database {
  dialect = "sqlite"
  url     = "file:%s"
}

steps {
  path = "%s"
}
`, filepath.Join(dir, "ledger.db"), steps)), 0o600))
	return dir, cfg
}

func TestRun_Lifecycle(t *testing.T) {
	t.Setenv(base.EnvStepledgerCLINoColor, "1")
	dir, cfg := testWorkspace(t)

	jsonReport := func(out string) testReport {
		t.Helper()
		var r testReport
		require.NoError(t, json.Unmarshal([]byte(out), &r), out)
		return r
	}

	code, out, errOut := testRun(t, "status", "-config", cfg, "-format=json")
	require.Equal(t, base.CommandSuccess, code, errOut)
	assert.Equal(t, []string{"0001_accounts=pending", "0002_seed=pending"}, jsonReport(out).statuses())

	metrics := filepath.Join(dir, "stepledger.prom")
	code, out, errOut = testRun(t, "migrate", "-config", cfg, "-metrics-textfile", metrics)
	require.Equal(t, base.CommandSuccess, code, errOut)
	assert.Contains(t, out, "Step")
	assert.Contains(t, out, "0002_seed")
	assert.Contains(t, out, "ok")
	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `stepledger_run_total{operation="migrate",outcome="success"}`)
	assert.Contains(t, string(prom), "stepledger_build_info")

	code, out, errOut = testRun(t, "migrate", "-config", cfg, "-format=json")
	require.Equal(t, base.CommandSuccess, code, errOut)
	assert.Equal(t, []string{"0001_accounts=skipped", "0002_seed=skipped"}, jsonReport(out).statuses())

	code, out, errOut = testRun(t, "revert", "-config", cfg, "-format=json")
	require.Equal(t, base.CommandSuccess, code, errOut)
	assert.Equal(t, []string{"0001_accounts=not-run", "0002_seed=rollback"}, jsonReport(out).statuses())

	code, _, errOut = testRun(t, "revert", "-config", cfg)
	require.Equal(t, base.CommandSuccess, code, errOut)

	code, _, errOut = testRun(t, "revert", "-config", cfg)
	assert.Equal(t, base.CommandRunError, code)
	assert.Contains(t, errOut, "Nothing to rollback.")

	code, _, errOut = testRun(t, "revert", "-config", cfg, "-format=json")
	assert.Equal(t, base.CommandRunError, code)
	var cliErr struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace([]byte(errOut)), &cliErr), errOut)
	assert.Contains(t, cliErr.Error, "Nothing to rollback.")
}

func TestRun_Drift(t *testing.T) {
	t.Setenv(base.EnvStepledgerCLINoColor, "1")
	dir, cfg := testWorkspace(t)

	code, _, errOut := testRun(t, "migrate", "-config", cfg, "-skip-lock")
	require.Equal(t, base.CommandSuccess, code, errOut)

	p := filepath.Join(dir, "steps", "0001_accounts.hcl")
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p, append(b, []byte("# edited\n")...), 0o600))

	code, out, errOut := testRun(t, "status", "-config", cfg)
	assert.Equal(t, base.CommandRunError, code)
	assert.Contains(t, out, "[0001_accounts] was already migrated on [")
	assert.Contains(t, errOut, "in a different version")

	code, _, errOut = testRun(t, "migrate", "-config", cfg)
	assert.Equal(t, base.CommandRunError, code)

	code, _, errOut = testRun(t, "migrate", "-config", cfg, "-reconcile-checksums")
	require.Equal(t, base.CommandSuccess, code, errOut)

	code, _, errOut = testRun(t, "status", "-config", cfg)
	require.Equal(t, base.CommandSuccess, code, errOut)
}

func TestRun_FilterAndLogFile(t *testing.T) {
	t.Setenv(base.EnvStepledgerCLINoColor, "1")
	dir, cfg := testWorkspace(t)
	logFile := filepath.Join(dir, "stepledger.log")
	t.Setenv("STEPLEDGER_LOG_FILE", logFile)

	code, _, errOut := testRun(t, "migrate", "-config", cfg, "-log-level", "debug", "-filter", `id == "0002_seed"`)
	require.Equal(t, base.CommandSuccess, code, errOut)

	code, out, errOut := testRun(t, "status", "-config", cfg, "-format=json", "-filter", `id == "0002_seed"`)
	require.Equal(t, base.CommandSuccess, code, errOut)
	var r testReport
	require.NoError(t, json.Unmarshal([]byte(out), &r), out)
	assert.Equal(t, []string{"0002_seed=skipped"}, r.statuses())

	logs, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(logs), "applying step")

	code, _, errOut = testRun(t, "status", "-config", cfg, "-filter", `id ==`)
	assert.Equal(t, base.CommandUserError, code)
	assert.Contains(t, errOut, "Error parsing filter expression")
}

func TestRun_UserErrors(t *testing.T) {
	t.Setenv(base.EnvStepledgerCLINoColor, "1")
	dir, cfg := testWorkspace(t)
	bad := filepath.Join(dir, "bad.hcl")
	require.NoError(t, os.WriteFile(bad, []byte(`database { dialect = "oracle", url = "x" }`), 0o600))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "invalid format",
			args:    []string{"status", "-format=yaml"},
			wantErr: "Invalid output format: yaml",
		},
		{
			name:    "missing config file",
			args:    []string{"status", "-config", filepath.Join(dir, "nope.hcl")},
			wantErr: "Error loading configuration",
		},
		{
			name:    "invalid config",
			args:    []string{"migrate", "-config", bad},
			wantErr: `unsupported database dialect "oracle"`,
		},
		{
			name:    "invalid log level",
			args:    []string{"migrate", "-config", cfg, "-log-level", "loud"},
			wantErr: "unknown log level: loud",
		},
		{
			name:    "unexpected argument",
			args:    []string{"migrate", "-config", cfg, "now"},
			wantErr: "Unexpected arguments",
		},
		{
			name:    "unknown flag",
			args:    []string{"revert", "-force"},
			wantErr: "flag provided but not defined: -force",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := testRun(t, tt.args...)
			assert.Equal(t, base.CommandUserError, code)
			assert.Contains(t, errOut, tt.wantErr)
		})
	}
}

func TestRun_Version(t *testing.T) {
	code, out, _ := testRun(t, "version", "-format=json")
	require.Equal(t, base.CommandSuccess, code)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info), out)
	assert.NotEmpty(t, info["version"])

	code, out, _ = testRun(t, "-v")
	require.Equal(t, base.CommandSuccess, code)
	assert.Contains(t, out, "Version Number")
}
