// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package base

import (
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/hashicorp/stepledger/internal/migrate"
	"github.com/hashicorp/stepledger/internal/step"
	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommand(format string) (*Command, *cli.MockUi) {
	ui := cli.NewMockUi()
	return &Command{UI: &StepledgerUI{Ui: ui, Format: format}}, ui
}

func TestCommand_PrintReport(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	rep := migrate.Report{
		{Id: "0001_users", Status: step.Ok},
		{Id: "0002_seed", Status: step.Error, Error: "Failed migration: a|b."},
	}

	t.Run("json", func(t *testing.T) {
		c, ui := testCommand("json")
		assert.True(t, c.PrintReport(rep))
		assert.JSONEq(t, `{"steps":[
			{"id":"0001_users","status":"ok"},
			{"id":"0002_seed","status":"error","error":"Failed migration: a|b."}
		]}`, ui.OutputWriter.String())
	})
	t.Run("json-empty", func(t *testing.T) {
		c, ui := testCommand("json")
		assert.True(t, c.PrintReport(nil))
		assert.JSONEq(t, `{"steps":[]}`, ui.OutputWriter.String())
	})
	t.Run("table", func(t *testing.T) {
		c, ui := testCommand("table")
		assert.True(t, c.PrintReport(rep))
		lines := strings.Split(strings.TrimSpace(ui.OutputWriter.String()), "\n")
		require.Len(t, lines, 4)
		assert.Equal(t, []string{"Step", "Status", "Message"}, strings.Fields(lines[0]))
		assert.Equal(t, []string{"0001_users", "ok"}, strings.Fields(lines[2]))
		assert.Contains(t, lines[3], "Failed migration: a/b.")
	})
	t.Run("table-empty", func(t *testing.T) {
		c, ui := testCommand("table")
		assert.True(t, c.PrintReport(nil))
		assert.Equal(t, "No steps found.\n", ui.OutputWriter.String())
	})
}

func TestCommand_PrintCliError(t *testing.T) {
	t.Parallel()
	c, ui := testCommand("json")
	c.PrintCliError(errors.New(`bad "thing"`))
	assert.JSONEq(t, `{"error":"bad \"thing\""}`, ui.ErrorWriter.String())

	c, ui = testCommand("table")
	c.PrintCliError(errors.New("bad thing"))
	assert.Equal(t, "bad thing\n", ui.ErrorWriter.String())
}

func TestFormat(t *testing.T) {
	t.Setenv(EnvStepledgerCLIFormat, "json")
	assert.Equal(t, "table", Format(&StepledgerUI{Ui: cli.NewMockUi(), Format: "table"}))
	assert.Equal(t, "json", Format(cli.NewMockUi()))
}

func TestWrapMap(t *testing.T) {
	t.Parallel()
	got := WrapMap(2, 0, map[string]any{
		"Version Number": "0.3.0",
		"Build Date":     "2024-01-02",
	})
	assert.Equal(t, "  Build Date:     2024-01-02\n  Version Number: 0.3.0", got)
}

func TestWrapForHelpText(t *testing.T) {
	t.Parallel()
	got := WrapForHelpText([]string{"Usage: stepledger migrate [options]  ", "", "  indented"})
	assert.Equal(t, "Usage: stepledger migrate [options]\n\n  indented", got)
}
