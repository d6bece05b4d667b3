// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package base

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/hashicorp/go-bexpr"
	"github.com/hashicorp/stepledger/internal/migrate"
	"github.com/hashicorp/stepledger/internal/step"
	"github.com/mitchellh/cli"
	"github.com/mitchellh/go-wordwrap"
)

// This is adapted from the code in the strings package for TrimSpace
var asciiSpace = [256]uint8{'\t': 1, '\n': 1, '\v': 1, '\f': 1, '\r': 1, ' ': 1}

func trimSpaceRight(in string) string {
	for stop := len(in); stop > 0; stop-- {
		c := in[stop-1]
		if c >= utf8.RuneSelf {
			return strings.TrimFunc(in[:stop], unicode.IsSpace)
		}
		if asciiSpace[c] == 0 {
			return in[0:stop]
		}
	}
	return ""
}

func WrapForHelpText(lines []string) string {
	var ret []string
	for _, line := range lines {
		line = trimSpaceRight(line)
		trimmed := strings.TrimSpace(line)
		diff := uint(len(line) - len(trimmed))
		wrapped := wordwrap.WrapString(trimmed, TermWidth-diff)
		splitWrapped := strings.Split(wrapped, "\n")
		for i := range splitWrapped {
			splitWrapped[i] = fmt.Sprintf("%s%s", strings.Repeat(" ", int(diff)), strings.TrimSpace(splitWrapped[i]))
		}
		ret = append(ret, strings.Join(splitWrapped, "\n"))
	}

	return strings.Join(ret, "\n")
}

func WrapMap(prefixSpaces, maxLengthOverride int, input map[string]any) string {
	maxKeyLength := maxLengthOverride
	if maxKeyLength == 0 {
		for k := range input {
			if len(k) > maxKeyLength {
				maxKeyLength = len(k)
			}
		}
	}

	var sortedKeys []string
	for k := range input {
		sortedKeys = append(sortedKeys, k)
	}
	sort.Strings(sortedKeys)

	var ret []string
	for _, k := range sortedKeys {
		v := input[k]
		spaces := maxKeyLength - len(k)
		if spaces < 0 {
			spaces = 0
		}
		ret = append(ret, fmt.Sprintf("%s%s%s%v",
			strings.Repeat(" ", prefixSpaces),
			fmt.Sprintf("%s: ", k),
			strings.Repeat(" ", spaces),
			v,
		))
	}

	return strings.Join(ret, "\n")
}

// statusColors colors the statuses in table output. color.NoColor disables
// them when stdout is not a terminal.
var statusColors = map[step.Status]*color.Color{
	step.NotRun:        color.New(color.Faint),
	step.Pending:       color.New(color.FgYellow),
	step.Ok:            color.New(color.FgGreen),
	step.Skipped:       color.New(color.FgCyan),
	step.Error:         color.New(color.FgRed),
	step.Rollback:      color.New(color.FgMagenta),
	step.RollbackError: color.New(color.FgRed, color.Bold),
}

func statusString(s step.Status) string {
	if c, ok := statusColors[s]; ok {
		return c.Sprint(s.String())
	}
	return s.String()
}

// PrintReport prints the outcome of every step to the UI in the appropriate
// format.
func (c *Command) PrintReport(rep migrate.Report) bool {
	switch c.format() {
	case "json":
		output := struct {
			Steps migrate.Report `json:"steps"`
		}{
			Steps: rep,
		}
		if output.Steps == nil {
			output.Steps = migrate.Report{}
		}
		b, err := JsonFormatter{}.Format(output)
		if err != nil {
			c.PrintCliError(fmt.Errorf("Error formatting as JSON: %w", err))
			return false
		}
		c.UI.Output(string(b))

	default:
		if len(rep) == 0 {
			c.UI.Output("No steps found.")
			return true
		}
		rows := make([][]string, 0, len(rep))
		for _, e := range rep {
			rows = append(rows, []string{e.Id, statusString(e.Status), e.Error})
		}
		c.UI.Output(reportTable([]string{"Step", "Status", "Message"}, rows))
	}
	return true
}

// ReportFilter returns the evaluator of the -filter flag, nil when the flag
// is not set.
func (c *Command) ReportFilter() (*bexpr.Evaluator, error) {
	if c.flagFilter == "" {
		return nil, nil
	}
	eval, err := bexpr.CreateEvaluator(c.flagFilter)
	if err != nil {
		return nil, fmt.Errorf("Error parsing filter expression: %w", err)
	}
	return eval, nil
}

// PrintCliError prints the given CLI error to the UI in the appropriate format
func (c *Command) PrintCliError(err error) {
	switch c.format() {
	case "json":
		output := struct {
			Error string `json:"error"`
		}{
			Error: err.Error(),
		}
		b, _ := JsonFormatter{}.Format(output)
		c.UI.Error(string(b))
	default:
		c.UI.Error(err.Error())
	}
}

// An output formatter for json output of an object
type JsonFormatter struct{}

func (j JsonFormatter) Format(data any) ([]byte, error) {
	return json.Marshal(data)
}

// format returns the -format flag once parsed, the UI's format otherwise.
func (c *Command) format() string {
	if c.flags != nil && c.flags.Parsed() && c.flagFormat != "" {
		return strings.ToLower(c.flagFormat)
	}
	return Format(c.UI)
}

func Format(ui cli.Ui) string {
	switch t := ui.(type) {
	case *StepledgerUI:
		return t.Format
	}

	format := os.Getenv(EnvStepledgerCLIFormat)
	if format == "" {
		format = "table"
	}

	return format
}
