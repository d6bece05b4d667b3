// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package base

import (
	"strings"

	"github.com/kr/text"
	"github.com/ryanuber/columnize"
)

// maxMessageWidth bounds the last column of a report table. Longer messages
// continue on rows of their own.
const maxMessageWidth = 56

// reportTable lays out header and rows as aligned columns with the header
// underlined. The last cell of every row is wrapped at maxMessageWidth.
// Pipes inside cells are replaced since they delimit columns.
func reportTable(header []string, rows [][]string) string {
	if len(header) == 0 {
		return ""
	}
	cell := strings.NewReplacer("|", "/")

	underline := make([]string, len(header))
	for i, h := range header {
		underline[i] = strings.Repeat("-", len(h))
	}
	lines := []string{strings.Join(header, "|"), strings.Join(underline, "|")}

	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = cell.Replace(v)
		}
		last := len(cells) - 1
		wrapped := strings.Split(text.Wrap(cells[last], maxMessageWidth), "\n")
		cells[last] = wrapped[0]
		lines = append(lines, strings.Join(cells, "|"))
		for _, more := range wrapped[1:] {
			lines = append(lines, strings.Repeat("|", last)+more)
		}
	}

	return columnize.Format(lines, &columnize.Config{Glue: "    ", Empty: " "})
}

// indentWrap wraps s so that, once indented by pad spaces, no line exceeds
// maxLineLength.
func indentWrap(s string, pad int) string {
	prefix := strings.Repeat(" ", pad)
	lines := strings.Split(text.Wrap(s, maxLineLength-pad), "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}
