// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package migrations holds the commands running steps against a database.
package migrations

import (
	"context"
	"fmt"

	"github.com/hashicorp/stepledger/internal/cmd/base"
	"github.com/hashicorp/stepledger/internal/migrate"
)

// runFunc is one invocation of the manager.
type runFunc func(ctx context.Context, m *migrate.Manager) (migrate.Report, error)

// run parses the flags, sets the command up and invokes fn. It prints the
// report, and the error when fn fails, and returns the exit code.
func run(c *base.Command, f *base.FlagSets, args []string, fn runFunc) int {
	if err := f.Parse(args); err != nil {
		c.PrintCliError(err)
		return base.CommandUserError
	}
	if len(f.Args()) > 0 {
		c.PrintCliError(fmt.Errorf("Unexpected arguments: %v", f.Args()))
		return base.CommandUserError
	}
	filter, err := c.ReportFilter()
	if err != nil {
		c.PrintCliError(err)
		return base.CommandUserError
	}
	if ret := c.Setup(); ret != base.CommandSuccess {
		return ret
	}
	defer func() {
		if err := c.Close(); err != nil {
			c.PrintCliError(fmt.Errorf("Error closing log file: %w", err))
		}
	}()

	m, d, err := c.OpenManager()
	if err != nil {
		c.PrintCliError(fmt.Errorf("Error opening database: %w", err))
		return base.CommandRunError
	}
	defer func() {
		if err := d.Close(); err != nil {
			c.PrintCliError(fmt.Errorf("Error closing database: %w", err))
		}
	}()

	rep, runErr := fn(c.Context, m)
	if err := c.WriteMetrics(); err != nil {
		c.PrintCliError(err)
	}
	if len(rep) > 0 || runErr == nil {
		filtered, err := rep.Filtered(c.Context, filter)
		if err != nil {
			c.PrintCliError(err)
			return base.CommandRunError
		}
		c.PrintReport(filtered)
	}
	if runErr != nil {
		c.PrintCliError(runErr)
		return base.CommandRunError
	}
	return base.CommandSuccess
}
