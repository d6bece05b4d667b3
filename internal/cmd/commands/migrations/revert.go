// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package migrations

import (
	"context"

	"github.com/hashicorp/stepledger/internal/cmd/base"
	"github.com/hashicorp/stepledger/internal/migrate"
	"github.com/mitchellh/cli"
	"github.com/posener/complete"
)

var (
	_ cli.Command             = (*RevertCommand)(nil)
	_ cli.CommandAutocomplete = (*RevertCommand)(nil)
)

type RevertCommand struct {
	*base.Command
}

func (c *RevertCommand) Synopsis() string {
	return "Roll back the most recently applied step"
}

func (c *RevertCommand) Help() string {
	return base.WrapForHelpText([]string{
		"Usage: stepledger revert [options]",
		"",
		"  Run the down statements of the most recently applied step and remove it from the ledger:",
		"",
		"    $ stepledger revert -config=/etc/stepledger/stepledger.hcl",
		"",
		"  Each invocation reverts one step.",
	}) + c.Flags().Help()
}

func (c *RevertCommand) Flags() *base.FlagSets {
	return c.FlagSet(base.FlagSetRun | base.FlagSetOutputFormat)
}

func (c *RevertCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *RevertCommand) AutocompleteFlags() complete.Flags {
	return c.Flags().Completions()
}

func (c *RevertCommand) Run(args []string) int {
	return run(c.Command, c.Flags(), args, func(ctx context.Context, m *migrate.Manager) (migrate.Report, error) {
		return m.Revert(ctx)
	})
}
