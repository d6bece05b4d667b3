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
	_ cli.Command             = (*StatusCommand)(nil)
	_ cli.CommandAutocomplete = (*StatusCommand)(nil)
)

type StatusCommand struct {
	*base.Command
}

func (c *StatusCommand) Synopsis() string {
	return "Show which steps are applied and which are pending"
}

func (c *StatusCommand) Help() string {
	return base.WrapForHelpText([]string{
		"Usage: stepledger status [options]",
		"",
		"  Verify the steps against the ledger without changing anything:",
		"",
		"    $ stepledger status -format=json",
		"",
		"  Only list the steps which have not been applied yet:",
		"",
		`    $ stepledger status -filter 'status == "pending"'`,
		"",
		"  The command fails when an applied step changed position or content.",
	}) + c.Flags().Help()
}

func (c *StatusCommand) Flags() *base.FlagSets {
	return c.FlagSet(base.FlagSetRun | base.FlagSetOutputFormat)
}

func (c *StatusCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *StatusCommand) AutocompleteFlags() complete.Flags {
	return c.Flags().Completions()
}

func (c *StatusCommand) Run(args []string) int {
	return run(c.Command, c.Flags(), args, func(ctx context.Context, m *migrate.Manager) (migrate.Report, error) {
		return m.Status(ctx)
	})
}
