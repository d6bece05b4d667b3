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
	_ cli.Command             = (*MigrateCommand)(nil)
	_ cli.CommandAutocomplete = (*MigrateCommand)(nil)
)

type MigrateCommand struct {
	*base.Command

	flagReconcileChecksums bool
}

func (c *MigrateCommand) Synopsis() string {
	return "Apply the pending steps"
}

func (c *MigrateCommand) Help() string {
	return base.WrapForHelpText([]string{
		"Usage: stepledger migrate [options]",
		"",
		"  Verify the steps against the ledger and apply the pending ones, in order:",
		"",
		"    $ stepledger migrate -config=/etc/stepledger/stepledger.hcl",
		"",
		"  A step is applied once. When a step fails it is rolled back using its down statements and the run stops. Steps already in the ledger must keep their position and content; use -reconcile-checksums to accept edited steps.",
	}) + c.Flags().Help()
}

func (c *MigrateCommand) Flags() *base.FlagSets {
	set := c.FlagSet(base.FlagSetRun | base.FlagSetOutputFormat)

	f := set.NewFlagSet("Migrate Options")

	f.BoolVar(&base.BoolVar{
		Name:   "reconcile-checksums",
		Target: &c.flagReconcileChecksums,
		Usage:  "Record the current checksum of applied steps whose definition changed, instead of failing.",
	})

	return set
}

func (c *MigrateCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *MigrateCommand) AutocompleteFlags() complete.Flags {
	return c.Flags().Completions()
}

func (c *MigrateCommand) Run(args []string) int {
	return run(c.Command, c.Flags(), args, func(ctx context.Context, m *migrate.Manager) (migrate.Report, error) {
		return m.Migrate(ctx, migrate.WithReconcileChecksums(c.flagReconcileChecksums))
	})
}
