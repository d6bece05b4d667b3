// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package cmd

import (
	"github.com/hashicorp/stepledger/internal/cmd/base"
	"github.com/hashicorp/stepledger/internal/cmd/commands/migrations"
	"github.com/hashicorp/stepledger/internal/cmd/commands/version"
	"github.com/mitchellh/cli"
)

// Commands is the mapping of all the available commands.
var Commands map[string]cli.CommandFactory

func initCommands(ui cli.Ui) {
	Commands = map[string]cli.CommandFactory{
		"migrate": func() (cli.Command, error) {
			return &migrations.MigrateCommand{
				Command: base.NewCommand(ui),
			}, nil
		},
		"revert": func() (cli.Command, error) {
			return &migrations.RevertCommand{
				Command: base.NewCommand(ui),
			}, nil
		},
		"status": func() (cli.Command, error) {
			return &migrations.StatusCommand{
				Command: base.NewCommand(ui),
			}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{
				Command: base.NewCommand(ui),
			}, nil
		},
	}
}
