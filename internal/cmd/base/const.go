// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package base

const (
	EnvStepledgerCLINoColor = `STEPLEDGER_CLI_NO_COLOR`
	EnvStepledgerCLIFormat  = `STEPLEDGER_CLI_FORMAT`
	EnvStepledgerLogLevel   = `STEPLEDGER_LOG_LEVEL`
	EnvStepledgerLogFormat  = `STEPLEDGER_LOG_FORMAT`
	EnvStepledgerConfig     = `STEPLEDGER_CONFIG`
)

// Exit codes of the commands.
const (
	// CommandSuccess is returned when the command did what it was asked.
	CommandSuccess = 0

	// CommandUserError is returned for invalid flags, arguments or
	// configuration.
	CommandUserError = 1

	// CommandRunError is returned when a run against the database failed.
	CommandRunError = 2
)
