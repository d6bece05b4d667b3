// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package globals

const (
	// MetricNamespace is the prefix of every prometheus metric.
	MetricNamespace = "stepledger"

	// EnvPrefix is the prefix of environment variables overriding the
	// configuration file.
	EnvPrefix = "STEPLEDGER"

	// DefaultConfigFile is read when -config is not provided and the file
	// exists in the working directory.
	DefaultConfigFile = "stepledger.hcl"
)
