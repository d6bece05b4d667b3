// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package metric provides functions to initialize a prometheus metric
// detailing build info
package metric

import (
	"runtime"

	"github.com/hashicorp/stepledger/globals"
	"github.com/hashicorp/stepledger/version"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelGoVersion         = "goversion"
	labelGitRevision       = "revision"
	labelStepledgerVersion = "version"
)

// buildInfoVec is a gauge metric whose value is always equal to 1 and whose
// labels contain the current go version, git revision, and stepledger version.
var buildInfoVec = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: globals.MetricNamespace,
		Name:      "build_info",
		Help:      "Gauge with labels describing go version, git revision hash, and stepledger release version.",
	},
	[]string{labelGoVersion, labelGitRevision, labelStepledgerVersion},
)

func getBuildInfoLabels() map[string]string {
	verInfo := version.Get()

	return map[string]string{
		labelGoVersion:         runtime.Version(),
		labelGitRevision:       verInfo.Revision,
		labelStepledgerVersion: verInfo.VersionNumber(),
	}
}

// InitializeBuildInfo registers the stepledger_build_info metric with its
// correct labels and sets its value to 1.
func InitializeBuildInfo(r prometheus.Registerer) {
	if r == nil {
		return
	}

	r.MustRegister(buildInfoVec)
	l := prometheus.Labels(getBuildInfoLabels())
	buildInfoVec.With(l).Set(float64(1))
}
