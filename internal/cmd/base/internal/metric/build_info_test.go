// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package metric

import (
	"runtime"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeBuildInfo(t *testing.T) {
	InitializeBuildInfo(nil)

	r := prometheus.NewRegistry()
	InitializeBuildInfo(r)

	labels := getBuildInfoLabels()
	assert.Equal(t, runtime.Version(), labels[labelGoVersion])
	assert.NotEmpty(t, labels[labelStepledgerVersion])
	assert.Equal(t, float64(1), testutil.ToFloat64(buildInfoVec.With(labels)))

	n, err := testutil.GatherAndCount(r, "stepledger_build_info")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
