// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package migrate_test

import (
	"context"
	"testing"

	"github.com/hashicorp/go-bexpr"
	"github.com/hashicorp/stepledger/internal/migrate"
	"github.com/hashicorp/stepledger/internal/step"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	t.Parallel()
	steps := []*step.Step{
		{Id: "0001_users", Order: 0},
		{Id: "0002_seed", Order: 1},
		{Id: "0003_index", Order: 2},
	}
	steps[0].SetStatus(step.Skipped)
	steps[1].SetStatus(step.Ok)
	steps[2].Fail(step.Error, "Failed migration: boom.")

	rep := migrate.NewReport(steps)
	assert.Equal(t, migrate.Report{
		{Id: "0001_users", Status: step.Skipped},
		{Id: "0002_seed", Status: step.Ok},
		{Id: "0003_index", Status: step.Error, Error: "Failed migration: boom."},
	}, rep)
	assert.Equal(t, 1, rep.Count(step.Ok))
	assert.Equal(t, 0, rep.Count(step.Rollback))
	assert.Empty(t, migrate.NewReport(nil))
}

func TestReport_Filtered(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rep := migrate.Report{
		{Id: "0001_users", Status: step.Skipped},
		{Id: "0002_seed", Status: step.Ok},
		{Id: "0003_index", Status: step.Error, Error: "Failed migration: boom."},
	}
	tests := []struct {
		name   string
		filter string
		want   []string
	}{
		{
			name:   "status",
			filter: `status == "ok"`,
			want:   []string{"0002_seed"},
		},
		{
			name:   "not skipped",
			filter: `status != "skipped"`,
			want:   []string{"0002_seed", "0003_index"},
		},
		{
			name:   "error contains",
			filter: `error contains "boom"`,
			want:   []string{"0003_index"},
		},
		{
			name:   "id matches",
			filter: `id matches "^000[12]_"`,
			want:   []string{"0001_users", "0002_seed"},
		},
		{
			name:   "no match",
			filter: `status == "rollback"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := bexpr.CreateEvaluator(tt.filter)
			require.NoError(t, err)
			got, err := rep.Filtered(ctx, eval)
			require.NoError(t, err)
			var ids []string
			for _, e := range got {
				ids = append(ids, e.Id)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	t.Run("nil evaluator", func(t *testing.T) {
		got, err := rep.Filtered(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, rep, got)
	})
}
