// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package migrate

import (
	"context"
	"fmt"

	"github.com/hashicorp/stepledger/internal/errors"
	"github.com/hashicorp/stepledger/internal/step"
)

// revert compensates the step of the most recent ledger record. The other
// loaded steps are reported as not-run.
func (r *run) revert(ctx context.Context, src step.Source) ([]*step.Step, error) {
	const op = "migrate.(run).revert"
	rec, err := r.store.FindMostRecent(ctx)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	if rec == nil {
		return nil, errors.New(ctx, errors.NothingToRevert, op, "Nothing to rollback.")
	}

	steps, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	st := step.Find(steps, rec.Id)
	if st == nil {
		return steps, errors.New(ctx, errors.UnknownStep, op, fmt.Sprintf("Step %s not found.", rec.Id))
	}

	r.logger.Info("reverting step", "id", st.Id, "applied_at", rec.AppliedAt)
	st.SetStatus(step.Pending)
	if err := r.compensate(ctx, st); err != nil {
		return steps, errors.Wrap(ctx, err, op)
	}
	return steps, nil
}
