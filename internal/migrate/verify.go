// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/stepledger/internal/errors"
	"github.com/hashicorp/stepledger/internal/ledger"
	"github.com/hashicorp/stepledger/internal/step"
)

// verify walks the loaded steps and the ledger records in lockstep and gives
// every step a definitive status: skipped, pending or error. With reconcile
// set, checksum drift is written to the ledger as it is found, even when
// another step turns out inconsistent and the run applies nothing. Only a
// failing reconciliation write is returned as an error; inconsistencies are
// recorded on the steps.
func (r *run) verify(ctx context.Context, steps []*step.Step, records []*ledger.Record, reconcile bool) error {
	const op = "migrate.(run).verify"
	ledger.SortByOrder(records)
	for i, rec := range records {
		if i >= len(steps) {
			r.logger.Warn("ledger records a step that is no longer defined", "id", rec.Id, "order", rec.Order)
			continue
		}
		st := steps[i]
		switch {
		case st.Id != rec.Id || st.Order != rec.Order:
			r.transition(st, step.Error, fmt.Sprintf("%s changed order from %d to %d.", st.Id, rec.Order, st.Order))
		case st.Checksum == rec.Checksum:
			r.transition(st, step.Skipped, "")
		case !reconcile:
			r.transition(st, step.Error, fmt.Sprintf("[%s] was already migrated on [%s] in a different version.", rec.Id, rec.AppliedAt.Format(time.RFC3339)))
		default:
			if err := r.store.UpdateChecksum(ctx, st.Id, st.Checksum); err != nil {
				return errors.Wrap(ctx, err, op, errors.WithMsg(fmt.Sprintf("unable to reconcile checksum of %s", st.Id)))
			}
			r.logger.Info("reconciled checksum", "id", st.Id, "from", rec.Checksum, "to", st.Checksum)
			r.transition(st, step.Skipped, "")
		}
	}
	for _, st := range steps {
		if st.Status == step.NotRun {
			r.transition(st, step.Pending, "")
		}
	}
	return nil
}

// firstError returns the first step with status error, or nil.
func firstError(steps []*step.Step) *step.Step {
	for _, st := range steps {
		if st.Status == step.Error {
			return st
		}
	}
	return nil
}
