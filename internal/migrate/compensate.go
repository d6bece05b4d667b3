// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package migrate

import (
	"context"
	"fmt"

	"github.com/hashicorp/stepledger/internal/errors"
	"github.com/hashicorp/stepledger/internal/migrate/internal/metric"
	"github.com/hashicorp/stepledger/internal/step"
)

// compensate undoes a step which is ok or pending, then removes its ledger
// record. Steps in any other status are left alone. The step ends in
// rollback, or in rollback-error in which case a Compensation error is
// returned as well.
func (r *run) compensate(ctx context.Context, st *step.Step) error {
	const op = "migrate.(run).compensate"
	if !st.Status.Compensable() {
		return nil
	}
	if !st.HasCompensate() {
		r.transition(st, step.RollbackError, fmt.Sprintf("Tried to rollback %s but there is no down method.", st.Id))
		return errors.New(ctx, errors.Compensation, op, st.Error)
	}

	r.logger.Debug("compensating step", "id", st.Id)
	if err := r.invoke(ctx, metric.ActionCompensate, st, st.Compensate); err != nil {
		r.transition(st, step.RollbackError, fmt.Sprintf("[%s] unable to rollback migration: %s", st.Id, err))
		return errors.Wrap(ctx, err, op, errors.WithCode(errors.Compensation), errors.WithMsg(fmt.Sprintf("[%s] unable to rollback migration", st.Id)))
	}
	if err := r.store.DeleteById(ctx, st.Id); err != nil {
		r.transition(st, step.RollbackError, fmt.Sprintf("[%s] failed to remove migration version: %s", st.Id, err))
		return errors.Wrap(ctx, err, op, errors.WithCode(errors.Compensation), errors.WithMsg(fmt.Sprintf("[%s] failed to remove migration version", st.Id)))
	}
	r.transition(st, step.Rollback, "")
	r.logger.Info("compensated step", "id", st.Id)
	return nil
}
