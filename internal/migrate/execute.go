// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/stepledger/internal/errors"
	"github.com/hashicorp/stepledger/internal/ledger"
	"github.com/hashicorp/stepledger/internal/migrate/internal/metric"
	"github.com/hashicorp/stepledger/internal/step"
)

// execute applies every pending step in order, recording each success in the
// ledger. It stops at the first failure, after compensating the failed step;
// the steps after it stay pending. Nothing is applied when a step failed
// verification.
func (r *run) execute(ctx context.Context, steps []*step.Step) error {
	const op = "migrate.(run).execute"
	if st := firstError(steps); st != nil {
		return errors.New(ctx, errors.Consistency, op, st.Error)
	}
	for _, st := range steps {
		if st.Status != step.Pending {
			continue
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx, ctx.Err(), op, errors.WithMsg(fmt.Sprintf("run stopped before step %s", st.Id)))
		default:
		}

		r.logger.Debug("applying step", "id", st.Id, "order", st.Order)
		stepErr := r.invoke(ctx, metric.ActionApply, st, st.Apply)
		if stepErr == nil {
			r.transition(st, step.Ok, "")
			rec := &ledger.Record{
				Id:        st.Id,
				Checksum:  st.Checksum,
				Order:     st.Order,
				AppliedAt: r.now(),
			}
			if stepErr = r.store.Insert(ctx, rec); stepErr == nil {
				r.logger.Info("applied step", "id", st.Id)
				continue
			}
		}

		// A step that applied but could not be recorded is undone like a
		// failed one.
		r.logger.Error("step failed", "id", st.Id, "error", stepErr)
		compErr := r.compensate(ctx, st)
		if st.Status == step.Rollback {
			st.Error = fmt.Sprintf("Failed migration: %s.", stepErr)
		}
		var retErr error = errors.Wrap(ctx, stepErr, op, errors.WithCode(errors.StepApply), errors.WithMsg(fmt.Sprintf("step %s failed", st.Id)))
		if compErr != nil {
			retErr = multierror.Append(retErr, compErr)
		}
		return retErr
	}
	return nil
}

// invoke runs a step action, observing its duration.
func (r *run) invoke(ctx context.Context, action string, st *step.Step, fn step.Action) (retErr error) {
	const op = "migrate.(run).invoke"
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			retErr = errors.New(ctx, errors.Unknown, op, fmt.Sprintf("%s of step %s panicked: %v", action, st.Id, p))
		}
		metric.ObserveAction(action, time.Since(start), retErr)
	}()
	return fn(ctx, r.conn)
}
