// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package migrate

import (
	"context"

	"github.com/hashicorp/go-bexpr"
	"github.com/hashicorp/stepledger/internal/errors"
	"github.com/hashicorp/stepledger/internal/step"
)

// Entry is the outcome of one step.
type Entry struct {
	Id     string      `json:"id"`
	Status step.Status `json:"status"`
	Error  string      `json:"error,omitempty"`
}

// Report lists the outcome of every loaded step, in order.
type Report []Entry

// NewReport reduces steps to a Report.
func NewReport(steps []*step.Step) Report {
	r := make(Report, 0, len(steps))
	for _, st := range steps {
		r = append(r, Entry{
			Id:     st.Id,
			Status: st.Status,
			Error:  st.Error,
		})
	}
	return r
}

// Count returns how many entries have the status.
func (r Report) Count(s step.Status) int {
	var n int
	for _, e := range r {
		if e.Status == s {
			n++
		}
	}
	return n
}

// Filtered returns the entries passing the evaluator. The selectors are
// "id", "status" and "error", for example: status == "error".
func (r Report) Filtered(ctx context.Context, eval *bexpr.Evaluator) (Report, error) {
	const op = "migrate.(Report).Filtered"
	if eval == nil {
		return r, nil
	}
	ret := make(Report, 0, len(r))
	for _, e := range r {
		ok, err := eval.Evaluate(map[string]any{
			"id":     e.Id,
			"status": e.Status.String(),
			"error":  e.Error,
		})
		if err != nil {
			return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.InvalidParameter), errors.WithMsg("unable to evaluate filter"))
		}
		if ok {
			ret = append(ret, e)
		}
	}
	return ret, nil
}
