// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package step

import (
	"context"
	"fmt"

	"github.com/hashicorp/stepledger/internal/errors"
)

// Source supplies the ordered sequence of steps. Every call to Load must
// return fresh Step values, in the same order given the same inputs, with
// Order set to each step's index and Status set to NotRun.
type Source interface {
	Load(context.Context) ([]*Step, error)
}

// Sequence is an in-memory Source. The order of the slice is the order of
// the steps.
type Sequence []*Step

// Load returns clones of the steps in the sequence.
func (s Sequence) Load(ctx context.Context) ([]*Step, error) {
	const op = "step.(Sequence).Load"
	steps := make([]*Step, 0, len(s))
	for _, st := range s {
		if st == nil {
			return nil, errors.New(ctx, errors.StepLoad, op, fmt.Sprintf("nil step at position %d", len(steps)))
		}
		steps = append(steps, st.Clone())
	}
	if err := Normalize(ctx, steps); err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	return steps, nil
}

// Normalize validates a freshly loaded sequence and assigns Order and the
// initial NotRun status. Empty or duplicate ids and missing apply actions
// are load errors.
func Normalize(ctx context.Context, steps []*Step) error {
	const op = "step.Normalize"
	seen := make(map[string]int, len(steps))
	for i, st := range steps {
		switch {
		case st.Id == "":
			return errors.New(ctx, errors.StepLoad, op, fmt.Sprintf("step at position %d has no id", i))
		case st.Apply == nil:
			return errors.New(ctx, errors.StepLoad, op, fmt.Sprintf("step %s has no up method", st.Id))
		}
		if prev, ok := seen[st.Id]; ok {
			return errors.New(ctx, errors.StepLoad, op, fmt.Sprintf("duplicate step id %s at positions %d and %d", st.Id, prev, i))
		}
		seen[st.Id] = i
		st.Order = i
		st.SetStatus(NotRun)
	}
	return nil
}

// Find returns the step with the given id, or nil.
func Find(steps []*Step, id string) *Step {
	for _, st := range steps {
		if st.Id == id {
			return st
		}
	}
	return nil
}
