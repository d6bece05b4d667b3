// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package step

import (
	"context"
	"database/sql"
	"sync"
	"testing"
)

// TestRecorder records the actions invoked on test steps, in order.
type TestRecorder struct {
	mu    sync.Mutex
	calls []string
}

// Calls returns the recorded invocations as "<action>:<id>".
func (r *TestRecorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Action returns an Action that records "<name>:<id>" and returns err.
func (r *TestRecorder) Action(name, id string, err error) Action {
	return func(context.Context, *sql.Conn) error {
		r.mu.Lock()
		r.calls = append(r.calls, name+":"+id)
		r.mu.Unlock()
		return err
	}
}

// TestSequence returns a Sequence of steps with the given ids. Each step has
// checksum "<id>-v1" and apply and compensate actions that succeed and are
// recorded in r.
func TestSequence(t testing.TB, r *TestRecorder, ids ...string) Sequence {
	t.Helper()
	seq := make(Sequence, 0, len(ids))
	for _, id := range ids {
		seq = append(seq, &Step{
			Id:         id,
			Checksum:   id + "-v1",
			Apply:      r.Action("up", id, nil),
			Compensate: r.Action("down", id, nil),
		})
	}
	return seq
}
