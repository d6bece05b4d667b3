// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package step defines the unit of change the migrate package orchestrates
// and the Source interface used to load an ordered sequence of them.
package step

import (
	"context"
	"database/sql"
)

// Action is invoked with the run's database connection to apply or
// compensate a step.
type Action func(ctx context.Context, conn *sql.Conn) error

// Step is one unit of change. A Step is owned by a single run: the migrate
// package mutates Status and Error as the run progresses.
type Step struct {
	// Id is the stable identity of the step across runs.
	Id string

	// Order is the zero-based position of the step within the loaded
	// sequence. It is recomputed on every load.
	Order int

	// Checksum is the content hash of the step's definition.
	Checksum string

	// Description is optional free text, never interpreted.
	Description string

	// Apply performs the change. It is required.
	Apply Action

	// Compensate undoes Apply. It is optional.
	Compensate Action

	Status Status
	Error  string
}

// HasCompensate reports whether the step declares a compensating action.
func (s *Step) HasCompensate() bool {
	return s != nil && s.Compensate != nil
}

// Clone returns a copy of the step.
func (s *Step) Clone() *Step {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// SetStatus sets the status and clears any message.
func (s *Step) SetStatus(st Status) {
	s.Status = st
	s.Error = ""
}

// Fail sets the status along with a human readable message.
func (s *Step) Fail(st Status, msg string) {
	s.Status = st
	s.Error = msg
}
