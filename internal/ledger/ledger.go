// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package ledger defines the persisted record of applied steps and the
// interfaces used to read and write it.
package ledger

import (
	"context"
	"sort"
	"time"
)

// DefaultTableName is the name of the table holding the ledger.
const DefaultTableName = "step_ledger"

// Record is the persisted fact that a step was applied.
type Record struct {
	Id       string
	Checksum string

	// Order is the position of the step at the time it was applied.
	Order int

	AppliedAt time.Time
}

// Clone returns a copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

// Store reads and writes Records. Implementations are used by a single run
// at a time and need not be safe for concurrent use.
type Store interface {
	// FindAll returns every record sorted by Order.
	FindAll(context.Context) ([]*Record, error)

	// Insert persists a new record. Ids and orders are unique.
	Insert(context.Context, *Record) error

	// DeleteById removes the record with the id. Deleting an id which has
	// no record is not an error.
	DeleteById(ctx context.Context, id string) error

	// UpdateChecksum replaces the checksum of an existing record.
	UpdateChecksum(ctx context.Context, id, checksum string) error

	// FindMostRecent returns the record with the greatest Order, or nil
	// when the ledger is empty.
	FindMostRecent(context.Context) (*Record, error)
}

// Locker is implemented by stores able to guard the ledger against
// concurrent runs.
type Locker interface {
	// TryLock acquires an exclusive lock on the ledger or fails with an
	// errors.MigrationLock error without waiting.
	TryLock(context.Context) error

	// Unlock releases the lock acquired by TryLock.
	Unlock(context.Context) error
}

// SortByOrder sorts records in place by ascending Order.
func SortByOrder(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Order < records[j].Order
	})
}
