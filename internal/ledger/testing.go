// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/stepledger/internal/errors"
)

// TestStore is an in-memory Store and Locker for tests. Setting one of the
// Fail fields makes the matching operation fail.
type TestStore struct {
	mu      sync.Mutex
	records map[string]*Record
	locked  bool

	// FailInsert fails Insert for the given step id.
	FailInsert map[string]error
	// FailDelete fails DeleteById for the given step id.
	FailDelete map[string]error
	// FailUpdate fails UpdateChecksum for the given step id.
	FailUpdate map[string]error
	// FailFindAll fails FindAll.
	FailFindAll error
	// FailLock fails TryLock.
	FailLock error

	// Calls records every write as "<operation>:<id>".
	Calls []string
}

var (
	_ Store  = (*TestStore)(nil)
	_ Locker = (*TestStore)(nil)
)

// NewTestStore returns a TestStore holding copies of records.
func NewTestStore(records ...*Record) *TestStore {
	s := &TestStore{
		records:    make(map[string]*Record, len(records)),
		FailInsert: map[string]error{},
		FailDelete: map[string]error{},
		FailUpdate: map[string]error{},
	}
	for _, r := range records {
		s.records[r.Id] = r.Clone()
	}
	return s
}

// FindAll implements Store.
func (s *TestStore) FindAll(ctx context.Context) ([]*Record, error) {
	const op = "ledger.(TestStore).FindAll"
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailFindAll != nil {
		return nil, errors.Wrap(ctx, s.FailFindAll, op)
	}
	return s.all(), nil
}

// Insert implements Store.
func (s *TestStore) Insert(ctx context.Context, r *Record) error {
	const op = "ledger.(TestStore).Insert"
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailInsert[r.Id]; err != nil {
		return errors.Wrap(ctx, err, op)
	}
	if _, ok := s.records[r.Id]; ok {
		return errors.New(ctx, errors.NotUnique, op, fmt.Sprintf("step %s already recorded", r.Id))
	}
	for _, existing := range s.records {
		if existing.Order == r.Order {
			return errors.New(ctx, errors.NotUnique, op, fmt.Sprintf("order %d already recorded", r.Order))
		}
	}
	s.records[r.Id] = r.Clone()
	s.Calls = append(s.Calls, "insert:"+r.Id)
	return nil
}

// DeleteById implements Store.
func (s *TestStore) DeleteById(ctx context.Context, id string) error {
	const op = "ledger.(TestStore).DeleteById"
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailDelete[id]; err != nil {
		return errors.Wrap(ctx, err, op)
	}
	delete(s.records, id)
	s.Calls = append(s.Calls, "delete:"+id)
	return nil
}

// UpdateChecksum implements Store.
func (s *TestStore) UpdateChecksum(ctx context.Context, id, checksum string) error {
	const op = "ledger.(TestStore).UpdateChecksum"
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailUpdate[id]; err != nil {
		return errors.Wrap(ctx, err, op)
	}
	r, ok := s.records[id]
	if !ok {
		return errors.New(ctx, errors.RecordNotFound, op, fmt.Sprintf("step %s not recorded", id))
	}
	r.Checksum = checksum
	s.Calls = append(s.Calls, "update:"+id)
	return nil
}

// FindMostRecent implements Store.
func (s *TestStore) FindMostRecent(context.Context) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.all()
	if len(all) == 0 {
		return nil, nil
	}
	return all[len(all)-1], nil
}

// TryLock implements Locker.
func (s *TestStore) TryLock(ctx context.Context) error {
	const op = "ledger.(TestStore).TryLock"
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailLock != nil {
		return errors.Wrap(ctx, s.FailLock, op, errors.WithCode(errors.MigrationLock))
	}
	if s.locked {
		return errors.New(ctx, errors.MigrationLock, op, "Lock failed")
	}
	s.locked = true
	return nil
}

// Unlock implements Locker.
func (s *TestStore) Unlock(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked = false
	return nil
}

// Locked reports whether the store is locked.
func (s *TestStore) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Ids returns the recorded ids sorted by order.
func (s *TestStore) Ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []string{}
	for _, r := range s.all() {
		ids = append(ids, r.Id)
	}
	return ids
}

// Get returns a copy of the record for id, or nil.
func (s *TestStore) Get(id string) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id].Clone()
}

func (s *TestStore) all() []*Record {
	all := make([]*Record, 0, len(s.records))
	for _, r := range s.records {
		all = append(all, r.Clone())
	}
	SortByOrder(all)
	return all
}
