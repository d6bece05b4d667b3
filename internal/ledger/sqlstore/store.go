// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package sqlstore provides a ledger.Store persisting the ledger in a
// postgres or sqlite table. A Store works on a single *sql.Conn, so the
// postgres advisory lock taken by TryLock and the ledger writes share a
// session.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/stepledger/internal/db"
	"github.com/hashicorp/stepledger/internal/errors"
	"github.com/hashicorp/stepledger/internal/ledger"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Store is a ledger.Store backed by a table. This struct is not thread safe.
type Store struct {
	conn    *sql.Conn
	dialect db.DbType
	table   string
	lockId  int64
}

var (
	_ ledger.Store  = (*Store)(nil)
	_ ledger.Locker = (*Store)(nil)
)

// New creates a Store on the connection. Supported options are
// WithTableName and WithDialect. The table name must be a non empty,
// optionally schema qualified, identifier.
func New(ctx context.Context, conn *sql.Conn, opt ...Option) (*Store, error) {
	const op = "sqlstore.New"
	if conn == nil {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing connection")
	}
	opts := getOpts(opt...)
	switch {
	case opts.withTableName == "":
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing ledger table name")
	case !tableNameRe.MatchString(opts.withTableName):
		return nil, errors.New(ctx, errors.InvalidParameter, op, fmt.Sprintf("invalid ledger table name %q", opts.withTableName))
	}
	switch opts.withDialect {
	case db.Postgres, db.Sqlite:
	default:
		return nil, errors.New(ctx, errors.InvalidParameter, op, fmt.Sprintf("unsupported dialect %s", opts.withDialect))
	}
	return &Store{
		conn:    conn,
		dialect: opts.withDialect,
		table:   opts.withTableName,
		lockId:  lockId(opts.withTableName),
	}, nil
}

// lockId derives the advisory lock key from the table name, so separate
// ledgers in one database don't block each other.
func lockId(table string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(table))
	return int64(h.Sum64())
}

// Table returns the name of the ledger table.
func (s *Store) Table() string {
	return s.table
}

// EnsureTable creates the ledger table if it doesn't exist.
func (s *Store) EnsureTable(ctx context.Context) error {
	const op = "sqlstore.(Store).EnsureTable"
	q := createTablePostgres
	if s.dialect == db.Sqlite {
		q = createTableSqlite
	}
	constraintPrefix := strings.ReplaceAll(s.table, ".", "_")
	if _, err := s.conn.ExecContext(ctx, fmt.Sprintf(q, s.table, constraintPrefix)); err != nil {
		return errors.Wrap(ctx, err, op, errors.WithMsg(fmt.Sprintf("unable to create ledger table %s", s.table)))
	}
	return nil
}

// FindAll implements ledger.Store.
func (s *Store) FindAll(ctx context.Context) ([]*ledger.Record, error) {
	const op = "sqlstore.(Store).FindAll"
	rows, err := s.conn.QueryContext(ctx, fmt.Sprintf(selectAll, s.table))
	if err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	defer rows.Close()
	var records []*ledger.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(ctx, err, op)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	return records, nil
}

// FindMostRecent implements ledger.Store.
func (s *Store) FindMostRecent(ctx context.Context) (*ledger.Record, error) {
	const op = "sqlstore.(Store).FindMostRecent"
	r, err := scanRecord(s.conn.QueryRowContext(ctx, fmt.Sprintf(selectMostRecent, s.table)))
	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, errors.Wrap(ctx, err, op)
	}
	return r, nil
}

// Insert implements ledger.Store.
func (s *Store) Insert(ctx context.Context, r *ledger.Record) error {
	const op = "sqlstore.(Store).Insert"
	switch {
	case r == nil:
		return errors.New(ctx, errors.InvalidParameter, op, "missing record")
	case r.Id == "":
		return errors.New(ctx, errors.InvalidParameter, op, "missing id")
	}
	appliedAt := r.AppliedAt
	if appliedAt.IsZero() {
		appliedAt = time.Now()
	}
	q := fmt.Sprintf(insertRecord, s.table, s.p(1), s.p(2), s.p(3), s.p(4))
	if _, err := s.conn.ExecContext(ctx, q, r.Id, r.Checksum, r.Order, s.timeArg(appliedAt)); err != nil {
		return errors.Wrap(ctx, err, op, errors.WithMsg(fmt.Sprintf("unable to record step %s", r.Id)))
	}
	return nil
}

// DeleteById implements ledger.Store.
func (s *Store) DeleteById(ctx context.Context, id string) error {
	const op = "sqlstore.(Store).DeleteById"
	if id == "" {
		return errors.New(ctx, errors.InvalidParameter, op, "missing id")
	}
	if _, err := s.conn.ExecContext(ctx, fmt.Sprintf(deleteRecord, s.table, s.p(1)), id); err != nil {
		return errors.Wrap(ctx, err, op)
	}
	return nil
}

// UpdateChecksum implements ledger.Store.
func (s *Store) UpdateChecksum(ctx context.Context, id, checksum string) error {
	const op = "sqlstore.(Store).UpdateChecksum"
	if id == "" {
		return errors.New(ctx, errors.InvalidParameter, op, "missing id")
	}
	res, err := s.conn.ExecContext(ctx, fmt.Sprintf(updateChecksum, s.table, s.p(1), s.p(2)), checksum, id)
	if err != nil {
		return errors.Wrap(ctx, err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(ctx, err, op)
	}
	switch {
	case n == 0:
		return errors.New(ctx, errors.RecordNotFound, op, fmt.Sprintf("step %s not recorded", id))
	case n > 1:
		return errors.New(ctx, errors.MultipleRecords, op, fmt.Sprintf("step %s recorded %d times", id, n))
	}
	return nil
}

// TryLock attempts to capture an exclusive advisory lock on the ledger. If
// it is not successful it returns an error. Sqlite serializes writers
// itself, so TryLock is a no-op there.
// https://www.postgresql.org/docs/current/explicit-locking.html#ADVISORY-LOCKS
func (s *Store) TryLock(ctx context.Context) error {
	const op = "sqlstore.(Store).TryLock"
	if s.dialect != db.Postgres {
		return nil
	}
	r := s.conn.QueryRowContext(ctx, tryLock, s.lockId)
	if r.Err() != nil {
		return errors.Wrap(ctx, r.Err(), op, errors.WithCode(errors.MigrationLock))
	}
	var gotLock bool
	if err := r.Scan(&gotLock); err != nil {
		return errors.Wrap(ctx, err, op, errors.WithCode(errors.MigrationLock))
	}
	if !gotLock {
		return errors.New(ctx, errors.MigrationLock, op, "Lock failed")
	}
	return nil
}

// Unlock releases the lock acquired by TryLock.
func (s *Store) Unlock(ctx context.Context) error {
	const op = "sqlstore.(Store).Unlock"
	if s.dialect != db.Postgres {
		return nil
	}
	if _, err := s.conn.ExecContext(ctx, unlock, s.lockId); err != nil {
		return errors.Wrap(ctx, err, op, errors.WithCode(errors.MigrationLock))
	}
	return nil
}

func (s *Store) p(n int) string {
	return s.dialect.Placeholder(n)
}

func (s *Store) timeArg(t time.Time) any {
	if s.dialect == db.Sqlite {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*ledger.Record, error) {
	var r ledger.Record
	var appliedAt timestamp
	if err := row.Scan(&r.Id, &r.Checksum, &r.Order, &appliedAt); err != nil {
		return nil, err
	}
	r.AppliedAt = appliedAt.Time
	return &r, nil
}
