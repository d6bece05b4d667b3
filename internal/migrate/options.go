// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package migrate

import (
	"context"
	"database/sql"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/stepledger/internal/db"
	"github.com/hashicorp/stepledger/internal/ledger"
)

// StoreFactory creates the ledger.Store used by one invocation, on the
// connection acquired for it.
type StoreFactory func(ctx context.Context, conn *sql.Conn) (ledger.Store, error)

// getOpts - iterate the inbound Options and return a struct.
func getOpts(opt ...Option) options {
	opts := getDefaultOptions()
	for _, o := range opt {
		if o != nil {
			o(&opts)
		}
	}
	return opts
}

// Option - how Options are passed as arguments.
type Option func(*options)

// options = how options are represented
type options struct {
	withLogger             hclog.Logger
	withReconcileChecksums bool
	withExclusiveLock      bool
	withStoreFactory       StoreFactory
	withTableName          string
	withDialect            db.DbType
	withNowFunc            func() time.Time
}

func getDefaultOptions() options {
	return options{
		withLogger:    hclog.NewNullLogger(),
		withTableName: ledger.DefaultTableName,
		withDialect:   db.Postgres,
		withNowFunc:   time.Now,
	}
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.withLogger = l
		}
	}
}

// WithReconcileChecksums makes Migrate update the ledger checksum of steps
// whose definition changed after they were applied, instead of failing.
func WithReconcileChecksums(reconcile bool) Option {
	return func(o *options) {
		o.withReconcileChecksums = reconcile
	}
}

// WithExclusiveLock makes every invocation take the ledger lock, when the
// store is a ledger.Locker, before touching the ledger.
func WithExclusiveLock() Option {
	return func(o *options) {
		o.withExclusiveLock = true
	}
}

// WithStoreFactory replaces the default sql ledger store.
func WithStoreFactory(f StoreFactory) Option {
	return func(o *options) {
		o.withStoreFactory = f
	}
}

// WithTableName sets the ledger table used by the default store.
func WithTableName(name string) Option {
	return func(o *options) {
		o.withTableName = name
	}
}

// WithDialect sets the dialect used by the default store. Defaults to
// postgres.
func WithDialect(d db.DbType) Option {
	return func(o *options) {
		o.withDialect = d
	}
}

// WithNowFunc sets the clock used to timestamp ledger records.
func WithNowFunc(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.withNowFunc = now
		}
	}
}
