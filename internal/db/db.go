// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package db opens the database/sql pools used to run steps and persist the
// ledger.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/glebarez/go-sqlite"
	"github.com/hashicorp/stepledger/internal/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open a database connection pool which is long-lived. The pool is pinged,
// with retries, before it's returned. You need to call Close() on the
// returned *sql.DB.
//
// Supported options: WithMaxOpenConnections, WithPingRetries and WithLogger.
func Open(ctx context.Context, dbType DbType, connectionUrl string, opt ...Option) (*sql.DB, error) {
	const op = "db.Open"
	if connectionUrl == "" {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing connection url")
	}
	driver := dbType.DriverName()
	if driver == "" {
		return nil, errors.New(ctx, errors.InvalidParameter, op, fmt.Sprintf("unable to open %s database type", dbType))
	}
	opts := getOpts(opt...)

	underlying, err := sql.Open(driver, connectionUrl)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithMsg("unable to open database"))
	}
	if opts.withMaxOpenConnections > 0 {
		underlying.SetMaxOpenConns(opts.withMaxOpenConnections)
	}
	if err := ping(ctx, underlying, opts); err != nil {
		_ = underlying.Close()
		return nil, errors.Wrap(ctx, err, op)
	}
	return underlying, nil
}

func ping(ctx context.Context, d *sql.DB, opts options) error {
	const op = "db.ping"
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.withPingInterval), opts.withPingRetries),
		ctx,
	)
	err := backoff.RetryNotify(
		func() error {
			return d.PingContext(ctx)
		},
		b,
		func(err error, next time.Duration) {
			opts.withLogger.Warn("database is not reachable, retrying", "error", err, "next", next)
		},
	)
	if err != nil {
		return errors.Wrap(ctx, err, op, errors.WithMsg("unable to ping database"))
	}
	return nil
}
