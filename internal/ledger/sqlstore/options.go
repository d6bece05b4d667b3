// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package sqlstore

import (
	"github.com/hashicorp/stepledger/internal/db"
	"github.com/hashicorp/stepledger/internal/ledger"
)

// getOpts - iterate the inbound Options and return a struct
func getOpts(opt ...Option) options {
	opts := getDefaultOptions()
	for _, o := range opt {
		if o != nil {
			o(&opts)
		}
	}
	return opts
}

// Option - how Options are passed as arguments
type Option func(*options)

// options = how options are represented
type options struct {
	withTableName string
	withDialect   db.DbType
}

func getDefaultOptions() options {
	return options{
		withTableName: ledger.DefaultTableName,
		withDialect:   db.Postgres,
	}
}

// WithTableName sets the table holding the ledger.
func WithTableName(name string) Option {
	return func(o *options) {
		o.withTableName = name
	}
}

// WithDialect sets the SQL dialect of the connection. Defaults to postgres.
func WithDialect(d db.DbType) Option {
	return func(o *options) {
		o.withDialect = d
	}
}
