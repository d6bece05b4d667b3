// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/stepledger/internal/errors"
)

// DbType defines a database type supported by Open.
type DbType int

const (
	UnknownDB DbType = 0
	Postgres  DbType = 1
	Sqlite    DbType = 2
)

// String provides a string rep of the DbType.
func (db DbType) String() string {
	return [...]string{
		"unknown",
		"postgres",
		"sqlite",
	}[db]
}

// DriverName returns the database/sql driver registered for the DbType.
func (db DbType) DriverName() string {
	switch db {
	case Postgres:
		return "pgx"
	case Sqlite:
		return "sqlite"
	default:
		return ""
	}
}

// Placeholder returns the bind parameter for the n-th (1 based) argument of
// a query.
func (db DbType) Placeholder(n int) string {
	if db == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// StringToDbType provides a string to type conversion. If the type is
// unknown, then UnknownDB is returned with an error.
func StringToDbType(dialect string) (DbType, error) {
	const op = "db.StringToDbType"
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "pgx":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return Sqlite, nil
	default:
		return UnknownDB, errors.New(context.TODO(), errors.InvalidParameter, op, fmt.Sprintf("%q is not a supported database dialect", dialect), errors.WithoutLog())
	}
}
