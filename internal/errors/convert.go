// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package errors

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// postgres error codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation   = "23505"
	pgNotNullViolation  = "23502"
	pgCheckViolation    = "23514"
	pgUndefinedTable    = "42P01"
	pgIntegrityClassPfx = "23"
)

// sqlite result codes, see https://www.sqlite.org/rescode.html
const (
	sqliteConstraint           = 19
	sqliteConstraintCheck      = 275
	sqliteConstraintNotNull    = 1299
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// sqliteError is satisfied by the errors of the sqlite driver.
type sqliteError interface {
	error
	Code() int
}

// Convert will convert the error to an *Err and attempt to add a helpful
// error msg as well. If that's not possible, it will return nil. Errors that
// are already an *Err are returned as is.
func Convert(e error) error {
	if e == nil {
		return nil
	}
	var alreadyConverted *Err
	if As(e, &alreadyConverted) {
		return alreadyConverted
	}

	var pgxError *pgconn.PgError
	if As(e, &pgxError) {
		return convertPostgres(pgxError.Code, pgxError.Message, pgxError.ColumnName, pgxError.ConstraintName)
	}

	var pqError *pq.Error
	if As(e, &pqError) {
		return convertPostgres(string(pqError.Code), pqError.Message, pqError.Column, pqError.Constraint)
	}

	var liteError sqliteError
	if As(e, &liteError) {
		return convertSqlite(liteError.Code(), liteError.Error())
	}

	// unfortunately, we can't help.
	return nil
}

func convertPostgres(code, msg, column, constraint string) error {
	ctx := context.TODO()
	switch {
	case code == pgUniqueViolation:
		return E(ctx, WithoutLog(), WithCode(NotUnique), WithMsg(msg))
	case code == pgNotNullViolation:
		if column != "" {
			msg = fmt.Sprintf("%s must not be empty", column)
		}
		return E(ctx, WithoutLog(), WithCode(NotNull), WithMsg(msg))
	case code == pgCheckViolation:
		if constraint != "" {
			msg = fmt.Sprintf("%s constraint failed", constraint)
		}
		return E(ctx, WithoutLog(), WithCode(CheckConstraint), WithMsg(msg))
	case code == pgUndefinedTable:
		return E(ctx, WithoutLog(), WithCode(MissingTable), WithMsg(msg))
	case strings.HasPrefix(code, pgIntegrityClassPfx):
		return E(ctx, WithoutLog(), WithCode(NotSpecificIntegrity), WithMsg(msg))
	}
	return nil
}

func convertSqlite(code int, msg string) error {
	ctx := context.TODO()
	switch {
	case code == sqliteConstraintUnique || code == sqliteConstraintPrimaryKey:
		return E(ctx, WithoutLog(), WithCode(NotUnique), WithMsg(msg))
	case code == sqliteConstraintNotNull:
		return E(ctx, WithoutLog(), WithCode(NotNull), WithMsg(msg))
	case code == sqliteConstraintCheck:
		return E(ctx, WithoutLog(), WithCode(CheckConstraint), WithMsg(msg))
	case code&0xff == sqliteConstraint:
		// extended codes may be disabled, fall back to the message
		if strings.Contains(msg, "UNIQUE constraint failed") {
			return E(ctx, WithoutLog(), WithCode(NotUnique), WithMsg(msg))
		}
		return E(ctx, WithoutLog(), WithCode(NotSpecificIntegrity), WithMsg(msg))
	case strings.Contains(msg, "no such table"):
		return E(ctx, WithoutLog(), WithCode(MissingTable), WithMsg(msg))
	}
	return nil
}
