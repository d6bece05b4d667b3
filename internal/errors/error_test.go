// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package errors_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/stepledger/internal/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ErrorE(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	errRecordNotFound := errors.E(context.TODO(), errors.WithoutLog(), errors.WithCode(errors.RecordNotFound))
	tests := []struct {
		name string
		opt  []errors.Option
		want error
	}{
		{
			name: "all-options",
			opt: []errors.Option{
				errors.WithCode(errors.InvalidParameter),
				errors.WithOp("alice.Bob"),
				errors.WithWrap(errRecordNotFound),
				errors.WithMsg("test msg"),
			},
			want: &errors.Err{
				Op:      "alice.Bob",
				Wrapped: errRecordNotFound,
				Msg:     "test msg",
				Code:    errors.InvalidParameter,
			},
		},
		{
			name: "no-options",
			opt:  nil,
			want: &errors.Err{
				Code: errors.Unknown,
			},
		},
		{
			name: "withCode",
			opt: []errors.Option{
				errors.WithCode(errors.RecordNotFound),
			},
			want: &errors.Err{
				Code: errors.RecordNotFound,
			},
		},
		{
			name: "uses-wrapped-code",
			opt: []errors.Option{
				errors.WithWrap(errRecordNotFound),
			},
			want: &errors.Err{
				Code:    errors.RecordNotFound,
				Wrapped: errRecordNotFound,
			},
		},
		{
			name: "conflicting-withCode-withWrap",
			opt: []errors.Option{
				errors.WithCode(errors.UnknownStep),
				errors.WithWrap(errRecordNotFound),
			},
			want: &errors.Err{
				Code:    errors.UnknownStep,
				Wrapped: errRecordNotFound,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			err := errors.E(ctx, tt.opt...)
			require.Error(err)
			assert.Equal(tt.want, err)

			err = errors.E(context.TODO(), tt.opt...)
			require.Error(err)
			assert.Equal(tt.want, err)
		})
	}
	t.Run("nil-context", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		//nolint SA1012 intentionally passing a nil context.
		err := errors.E(nil, errors.WithCode(errors.InvalidParameter))
		require.Error(err)
		assert.Equal(&errors.Err{
			Code: errors.InvalidParameter,
		}, err)
	})
}

func Test_ErrorLogging(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{
		Output:     &buf,
		Level:      hclog.Trace,
		JSONFormat: true,
	})
	ctx := hclog.WithContext(context.Background(), logger)

	t.Run("logged", func(t *testing.T) {
		buf.Reset()
		_ = errors.New(ctx, errors.StepApply, "migrate.(Manager).Migrate", "Failed migration: boom.")
		assert.Contains(t, buf.String(), `"op":"migrate.(Manager).Migrate"`)
		assert.Contains(t, buf.String(), `"code":2102`)
	})
	t.Run("without-log", func(t *testing.T) {
		buf.Reset()
		_ = errors.New(ctx, errors.StepApply, "migrate.(Manager).Migrate", "Failed migration: boom.", errors.WithoutLog())
		assert.Empty(t, buf.String())
	})
}

func Test_NewError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tests := []struct {
		name string
		code errors.Code
		op   errors.Op
		msg  string
		opt  []errors.Option
		want error
	}{
		{
			name: "all-options",
			code: errors.InvalidParameter,
			op:   "alice.Bob",
			msg:  "test msg",
			opt: []errors.Option{
				errors.WithWrap(errors.E(ctx, errors.WithoutLog(), errors.WithCode(errors.RecordNotFound))),
			},
			want: &errors.Err{
				Op:      "alice.Bob",
				Wrapped: errors.E(ctx, errors.WithoutLog(), errors.WithCode(errors.RecordNotFound)),
				Msg:     "test msg",
				Code:    errors.InvalidParameter,
			},
		},
		{
			name: "empty-op",
			code: errors.InvalidParameter,
			op:   "",
			msg:  "test msg",
			want: &errors.Err{
				Msg:  "test msg",
				Code: errors.InvalidParameter,
			},
		},
		{
			name: "no-options",
			opt:  nil,
			want: &errors.Err{
				Code: errors.Unknown,
			},
		},
		{
			name: "conflicting-op",
			op:   "alice.Bob",
			opt: []errors.Option{
				errors.WithOp("bab.Op"),
			},
			want: &errors.Err{
				Op:   "alice.Bob",
				Code: errors.Unknown,
			},
		},
		{
			name: "conflicting-msg",
			msg:  "test msg",
			opt: []errors.Option{
				errors.WithMsg("dont use this message"),
			},
			want: &errors.Err{
				Msg:  "test msg",
				Code: errors.Unknown,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			err := errors.New(ctx, tt.code, tt.op, tt.msg, tt.opt...)
			require.Error(err)
			assert.Equal(tt.want, err)
		})
	}
}

func Test_WrapError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	testErr := errors.E(ctx, errors.WithoutLog(), errors.WithCode(errors.InvalidParameter), errors.WithOp("alice.Bob"), errors.WithMsg("test msg"))
	tests := []struct {
		name string
		opt  []errors.Option
		err  error
		op   errors.Op
		want error
	}{
		{
			name: "domain-error",
			err:  testErr,
			op:   "alice.Bob",
			opt: []errors.Option{
				errors.WithMsg("test msg"),
			},
			want: &errors.Err{
				Wrapped: testErr,
				Op:      "alice.Bob",
				Msg:     "test msg",
				Code:    errors.InvalidParameter,
			},
		},
		{
			name: "domain-error-no-op",
			err:  testErr,
			opt: []errors.Option{
				errors.WithMsg("test msg"),
			},
			want: &errors.Err{
				Wrapped: testErr,
				Msg:     "test msg",
				Code:    errors.InvalidParameter,
			},
		},
		{
			name: "domain-error-no-options",
			err:  testErr,
			want: &errors.Err{
				Wrapped: testErr,
				Code:    errors.InvalidParameter,
			},
		},
		{
			name: "std-error",
			err:  fmt.Errorf("std error"),
			want: &errors.Err{
				Wrapped: fmt.Errorf("std error"),
				Code:    errors.Unknown,
			},
		},
		{
			name: "conflicting-with-wrap",
			err:  testErr,
			opt: []errors.Option{
				errors.WithWrap(fmt.Errorf("dont wrap this error")),
			},
			want: &errors.Err{
				Wrapped: testErr,
				Code:    errors.InvalidParameter,
			},
		},
		{
			name: "conflicting-with-op",
			err:  testErr,
			op:   "alice.Bob",
			opt: []errors.Option{
				errors.WithOp("bad.Op"),
			},
			want: &errors.Err{
				Wrapped: testErr,
				Op:      "alice.Bob",
				Code:    errors.InvalidParameter,
			},
		},
		{
			name: "NotSpecificIntegrity",
			err: &pgconn.PgError{
				Code:    "23001",
				Message: "test msg",
			},
			want: &errors.Err{
				Wrapped: errors.E(ctx, errors.WithoutLog(), errors.WithCode(errors.NotSpecificIntegrity), errors.WithMsg("test msg")),
				Code:    errors.NotSpecificIntegrity,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			err := errors.Wrap(ctx, tt.err, tt.op, tt.opt...)
			require.Error(err)
			assert.Equal(tt.want, err)
		})
	}
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, errors.Wrap(ctx, nil, "alice.Bob"))
	})
}

func TestConvertError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		wantCode errors.Code
		wantMsg  string
	}{
		{
			name:     "pgx-unique",
			err:      &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"},
			wantCode: errors.NotUnique,
			wantMsg:  "duplicate key value violates unique constraint",
		},
		{
			name:     "pgx-check",
			err:      &pgconn.PgError{Code: "23514", Message: "check failed", ConstraintName: "step_order_positive"},
			wantCode: errors.CheckConstraint,
			wantMsg:  "step_order_positive constraint failed",
		},
		{
			name:     "pgx-missing-table",
			err:      &pgconn.PgError{Code: "42P01", Message: `relation "step_ledger" does not exist`},
			wantCode: errors.MissingTable,
			wantMsg:  `relation "step_ledger" does not exist`,
		},
		{
			name:     "pq-not-null",
			err:      &pq.Error{Code: "23502", Message: "null value", Column: "checksum"},
			wantCode: errors.NotNull,
			wantMsg:  "checksum must not be empty",
		},
		{
			name:     "pq-unique-wrapped",
			err:      fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Message: "dup"}),
			wantCode: errors.NotUnique,
			wantMsg:  "dup",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			converted := errors.Convert(tt.err)
			require.Error(converted)
			var e *errors.Err
			require.True(errors.As(converted, &e))
			assert.Equal(tt.wantCode, e.Code)
			assert.Equal(tt.wantMsg, e.Msg)
		})
	}
	t.Run("sqlite", func(t *testing.T) {
		assert := assert.New(t)
		tests := []struct {
			err  error
			want errors.Code
		}{
			{err: testSqliteError{code: 2067, msg: "UNIQUE constraint failed: step_ledger.id"}, want: errors.NotUnique},
			{err: testSqliteError{code: 19, msg: "UNIQUE constraint failed: step_ledger.step_order"}, want: errors.NotUnique},
			{err: testSqliteError{code: 1299, msg: "NOT NULL constraint failed: step_ledger.checksum"}, want: errors.NotNull},
			{err: testSqliteError{code: 787, msg: "FOREIGN KEY constraint failed"}, want: errors.NotSpecificIntegrity},
			{err: testSqliteError{code: 1, msg: "no such table: step_ledger"}, want: errors.MissingTable},
		}
		for _, tt := range tests {
			var e *errors.Err
			assert.True(errors.As(errors.Convert(tt.err), &e), tt.err.Error())
			assert.Equal(tt.want, e.Code, tt.err.Error())
		}
		assert.Nil(errors.Convert(testSqliteError{code: 5, msg: "database is locked"}))
	})
	t.Run("unconvertible", func(t *testing.T) {
		assert := assert.New(t)
		assert.Nil(errors.Convert(nil))
		assert.Nil(errors.Convert(stderrors.New("plain")))
		assert.Nil(errors.Convert(&pgconn.PgError{Code: "08006"}))
	})
	t.Run("already-converted", func(t *testing.T) {
		e := errors.E(context.TODO(), errors.WithoutLog(), errors.WithCode(errors.UnknownStep))
		assert.Equal(t, e, errors.Convert(e))
	})
	t.Run("predicates", func(t *testing.T) {
		assert := assert.New(t)
		assert.True(errors.IsUniqueError(&pgconn.PgError{Code: "23505"}))
		assert.True(errors.IsMissingTableError(&pq.Error{Code: "42P01"}))
		assert.False(errors.IsUniqueError(stderrors.New("plain")))
		assert.True(errors.IsNotFoundError(errors.E(context.TODO(), errors.WithoutLog(), errors.WithCode(errors.RecordNotFound))))
		assert.False(errors.IsNotFoundError(nil))
	})
}

func TestError_Info(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  *errors.Err
		want errors.Code
	}{
		{
			name: "nil",
			err:  nil,
			want: errors.Unknown,
		},
		{
			name: "Unknown",
			err:  errors.E(context.TODO()).(*errors.Err),
			want: errors.Unknown,
		},
		{
			name: "InvalidParameter",
			err:  errors.E(context.TODO(), errors.WithCode(errors.InvalidParameter)).(*errors.Err),
			want: errors.InvalidParameter,
		},
		{
			name: "Consistency",
			err:  errors.E(context.TODO(), errors.WithCode(errors.Consistency)).(*errors.Err),
			want: errors.Consistency,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(tt.want.Info(), tt.err.Info())
		})
	}
}

func TestError_Error(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "msg",
			err:  errors.E(context.TODO(), errors.WithoutLog(), errors.WithMsg("test msg")),
			want: "test msg: unknown: error #0",
		},
		{
			name: "code",
			err:  errors.E(context.TODO(), errors.WithoutLog(), errors.WithCode(errors.CheckConstraint)),
			want: "constraint check failed, integrity violation: error #1000",
		},
		{
			name: "op-msg-and-code",
			err:  errors.E(context.TODO(), errors.WithoutLog(), errors.WithCode(errors.CheckConstraint), errors.WithOp("alice.bob"), errors.WithMsg("test msg")),
			want: "alice.bob: test msg: integrity violation: error #1000",
		},
		{
			name: "unknown",
			err:  errors.E(ctx),
			want: "unknown, unknown: error #0",
		},
		{
			name: "wrapped-no-code",
			err:  errors.E(context.TODO(), errors.WithoutLog(), errors.WithWrap(errors.E(ctx, errors.WithCode(errors.InvalidParameter), errors.WithMsg("wrapped msg"))), errors.WithMsg("test msg")),
			want: "test msg: wrapped msg: parameter violation: error #100",
		},
		{
			name: "wrapped-different-error-codes",
			err:  errors.E(context.TODO(), errors.WithoutLog(), errors.WithCode(errors.CheckConstraint), errors.WithWrap(errors.E(ctx, errors.WithCode(errors.InvalidParameter), errors.WithMsg("wrapped msg"))), errors.WithMsg("test msg")),
			want: "test msg: integrity violation: error #1000: wrapped msg: parameter violation: error #100",
		},
		{
			name: "wrapped-same-error-codes",
			err:  errors.E(context.TODO(), errors.WithoutLog(), errors.WithCode(errors.CheckConstraint), errors.WithWrap(errors.E(ctx, errors.WithCode(errors.CheckConstraint), errors.WithMsg("wrapped msg"))), errors.WithMsg("test msg")),
			want: "test msg: wrapped msg: integrity violation: error #1000",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			got := tt.err.Error()
			assert.Contains(got, tt.want)
		})
	}
	t.Run("nil *Err", func(t *testing.T) {
		assert := assert.New(t)
		var err *errors.Err
		got := err.Error()
		assert.Equal("", got)
	})
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	testErr := errors.E(ctx, errors.WithMsg("test error"))
	errInvalidParameter := errors.E(ctx, errors.WithCode(errors.InvalidParameter), errors.WithMsg("test error"))

	tests := []struct {
		name      string
		err       error
		want      error
		wantIsErr error
	}{
		{
			name:      "ErrInvalidParameter",
			err:       errors.E(ctx, errors.WithWrap(errInvalidParameter)),
			want:      errInvalidParameter,
			wantIsErr: errInvalidParameter,
		},
		{
			name:      "testErr",
			err:       testErr,
			want:      nil,
			wantIsErr: testErr,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			err := tt.err.(interface {
				Unwrap() error
			}).Unwrap()
			assert.Equal(tt.want, err)
			assert.True(stderrors.Is(tt.err, tt.wantIsErr))
		})
	}
	t.Run("nil *Err", func(t *testing.T) {
		var err *errors.Err
		assert.Nil(t, err.Unwrap())
	})
}

type testSqliteError struct {
	code int
	msg  string
}

func (e testSqliteError) Error() string { return e.msg }
func (e testSqliteError) Code() int     { return e.code }
