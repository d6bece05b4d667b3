// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package db

import (
	"context"
	"testing"
	"time"

	"github.com/hashicorp/stepledger/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringToDbType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		dialect string
		want    DbType
		wantErr bool
	}{
		{dialect: "postgres", want: Postgres},
		{dialect: "pgx", want: Postgres},
		{dialect: " Sqlite ", want: Sqlite},
		{dialect: "sqlite3", want: Sqlite},
		{dialect: "mongodb", want: UnknownDB, wantErr: true},
		{dialect: "", want: UnknownDB, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := StringToDbType(tt.dialect)
			if tt.wantErr {
				require.Error(err)
				assert.True(errors.Match(errors.T(errors.InvalidParameter), err))
			} else {
				require.NoError(err)
			}
			assert.Equal(tt.want, got)
		})
	}
}

func TestDbType(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	assert.Equal("pgx", Postgres.DriverName())
	assert.Equal("sqlite", Sqlite.DriverName())
	assert.Empty(UnknownDB.DriverName())
	assert.Equal("$3", Postgres.Placeholder(3))
	assert.Equal("?", Sqlite.Placeholder(3))
	assert.Equal("sqlite", Sqlite.String())
}

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("missing-url", func(t *testing.T) {
		_, err := Open(ctx, Sqlite, "")
		require.Error(t, err)
		assert.True(t, errors.Match(errors.T(errors.InvalidParameter), err))
	})
	t.Run("unknown-type", func(t *testing.T) {
		_, err := Open(ctx, UnknownDB, "file::memory:")
		require.Error(t, err)
		assert.True(t, errors.Match(errors.T(errors.InvalidParameter), err))
	})
	t.Run("sqlite", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		d, err := Open(ctx, Sqlite, "file::memory:", WithMaxOpenConnections(1), WithPingRetries(1, time.Millisecond))
		require.NoError(err)
		defer d.Close()
		var one int
		require.NoError(d.QueryRowContext(ctx, "select 1").Scan(&one))
		assert.Equal(1, one)
		assert.Equal(1, d.Stats().MaxOpenConnections)
	})
	t.Run("unreachable", func(t *testing.T) {
		_, err := Open(ctx, Postgres, "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1", WithPingRetries(1, time.Millisecond))
		require.Error(t, err)
	})
	t.Run("test-setup", func(t *testing.T) {
		d, _ := TestSetup(t, Sqlite)
		_, err := d.ExecContext(ctx, "create table t (id text primary key)")
		require.NoError(t, err)
	})
}
