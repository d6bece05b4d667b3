// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package db

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/hashicorp/go-uuid"
	"github.com/hashicorp/stepledger/testing/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSetup returns a database of the given type for testing, and its url.
// Sqlite databases are private, in-memory and limited to a single
// connection. Postgres databases run in docker, see dbtest.StartPostgres;
// the test is skipped when docker tests are not enabled. Do not close the
// returned db.
func TestSetup(t testing.TB, dbType DbType) (*sql.DB, string) {
	t.Helper()
	require := require.New(t)
	ctx := context.Background()

	var url string
	var opt []Option
	switch dbType {
	case Sqlite:
		name, err := uuid.GenerateUUID()
		require.NoError(err)
		url = fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
		opt = append(opt, WithMaxOpenConnections(1))
	case Postgres:
		if !dbtest.DockerEnabled() {
			t.Skipf("set %s or %s to run postgres tests", dbtest.EnvDocker, dbtest.EnvPostgresUrl)
		}
		cleanup, pgUrl, err := dbtest.StartPostgres()
		require.NoError(err)
		t.Cleanup(func() {
			assert.NoError(t, cleanup(), "Got error cleaning up db in docker.")
		})
		url = pgUrl
	default:
		require.FailNowf("unsupported database type", "%s", dbType)
	}

	d, err := Open(ctx, dbType, url, opt...)
	require.NoError(err)
	t.Cleanup(func() {
		assert.NoError(t, d.Close(), "Got error closing db.")
	})
	return d, url
}
