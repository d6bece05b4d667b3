// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package migrate applies an ordered sequence of steps against a database
// exactly once, tracking applied steps in a ledger. It detects drift between
// the loaded steps and the ledger, compensates failed steps and reverts the
// most recently applied one.
package migrate

import (
	"context"
	"database/sql"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-uuid"
	"github.com/hashicorp/stepledger/internal/errors"
	"github.com/hashicorp/stepledger/internal/ledger"
	"github.com/hashicorp/stepledger/internal/ledger/sqlstore"
	"github.com/hashicorp/stepledger/internal/migrate/internal/metric"
	"github.com/hashicorp/stepledger/internal/step"
	"github.com/prometheus/client_golang/prometheus"
)

// Manager runs migrations of the steps of a source against a database.
// Manager is not thread safe: every invocation acquires its own connection
// but concurrent invocations against one ledger are only guarded when
// WithExclusiveLock is used.
type Manager struct {
	db            *sql.DB
	source        step.Source
	logger        hclog.Logger
	newStore      StoreFactory
	exclusiveLock bool
	now           func() time.Time
}

// NewManager creates a Manager. Supported options are WithLogger,
// WithExclusiveLock, WithStoreFactory, WithTableName, WithDialect and
// WithNowFunc. Without WithStoreFactory the ledger is kept by a
// sqlstore.Store whose table is created when missing.
func NewManager(ctx context.Context, d *sql.DB, src step.Source, opt ...Option) (*Manager, error) {
	const op = "migrate.NewManager"
	switch {
	case d == nil:
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing db")
	case src == nil:
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing step source")
	}
	opts := getOpts(opt...)
	newStore := opts.withStoreFactory
	if newStore == nil {
		if opts.withTableName == "" {
			return nil, errors.New(ctx, errors.InvalidParameter, op, "missing ledger table name")
		}
		newStore = sqlStoreFactory(opts.withTableName, opts)
	}
	return &Manager{
		db:            d,
		source:        src,
		logger:        opts.withLogger.Named("migrate"),
		newStore:      newStore,
		exclusiveLock: opts.withExclusiveLock,
		now:           opts.withNowFunc,
	}, nil
}

func sqlStoreFactory(table string, opts options) StoreFactory {
	return func(ctx context.Context, conn *sql.Conn) (ledger.Store, error) {
		const op = "migrate.sqlStoreFactory"
		s, err := sqlstore.New(ctx, conn, sqlstore.WithTableName(table), sqlstore.WithDialect(opts.withDialect))
		if err != nil {
			return nil, errors.Wrap(ctx, err, op)
		}
		if err := s.EnsureTable(ctx); err != nil {
			return nil, errors.Wrap(ctx, err, op)
		}
		return s, nil
	}
}

// InitializeCollectors registers the migration metrics with r.
func InitializeCollectors(r prometheus.Registerer) {
	metric.InitializeCollectors(r)
}

// Migrate verifies the loaded steps against the ledger and applies the
// pending ones. The report is returned along with any error so callers can
// see how far the run progressed. Supported options: WithReconcileChecksums.
//
// Errors are Consistency when a step doesn't match the ledger, StepApply
// when a step fails (with a Compensation error appended when it could not be
// compensated) and StepLoad when the source is malformed.
func (m *Manager) Migrate(ctx context.Context, opt ...Option) (Report, error) {
	const op = "migrate.(Manager).Migrate"
	opts := getOpts(opt...)
	return m.invoke(ctx, metric.OperationMigrate, func(ctx context.Context, r *run) (Report, error) {
		steps, err := m.source.Load(ctx)
		if err != nil {
			return nil, errors.Wrap(ctx, err, op)
		}
		records, err := r.store.FindAll(ctx)
		if err != nil {
			return NewReport(steps), errors.Wrap(ctx, err, op)
		}
		if err := r.verify(ctx, steps, records, opts.withReconcileChecksums); err != nil {
			return NewReport(steps), errors.Wrap(ctx, err, op)
		}
		if err := r.execute(ctx, steps); err != nil {
			return NewReport(steps), errors.Wrap(ctx, err, op)
		}
		return NewReport(steps), nil
	})
}

// Revert compensates the most recently applied step and removes its ledger
// record. Errors are NothingToRevert when the ledger is empty, UnknownStep
// when the step is no longer loaded and Compensation when the step could not
// be compensated.
func (m *Manager) Revert(ctx context.Context) (Report, error) {
	const op = "migrate.(Manager).Revert"
	return m.invoke(ctx, metric.OperationRevert, func(ctx context.Context, r *run) (Report, error) {
		steps, err := r.revert(ctx, m.source)
		if err != nil {
			return NewReport(steps), errors.Wrap(ctx, err, op)
		}
		return NewReport(steps), nil
	})
}

// Status verifies the loaded steps against the ledger without changing
// anything. A Consistency error is returned along with the report when a
// step doesn't match the ledger.
func (m *Manager) Status(ctx context.Context) (Report, error) {
	const op = "migrate.(Manager).Status"
	return m.invoke(ctx, metric.OperationStatus, func(ctx context.Context, r *run) (Report, error) {
		steps, err := m.source.Load(ctx)
		if err != nil {
			return nil, errors.Wrap(ctx, err, op)
		}
		records, err := r.store.FindAll(ctx)
		if err != nil {
			return NewReport(steps), errors.Wrap(ctx, err, op)
		}
		if err := r.verify(ctx, steps, records, false); err != nil {
			return NewReport(steps), errors.Wrap(ctx, err, op)
		}
		if st := firstError(steps); st != nil {
			return NewReport(steps), errors.New(ctx, errors.Consistency, op, st.Error)
		}
		return NewReport(steps), nil
	})
}

// run is the state of one invocation. Everything it does happens on conn.
type run struct {
	conn   *sql.Conn
	store  ledger.Store
	logger hclog.Logger
	now    func() time.Time
}

// transition moves a step to status with msg, logging and counting it.
func (r *run) transition(st *step.Step, status step.Status, msg string) {
	st.Fail(status, msg)
	metric.StepTransition(status.String())
	if msg != "" {
		r.logger.Debug("step status", "id", st.Id, "status", status, "message", msg)
		return
	}
	r.logger.Trace("step status", "id", st.Id, "status", status)
}

// invoke acquires the connection, the store and, when configured, the ledger
// lock for one invocation of fn, and releases them however fn returns.
// Release errors are appended to the returned error.
func (m *Manager) invoke(ctx context.Context, operation string, fn func(context.Context, *run) (Report, error)) (rep Report, retErr error) {
	const op = "migrate.(Manager).invoke"
	runId, err := uuid.GenerateUUID()
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithMsg("unable to generate run id"))
	}
	logger := m.logger.With("operation", operation, "run_id", runId)
	ctx = hclog.WithContext(ctx, logger)
	defer func() {
		metric.RunFinished(operation, retErr)
		if retErr != nil {
			logger.Error("run failed", "error", retErr)
			return
		}
		logger.Info("run finished", "steps", len(rep))
	}()

	conn, err := m.db.Conn(ctx)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithMsg("unable to acquire connection"))
	}
	defer func() {
		if err := conn.Close(); err != nil {
			retErr = appendErr(retErr, errors.Wrap(ctx, err, op, errors.WithMsg("unable to release connection")))
		}
	}()

	store, err := m.newStore(ctx, conn)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}

	if m.exclusiveLock {
		if locker, ok := store.(ledger.Locker); ok {
			if err := locker.TryLock(ctx); err != nil {
				return nil, errors.Wrap(ctx, err, op, errors.WithMsg("ledger is locked by another run"))
			}
			defer func() {
				if err := locker.Unlock(ctx); err != nil {
					retErr = appendErr(retErr, errors.Wrap(ctx, err, op, errors.WithMsg("unable to release ledger lock")))
				}
			}()
		}
	}

	logger.Debug("run started")
	return fn(ctx, &run{
		conn:   conn,
		store:  store,
		logger: logger,
		now:    m.now,
	})
}

func appendErr(err, next error) error {
	if err == nil {
		return next
	}
	return multierror.Append(err, next)
}
