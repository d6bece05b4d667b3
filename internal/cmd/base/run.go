// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package base

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/hashicorp/stepledger/globals"
	"github.com/hashicorp/stepledger/internal/cmd/base/internal/metric"
	"github.com/hashicorp/stepledger/internal/cmd/config"
	"github.com/hashicorp/stepledger/internal/db"
	"github.com/hashicorp/stepledger/internal/errors"
	"github.com/hashicorp/stepledger/internal/migrate"
	"github.com/hashicorp/stepledger/internal/step/stepfile"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup loads the configuration, applies the environment overrides,
// validates it and builds the logger. It prints any error and returns the
// exit code to use, or CommandSuccess.
func (c *Command) Setup() int {
	ctx := c.Context
	cfg, err := c.loadConfig(ctx)
	if err != nil {
		c.PrintCliError(fmt.Errorf("Error loading configuration: %w", err))
		return CommandUserError
	}
	if err := cfg.ApplyEnv(ctx); err != nil {
		c.PrintCliError(fmt.Errorf("Error reading environment: %w", err))
		return CommandUserError
	}
	if err := cfg.Validate(ctx); err != nil {
		c.PrintCliError(fmt.Errorf("Error validating configuration: %w", err))
		return CommandUserError
	}
	c.Config = cfg

	if cfg.LogFile != "" {
		lf, err := openLogFile(cfg.LogFile, cfg.LogFileMaxSizeMb)
		if err != nil {
			c.PrintCliError(fmt.Errorf("Error opening log file: %w", err))
			return CommandUserError
		}
		c.logFile = lf
		c.LogOutput = io.MultiWriter(c.LogOutput, lf)
	}
	if err := c.SetupLogging(c.flagLogLevel, c.flagLogFormat, cfg.LogLevel, cfg.LogFormat); err != nil {
		c.PrintCliError(err)
		return CommandUserError
	}

	c.registry = prometheus.NewRegistry()
	metric.InitializeBuildInfo(c.registry)
	migrate.InitializeCollectors(c.registry)
	return CommandSuccess
}

func (c *Command) loadConfig(ctx context.Context) (*config.Config, error) {
	path := c.flagConfig
	if path == "" {
		if _, err := os.Stat(globals.DefaultConfigFile); err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				return config.New(), nil
			}
			return nil, err
		}
		path = globals.DefaultConfigFile
	}
	return config.LoadFile(ctx, path)
}

// OpenManager opens the configured database and returns a migrate.Manager
// for the configured steps. The returned db must be closed by the caller.
// Setup must have been called.
func (c *Command) OpenManager() (*migrate.Manager, *sql.DB, error) {
	const op = "base.(Command).OpenManager"
	ctx := c.Context
	if c.Config == nil {
		return nil, nil, errors.New(ctx, errors.InvalidParameter, op, "configuration not loaded")
	}
	dbCfg := c.Config.Database
	dbType, err := dbCfg.DbType(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(ctx, err, op)
	}
	url, err := dbCfg.ConnectionUrl(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(ctx, err, op)
	}

	var stepOpts []stepfile.Option
	if len(c.Config.Steps.Files) > 0 {
		stepOpts = append(stepOpts, stepfile.WithFiles(c.Config.Steps.Files...))
	}
	src, err := stepfile.New(os.DirFS(c.Config.Steps.Path), stepOpts...)
	if err != nil {
		return nil, nil, errors.Wrap(ctx, err, op)
	}

	d, err := db.Open(ctx, dbType, url,
		db.WithMaxOpenConnections(dbCfg.MaxOpenConnections),
		db.WithLogger(c.Logger.Named("db")),
	)
	if err != nil {
		return nil, nil, errors.Wrap(ctx, err, op)
	}

	opts := []migrate.Option{
		migrate.WithLogger(c.Logger),
		migrate.WithDialect(dbType),
		migrate.WithTableName(dbCfg.LedgerTable),
	}
	if !c.flagSkipLock {
		opts = append(opts, migrate.WithExclusiveLock())
	}
	m, err := migrate.NewManager(ctx, d, src, opts...)
	if err != nil {
		_ = d.Close()
		return nil, nil, errors.Wrap(ctx, err, op)
	}
	return m, d, nil
}

// WriteMetrics writes the gathered metrics to the -metrics-textfile file,
// when set.
func (c *Command) WriteMetrics() error {
	if c.flagMetricsTextfile == "" || c.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(c.flagMetricsTextfile, c.registry); err != nil {
		return fmt.Errorf("error writing metrics to %s: %w", c.flagMetricsTextfile, err)
	}
	return nil
}

// openLogFile returns a writer to path which rotates once the file reaches
// maxSizeMb, keeping three compressed backups.
func openLogFile(path string, maxSizeMb int) (io.WriteCloser, error) {
	// Ensure the file is created with the desired permissions.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMb,
		MaxBackups: 3,
		Compress:   true,
	}, nil
}

// Close releases what Setup opened.
func (c *Command) Close() error {
	if c.logFile == nil {
		return nil
	}
	err := c.logFile.Close()
	c.logFile = nil
	return err
}
