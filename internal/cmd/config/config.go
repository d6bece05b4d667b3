// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package config loads the stepledger configuration file.
package config

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/hashicorp/go-secure-stdlib/parseutil"
	"github.com/hashicorp/hcl"
	"github.com/hashicorp/stepledger/globals"
	"github.com/hashicorp/stepledger/internal/db"
	"github.com/hashicorp/stepledger/internal/errors"
	"github.com/hashicorp/stepledger/internal/ledger"
	"github.com/hashicorp/stepledger/version"
	"github.com/kelseyhightower/envconfig"
)

const (
	defaultStepsPath        = "."
	defaultLogFileMaxSizeMb = 10
)

// Config is the configuration of the stepledger CLI.
type Config struct {
	LogLevel        string `hcl:"log_level"`
	LogFormat       string `hcl:"log_format"`
	RequiredVersion string `hcl:"required_version"`

	// LogFile, when set, receives a copy of the log lines. It is rotated
	// once it reaches LogFileMaxSizeMb.
	LogFile          string `hcl:"log_file"`
	LogFileMaxSizeMb int    `hcl:"log_file_max_size_mb"`

	Database *Database `hcl:"database"`
	Steps    *Steps    `hcl:"steps"`
}

// Database describes the database the steps run against and which keeps
// the ledger. Either Url or Hosts must be set.
type Database struct {
	Dialect string `hcl:"dialect"`

	// Url may refer to a file (file://) or an env var (env://) from which
	// the url is read, or be the url itself.
	Url string `hcl:"url"`

	// Hosts, Name, User, Password and Options build the url when Url is not
	// set. Password may refer to a file or env var like Url.
	Hosts    string `hcl:"hosts"`
	Name     string `hcl:"name"`
	User     string `hcl:"user"`
	Password string `hcl:"password"`
	Options  string `hcl:"options"`

	LedgerTable        string `hcl:"ledger_table"`
	MaxOpenConnections int    `hcl:"max_open_connections"`
}

// Steps describes where step files are read from.
type Steps struct {
	Path  string   `hcl:"path"`
	Files []string `hcl:"files"`
}

// env holds the environment overrides, read with the globals.EnvPrefix
// prefix.
type env struct {
	LogLevel        string `envconfig:"LOG_LEVEL"`
	LogFormat       string `envconfig:"LOG_FORMAT"`
	LogFile         string `envconfig:"LOG_FILE"`
	DatabaseDialect string `envconfig:"DATABASE_DIALECT"`
	DatabaseUrl     string `envconfig:"DATABASE_URL"`
	LedgerTable     string `envconfig:"LEDGER_TABLE"`
	StepsPath       string `envconfig:"STEPS_PATH"`
}

// New returns a Config holding the defaults.
func New() *Config {
	c := &Config{}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	if c.LogFileMaxSizeMb == 0 {
		c.LogFileMaxSizeMb = defaultLogFileMaxSizeMb
	}
	if c.Database == nil {
		c.Database = &Database{}
	}
	if c.Database.Dialect == "" {
		c.Database.Dialect = db.Postgres.String()
	}
	if c.Database.LedgerTable == "" {
		c.Database.LedgerTable = ledger.DefaultTableName
	}
	if c.Steps == nil {
		c.Steps = &Steps{}
	}
	if c.Steps.Path == "" {
		c.Steps.Path = defaultStepsPath
	}
}

// LoadFile loads the configuration from the given file.
func LoadFile(ctx context.Context, path string) (*Config, error) {
	const op = "config.LoadFile"
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.Io), errors.WithMsg(fmt.Sprintf("unable to read config file %s", path)))
	}
	c, err := Parse(ctx, string(d))
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithMsg(fmt.Sprintf("unable to parse config file %s", path)))
	}
	return c, nil
}

// Parse decodes an HCL or JSON configuration and fills in the defaults.
func Parse(ctx context.Context, d string) (*Config, error) {
	const op = "config.Parse"
	obj, err := hcl.Parse(d)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.InvalidParameter))
	}
	result := &Config{}
	if err := hcl.DecodeObject(result, obj); err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.InvalidParameter))
	}
	result.setDefaults()
	return result, nil
}

// ApplyEnv overrides the configuration with the STEPLEDGER_ environment
// variables which are set.
func (c *Config) ApplyEnv(ctx context.Context) error {
	const op = "config.(Config).ApplyEnv"
	var e env
	if err := envconfig.Process(globals.EnvPrefix, &e); err != nil {
		return errors.Wrap(ctx, err, op, errors.WithCode(errors.InvalidParameter))
	}
	c.setDefaults()
	override := func(target *string, v string) {
		if v != "" {
			*target = v
		}
	}
	override(&c.LogLevel, e.LogLevel)
	override(&c.LogFormat, e.LogFormat)
	override(&c.LogFile, e.LogFile)
	override(&c.Database.Dialect, e.DatabaseDialect)
	override(&c.Database.Url, e.DatabaseUrl)
	override(&c.Database.LedgerTable, e.LedgerTable)
	override(&c.Steps.Path, e.StepsPath)
	return nil
}

// Validate checks the configuration, including that the running binary
// satisfies required_version.
func (c *Config) Validate(ctx context.Context) error {
	const op = "config.(Config).Validate"
	c.setDefaults()
	if err := version.SatisfiesConstraint(c.RequiredVersion); err != nil {
		return errors.Wrap(ctx, err, op, errors.WithCode(errors.InvalidParameter))
	}
	if _, err := c.Database.DbType(ctx); err != nil {
		return errors.Wrap(ctx, err, op)
	}
	switch {
	case c.Database.Url == "" && c.Database.Hosts == "" && c.Database.Name == "":
		return errors.New(ctx, errors.InvalidParameter, op, "database url or hosts must be set")
	case c.Database.MaxOpenConnections < 0:
		return errors.New(ctx, errors.InvalidParameter, op, "database max_open_connections must not be negative")
	case c.LogFileMaxSizeMb < 0:
		return errors.New(ctx, errors.InvalidParameter, op, "log_file_max_size_mb must not be negative")
	}
	return nil
}

// DbType returns the dialect of the database.
func (d *Database) DbType(ctx context.Context) (db.DbType, error) {
	const op = "config.(Database).DbType"
	t, err := db.StringToDbType(d.Dialect)
	if err != nil {
		return db.UnknownDB, errors.New(ctx, errors.InvalidParameter, op, fmt.Sprintf("unsupported database dialect %q", d.Dialect))
	}
	return t, nil
}

// ConnectionUrl returns the url to connect to the database with, reading it
// from a file or env var when referred to, or building it from the hosts.
func (d *Database) ConnectionUrl(ctx context.Context) (string, error) {
	const op = "config.(Database).ConnectionUrl"
	if d.Url != "" {
		u, err := parsePath(d.Url)
		if err != nil {
			return "", errors.Wrap(ctx, err, op, errors.WithCode(errors.InvalidParameter), errors.WithMsg("unable to read database url"))
		}
		if u == "" {
			return "", errors.New(ctx, errors.InvalidParameter, op, fmt.Sprintf("database url %s is empty", d.Url))
		}
		return u, nil
	}
	dbType, err := d.DbType(ctx)
	if err != nil {
		return "", errors.Wrap(ctx, err, op)
	}
	switch dbType {
	case db.Sqlite:
		if d.Name == "" {
			return "", errors.New(ctx, errors.InvalidParameter, op, "missing database name")
		}
		u := "file:" + d.Name
		if d.Options != "" {
			u += "?" + d.Options
		}
		return u, nil
	default:
		if d.Hosts == "" {
			return "", errors.New(ctx, errors.InvalidParameter, op, "missing database hosts")
		}
		u := &url.URL{
			Scheme:   "postgres",
			Host:     d.Hosts,
			Path:     "/" + d.Name,
			RawQuery: d.Options,
		}
		if d.User != "" {
			password, err := parsePath(d.Password)
			if err != nil {
				return "", errors.Wrap(ctx, err, op, errors.WithCode(errors.InvalidParameter), errors.WithMsg("unable to read database password"))
			}
			if password != "" {
				u.User = url.UserPassword(d.User, password)
			} else {
				u.User = url.User(d.User)
			}
		}
		return u.String(), nil
	}
}

// parsePath resolves file://, env:// and string:// references. Anything
// else, including sqlite "file:name.db" urls, is returned as is.
func parsePath(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	switch {
	case strings.HasPrefix(s, "file://"), strings.HasPrefix(s, "env://"), strings.HasPrefix(s, "string://"):
	default:
		return s, nil
	}
	v, err := parseutil.ParsePath(s)
	if err != nil && !stderrors.Is(err, parseutil.ErrNotAUrl) {
		return "", err
	}
	return strings.TrimSpace(v), nil
}
