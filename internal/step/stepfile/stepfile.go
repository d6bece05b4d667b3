// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package stepfile provides a step.Source that reads step definitions from
// HCL, JSON or YAML files.
//
// A step file declares:
//
//	id             = "0001_users"      # defaults to the file name without extension
//	description    = "create users"
//	no_transaction = false
//	up             = "create table users (id text primary key);"
//	down           = "drop table users;"
//
// The checksum of a step is the hex encoded SHA-256 of the file's bytes.
package stepfile

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/hashicorp/hcl"
	"github.com/hashicorp/stepledger/internal/errors"
	"github.com/hashicorp/stepledger/internal/step"
	"gopkg.in/yaml.v3"
)

// definition is the decoded content of one step file.
type definition struct {
	Id            string `hcl:"id" yaml:"id"`
	Description   string `hcl:"description" yaml:"description"`
	Up            string `hcl:"up" yaml:"up"`
	Down          string `hcl:"down" yaml:"down"`
	NoTransaction bool   `hcl:"no_transaction" yaml:"no_transaction"`
}

// Source loads steps from files in an fs.FS.
type Source struct {
	fsys  fs.FS
	dir   string
	files []string
}

var _ step.Source = (*Source)(nil)

// New creates a Source reading from fsys. Supported options are WithDir and
// WithFiles.
func New(fsys fs.FS, opt ...Option) (*Source, error) {
	const op = "stepfile.New"
	if fsys == nil {
		return nil, errors.New(context.TODO(), errors.InvalidParameter, op, "missing file system")
	}
	opts := getOpts(opt...)
	return &Source{
		fsys:  fsys,
		dir:   path.Clean(opts.withDir),
		files: opts.withFiles,
	}, nil
}

// Load reads and decodes every step file. Each call returns fresh steps.
func (s *Source) Load(ctx context.Context) ([]*step.Step, error) {
	const op = "stepfile.(Source).Load"
	names, err := s.fileNames(ctx)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	steps := make([]*step.Step, 0, len(names))
	for _, name := range names {
		st, err := s.read(ctx, name)
		if err != nil {
			return nil, errors.Wrap(ctx, err, op)
		}
		steps = append(steps, st)
	}
	if err := step.Normalize(ctx, steps); err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	return steps, nil
}

func (s *Source) fileNames(ctx context.Context) ([]string, error) {
	const op = "stepfile.(Source).fileNames"
	if len(s.files) > 0 {
		return s.files, nil
	}
	entries, err := fs.ReadDir(s.fsys, s.dir)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.Io), errors.WithMsg(fmt.Sprintf("unable to read step directory %s", s.dir)))
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !supported(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	// fs.ReadDir returns entries sorted by name
	return names, nil
}

func (s *Source) read(ctx context.Context, name string) (*step.Step, error) {
	const op = "stepfile.(Source).read"
	p := path.Join(s.dir, name)
	b, err := fs.ReadFile(s.fsys, p)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.Io), errors.WithMsg(fmt.Sprintf("unable to read step file %s", p)))
	}
	def, err := decode(name, b)
	if err != nil {
		return nil, errors.New(ctx, errors.StepLoad, op, fmt.Sprintf("malformed step file %s", p), errors.WithWrap(err))
	}
	if def.Id == "" {
		def.Id = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	if strings.TrimSpace(def.Up) == "" {
		return nil, errors.New(ctx, errors.StepLoad, op, fmt.Sprintf("step file %s has no up statements", p))
	}
	sum := sha256.Sum256(b)
	st := &step.Step{
		Id:          def.Id,
		Checksum:    hex.EncodeToString(sum[:]),
		Description: def.Description,
		Apply:       sqlAction(def.Up, def.NoTransaction),
	}
	if strings.TrimSpace(def.Down) != "" {
		st.Compensate = sqlAction(def.Down, def.NoTransaction)
	}
	return st, nil
}

func supported(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".hcl", ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func decode(name string, b []byte) (*definition, error) {
	def := &definition{}
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, def); err != nil {
			return nil, err
		}
	case ".hcl", ".json":
		// hcl parses both its native syntax and json
		obj, err := hcl.Parse(string(b))
		if err != nil {
			return nil, err
		}
		if err := hcl.DecodeObject(def, obj); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported step file extension %q", path.Ext(name))
	}
	return def, nil
}

// sqlAction returns an Action executing statements on the run's connection,
// within a transaction unless noTx is set.
func sqlAction(statements string, noTx bool) step.Action {
	return func(ctx context.Context, conn *sql.Conn) (retErr error) {
		const op = "stepfile.sqlAction"
		if noTx {
			if _, err := conn.ExecContext(ctx, statements); err != nil {
				return errors.Wrap(ctx, err, op)
			}
			return nil
		}
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return errors.Wrap(ctx, err, op, errors.WithMsg("unable to begin transaction"))
		}
		defer func() {
			if retErr != nil {
				_ = tx.Rollback()
			}
		}()
		if _, err := tx.ExecContext(ctx, statements); err != nil {
			return errors.Wrap(ctx, err, op)
		}
		if err := tx.Commit(); err != nil {
			return errors.Wrap(ctx, err, op, errors.WithMsg("unable to commit transaction"))
		}
		return nil
	}
}
