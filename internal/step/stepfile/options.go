// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package stepfile

// getOpts - iterate the inbound Options and return a struct.
func getOpts(opt ...Option) options {
	opts := getDefaultOptions()
	for _, o := range opt {
		if o != nil {
			o(&opts)
		}
	}
	return opts
}

// Option - how Options are passed as arguments.
type Option func(*options)

// options = how options are represented
type options struct {
	withDir   string
	withFiles []string
}

func getDefaultOptions() options {
	return options{
		withDir: ".",
	}
}

// WithDir sets the directory, relative to the source's fs.FS, holding the
// step files. Defaults to the root of the fs.FS.
func WithDir(dir string) Option {
	return func(o *options) {
		if dir != "" {
			o.withDir = dir
		}
	}
}

// WithFiles provides an explicit list of step file names, relative to the
// directory. Steps are loaded in the order given. When not provided every
// supported file in the directory is loaded, sorted by name.
func WithFiles(names ...string) Option {
	return func(o *options) {
		o.withFiles = names
	}
}
