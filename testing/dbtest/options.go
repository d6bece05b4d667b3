// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package dbtest

// GetOpts - iterate the inbound Options and return a struct
func GetOpts(opt ...Option) Options {
	opts := getDefaultOptions()
	for _, o := range opt {
		if o != nil {
			o(&opts)
		}
	}
	return opts
}

// Option - how Options are passed as arguments
type Option func(*Options)

// Options = how options are represented
type Options struct {
	withContainerImage string
}

func getDefaultOptions() Options {
	return Options{}
}

// WithContainerImage sets the postgres image, as repo:tag, to run.
func WithContainerImage(name string) Option {
	return func(o *Options) {
		o.withContainerImage = name
	}
}
