// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package errors

// GetOpts - iterate the inbound Options and return a struct.
func GetOpts(opt ...Option) Options {
	opts := getDefaultOptions()
	for _, o := range opt {
		if o != nil {
			o(&opts)
		}
	}
	return opts
}

// Option - how Options are passed as arguments.
type Option func(*Options)

// Options = how options are represented
type Options struct {
	withCode       Code
	withErrWrapped error
	withErrMsg     string
	withOp         Op
	withoutLog     bool
}

func getDefaultOptions() Options {
	return Options{}
}

// WithWrap allows an optional error to wrap a new error.
// NOTE: wrapped errors must be of type *Err and ignored otherwise.
func WithWrap(e error) Option {
	return func(o *Options) {
		o.withErrWrapped = e
	}
}

// WithMsg allows an optional message to be specified for the error.
func WithMsg(msg string) Option {
	return func(o *Options) {
		o.withErrMsg = msg
	}
}

// WithOp allows an optional operation to be specified for the error.
func WithOp(op Op) Option {
	return func(o *Options) {
		o.withOp = op
	}
}

// WithCode allows an optional code to be specified for the error.
func WithCode(code Code) Option {
	return func(o *Options) {
		o.withCode = code
	}
}

// WithoutLog allows you to specify that the error should not be written to
// the context's logger when it's created.
func WithoutLog() Option {
	return func(o *Options) {
		o.withoutLog = true
	}
}
