// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package db

import (
	"time"

	"github.com/hashicorp/go-hclog"
)

// getOpts - iterate the inbound Options and return a struct
func getOpts(opt ...Option) options {
	opts := getDefaultOptions()
	for _, o := range opt {
		if o != nil {
			o(&opts)
		}
	}
	return opts
}

// Option - how Options are passed as arguments
type Option func(*options)

// options = how options are represented
type options struct {
	withMaxOpenConnections int
	withPingRetries        uint64
	withPingInterval       time.Duration
	withLogger             hclog.Logger
}

func getDefaultOptions() options {
	return options{
		withPingRetries:  5,
		withPingInterval: time.Second,
		withLogger:       hclog.NewNullLogger(),
	}
}

// WithMaxOpenConnections sets the maximum number of open connections of the
// pool. Zero means unlimited.
func WithMaxOpenConnections(max int) Option {
	return func(o *options) {
		o.withMaxOpenConnections = max
	}
}

// WithPingRetries sets how many times a failing ping is retried while
// opening the database, waiting interval between attempts.
func WithPingRetries(retries uint64, interval time.Duration) Option {
	return func(o *options) {
		o.withPingRetries = retries
		if interval > 0 {
			o.withPingInterval = interval
		}
	}
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.withLogger = l
		}
	}
}
