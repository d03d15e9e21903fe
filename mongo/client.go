// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package mongo is the Collection Facade (spec.md §4.7): Client, Database,
// and Collection resolve effective options and delegate to the command,
// bulk, and validate packages. It never talks to the network directly —
// that belongs to connection.Connection and dispatch.Dispatcher.
package mongo

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	"github.com/basinlabs/mongocore/bulk"
	"github.com/basinlabs/mongocore/compressor"
	"github.com/basinlabs/mongocore/config"
	"github.com/basinlabs/mongocore/connection"
	"github.com/basinlabs/mongocore/dispatch"
	"github.com/basinlabs/mongocore/internal/logger"
	"github.com/basinlabs/mongocore/metrics"
	"github.com/basinlabs/mongocore/options"
	"github.com/basinlabs/mongocore/readpref"
	"github.com/basinlabs/mongocore/writeconcern"
)

// Client is the root of the facade: one Connection, one Dispatcher, and
// the default write concern/read preference every Database falls back to.
// Per spec.md §5, a Client borrows exactly one Connection; pooling is an
// external collaborator concern.
type Client struct {
	conn       *connection.Connection
	dispatcher *dispatch.Dispatcher
	opts       options.ClientOptions
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

// Connect dials cfg.Hosts[0], negotiates TLS if configured, and returns a
// Client wrapping the resulting Connection. Only the first host is used —
// seed-list topology discovery is out of scope (spec.md §1 Non-goals).
func Connect(ctx context.Context, cfg *config.Config) (*Client, error) {
	if len(cfg.Hosts) == 0 {
		return nil, fmt.Errorf("mongo: config has no hosts")
	}
	addr := cfg.Hosts[0]

	var d net.Dialer
	if cfg.ConnectTimeout > 0 {
		d.Timeout = cfg.ConnectTimeout
	}
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &IoError{cause: err}
	}

	connOpts := []connection.Option{
		connection.WithReadTimeout(cfg.ReadTimeout),
		connection.WithWriteTimeout(cfg.WriteTimeout),
	}

	var conn *connection.Connection
	if cfg.TLSEnabled {
		conn, err = connection.NewTLS(ctx, nc, addr, &connection.TLSConfig{
			Config:             &tls.Config{},
			InsecureSkipVerify: cfg.TLSInsecure,
		}, connOpts...)
		if err != nil {
			return nil, &IoError{cause: err}
		}
	} else {
		conn = connection.NewPlain(nc, connOpts...)
	}

	var comp compressor.Compressor
	for _, name := range cfg.Compressors {
		if c := compressor.ByName(name); c != nil {
			comp = c
			break
		}
	}

	return &Client{
		conn:       conn,
		dispatcher: dispatch.New(conn, comp),
		opts:       options.ClientOptions{WriteConcern: cfg.DefaultWriteConcern()},
	}, nil
}

// NewClient builds a Client directly from an already-open Connection,
// bypassing config/dialing — the entry point used by tests and by callers
// managing their own connection lifecycle.
func NewClient(conn *connection.Connection, comp compressor.Compressor, opts options.ClientOptions) *Client {
	return &Client{conn: conn, dispatcher: dispatch.New(conn, comp), opts: opts}
}

// WithLogger attaches l, used for command/bulk diagnostics. It propagates to
// the Client's Dispatcher, which logs a CommandStartedMessage/
// CommandFinishedMessage pair around every command round trip, and to every
// BulkWrite issued through a Collection built from this Client.
func (c *Client) WithLogger(l *logger.Logger) *Client {
	c.logger = l
	c.dispatcher.SetLogger(l)
	return c
}

// WithMetrics attaches m, populated as commands and bulk batches dispatch.
func (c *Client) WithMetrics(m *metrics.Metrics) *Client {
	c.metrics = m
	c.dispatcher.SetMetrics(m)
	return c
}

// Database returns a handle scoped to name, inheriting the client's default
// write concern/read preference unless opts overrides them.
func (c *Client) Database(name string, opts ...options.DatabaseOptions) *Database {
	dbOpts := options.DatabaseOptions{WriteConcern: c.opts.WriteConcern, ReadPref: c.opts.ReadPref}
	for _, o := range opts {
		if o.WriteConcern != nil {
			dbOpts.WriteConcern = o.WriteConcern
		}
		if o.ReadPref != nil {
			dbOpts.ReadPref = o.ReadPref
		}
	}
	return &Database{client: c, name: name, opts: dbOpts}
}

// Disconnect closes the underlying Connection. The Client keeps that one
// Connection open and reuses it for every command from Connect (or
// NewClient) until Disconnect; it does not acquire or release a connection
// per call.
func (c *Client) Disconnect() error {
	return c.conn.Close()
}

// bulkExecOptions builds the observability options Collection passes through
// to bulk.Execute, mirroring whatever logger/metrics were attached via
// WithLogger/WithMetrics.
func (c *Client) bulkExecOptions() []bulk.ExecuteOption {
	var opts []bulk.ExecuteOption
	if c.logger != nil {
		opts = append(opts, bulk.WithLogger(c.logger))
	}
	if c.metrics != nil {
		opts = append(opts, bulk.WithMetrics(c.metrics))
	}
	return opts
}

// resolveWriteConcern applies the caller > collection > database > client
// precedence from spec.md §9 via writeconcern.Resolve.
func resolveWriteConcern(levels ...*writeconcern.WriteConcern) *writeconcern.WriteConcern {
	return writeconcern.Resolve(levels...)
}

func resolveReadPref(levels ...*readpref.ReadPref) *readpref.ReadPref {
	return readpref.Resolve(levels...)
}
