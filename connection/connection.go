// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package connection implements the Connection Abstraction from spec.md
// §4.1: a single buffered byte stream over either a plain or a
// TLS-wrapped net.Conn, exposing read/write/flush regardless of which
// variant backs it.
package connection

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"time"
)

// Variant names the transport a Connection was constructed with. It exists
// for observability only; callers never branch on it to decide how to read
// or write (that would reintroduce the "wrong variant" unreachable-arm bug
// spec.md §9 calls out to avoid).
type Variant uint8

// The two transport variants this module supports.
const (
	PlainVariant Variant = iota
	TLSVariant
)

func (v Variant) String() string {
	if v == TLSVariant {
		return "tls"
	}
	return "plain"
}

// stream erases the variant behind a capability interface: both a plain
// net.Conn and a *tls.Conn satisfy it identically, so Connection never needs
// to branch on which one it holds.
type stream interface {
	net.Conn
	variant() Variant
}

type plainStream struct{ net.Conn }

func (plainStream) variant() Variant { return PlainVariant }

type tlsStream struct{ *tls.Conn }

func (tlsStream) variant() Variant { return TLSVariant }

var globalConnectionID uint64

func nextConnectionID() string {
	return fmt.Sprintf("conn-%d", atomic.AddUint64(&globalConnectionID, 1))
}

// Connection is a single logical byte stream to a server, buffered on both
// directions to amortize the small framed writes the command/dispatch layer
// issues. A Connection is not scoped to a single command: the Dispatcher
// built around it sends every command over it, and it stays open until
// Close is called by its owner (mongo.Client.Disconnect).
type Connection struct {
	id   string
	s    stream
	r    *bufio.Reader
	w    *bufio.Writer
	dead bool

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewPlain wraps an already-dialed plain net.Conn.
func NewPlain(nc net.Conn, opts ...Option) *Connection {
	return newConnection(plainStream{nc}, opts...)
}

// TLSConfig configures the TLS handshake performed by NewTLS.
type TLSConfig struct {
	*tls.Config
	InsecureSkipVerify bool
}

// NewTLS performs a TLS handshake over nc using addr to derive the SNI
// hostname (unless cfg opts out via InsecureSkipVerify), mirroring
// core/connection.connection's configureTLS.
func NewTLS(ctx context.Context, nc net.Conn, addr string, cfg *TLSConfig, opts ...Option) (*Connection, error) {
	tlsCfg := cfg.Config.Clone()
	if !cfg.InsecureSkipVerify {
		tlsCfg.ServerName = hostnameOf(addr)
	}

	client := tls.Client(nc, tlsCfg)

	errCh := make(chan error, 1)
	go func() { errCh <- client.HandshakeContext(ctx) }()

	select {
	case err := <-errCh:
		if err != nil {
			return nil, fmt.Errorf("connection: TLS handshake: %w", err)
		}
	case <-ctx.Done():
		return nil, fmt.Errorf("connection: TLS handshake: %w", ctx.Err())
	}

	return newConnection(tlsStream{client}, opts...), nil
}

func hostnameOf(addr string) string {
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

// Option configures a Connection at construction.
type Option func(*Connection)

// WithReadTimeout bounds each Read call.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Connection) { c.readTimeout = d }
}

// WithWriteTimeout bounds each Flush call.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Connection) { c.writeTimeout = d }
}

func newConnection(s stream, opts ...Option) *Connection {
	c := &Connection{
		id: nextConnectionID(),
		s:  s,
		r:  bufio.NewReader(s),
		w:  bufio.NewWriter(s),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns a stable identifier for this connection, suitable for logging.
func (c *Connection) ID() string { return c.id }

// Variant reports which transport this Connection was constructed with.
func (c *Connection) Variant() Variant { return c.s.variant() }

// Alive reports whether the connection has not been closed.
func (c *Connection) Alive() bool { return !c.dead }

// Underlying exposes the wrapped transport handle so a caller can configure
// socket-level deadlines or perform a shutdown, per spec.md §4.1 ("Exposes
// access to the underlying transport handle for timeout and shutdown
// configuration").
func (c *Connection) Underlying() net.Conn { return c.s }

// Write buffers p for the next Flush.
func (c *Connection) Write(p []byte) (int, error) {
	if c.dead {
		return 0, fmt.Errorf("connection %s: write on closed connection", c.id)
	}
	return c.w.Write(p)
}

// Flush pushes any buffered writes to the network.
func (c *Connection) Flush() error {
	if c.dead {
		return fmt.Errorf("connection %s: flush on closed connection", c.id)
	}
	if err := c.applyWriteDeadline(); err != nil {
		return err
	}
	return c.w.Flush()
}

// Read fills p from the buffered reader, reading from the network as
// needed.
func (c *Connection) Read(p []byte) (int, error) {
	if c.dead {
		return 0, fmt.Errorf("connection %s: read on closed connection", c.id)
	}
	if err := c.applyReadDeadline(); err != nil {
		return 0, err
	}
	return io.ReadFull(c.r, p)
}

func (c *Connection) applyReadDeadline() error {
	if c.readTimeout <= 0 {
		return nil
	}
	return c.s.SetReadDeadline(time.Now().Add(c.readTimeout))
}

func (c *Connection) applyWriteDeadline() error {
	if c.writeTimeout <= 0 {
		return nil
	}
	return c.s.SetWriteDeadline(time.Now().Add(c.writeTimeout))
}

// Close tears down the underlying transport. It is a programming error to
// construct a Connection whose stream does not match its declared Variant;
// that invariant is enforced at construction (NewPlain/NewTLS), so Close
// never needs to guard against it.
func (c *Connection) Close() error {
	c.dead = true
	if err := c.s.Close(); err != nil {
		return fmt.Errorf("connection %s: close: %w", c.id, err)
	}
	return nil
}
