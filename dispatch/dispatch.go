// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package dispatch implements the Command Dispatcher collaborator
// (spec.md §4.2): it serializes a command document into a request frame,
// writes it, reads the correlated reply frame, and returns the reply
// document. The rest of the core treats Dispatcher.Command as a
// synchronous command(doc) -> doc function.
package dispatch

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/basinlabs/mongocore/compressor"
	"github.com/basinlabs/mongocore/connection"
	"github.com/basinlabs/mongocore/internal"
	"github.com/basinlabs/mongocore/internal/logger"
	"github.com/basinlabs/mongocore/metrics"
	"github.com/basinlabs/mongocore/wiremessage"
)

// globalRequestID is the one piece of process-wide shared state spec.md §5
// calls out: a monotonically increasing request-id counter, accessed
// atomically.
var globalRequestID int32

func nextRequestID() int32 {
	return atomic.AddInt32(&globalRequestID, 1)
}

// Dispatcher sends command documents to a single Connection and returns the
// correlated reply. It is the concrete implementation of the otherwise
// external-collaborator boundary described in spec.md §4.2.
type Dispatcher struct {
	conn       *connection.Connection
	compressor compressor.Compressor
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

// Option configures optional Dispatcher collaborators.
type Option func(*Dispatcher)

// WithLogger attaches l; Dispatcher logs a CommandStartedMessage before each
// write and a CommandFinishedMessage once the reply (or error) comes back.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithMetrics attaches m; Dispatcher calls ObserveCommand once per round
// trip with the command name, outcome, and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// New constructs a Dispatcher around a live Connection. compressor may be
// nil, in which case commands are sent uncompressed.
func New(conn *connection.Connection, comp compressor.Compressor, opts ...Option) *Dispatcher {
	d := &Dispatcher{conn: conn, compressor: comp}
	for _, o := range opts {
		o(d)
	}
	return d
}

// SetLogger attaches l after construction, for callers (such as
// mongo.Client.WithLogger) that build their observability collaborators
// after the Dispatcher already exists.
func (d *Dispatcher) SetLogger(l *logger.Logger) {
	d.logger = l
}

// SetMetrics attaches m after construction; see SetLogger.
func (d *Dispatcher) SetMetrics(m *metrics.Metrics) {
	d.metrics = m
}

// Command serializes cmd as an OP_QUERY against "<db>.$cmd" (skip=0,
// numberToReturn=-1, flags=0 per spec.md §6), writes it, and returns the
// decoded reply document (docs[0] of the OP_REPLY).
func (d *Dispatcher) Command(ctx context.Context, db string, cmd bson.D) (bson.D, error) {
	return d.CommandWithFlags(ctx, db, cmd, 0)
}

// CommandWithFlags is Command with the caller supplying the OP_QUERY flags
// bits, used by Collection.Find to carry FindOptions' tailable/awaitData/
// noCursorTimeout/oplogReplay/partial/exhaust bits onto the wire (spec.md
// §4.8).
func (d *Dispatcher) CommandWithFlags(ctx context.Context, db string, cmd bson.D, flags wiremessage.QueryFlags) (out bson.D, err error) {
	var cmdName string
	if len(cmd) > 0 {
		cmdName = cmd[0].Key
	}

	if d.logger != nil {
		d.logger.Print(logger.LevelDebug, logger.CommandStartedMessage{CommandName: cmdName, Database: db})
	}
	start := time.Now()
	defer func() {
		if d.metrics != nil {
			outcome := "success"
			if err != nil {
				outcome = "failure"
			}
			d.metrics.ObserveCommand(cmdName, outcome, time.Since(start))
		}
		if d.logger != nil {
			d.logger.Print(logger.LevelDebug, logger.CommandFinishedMessage{
				CommandName: cmdName,
				Database:    db,
				DurationMS:  time.Since(start).Milliseconds(),
				Failed:      err != nil,
			})
		}
	}()

	reqID := nextRequestID()

	q := &wiremessage.Query{
		MsgHeader:          wiremessage.Header{RequestID: reqID},
		Flags:              flags,
		FullCollectionName: db + ".$cmd",
		NumberToSkip:       0,
		NumberToReturn:     -1,
		Query:              cmd,
	}

	// A blocked Write/Read only notices ctx cancellation once the
	// connection's own read/write timeout elapses, which may be well past
	// ctx's deadline or never at all for an unbounded ctx. The listener
	// forces an immediate deadline on the underlying transport the moment
	// ctx is canceled, which unblocks the in-flight syscall right away.
	listener := internal.NewCancellationListener()
	go listener.Listen(ctx, func() {
		_ = d.conn.Underlying().SetDeadline(time.Now())
	})
	defer listener.StopListening()

	if err := d.writeMessage(ctx, q); err != nil {
		return nil, fmt.Errorf("dispatch: writing command: %w", err)
	}

	reply, err := d.readReply(ctx)
	if err != nil {
		return nil, fmt.Errorf("dispatch: reading reply: %w", err)
	}
	if reply.MsgHeader.ResponseTo != reqID {
		return nil, fmt.Errorf("dispatch: reply responseTo %d does not match request %d", reply.MsgHeader.ResponseTo, reqID)
	}

	raw, err := reply.FirstDocument()
	if err != nil {
		return nil, err
	}

	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("dispatch: decoding reply document: %w", err)
	}
	return out, nil
}

func (d *Dispatcher) writeMessage(ctx context.Context, wm wiremessage.WireMessage) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	buf, err := wm.AppendWireMessage(nil)
	if err != nil {
		return err
	}

	if d.compressor != nil {
		buf, err = d.compress(buf)
		if err != nil {
			return err
		}
	}

	if _, err := d.conn.Write(buf); err != nil {
		return err
	}
	return d.conn.Flush()
}

func (d *Dispatcher) compress(full []byte) ([]byte, error) {
	hdr, err := wiremessage.ReadHeader(full, 0)
	if err != nil {
		return nil, err
	}
	body := full[16:]

	compressed, err := d.compressor.CompressBytes(body, nil)
	if err != nil {
		return nil, fmt.Errorf("dispatch: compressing message: %w", err)
	}

	c := &wiremessage.Compressed{
		MsgHeader:         wiremessage.Header{RequestID: hdr.RequestID, ResponseTo: hdr.ResponseTo},
		OriginalOpCode:    hdr.OpCode,
		UncompressedSize:  int32(len(body)),
		CompressorID:      uint8(d.compressor.ID()),
		CompressedMessage: compressed,
	}
	return c.AppendWireMessage(nil)
}

func (d *Dispatcher) readReply(ctx context.Context) (*wiremessage.Reply, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var sizeBuf [4]byte
	if _, err := d.conn.Read(sizeBuf[:]); err != nil {
		return nil, err
	}
	size := int32(sizeBuf[0]) | int32(sizeBuf[1])<<8 | int32(sizeBuf[2])<<16 | int32(sizeBuf[3])<<24

	msg := make([]byte, size)
	copy(msg, sizeBuf[:])
	if _, err := d.conn.Read(msg[4:]); err != nil {
		return nil, err
	}

	hdr, err := wiremessage.ReadHeader(msg, 0)
	if err != nil {
		return nil, err
	}

	switch hdr.OpCode {
	case wiremessage.OpReply:
		reply := &wiremessage.Reply{}
		if err := reply.UnmarshalWireMessage(msg); err != nil {
			return nil, err
		}
		return reply, nil

	case wiremessage.OpCompressed:
		var c wiremessage.Compressed
		if err := c.UnmarshalWireMessage(msg); err != nil {
			return nil, err
		}
		if d.compressor == nil || uint8(d.compressor.ID()) != c.CompressorID {
			return nil, fmt.Errorf("dispatch: received OP_COMPRESSED with unconfigured compressor id %d", c.CompressorID)
		}
		decompressed, err := d.compressor.UncompressBytes(c.CompressedMessage, make([]byte, 0, c.UncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("dispatch: decompressing reply: %w", err)
		}

		origHeader := wiremessage.Header{
			MessageLength: int32(len(decompressed)) + 16,
			RequestID:     c.MsgHeader.RequestID,
			ResponseTo:    c.MsgHeader.ResponseTo,
			OpCode:        c.OriginalOpCode,
		}
		full := origHeader.AppendHeader(nil)
		full = append(full, decompressed...)

		if c.OriginalOpCode != wiremessage.OpReply {
			return nil, fmt.Errorf("dispatch: unsupported compressed opcode %s", c.OriginalOpCode)
		}
		reply := &wiremessage.Reply{}
		if err := reply.UnmarshalWireMessage(full); err != nil {
			return nil, err
		}
		return reply, nil

	default:
		return nil, fmt.Errorf("dispatch: unsupported opcode %s", hdr.OpCode)
	}
}
