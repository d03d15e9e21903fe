// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongo

import (
	"net"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/basinlabs/mongocore/connection"
	"github.com/basinlabs/mongocore/options"
	"github.com/basinlabs/mongocore/wiremessage"
)

// fakeServer plays back one queued reply per verb, in call order, over a
// real wire connection — the same replay idea as bulk.fakeServer, but
// speaking OP_QUERY/OP_REPLY so it can stand in for the server a *Client
// dials, rather than satisfying bulk.CommandFunc directly.
type fakeServer struct {
	replies   map[string][]bson.D
	calls     []bson.D
	flagsSeen []wiremessage.QueryFlags
}

func (f *fakeServer) serve(nc net.Conn) {
	for {
		msg, err := readRawMessage(nc)
		if err != nil {
			return
		}
		var q wiremessage.Query
		if err := q.UnmarshalWireMessage(msg); err != nil {
			return
		}
		f.calls = append(f.calls, q.Query)
		f.flagsSeen = append(f.flagsSeen, q.Flags)

		verb := q.Query[0].Key
		queue := f.replies[verb]
		var reply bson.D
		if len(queue) > 0 {
			reply = queue[0]
			f.replies[verb] = queue[1:]
		} else {
			reply = bson.D{{Key: "ok", Value: float64(0)}, {Key: "errmsg", Value: "no reply queued for " + verb}}
		}

		docBytes, err := bson.Marshal(reply)
		if err != nil {
			return
		}
		r := &wiremessage.Reply{
			MsgHeader:      wiremessage.Header{ResponseTo: q.MsgHeader.RequestID},
			NumberReturned: 1,
			Documents:      []bson.Raw{docBytes},
		}
		out, err := r.AppendWireMessage(nil)
		if err != nil {
			return
		}
		if _, err := nc.Write(out); err != nil {
			return
		}
	}
}

func readRawMessage(nc net.Conn) ([]byte, error) {
	var sizeBuf [4]byte
	if _, err := readFull(nc, sizeBuf[:]); err != nil {
		return nil, err
	}
	size := int32(sizeBuf[0]) | int32(sizeBuf[1])<<8 | int32(sizeBuf[2])<<16 | int32(sizeBuf[3])<<24
	msg := make([]byte, size)
	copy(msg, sizeBuf[:])
	if _, err := readFull(nc, msg[4:]); err != nil {
		return nil, err
	}
	return msg, nil
}

func readFull(nc net.Conn, p []byte) (int, error) {
	n := 0
	for n < len(p) {
		m, err := nc.Read(p[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// newTestClient dials a net.Pipe, starts f serving the server half in the
// background, and returns a Client wrapping the client half plus a cleanup
// func the caller must defer.
func newTestClient(t *testing.T, f *fakeServer) (*Client, func()) {
	t.Helper()
	client, server := net.Pipe()
	go f.serve(server)

	conn := connection.NewPlain(client)
	c := NewClient(conn, nil, options.ClientOptions{})
	return c, func() {
		client.Close()
		server.Close()
	}
}

func okReply(n int64) bson.D {
	return bson.D{{Key: "ok", Value: float64(1)}, {Key: "n", Value: n}}
}
